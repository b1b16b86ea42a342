package citation

import (
	"testing"

	"github.com/panbanda/folio/pkg/analyzer/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// sampleGraph mirrors the reference structure of testutil.SampleCorpus.
func sampleGraph() *graph.Graph {
	g := graph.New()
	g.AddEdge("graphs.md", "intro.md", 1)
	g.AddEdge("toposort.md", "graphs.md", 1)
	g.AddEdge("toposort.md", "intro.md", 1)
	g.AddEdge("search.md", "intro.md", 1)
	g.AddEdge("search.md", "graphs.md", 1)
	return g
}

func TestHIndex(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   int
	}{
		{"empty", nil, 0},
		{"all zero", []int{0, 0, 0}, 0},
		{"classic", []int{10, 8, 5, 4, 3}, 4},
		{"unsorted", []int{3, 10, 4, 8, 5}, 4},
		{"single", []int{1}, 1},
		{"plateau", []int{3, 3, 3}, 3},
		{"large counts", []int{100, 100}, 2},
		{"sample", []int{3, 2, 0, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HIndex(tt.counts))
		})
	}
}

func TestHIndex_DoesNotModifyInput(t *testing.T) {
	counts := []int{1, 5, 3}
	HIndex(counts)
	assert.Equal(t, []int{1, 5, 3}, counts)
}

func TestHIndex_Definition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		counts := rapid.SliceOfN(rapid.IntRange(0, 30), 0, 40).Draw(t, "counts")
		h := HIndex(counts)

		atLeast := func(v int) int {
			n := 0
			for _, c := range counts {
				if c >= v {
					n++
				}
			}
			return n
		}
		if h > 0 && atLeast(h) < h {
			t.Fatalf("h=%d but only %d counts >= h", h, atLeast(h))
		}
		if atLeast(h+1) >= h+1 {
			t.Fatalf("h=%d is not maximal", h)
		}
	})
}

func TestI10Index(t *testing.T) {
	assert.Equal(t, 0, I10Index(nil))
	assert.Equal(t, 2, I10Index([]int{10, 8, 15, 9}))
}

func TestImpactFactor(t *testing.T) {
	assert.Equal(t, 0.0, ImpactFactor(5, 0))
	assert.Equal(t, 1.25, ImpactFactor(5, 4))
}

func TestCompute_Sample(t *testing.T) {
	res := Compute(sampleGraph(), Options{})

	assert.Equal(t, Summary{
		HIndex:           2,
		I10Index:         0,
		ImpactFactor:     1.25,
		TotalCitations:   5,
		DocumentsCounted: 4,
		Documents:        4,
		MostCited:        "intro.md",
	}, res.Summary)

	assert.Equal(t, []DocumentMetrics{
		{ID: "intro.md", Citations: 3, References: 0, InHCore: true},
		{ID: "graphs.md", Citations: 2, References: 1, InHCore: true},
		{ID: "search.md", Citations: 0, References: 2},
		{ID: "toposort.md", Citations: 0, References: 2},
	}, res.Documents)

	assert.Equal(t, []Pair{{A: "graphs.md", B: "intro.md", Count: 2}}, res.CoCitations)
	assert.Equal(t, []Pair{
		{A: "search.md", B: "toposort.md", Count: 2},
		{A: "graphs.md", B: "search.md", Count: 1},
		{A: "graphs.md", B: "toposort.md", Count: 1},
	}, res.Coupling)
}

func TestCompute_ExcludeIsolated(t *testing.T) {
	g := sampleGraph()
	g.AddNode("lonely.md")

	all := Compute(g, Options{})
	assert.Equal(t, 5, all.Summary.DocumentsCounted)
	assert.Equal(t, 1.0, all.Summary.ImpactFactor)

	linked := Compute(g, Options{ExcludeIsolated: true})
	assert.Equal(t, 4, linked.Summary.DocumentsCounted)
	assert.Equal(t, 1.25, linked.Summary.ImpactFactor)
	assert.Equal(t, 5, linked.Summary.Documents)
}

func TestCompute_SelfCitations(t *testing.T) {
	g := graph.New()
	g.AddEdge("a.md", "a.md", 1)
	g.AddEdge("b.md", "a.md", 1)

	with := Compute(g, Options{})
	assert.Equal(t, 2, with.Documents[0].Citations)
	assert.Equal(t, 2, with.Summary.TotalCitations)

	without := Compute(g, Options{ExcludeSelfCitations: true})
	assert.Equal(t, "a.md", without.Documents[0].ID)
	assert.Equal(t, 1, without.Documents[0].Citations)
	assert.Equal(t, 0, without.Documents[0].References)
	assert.Equal(t, 1, without.Summary.TotalCitations)
}

func TestCompute_Empty(t *testing.T) {
	res := Compute(graph.New(), Options{ExcludeIsolated: true})
	assert.Equal(t, Summary{}, res.Summary)
	assert.Empty(t, res.Documents)
	assert.NotNil(t, res.CoCitations)
	assert.NotNil(t, res.Coupling)
}

func TestCompute_HCoreIsExactlyH(t *testing.T) {
	g := graph.New()
	for _, src := range []string{"x.md", "y.md", "z.md"} {
		for _, dst := range []string{"a.md", "b.md", "c.md", "d.md"} {
			g.AddEdge(src, dst, 1)
		}
	}

	res := Compute(g, Options{})
	require.Equal(t, 3, res.Summary.HIndex)
	core := 0
	for _, d := range res.Documents {
		if d.InHCore {
			core++
		}
	}
	assert.Equal(t, 3, core)
	assert.False(t, res.Documents[3].InHCore)
	assert.Equal(t, "d.md", res.Documents[3].ID)
}

func TestCoupling_MatchesSetIntersection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := []string{"a", "b", "c", "d", "e"}
		g := graph.New()
		for _, id := range ids {
			g.AddNode(id)
		}
		refs := map[string]map[string]bool{}
		n := rapid.IntRange(0, 15).Draw(t, "edges")
		for i := 0; i < n; i++ {
			from := rapid.SampledFrom(ids).Draw(t, "from")
			to := rapid.SampledFrom(ids).Draw(t, "to")
			if from == to {
				continue
			}
			g.AddEdge(from, to, 1)
			if refs[from] == nil {
				refs[from] = map[string]bool{}
			}
			refs[from][to] = true
		}

		got := map[[2]string]int{}
		for _, p := range Compute(g, Options{}).Coupling {
			if p.A >= p.B {
				t.Fatalf("pair not ordered: %+v", p)
			}
			got[[2]string{p.A, p.B}] = p.Count
		}
		for i, a := range ids {
			for _, b := range ids[i+1:] {
				shared := 0
				for r := range refs[a] {
					if refs[b][r] {
						shared++
					}
				}
				if got[[2]string{a, b}] != shared {
					t.Fatalf("coupling(%s,%s) = %d, want %d", a, b, got[[2]string{a, b}], shared)
				}
			}
		}
	})
}
