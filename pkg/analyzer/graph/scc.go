package graph

import "sort"

type tarjanFrame struct {
	v    int
	next int
}

// StronglyConnectedComponents returns every strongly connected component
// using Tarjan's algorithm with an explicit stack, so deep reference chains
// cannot overflow the goroutine stack. Members of each component are
// sorted and components are ordered by their smallest member.
func StronglyConnectedComponents(g *Graph) [][]string {
	ids := g.Nodes()
	n := len(ids)
	pos := make(map[string]int, n)
	for i, id := range ids {
		pos[id] = i
	}
	adj := make([][]int, n)
	for i, id := range ids {
		for _, s := range g.Successors(id) {
			adj[i] = append(adj[i], pos[s])
		}
	}

	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var (
		stack   []int
		frames  []tarjanFrame
		counter int
		comps   [][]string
	)

	visit := func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		frames = append(frames, tarjanFrame{v: v})
	}

	for root := 0; root < n; root++ {
		if index[root] != -1 {
			continue
		}
		visit(root)

		for len(frames) > 0 {
			top := len(frames) - 1
			v := frames[top].v
			if frames[top].next < len(adj[v]) {
				w := adj[v][frames[top].next]
				frames[top].next++
				if index[w] == -1 {
					visit(w)
				} else if onStack[w] && index[w] < low[v] {
					low[v] = index[w]
				}
				continue
			}

			frames = frames[:top]
			if top > 0 {
				parent := frames[top-1].v
				if low[v] < low[parent] {
					low[parent] = low[v]
				}
			}

			if low[v] == index[v] {
				var comp []string
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp = append(comp, ids[w])
					if w == v {
						break
					}
				}
				sort.Strings(comp)
				comps = append(comps, comp)
			}
		}
	}

	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// FindCycles returns the strongly connected components that contain a
// cycle: every component with more than one member, plus single documents
// that reference themselves.
func FindCycles(g *Graph) [][]string {
	var cycles [][]string
	for _, comp := range StronglyConnectedComponents(g) {
		if len(comp) > 1 || g.HasSelfLoop(comp[0]) {
			cycles = append(cycles, comp)
		}
	}
	return cycles
}
