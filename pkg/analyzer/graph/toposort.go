package graph

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrCycle is matched by every CycleError.
var ErrCycle = errors.New("graph contains a cycle")

// CycleError reports nodes that could not be ordered because they lie on or
// behind a cycle. Partial holds the order computed before the sort stalled.
type CycleError struct {
	Nodes   []string
	Partial []string
}

func (e *CycleError) Error() string {
	const show = 5
	names := e.Nodes
	suffix := ""
	if len(names) > show {
		names = names[:show]
		suffix = ", ..."
	}
	return fmt.Sprintf("graph contains a cycle: %d documents cannot be ordered (%s%s)",
		len(e.Nodes), strings.Join(names, ", "), suffix)
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// idHeap is a min-heap of identifiers.
type idHeap []string

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(string)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopologicalSort orders nodes so that for every edge (u, v), u precedes v.
// Among nodes that are ready at the same time the smallest identifier comes
// first, which makes the order unique for a given graph. If the graph has a
// cycle the returned error is a *CycleError and the slice holds the partial
// order.
func TopologicalSort(g *Graph) ([]string, error) {
	inDegree := make(map[string]int, g.NodeCount())
	ready := &idHeap{}
	for _, id := range g.Nodes() {
		inDegree[id] = g.InDegree(id)
		if inDegree[id] == 0 {
			*ready = append(*ready, id)
		}
	}
	heap.Init(ready)

	order := make([]string, 0, g.NodeCount())
	for ready.Len() > 0 {
		id := heap.Pop(ready).(string)
		order = append(order, id)
		for _, next := range g.Successors(id) {
			inDegree[next]--
			if inDegree[next] == 0 {
				heap.Push(ready, next)
			}
		}
	}

	if len(order) == g.NodeCount() {
		return order, nil
	}

	var stuck []string
	for id, d := range inDegree {
		if d > 0 {
			stuck = append(stuck, id)
		}
	}
	sort.Strings(stuck)
	return order, &CycleError{Nodes: stuck, Partial: order}
}
