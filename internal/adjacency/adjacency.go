// Package adjacency implements the integer-indexed dependency structure
// that backs a Graph: cycle detection with witness-path reconstruction and
// Kahn's-algorithm topological sort. Nodes are referred to purely by
// position, letting the rest of the scheduler treat dependency lookups as
// cache-friendly slice indexing rather than map lookups.
package adjacency

import "fmt"

// List is a dependency adjacency list: Deps[i] holds the indices of the
// nodes that node i depends on.
type List struct {
	Deps [][]int
}

// New builds a List from a per-node dependency-index slice.
func New(deps [][]int) List { return List{Deps: deps} }

// CycleError reports a witnessed cycle as the sequence of node indices
// that form it, starting and ending at the same index.
type CycleError struct{ Path []int }

func (e *CycleError) Error() string { return fmt.Sprintf("cycle detected: %v", e.Path) }

// color values for the three-state DFS cycle search.
type color uint8

const (
	white color = iota // unvisited
	gray               // on the current DFS stack
	black              // fully explored, known acyclic
)

// FindCycle performs a depth-first search with three-colour marking over
// the adjacency list, returning the first cycle it discovers as a witness
// path that starts at the ancestor the back edge closes on, runs through
// the child and its DFS parents, and ends at that ancestor again. It reports
// ok=false if the graph is acyclic.
func (l List) FindCycle() (path []int, ok bool) {
	n := len(l.Deps)
	colors := make([]color, n)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}

	var dfs func(int) []int
	dfs = func(i int) []int {
		colors[i] = gray
		for _, dep := range l.Deps[i] {
			switch colors[dep] {
			case gray:
				// Back edge: dep is an ancestor of i. Walk parent pointers
				// from i back to dep to reconstruct the cycle.
				cycle := []int{dep, i}
				p := i
				for p != dep {
					p = parent[p]
					cycle = append(cycle, p)
				}
				return cycle
			case white:
				parent[dep] = i
				if cycle := dfs(dep); cycle != nil {
					return cycle
				}
			}
		}
		colors[i] = black
		return nil
	}

	for i := 0; i < n; i++ {
		if colors[i] == white {
			if cycle := dfs(i); cycle != nil {
				return cycle, true
			}
		}
	}
	return nil, false
}

// TopologicalOrder computes an execution order respecting every dependency
// edge, using Kahn's algorithm. It assumes the list has already been
// verified acyclic by FindCycle; behavior on a cyclic list is to return a
// short, incomplete order.
func (l List) TopologicalOrder() []int {
	n := len(l.Deps)

	// remaining[i] is the number of i's dependencies not yet emitted, since
	// Deps[i] lists what i depends on; dependents is the reverse adjacency
	// used to drive Kahn's algorithm from nodes with zero outstanding
	// dependencies.
	remaining := make([]int, n)
	dependents := make([][]int, n)
	for i, deps := range l.Deps {
		remaining[i] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], i)
		}
	}

	queue := make([]int, 0, n)
	for i, r := range remaining {
		if r == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, dependent := range dependents[i] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	return order
}
