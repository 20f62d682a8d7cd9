// Package csr implements a compressed-sparse-row adjacency container: a
// read-only, cache-friendly mapping from vertex to its sorted neighbor list,
// built once from a mutable per-vertex set representation.
package csr

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Graph is an immutable CSR adjacency over vertices [0, N).
type Graph struct {
	offsets   []int32 // len N+1
	neighbors []int32
}

// Builder accumulates a deduplicated neighbor set per vertex before Build
// compacts it into CSR form. Use a vector-of-sets during construction so
// that duplicate edges (e.g. from symmetric back-edge insertion) collapse
// before the final compaction.
type Builder struct {
	n    int
	sets []map[int32]struct{}
}

// NewBuilder returns a Builder for n vertices, all with empty adjacency.
func NewBuilder(n int) *Builder {
	return &Builder{n: n, sets: make([]map[int32]struct{}, n)}
}

// AddEdge inserts the directed edge u->v. Callers insert both directions to
// get symmetric adjacency. Self-loops are silently ignored.
func (b *Builder) AddEdge(u, v int32) {
	if u == v {
		return
	}
	if b.sets[u] == nil {
		b.sets[u] = make(map[int32]struct{})
	}
	b.sets[u][v] = struct{}{}
}

// Degree reports the current (pre-Build) out-degree of vertex v.
func (b *Builder) Degree(v int32) int {
	return len(b.sets[v])
}

// Build compacts the accumulated edge sets into a CSR graph. Neighbor lists
// are sorted ascending so that iteration is deterministic, matching the
// ascending-vertex-id iteration order the searchers require.
func (b *Builder) Build() *Graph {
	g := &Graph{
		offsets: make([]int32, b.n+1),
	}

	total := 0
	for _, s := range b.sets {
		total += len(s)
	}
	g.neighbors = make([]int32, 0, total)

	for v := 0; v < b.n; v++ {
		g.offsets[v] = int32(len(g.neighbors))
		row := maps.Keys(b.sets[v])
		slices.Sort(row)
		g.neighbors = append(g.neighbors, row...)
	}
	g.offsets[b.n] = int32(len(g.neighbors))

	return g
}

// Neighbors returns the sorted neighbor list of v. The returned slice is a
// view into the graph's backing array and must not be modified.
func (g *Graph) Neighbors(v int32) []int32 {
	return g.neighbors[g.offsets[v]:g.offsets[v+1]]
}

// Degree returns the out-degree of v.
func (g *Graph) Degree(v int32) int {
	return int(g.offsets[v+1] - g.offsets[v])
}

// N returns the number of vertices the graph was built over.
func (g *Graph) N() int {
	return len(g.offsets) - 1
}
