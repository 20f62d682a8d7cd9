package hgraph

import (
	"runtime"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/tfmv/hgraph/internal/csr"
	"github.com/tfmv/hgraph/internal/vecmath"
)

// rgraphIndex holds the radius-augmented companion graph built over L0.
type rgraphIndex struct {
	graph *csr.Graph
}

// buildRGraph constructs the radius-thresholded symmetric adjacency of
// §4.E. For each vertex it keeps at most cMax direct neighbors (those
// within cosine distance radius, ordered by descending similarity); the
// final CSR may show a vertex with a larger total degree once back-edges
// from other vertices' selections are merged in.
//
// As with the HGraph builder, the outer loop is partitioned across a
// worker pool; each worker only writes its own slice of the per-vertex
// candidate-list buffer, and the CSR merge runs single-threaded afterward,
// so the result is deterministic regardless of worker count.
func buildRGraph(rows [][]float32, n int, radius float32, cMax int) (*rgraphIndex, error) {
	direct := make([][]int32, n)

	numWorkers := runtime.NumCPU()
	if numWorkers > n {
		numWorkers = n
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	chunk := (n + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				direct[i] = radiusNeighbors(rows, i, n, radius, cMax)
			}
		}(start, end)
	}
	wg.Wait()

	anyNeighbors := false
	b := csr.NewBuilder(n)
	for i := 0; i < n; i++ {
		if len(direct[i]) > 0 {
			anyNeighbors = true
		}
		for _, j := range direct[i] {
			b.AddEdge(int32(i), j)
			b.AddEdge(j, int32(i))
		}
	}
	if !anyNeighbors {
		return nil, ErrNoNeighborsWithinRadius
	}

	return &rgraphIndex{graph: b.Build()}, nil
}

// radiusNeighbors computes vertex i's direct out-list: every vertex within
// cosine distance radius, sorted by descending similarity and truncated to
// cMax. Ties in similarity are broken by ascending vertex id, folded
// directly into the comparator so the ordering is total and a plain sort
// (not a stability guarantee) is enough.
func radiusNeighbors(rows [][]float32, i, n int, radius float32, cMax int) []int32 {
	type cand struct {
		id  int32
		sim float32
	}
	cands := make([]cand, 0, n/8+1)
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		sim := vecmath.CosSim(rows[i], rows[j])
		if 1-sim <= radius {
			cands = append(cands, cand{id: int32(j), sim: sim})
		}
	}

	slices.SortFunc(cands, func(a, b cand) int {
		if a.sim != b.sim {
			if a.sim > b.sim {
				return -1
			}
			return 1
		}
		return int(a.id - b.id)
	})

	if len(cands) > cMax {
		cands = cands[:cMax]
	}

	out := make([]int32, len(cands))
	for k, c := range cands {
		out[k] = c.id
	}
	return out
}

// search runs the best-improvement 2-hop greedy walk of §4.F starting at s.
// budget, if non-nil, caps the total number of vertex visits; on
// exhaustion the walk stops early and ErrBudgetExhausted is returned
// alongside the best vertex reached so far.
func (r *rgraphIndex) search(rows [][]float32, q []float32, s int32, budget *int) (int32, []int32, int32, error) {
	if r == nil || r.graph == nil {
		return 0, nil, 0, ErrEmptyGraph
	}

	n := r.graph.N()
	visited := make([]bool, n)
	visited[s] = true
	path := []int32{s}
	current := s

	if budget != nil {
		if *budget <= 0 {
			return current, path, s, ErrBudgetExhausted
		}
		*budget--
	}

	expandSet := make([]bool, n)

	for {
		for i := range expandSet {
			expandSet[i] = false
		}
		for _, nbr := range r.graph.Neighbors(current) {
			expandSet[nbr] = true
		}
		for _, nbr := range r.graph.Neighbors(current) {
			for _, nbr2 := range r.graph.Neighbors(nbr) {
				expandSet[nbr2] = true
			}
		}

		best := current
		bestDist := vecmath.CosDist(q, rows[current])

		for v := 0; v < n; v++ {
			if !expandSet[v] || visited[v] {
				continue
			}
			d := vecmath.CosDist(q, rows[v])
			if d < bestDist {
				bestDist = d
				best = int32(v)
			}
		}

		if best == current {
			break
		}

		current = best
		path = append(path, current)
		visited[current] = true

		if budget != nil {
			if *budget <= 0 {
				return current, path, s, ErrBudgetExhausted
			}
			*budget--
		}
	}

	return current, path, s, nil
}

// neighbors returns vertex v's direct RGraph adjacency (sorted ascending).
func (r *rgraphIndex) neighbors(v int32) []int32 {
	if r == nil || r.graph == nil {
		return nil
	}
	return r.graph.Neighbors(v)
}
