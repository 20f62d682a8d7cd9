package hgraph

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/tfmv/hgraph/internal/csr"
	"github.com/tfmv/hgraph/internal/vecmath"
)

// hgraphIndex holds the three-layer proximity graph: one CSR adjacency per
// layer (sized over the full vertex set, but populated only for the layer's
// members) plus the fixed entry vertex in L2.
type hgraphIndex struct {
	layers [3]*csr.Graph // index 0 => L0, 1 => L1, 2 => L2
	entry  int32
}

// buildHGraph constructs the three layer adjacencies per §4.C and picks a
// random entry vertex from L2, per the "random under fixed seed" decision
// recorded in DESIGN.md.
func buildHGraph(rows [][]float32, n int, ls *layerSet, m int, rng *rand.Rand) (*hgraphIndex, error) {
	l0g, err := buildLayerAdjacency(rows, n, ls.l0, m)
	if err != nil {
		return nil, err
	}
	l1g, err := buildLayerAdjacency(rows, n, ls.l1, m)
	if err != nil {
		return nil, err
	}
	l2g, err := buildLayerAdjacency(rows, n, ls.l2, m)
	if err != nil {
		return nil, err
	}

	entry := ls.l2[rng.Intn(len(ls.l2))]

	return &hgraphIndex{
		layers: [3]*csr.Graph{l0g, l1g, l2g},
		entry:  entry,
	}, nil
}

// buildLayerAdjacency builds a single layer's symmetric M-nearest CSR
// adjacency, per §4.C. The outer loop over layerVerts is partitioned across
// a worker pool; each worker writes only into its own slice of the
// per-vertex result buffer, and the final merge into the CSR builder runs
// single-threaded in ascending local-index order, so the result is
// deterministic for a fixed layer membership regardless of worker count.
func buildLayerAdjacency(rows [][]float32, n int, layerVerts []int32, m int) (*csr.Graph, error) {
	ln := len(layerVerts)
	if ln < 2 {
		return nil, ErrLayerTooSmall
	}

	localVecs := make([][]float32, ln)
	for i, gv := range layerVerts {
		localVecs[i] = rows[gv]
	}

	topM := make([][]int32, ln)

	numWorkers := runtime.NumCPU()
	if numWorkers > ln {
		numWorkers = ln
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	chunk := (ln + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunk
		end := start + chunk
		if end > ln {
			end = ln
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			sims := make([]float32, ln)
			for i := start; i < end; i++ {
				for j := 0; j < ln; j++ {
					sims[j] = vecmath.CosSim(localVecs[i], localVecs[j])
				}
				idx := vecmath.TopMIndices(sims, m, i)
				out := make([]int32, len(idx))
				for k, v := range idx {
					out[k] = int32(v)
				}
				topM[i] = out
			}
		}(start, end)
	}
	wg.Wait()

	b := csr.NewBuilder(n)
	for i := 0; i < ln; i++ {
		gi := layerVerts[i]
		for _, lj := range topM[i] {
			gj := layerVerts[lj]
			b.AddEdge(gi, gj)
			b.AddEdge(gj, gi)
		}
	}

	return b.Build(), nil
}

// hgraphLog is the per-layer traversal log, indexed 0=L0, 1=L1, 2=L2,
// matching the fixed-size-array design note in §9 (no dynamic dict keyed by
// layer index is needed since there are exactly three layers).
type hgraphLog [3][]int32

// search runs the greedy best-first descent of §4.D from h.entry
// through L2 -> L1 -> L0, returning the final vertex and the traversal log.
// budget, if non-nil, caps the total number of vertex visits (entries
// appended to the log across all three layers); on exhaustion the walk
// stops early and ErrBudgetExhausted is returned alongside the best vertex
// reached so far.
func (h *hgraphIndex) search(rows [][]float32, q []float32, budget *int) (int32, hgraphLog, int32, error) {
	if h == nil || h.layers[2] == nil {
		return 0, hgraphLog{}, 0, ErrEmptyGraph
	}

	var log hgraphLog
	current := h.entry

	for _, layerIdx := range [3]int{2, 1, 0} {
		graph := h.layers[layerIdx]
		log[layerIdx] = []int32{current}
		if budget != nil {
			if *budget <= 0 {
				return current, log, h.entry, ErrBudgetExhausted
			}
			*budget--
		}

		for {
			dCur := vecmath.CosDist(q, rows[current])
			improved := false

			for _, nbr := range graph.Neighbors(current) {
				dNbr := vecmath.CosDist(q, rows[nbr])
				if dNbr < dCur {
					current = nbr
					log[layerIdx] = append(log[layerIdx], current)
					improved = true
					if budget != nil {
						if *budget <= 0 {
							return current, log, h.entry, ErrBudgetExhausted
						}
						*budget--
					}
					break
				}
			}

			if !improved {
				break
			}
		}
	}

	return current, log, h.entry, nil
}

// neighbors returns the adjacency of vertex v in the given layer (0, 1, 2).
func (h *hgraphIndex) neighbors(layer int, v int32) []int32 {
	if h == nil || layer < 0 || layer > 2 || h.layers[layer] == nil {
		return nil
	}
	return h.layers[layer].Neighbors(v)
}
