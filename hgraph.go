// Package hgraph implements an educational approximate-nearest-neighbor
// search engine over fixed-dimensional vectors, built from two
// complementary indexes: a layered proximity graph (HGraph, modeled on
// HNSW) and a radius-augmented companion graph (RGraph, modeled on
// ACORN-1). Both are read-only after construction; queries run a greedy
// graph walk and report their traversal path for visual inspection.
package hgraph

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/tfmv/hgraph/internal/vecmath"
)

// Params configures build_index. The zero value is not valid; use
// DefaultParams and override only the fields you need.
type Params struct {
	// M is the target out-degree for each HGraph layer.
	M int
	// RMid is the sampling ratio for L1 relative to L0, in (0, 1].
	RMid float64
	// RTop is the sampling ratio for L2 relative to L1, in (0, 1].
	RTop float64
	// Radius is the RGraph cosine-distance candidacy threshold, in (0, 2].
	Radius float32
	// CMax is the RGraph per-vertex direct out-degree cap.
	CMax int
	// Seed drives both layer sampling and entry-vertex selection.
	Seed int64
}

// DefaultParams mirrors the source's observed defaults.
var DefaultParams = Params{
	M:      10,
	RMid:   0.1,
	RTop:   0.1,
	Radius: 0.5,
	CMax:   20,
}

func (p Params) validate(n, d int) error {
	if n < 2 {
		return ErrInvalidParams
	}
	if d < 1 {
		return ErrInvalidParams
	}
	if p.M <= 0 {
		return ErrInvalidParams
	}
	if p.RMid <= 0 || p.RMid > 1 {
		return ErrInvalidParams
	}
	if p.RTop <= 0 || p.RTop > 1 {
		return ErrInvalidParams
	}
	if p.Radius <= 0 || p.Radius > 2 {
		return ErrInvalidParams
	}
	if p.CMax <= 0 {
		return ErrInvalidParams
	}
	return nil
}

// IndexHandle is the built, read-only pair of indexes plus the normalized
// vector store they share. Safe for concurrent use by any number of
// queries: nothing here is mutated after BuildIndex returns.
type IndexHandle struct {
	rows   [][]float32
	dim    int
	params Params

	layers *layerSet
	hgraph *hgraphIndex
	rgraph *rgraphIndex

	buildID uuid.UUID
}

// BuildIndex builds both indexes over the corpus v (an N x D matrix of
// row vectors), per §6 "build_index". v's rows are copied and
// row-normalized; the caller's slices are never retained or mutated.
func BuildIndex(v [][]float32, params Params) (*IndexHandle, error) {
	n := len(v)
	d := 0
	if n > 0 {
		d = len(v[0])
	}

	if err := params.validate(n, d); err != nil {
		return nil, err
	}

	rows := make([][]float32, n)
	for i, row := range v {
		if len(row) != d {
			return nil, ErrDimensionMismatch
		}
		cp := make([]float32, len(row))
		copy(cp, row)
		rows[i] = cp
	}
	if err := vecmath.NormalizeRows(rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrZeroVector, err)
	}

	rng := rand.New(rand.NewSource(params.Seed))

	ls, err := buildLayers(n, params.RMid, params.RTop, rng)
	if err != nil {
		return nil, err
	}

	hg, err := buildHGraph(rows, n, ls, params.M, rng)
	if err != nil {
		return nil, err
	}

	rg, err := buildRGraph(rows, n, params.Radius, params.CMax)
	if err != nil {
		return nil, err
	}

	return &IndexHandle{
		rows:    rows,
		dim:     d,
		params:  params,
		layers:  ls,
		hgraph:  hg,
		rgraph:  rg,
		buildID: uuid.New(),
	}, nil
}

// HGraphResult is the HGraph half of a QueryResult.
type HGraphResult struct {
	Best int32
	Log  hgraphLog
}

// RGraphResult is the RGraph half of a QueryResult.
type RGraphResult struct {
	Best int32
	Path []int32
}

// QueryResult is the structured traversal output of §6 "search": the
// shared entry vertex plus each index's best vertex and path.
type QueryResult struct {
	Entry  int32
	HGraph HGraphResult
	RGraph RGraphResult
}

// Search runs the query executor of §4.G: it normalizes q, runs the HGraph
// search from the index's fixed entry vertex, then runs the RGraph search
// starting from that same entry vertex.
func (h *IndexHandle) Search(q []float32) (QueryResult, error) {
	return h.searchBudgeted(q, nil)
}

// SearchWithBudget is Search with a cap on the total number of vertex
// visits across both searches combined, per §5 "Cancellation". When the
// budget is exhausted mid-walk, the corresponding half of the result holds
// the best vertex reached so far and ErrBudgetExhausted is returned.
func (h *IndexHandle) SearchWithBudget(q []float32, budget int) (QueryResult, error) {
	return h.searchBudgeted(q, &budget)
}

func (h *IndexHandle) searchBudgeted(qRaw []float32, budget *int) (QueryResult, error) {
	var result QueryResult

	if len(qRaw) != h.dim {
		return result, ErrDimensionMismatch
	}

	q, err := vecmath.Normalize(qRaw)
	if err != nil {
		return result, ErrZeroQuery
	}

	hBest, hLog, entry, hErr := h.hgraph.search(h.rows, q, budget)
	result.Entry = entry
	result.HGraph = HGraphResult{Best: hBest, Log: hLog}
	if hErr != nil && hErr != ErrBudgetExhausted {
		return result, hErr
	}

	rBest, rPath, _, rErr := h.rgraph.search(h.rows, q, entry, budget)
	result.RGraph = RGraphResult{Best: rBest, Path: rPath}

	if hErr == ErrBudgetExhausted || rErr == ErrBudgetExhausted {
		return result, ErrBudgetExhausted
	}
	if rErr != nil {
		return result, rErr
	}
	return result, nil
}

// Vertices returns N, the number of vertices in the index.
func (h *IndexHandle) Vertices() int {
	return len(h.rows)
}

// Dimension returns D, the vector dimensionality of the index.
func (h *IndexHandle) Dimension() int {
	return h.dim
}

// LayerOf reports which HGraph layer (0, 1, or 2) a vertex belongs to,
// preferring the highest layer it appears in.
func (h *IndexHandle) LayerOf(vertex int32) int {
	return h.layers.layerOf(vertex)
}

// Neighbors returns vertex v's HGraph adjacency in the given layer.
func (h *IndexHandle) Neighbors(layer int, vertex int32) []int32 {
	return h.hgraph.neighbors(layer, vertex)
}

// RGraphNeighbors returns vertex v's direct RGraph adjacency.
func (h *IndexHandle) RGraphNeighbors(vertex int32) []int32 {
	return h.rgraph.neighbors(vertex)
}

// EntryVertex returns the fixed HGraph/RGraph entry vertex.
func (h *IndexHandle) EntryVertex() int32 {
	return h.hgraph.entry
}

// BuildID returns a unique identifier stamped at build time, useful for a
// host's cache/persistence layer to tell two builds of the same params
// apart. The core itself attaches no wall-clock timestamp.
func (h *IndexHandle) BuildID() uuid.UUID {
	return h.buildID
}
