package hgraph

import "errors"

// Sentinel errors for build_index and search, per the error taxonomy: check
// with errors.Is, never by comparing strings.
var (
	// ErrZeroVector indicates a corpus row's L2 norm fell below epsilon.
	ErrZeroVector = errors.New("hgraph: zero (or near-zero) vector")

	// ErrZeroQuery indicates the query vector's L2 norm fell below epsilon.
	ErrZeroQuery = errors.New("hgraph: zero (or near-zero) query vector")

	// ErrDimensionMismatch indicates a row or query vector's length didn't
	// match the index's configured dimension.
	ErrDimensionMismatch = errors.New("hgraph: dimension mismatch")

	// ErrEmptyLayer indicates layer sampling produced a zero-size population.
	ErrEmptyLayer = errors.New("hgraph: layer sampling produced an empty layer")

	// ErrLayerTooSmall indicates a layer has fewer than two vertices, so no
	// M-nearest adjacency can be built for it.
	ErrLayerTooSmall = errors.New("hgraph: layer has fewer than 2 vertices")

	// ErrEmptyGraph indicates a search was issued against an index that was
	// never built (or built with zero vertices).
	ErrEmptyGraph = errors.New("hgraph: index has no graph to search")

	// ErrNoNeighborsWithinRadius indicates every vertex's radius-neighbor set
	// in the RGraph builder came back empty.
	ErrNoNeighborsWithinRadius = errors.New("hgraph: no vertex has neighbors within radius")

	// ErrBudgetExhausted indicates a step-budgeted search ran out of
	// visits before converging. The caller still receives the best vertex
	// reached so far.
	ErrBudgetExhausted = errors.New("hgraph: step budget exhausted")

	// ErrInvalidParams indicates a build_index parameter was out of its
	// documented domain (e.g. M <= 0, radius outside (0,2]).
	ErrInvalidParams = errors.New("hgraph: invalid build parameters")
)
