package hgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tfmv/hgraph/internal/vecmath"
)

func TestBuildRGraphSymmetricCapped(t *testing.T) {
	rows := mustNormalizeAll(t, square4())
	r, err := buildRGraph(rows, 4, 0.5, 2)
	require.NoError(t, err)

	for v := int32(0); v < 4; v++ {
		for _, nbr := range r.neighbors(v) {
			require.NotEqual(t, v, nbr)
			found := false
			for _, back := range r.neighbors(nbr) {
				if back == v {
					found = true
				}
			}
			require.True(t, found, "RGraph adjacency must be symmetric")
		}
	}
}

func TestBuildRGraphNoNeighborsWithinRadius(t *testing.T) {
	rows := mustNormalizeAll(t, square4())
	_, err := buildRGraph(rows, 4, 1e-9, 2)
	require.ErrorIs(t, err, ErrNoNeighborsWithinRadius)
}

func TestRGraphCMaxCap(t *testing.T) {
	rows := mustNormalizeAll(t, square4())
	r, err := buildRGraph(rows, 4, 2.0, 1)
	require.NoError(t, err)
	// direct selection itself is capped at 1; symmetric merges may raise
	// some vertex's total degree, but never past 2*cMax == 2.
	for v := int32(0); v < 4; v++ {
		require.LessOrEqual(t, len(r.neighbors(v)), 2)
	}
}

func TestRGraphSearchSharedEntryAndTermination(t *testing.T) {
	rows := mustNormalizeAll(t, square4())
	r, err := buildRGraph(rows, 4, 2.0, 3)
	require.NoError(t, err)

	q, _ := vecmath.Normalize([]float32{1, 0})
	best, path, start, err := r.search(rows, q, 2, nil)
	require.NoError(t, err)
	require.Equal(t, int32(2), start)
	require.Equal(t, int32(2), path[0])
	require.Equal(t, int32(0), best)
}

func TestRGraphSearchQueryEqualToStoredRow(t *testing.T) {
	rows := mustNormalizeAll(t, square4())
	r, err := buildRGraph(rows, 4, 2.0, 3)
	require.NoError(t, err)

	q := rows[1]
	best, _, _, err := r.search(rows, q, 0, nil)
	require.NoError(t, err)
	require.Equal(t, int32(1), best)
}

func TestRGraphSearchBudgetExhausted(t *testing.T) {
	rows := mustNormalizeAll(t, square4())
	r, err := buildRGraph(rows, 4, 2.0, 3)
	require.NoError(t, err)

	q, _ := vecmath.Normalize([]float32{1, 0})
	budget := 0
	_, _, _, err = r.search(rows, q, 2, &budget)
	require.ErrorIs(t, err, ErrBudgetExhausted)
}

func TestRGraphSearchEmptyGraph(t *testing.T) {
	r := &rgraphIndex{}
	_, _, _, err := r.search(nil, nil, 0, nil)
	require.ErrorIs(t, err, ErrEmptyGraph)
}
