package hgraph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func scenarioParams() Params {
	return Params{M: 1, RMid: 1, RTop: 1, Radius: 0.5, CMax: 2, Seed: 42}
}

func TestBuildIndexNormalizesRows(t *testing.T) {
	v := [][]float32{{3, 4}, {0, 5}, {1, 1}, {2, 2}}
	h, err := BuildIndex(v, scenarioParams())
	require.NoError(t, err)

	for _, row := range h.rows {
		norm := float64(0)
		for _, x := range row {
			norm += float64(x) * float64(x)
		}
		require.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
	}
}

func TestBuildIndexScenario1ExactMatch(t *testing.T) {
	v := [][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	h, err := BuildIndex(v, scenarioParams())
	require.NoError(t, err)

	res, err := h.Search([]float32{1, 0})
	require.NoError(t, err)
	require.Equal(t, int32(0), res.HGraph.Best)
	require.Equal(t, res.Entry, res.RGraph.Path[0])
}

func TestBuildIndexScenario2Tie(t *testing.T) {
	v := [][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	h, err := BuildIndex(v, scenarioParams())
	require.NoError(t, err)

	res, err := h.Search([]float32{0.7071, 0.7071})
	require.NoError(t, err)
	require.Contains(t, []int32{0, 1}, res.HGraph.Best)
}

func TestSearchTwiceIsByteIdentical(t *testing.T) {
	v := [][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}}
	h, err := BuildIndex(v, Params{M: 2, RMid: 1, RTop: 1, Radius: 1.0, CMax: 3, Seed: 42})
	require.NoError(t, err)

	q := []float32{0.5, 0.5}
	r1, err := h.Search(q)
	require.NoError(t, err)
	r2, err := h.Search(q)
	require.NoError(t, err)
	require.Equal(t, r1, r2)
}

func TestDeterminismAcrossIdenticalBuilds(t *testing.T) {
	v := make([][]float32, 50)
	for i := range v {
		v[i] = []float32{float32(i%7 + 1), float32((i*3)%11 + 1)}
	}
	p := DefaultParams
	p.Seed = 42

	h1, err := BuildIndex(v, p)
	require.NoError(t, err)
	h2, err := BuildIndex(v, p)
	require.NoError(t, err)

	require.Equal(t, h1.EntryVertex(), h2.EntryVertex())
	for layer := 0; layer < 3; layer++ {
		for vtx := int32(0); vtx < int32(len(v)); vtx++ {
			require.Equal(t, h1.Neighbors(layer, vtx), h2.Neighbors(layer, vtx))
		}
	}

	q := []float32{3, 5}
	r1, err := h1.Search(q)
	require.NoError(t, err)
	r2, err := h2.Search(q)
	require.NoError(t, err)
	require.Equal(t, r1, r2)
}

func TestSearchEntryStabilityAcrossQueries(t *testing.T) {
	v := [][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {2, 1}}
	h, err := BuildIndex(v, Params{M: 2, RMid: 1, RTop: 1, Radius: 1.0, CMax: 3, Seed: 42})
	require.NoError(t, err)

	r1, err := h.Search([]float32{1, 0})
	require.NoError(t, err)
	r2, err := h.Search([]float32{0, -1})
	require.NoError(t, err)
	require.Equal(t, r1.Entry, r2.Entry)
}

func TestSearchZeroQuery(t *testing.T) {
	v := [][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	h, err := BuildIndex(v, scenarioParams())
	require.NoError(t, err)

	_, err = h.Search([]float32{0, 0})
	require.ErrorIs(t, err, ErrZeroQuery)
}

func TestBuildIndexZeroVectorRow(t *testing.T) {
	v := [][]float32{{1, 0}, {0, 0}, {-1, 0}, {0, -1}}
	_, err := BuildIndex(v, scenarioParams())
	require.ErrorIs(t, err, ErrZeroVector)
}

func TestSearchDimensionMismatch(t *testing.T) {
	v := [][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	h, err := BuildIndex(v, scenarioParams())
	require.NoError(t, err)

	_, err = h.Search([]float32{1, 0, 0})
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBuildIndexRejectsTooFewVertices(t *testing.T) {
	_, err := BuildIndex([][]float32{{1}}, scenarioParams())
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestBuildIndexRejectsRowDimensionMismatch(t *testing.T) {
	v := [][]float32{{1, 0}, {0, 1, 2}}
	_, err := BuildIndex(v, scenarioParams())
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBuildIndexTwoByOneFallsBack(t *testing.T) {
	v := [][]float32{{1}, {-1}}
	h, err := BuildIndex(v, Params{M: 1, RMid: 1, RTop: 1, Radius: 2, CMax: 2, Seed: 1})
	require.NoError(t, err)
	require.Equal(t, []int32{1}, h.Neighbors(0, 0))
	require.Equal(t, []int32{0}, h.Neighbors(0, 1))
}

func TestBudgetExhaustedReturnsBestSoFar(t *testing.T) {
	v := [][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}}
	h, err := BuildIndex(v, Params{M: 2, RMid: 1, RTop: 1, Radius: 1.0, CMax: 3, Seed: 42})
	require.NoError(t, err)

	res, err := h.SearchWithBudget([]float32{1, 0}, 0)
	require.ErrorIs(t, err, ErrBudgetExhausted)
	require.Equal(t, res.Entry, res.HGraph.Best)
}

func TestVerticesAndDimension(t *testing.T) {
	v := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}}
	h, err := BuildIndex(v, Params{M: 1, RMid: 1, RTop: 1, Radius: 2, CMax: 2, Seed: 1})
	require.NoError(t, err)
	require.Equal(t, 4, h.Vertices())
	require.Equal(t, 3, h.Dimension())
}

func TestBuildIDUnique(t *testing.T) {
	v := [][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	h1, err := BuildIndex(v, scenarioParams())
	require.NoError(t, err)
	h2, err := BuildIndex(v, scenarioParams())
	require.NoError(t, err)
	require.NotEqual(t, h1.BuildID(), h2.BuildID())
}
