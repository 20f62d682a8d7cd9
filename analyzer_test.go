package hgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzerTopographyAndConnectivity(t *testing.T) {
	v := [][]float32{{1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {2, 1}}
	h, err := BuildIndex(v, Params{M: 2, RMid: 0.5, RTop: 1, Radius: 1.0, CMax: 3, Seed: 42})
	require.NoError(t, err)

	a := &Analyzer{Handle: h}

	topo := a.Topography()
	require.Equal(t, 6, topo[0])
	require.LessOrEqual(t, topo[2], topo[1])
	require.LessOrEqual(t, topo[1], topo[0])

	conn := a.HGraphConnectivity()
	for layer := 0; layer < 3; layer++ {
		if topo[layer] > 0 {
			require.GreaterOrEqual(t, conn[layer], float64(h.params.M))
		}
	}

	require.Greater(t, a.RGraphConnectivity(), 0.0)
}
