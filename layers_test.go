package hgraph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildLayersContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ls, err := buildLayers(100, 0.1, 0.1, rng)
	require.NoError(t, err)

	require.Len(t, ls.l0, 100)
	require.GreaterOrEqual(t, len(ls.l1), 1)
	require.GreaterOrEqual(t, len(ls.l2), 1)
	require.LessOrEqual(t, len(ls.l2), len(ls.l1))
	require.LessOrEqual(t, len(ls.l1), len(ls.l0))

	l1set := make(map[int32]bool, len(ls.l1))
	for _, v := range ls.l1 {
		l1set[v] = true
	}
	for _, v := range ls.l2 {
		require.True(t, l1set[v], "L2 must be a subset of L1")
	}
}

func TestBuildLayersSmallNFallsBackToBoth(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ls, err := buildLayers(2, 1, 1, rng)
	require.NoError(t, err)
	require.ElementsMatch(t, []int32{0, 1}, ls.l0)
	require.ElementsMatch(t, []int32{0, 1}, ls.l1)
	require.ElementsMatch(t, []int32{0, 1}, ls.l2)
}

func TestBuildLayersTinyRTopStillYieldsOneVertex(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ls, err := buildLayers(1000, 0.1, 0.0001, rng)
	require.NoError(t, err)
	require.Len(t, ls.l2, 1)
}

func TestLayerOf(t *testing.T) {
	ls := &layerSet{
		l0: []int32{0, 1, 2, 3},
		l1: []int32{1, 2},
		l2: []int32{2},
	}
	require.Equal(t, 2, ls.layerOf(2))
	require.Equal(t, 1, ls.layerOf(1))
	require.Equal(t, 0, ls.layerOf(0))
	require.Equal(t, 0, ls.layerOf(3))
}
