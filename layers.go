package hgraph

import (
	"fmt"
	"math/rand"

	"golang.org/x/exp/slices"
)

// layerSet holds the three nested vertex populations L0 ⊇ L1 ⊇ L2.
// Membership is fixed at build time; ordering within a layer carries no
// semantic meaning but is kept sorted for determinism.
type layerSet struct {
	l0 []int32
	l1 []int32
	l2 []int32
}

// buildLayers samples L1 and L2 from N vertices using rng, per §4.B.
// L0 is always [0, n). L1 is sampled uniformly without replacement from L0,
// L2 uniformly without replacement from L1.
func buildLayers(n int, rMid, rTop float64, rng *rand.Rand) (*layerSet, error) {
	if n <= 0 {
		return nil, fmt.Errorf("hgraph: n must be positive: %w", ErrInvalidParams)
	}

	l0 := make([]int32, n)
	for i := range l0 {
		l0[i] = int32(i)
	}

	l1Size := maxInt(1, roundInt(float64(n)*rMid))
	l1 := sampleWithoutReplacement(rng, l0, l1Size)
	if len(l1) == 0 {
		return nil, ErrEmptyLayer
	}

	l2Size := maxInt(1, roundInt(float64(len(l1))*rTop))
	l2 := sampleWithoutReplacement(rng, l1, l2Size)
	if len(l2) == 0 {
		return nil, ErrEmptyLayer
	}

	slices.Sort(l1)
	slices.Sort(l2)

	return &layerSet{l0: l0, l1: l1, l2: l2}, nil
}

// sampleWithoutReplacement returns min(k, len(pop)) distinct elements of pop
// chosen uniformly at random, using a Fisher-Yates partial shuffle so the
// result is deterministic given rng's state.
func sampleWithoutReplacement(rng *rand.Rand, pop []int32, k int) []int32 {
	if k > len(pop) {
		k = len(pop)
	}
	cp := make([]int32, len(pop))
	copy(cp, pop)

	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}

	out := make([]int32, k)
	copy(out, cp[:k])
	return out
}

func roundInt(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// layerOf reports which of L0/L1/L2 a vertex belongs to, preferring the
// highest layer it appears in (since L2 ⊆ L1 ⊆ L0).
func (ls *layerSet) layerOf(v int32) int {
	if containsSorted(ls.l2, v) {
		return 2
	}
	if containsSorted(ls.l1, v) {
		return 1
	}
	return 0
}

func containsSorted(s []int32, v int32) bool {
	_, found := slices.BinarySearch(s, v)
	return found
}
