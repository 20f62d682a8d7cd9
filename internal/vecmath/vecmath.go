// Package vecmath implements the vector kernel shared by the HGraph and
// RGraph builders and searchers: normalization, cosine similarity/distance,
// and partial top-M selection over a similarity row.
//
// All arithmetic is float32 to match the corpus's audience (embedding
// vectors, typically produced by a neural encoder) and uses the same
// accumulation order on build and query so that traversals are reproducible
// under a fixed seed, per the numerics note in the vector kernel contract.
package vecmath

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/viterin/partial"
	"github.com/viterin/vek/vek32"
)

// ErrZeroVector is returned by Normalize/NormalizeRows when a vector's L2
// norm falls below Epsilon.
var ErrZeroVector = errors.New("vecmath: zero (or near-zero) vector")

// Epsilon is the minimum L2 norm considered non-zero.
const Epsilon = 1e-12

// Normalize returns v scaled to unit L2 norm. v is not modified.
func Normalize(v []float32) ([]float32, error) {
	norm := math32.Sqrt(vek32.Dot(v, v))
	if norm < Epsilon {
		return nil, ErrZeroVector
	}
	out := make([]float32, len(v))
	inv := 1 / norm
	for i, x := range v {
		out[i] = x * inv
	}
	return out, nil
}

// NormalizeRows row-normalizes m in place. It fails fast on the first
// zero-norm row, wrapping ErrZeroVector with the offending row index.
func NormalizeRows(m [][]float32) error {
	for i := range m {
		row, err := Normalize(m[i])
		if err != nil {
			return errRow(i, err)
		}
		m[i] = row
	}
	return nil
}

func errRow(i int, err error) error {
	return &rowError{row: i, err: err}
}

type rowError struct {
	row int
	err error
}

func (e *rowError) Error() string {
	return "vecmath: row " + itoa(e.row) + ": " + e.err.Error()
}

func (e *rowError) Unwrap() error { return e.err }

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// CosSim returns the cosine similarity of a and b, which must already be
// unit-normalized. It is a plain dot product in that case.
func CosSim(a, b []float32) float32 {
	return vek32.Dot(a, b)
}

// CosDist returns the cosine distance of a and b, which must already be
// unit-normalized: 1 - CosSim(a, b).
func CosDist(a, b []float32) float32 {
	return 1 - CosSim(a, b)
}

// TopMIndices returns the indices of the m largest values in sims, with
// self excluded. Ties are broken in favor of the smaller index. The
// returned slice is ordered by descending value, then ascending index.
//
// It uses partial.ArgPartition (an introselect-style partial sort) to avoid
// fully sorting sims, then resolves ties within the selected boundary itself
// since argpartition alone does not guarantee a deterministic tie order.
func TopMIndices(sims []float32, m int, self int) []int {
	if m <= 0 || len(sims) == 0 {
		return nil
	}

	work := make([]float32, len(sims))
	copy(work, sims)
	if self >= 0 && self < len(work) {
		work[self] = math32.Inf(-1)
	}

	k := m
	if k > len(work) {
		k = len(work)
	}

	idx := partial.ArgPartition(work, k)
	candidates := idx[:k]

	// Stable, deterministic ordering: descending similarity, then
	// ascending vertex id on exact ties.
	sorted := make([]int, len(candidates))
	copy(sorted, candidates)
	insertionSortByScoreThenID(sorted, work)

	return sorted
}

// insertionSortByScoreThenID sorts small index slices (bounded by M) by
// descending score[idx], breaking ties by ascending idx. Insertion sort is
// appropriate because M is small (tens, not thousands).
func insertionSortByScoreThenID(idx []int, score []float32) {
	for i := 1; i < len(idx); i++ {
		v := idx[i]
		j := i - 1
		for j >= 0 && less(v, idx[j], score) {
			idx[j+1] = idx[j]
			j--
		}
		idx[j+1] = v
	}
}

func less(a, b int, score []float32) bool {
	if score[a] != score[b] {
		return score[a] > score[b]
	}
	return a < b
}
