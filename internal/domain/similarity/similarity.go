// Package similarity implements cosine similarity, pairwise similarity
// matrices and query-to-content gap scoring over embedding vectors.
//
// All functions are pure and safe for concurrent use.
package similarity

import (
	"math"

	"github.com/kailas-cloud/semseo/internal/domain"
)

// Vector is a dense embedding. Only vectors of equal length can be compared.
type Vector []float64

// FromFloat32 widens an embedding returned by a provider.
func FromFloat32(v []float32) Vector {
	out := make(Vector, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

// Query is a query text paired with its embedding.
type Query struct {
	Text   string
	Vector Vector
}

// GapResult is the best similarity a query reaches against a content set.
// Low values mean no content addresses the query.
type GapResult struct {
	Query         string
	MaxSimilarity float64
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero-magnitude vector yields 0.
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.NewDimensionMismatch("cosine", len(a), len(b))
	}
	return cosine(a, b), nil
}

// cosine assumes len(a) == len(b). Each vector is scaled by its largest
// absolute component first, so the squared norms stay finite and nonzero
// for any finite, nonzero input.
func cosine(a, b Vector) float64 {
	sa, sb := maxAbs(a), maxAbs(b)
	if sa == 0 || sb == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := a[i]/sa, b[i]/sb
		dot += x * y
		na += x * x
		nb += y * y
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push |s| slightly past 1
	return math.Max(-1, math.Min(1, s))
}

func maxAbs(v Vector) float64 {
	var m float64
	for _, x := range v {
		if ax := math.Abs(x); ax > m {
			m = ax
		}
	}
	return m
}

// PairwiseMatrix returns the symmetric N x N matrix of cosine similarities.
// Each unordered pair is computed once.
func PairwiseMatrix(vectors []Vector) ([][]float64, error) {
	n := len(vectors)
	if n == 0 {
		return [][]float64{}, nil
	}
	dim := len(vectors[0])
	for _, v := range vectors[1:] {
		if len(v) != dim {
			return nil, domain.NewDimensionMismatch("pairwise matrix", dim, len(v))
		}
	}

	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s := cosine(vectors[i], vectors[j])
			mat[i][j] = s
			mat[j][i] = s
		}
	}
	return mat, nil
}

// GapScores returns, for each query in input order, its maximum similarity
// against contents. An empty content set scores every query 0.
func GapScores(queries []Query, contents []Vector) ([]GapResult, error) {
	out := make([]GapResult, len(queries))
	for i, q := range queries {
		out[i] = GapResult{Query: q.Text}
		if len(contents) == 0 {
			continue
		}

		best := math.Inf(-1)
		for _, c := range contents {
			s, err := Cosine(q.Vector, c)
			if err != nil {
				return nil, err
			}
			if s > best {
				best = s
			}
		}
		out[i].MaxSimilarity = best
	}
	return out, nil
}
