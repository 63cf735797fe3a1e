package semseo

import (
	"github.com/kailas-cloud/semseo/internal/domain"
	"github.com/kailas-cloud/semseo/internal/domain/fusion"
	"github.com/kailas-cloud/semseo/internal/domain/similarity"
)

// Core types.
type (
	// Vector is a dense embedding.
	Vector = similarity.Vector
	// Query is a query text paired with its embedding.
	Query = similarity.Query
	// GapResult is the best similarity a query reaches against a content set.
	GapResult = similarity.GapResult
	// ScoredDocument is one entry of a ranked list.
	ScoredDocument = fusion.ScoredDocument
	// FusionStrategy selects weighted or reciprocal rank fusion.
	FusionStrategy = fusion.Strategy
	// ShapeError describes a length mismatch or malformed entry.
	ShapeError = domain.ShapeError
	// ValueError describes an out-of-range numeric input.
	ValueError = domain.ValueError
)

// Fusion strategies.
const (
	Weighted    = fusion.Weighted
	Reciprocal  = fusion.Reciprocal
	DefaultRRFK = fusion.DefaultRRFK
)

// Error kinds, matched with errors.Is.
var (
	ErrShape        = domain.ErrShape
	ErrInvalidValue = domain.ErrInvalidValue
)

// FromFloat32 widens an embedding returned by a provider.
func FromFloat32(v []float32) Vector { return similarity.FromFloat32(v) }

// CosineSimilarity returns the cosine similarity of a and b in [-1, 1].
func CosineSimilarity(a, b Vector) (float64, error) {
	return similarity.Cosine(a, b) //nolint:wrapcheck // re-export
}

// PairwiseSimilarityMatrix returns the symmetric cosine matrix of vectors.
func PairwiseSimilarityMatrix(vectors []Vector) ([][]float64, error) {
	return similarity.PairwiseMatrix(vectors) //nolint:wrapcheck // re-export
}

// GapScores returns, per query, the best cosine similarity reached against contents.
func GapScores(queries []Query, contents []Vector) ([]GapResult, error) {
	return similarity.GapScores(queries, contents) //nolint:wrapcheck // re-export
}

// Fuse merges two ranked lists by weighted score sum.
func Fuse(a, b []ScoredDocument, weightA, weightB float64, topN int) ([]ScoredDocument, error) {
	return fusion.Fuse(a, b, weightA, weightB, topN) //nolint:wrapcheck // re-export
}

// FuseRRF merges two ranked lists by weighted reciprocal rank. Input order
// is the rank; k is usually DefaultRRFK.
func FuseRRF(a, b []ScoredDocument, weightA, weightB, k float64, topN int) ([]ScoredDocument, error) {
	return fusion.RRF(a, b, weightA, weightB, k, topN) //nolint:wrapcheck // re-export
}
