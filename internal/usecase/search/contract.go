package search

import (
	"context"

	"github.com/kailas-cloud/semseo/internal/domain"
	"github.com/kailas-cloud/semseo/internal/domain/search/result"
)

// Repository defines the storage contract for page search.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, topK int) ([]result.Hit, error)
	SearchBM25(ctx context.Context, query string, topK int) ([]result.Hit, error)
	SupportsTextSearch(ctx context.Context) bool
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
