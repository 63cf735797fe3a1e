package analysis

import (
	"context"

	"github.com/kailas-cloud/semseo/internal/domain"
)

// Embedder vectorizes texts. Batch support is optional (see domain.EmbedAll).
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
