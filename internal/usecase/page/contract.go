package page

import (
	"context"

	"github.com/kailas-cloud/semseo/internal/domain"
	dompage "github.com/kailas-cloud/semseo/internal/domain/page"
)

// Repository defines the storage contract for pages.
type Repository interface {
	EnsureIndex(ctx context.Context) (created bool, err error)
	Upsert(ctx context.Context, p *dompage.Page) (created bool, err error)
	UpsertBatch(ctx context.Context, pages []*dompage.Page) (created []bool, err error)
	Get(ctx context.Context, id string) (dompage.Page, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// Embedder vectorizes page text. Batch support is optional (see domain.EmbedAll).
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
