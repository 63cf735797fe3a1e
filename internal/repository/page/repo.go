// Package page stores pages as Redis hashes indexed for hybrid search.
package page

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/semseo/internal/db"
	"github.com/kailas-cloud/semseo/internal/domain"
	dompage "github.com/kailas-cloud/semseo/internal/domain/page"
)

// Hash field names. Fields prefixed with "__" are internal.
const (
	FieldTitle   = "title"
	FieldURL     = "url"
	FieldContent = "__content"
	FieldVector  = "__vector"
)

// store is the consumer interface for pages (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// IndexConfig shapes the page index.
type IndexConfig struct {
	KeyPrefix   string // namespace, e.g. "semseo:"
	Dimensions  int
	Algorithm   db.VectorAlgorithm
	M           int
	EFConstruct int
	TitleWeight float64
}

// Repo implements usecase/page.Repository.
type Repo struct {
	store store
	cfg   IndexConfig
}

// New creates a page repository.
func New(s store, cfg IndexConfig) *Repo {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = domain.KeyPrefix
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = db.VectorHNSW
	}
	return &Repo{store: s, cfg: cfg}
}

// IndexName returns the FT index name, "<prefix>pages:idx".
func (r *Repo) IndexName() string {
	return r.cfg.KeyPrefix + "pages:idx"
}

func (r *Repo) pagePrefix() string {
	return r.cfg.KeyPrefix + "page:"
}

func (r *Repo) key(id string) string {
	return r.pagePrefix() + id
}

// IDFromKey strips the page key prefix.
func (r *Repo) IDFromKey(key string) string {
	return strings.TrimPrefix(key, r.pagePrefix())
}

// Definition builds the FT.CREATE definition for the page index.
func (r *Repo) Definition() (*db.IndexDefinition, error) {
	b := db.NewIndex(r.IndexName()).
		Prefix(r.pagePrefix()).
		WeightedText(FieldTitle, r.cfg.TitleWeight).
		Text(FieldContent).
		Tag(FieldURL)

	switch r.cfg.Algorithm {
	case db.VectorFlat:
		b = b.VectorFlat(FieldVector, r.cfg.Dimensions, db.DistanceCosine)
	default:
		b = b.VectorHNSW(FieldVector, r.cfg.Dimensions, db.DistanceCosine, r.cfg.M, r.cfg.EFConstruct)
	}
	return b.Build()
}

// EnsureIndex creates the page index unless it exists. Returns true if created.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, r.IndexName())
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.IndexName(), err)
	}
	if exists {
		return false, nil
	}

	def, err := r.Definition()
	if err != nil {
		return false, fmt.Errorf("build index definition: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			// created concurrently by another instance
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return true, nil
}

// Upsert writes a page. Returns true if the page did not exist before.
func (r *Repo) Upsert(ctx context.Context, p *dompage.Page) (bool, error) {
	key := r.key(p.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}
	if err := r.store.HSet(ctx, key, toFields(p)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}
	return !exists, nil
}

// UpsertBatch writes pages in one pipelined round-trip.
// The returned slice reports, per page, whether it was created.
func (r *Repo) UpsertBatch(ctx context.Context, pages []*dompage.Page) ([]bool, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	created := make([]bool, len(pages))
	items := make([]db.HashSetItem, len(pages))
	for i, p := range pages {
		key := r.key(p.ID())
		exists, err := r.store.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("check exists %s: %w", key, err)
		}
		created[i] = !exists
		items[i] = db.HashSetItem{Key: key, Fields: toFields(p)}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return nil, fmt.Errorf("hset batch: %w", err)
	}
	return created, nil
}

// Get loads a page by ID.
func (r *Repo) Get(ctx context.Context, id string) (dompage.Page, error) {
	key := r.key(id)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return dompage.Page{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return dompage.Page{}, domain.ErrPageNotFound
	}

	var vec []float32
	if blob, ok := fields[FieldVector]; ok {
		if vec, err = db.DecodeVector(blob); err != nil {
			return dompage.Page{}, fmt.Errorf("decode vector %s: %w", key, err)
		}
	}
	return dompage.Reconstruct(id, fields[FieldURL], fields[FieldTitle], fields[FieldContent], vec), nil
}

// Delete removes a page.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrPageNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Count returns the number of indexed pages.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.IndexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

func toFields(p *dompage.Page) map[string]string {
	fields := map[string]string{
		FieldTitle:   p.Title(),
		FieldURL:     p.URL(),
		FieldContent: p.Content(),
	}
	if v := p.Vector(); len(v) > 0 {
		fields[FieldVector] = db.EncodeVector(v)
	}
	return fields
}
