// Package page manages the indexed page corpus: validation, embedding and storage.
package page

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/semseo/internal/domain"
	dompage "github.com/kailas-cloud/semseo/internal/domain/page"
)

// MaxBatchSize is the maximum number of pages per batch request.
const MaxBatchSize = 100

// Input is an unvalidated page as submitted by a client. An empty ID is
// replaced with a generated UUID. When Content is empty and HTML is set,
// the visible text of HTML becomes the content and its <title> fills an
// empty Title.
type Input struct {
	ID      string
	URL     string
	Title   string
	Content string
	HTML    string
}

// Service handles page CRUD with automatic vectorization.
type Service struct {
	repo         Repository
	embed        Embedder
	maxBatchSize int
}

// New creates a page service. embed should be the document-side embedder.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// EnsureIndex creates the search index when it is missing.
func (s *Service) EnsureIndex(ctx context.Context) (bool, error) {
	created, err := s.repo.EnsureIndex(ctx)
	if err != nil {
		return false, fmt.Errorf("ensure index: %w", err)
	}
	return created, nil
}

// Upsert validates, embeds and stores a page.
// Returns the stored page and true if it was created, false if updated.
func (s *Service) Upsert(ctx context.Context, in Input) (dompage.Page, bool, error) {
	p, err := build(in)
	if err != nil {
		return dompage.Page{}, false, err
	}

	res, err := s.embed.Embed(ctx, p.EmbeddingText())
	if err != nil {
		return dompage.Page{}, false, fmt.Errorf("vectorize page: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	p.SetVector(res.Embedding)

	created, err := s.repo.Upsert(ctx, &p)
	if err != nil {
		return dompage.Page{}, false, fmt.Errorf("upsert page: %w", err)
	}
	return p, created, nil
}

// UpsertBatch stores many pages with one embedding call and one pipeline.
// Invalid items fail individually; an embedding or storage failure fails
// every valid item.
func (s *Service) UpsertBatch(ctx context.Context, items []Input) []dompage.BatchResult {
	results := make([]dompage.BatchResult, len(items))

	if len(items) > s.maxBatchSize {
		err := fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidRequest)
		for i, item := range items {
			results[i] = dompage.NewBatchError(item.ID, err)
		}
		return results
	}

	valid := make([]*dompage.Page, 0, len(items))
	validIdx := make([]int, 0, len(items))
	texts := make([]string, 0, len(items))
	for i, item := range items {
		p, err := build(item)
		if err != nil {
			results[i] = dompage.NewBatchError(item.ID, err)
			continue
		}
		valid = append(valid, &p)
		validIdx = append(validIdx, i)
		texts = append(texts, p.EmbeddingText())
	}
	if len(valid) == 0 {
		return results
	}

	fail := func(err error) []dompage.BatchResult {
		for j, i := range validIdx {
			results[i] = dompage.NewBatchError(valid[j].ID(), err)
		}
		return results
	}

	emb, err := domain.EmbedAll(ctx, s.embed, texts)
	if err != nil {
		return fail(fmt.Errorf("vectorize: %w", err))
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)
	for j, p := range valid {
		p.SetVector(emb.Embeddings[j])
	}

	created, err := s.repo.UpsertBatch(ctx, valid)
	if err != nil {
		return fail(fmt.Errorf("batch upsert: %w", err))
	}
	for j, i := range validIdx {
		results[i] = dompage.NewBatchOK(valid[j].ID(), created[j])
	}
	return results
}

// Get returns a page by ID.
func (s *Service) Get(ctx context.Context, id string) (dompage.Page, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return dompage.Page{}, fmt.Errorf("get page: %w", err)
	}
	return p, nil
}

// Delete removes a page by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

// Count returns the number of indexed pages.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return n, nil
}

func build(in Input) (dompage.Page, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	title, content := in.Title, in.Content
	if content == "" && in.HTML != "" {
		htmlTitle, text := extractHTML(in.HTML)
		content = text
		if title == "" {
			title = htmlTitle
		}
	}
	p, err := dompage.New(id, in.URL, title, content)
	if err != nil {
		return dompage.Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return p, nil
}
