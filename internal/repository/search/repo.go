// Package search runs KNN and BM25 queries against the page index.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/semseo/internal/db"
	"github.com/kailas-cloud/semseo/internal/domain"
	"github.com/kailas-cloud/semseo/internal/domain/search/result"
	"github.com/kailas-cloud/semseo/internal/repository/page"
)

var returnFields = []string{page.FieldTitle, page.FieldURL, page.FieldContent}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SupportsTextSearch(ctx context.Context) bool
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a search repository over the pages stored under keyPrefix.
func New(s store, keyPrefix string) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.KeyPrefix
	}
	return &Repo{store: s, keyPrefix: keyPrefix}
}

func (r *Repo) indexName() string { return r.keyPrefix + "pages:idx" }

// SupportsTextSearch proxies the capability check from the store.
func (r *Repo) SupportsTextSearch(ctx context.Context) bool {
	return r.store.SupportsTextSearch(ctx)
}

// SearchKNN returns the topK pages nearest to vector. Scores are cosine similarities.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, topK int) ([]result.Hit, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		VectorField:  page.FieldVector,
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return r.toHits(sr), nil
}

// SearchBM25 returns the topK pages matching query on title and content. Scores are raw BM25.
func (r *Repo) SearchBM25(ctx context.Context, query string, topK int) ([]result.Hit, error) {
	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    r.indexName(),
		Fields:       []string{page.FieldTitle, page.FieldContent},
		Query:        query,
		TopK:         topK,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}
	return r.toHits(sr), nil
}

func (r *Repo) toHits(sr *db.SearchResult) []result.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := r.keyPrefix + "page:"
	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hits = append(hits, result.New(
			strings.TrimPrefix(e.Key, prefix),
			e.Score,
			e.Fields[page.FieldURL],
			e.Fields[page.FieldTitle],
			e.Fields[page.FieldContent],
		))
	}
	return hits
}
