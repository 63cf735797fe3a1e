package search

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/semseo/internal/domain"
	"github.com/kailas-cloud/semseo/internal/domain/fusion"
	"github.com/kailas-cloud/semseo/internal/domain/search/mode"
	"github.com/kailas-cloud/semseo/internal/domain/search/request"
	"github.com/kailas-cloud/semseo/internal/domain/search/result"
	"github.com/kailas-cloud/semseo/internal/metrics"
)

// Service handles page search across semantic, keyword, and hybrid modes.
type Service struct {
	repo  Repository
	embed Embedder
}

// New creates a search service.
func New(repo Repository, embed Embedder) *Service {
	return &Service{repo: repo, embed: embed}
}

// Search executes a page search and drops hits scoring below the request's min score.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues(string(req.Mode())).Observe(time.Since(start).Seconds())
	}()

	var (
		hits []result.Hit
		err  error
	)
	switch req.Mode() {
	case mode.Semantic:
		hits, err = s.searchSemantic(ctx, req)
	case mode.Keyword:
		hits, err = s.searchKeyword(ctx, req)
	case mode.Hybrid:
		hits, err = s.searchHybrid(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported search mode: %s", req.Mode())
	}
	if err != nil {
		return nil, err
	}

	if req.MinScore() > 0 {
		filtered := hits[:0]
		for _, h := range hits {
			if h.Score() >= req.MinScore() {
				filtered = append(filtered, h)
			}
		}
		hits = filtered
	}
	if len(hits) > req.TopN() {
		hits = hits[:req.TopN()]
	}
	return hits, nil
}

// searchSemantic embeds the query and runs KNN search.
func (s *Service) searchSemantic(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	hits, err := s.knn(ctx, req)
	if err != nil {
		return nil, err
	}
	for i, h := range hits {
		hits[i] = h.WithComponents(h.Score(), 0, h.Score())
	}
	return hits, nil
}

// searchKeyword runs BM25 search (requires FT text support).
func (s *Service) searchKeyword(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	if !s.repo.SupportsTextSearch(ctx) {
		return nil, domain.ErrKeywordSearchNotSupported
	}
	hits, err := s.bm25(ctx, req)
	if err != nil {
		return nil, err
	}
	for i, h := range hits {
		hits[i] = h.WithComponents(h.Score(), h.Score(), 0)
	}
	return hits, nil
}

// searchHybrid runs KNN and BM25 in parallel, then fuses them. A backend
// whose weight is zero is not queried at all.
func (s *Service) searchHybrid(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	w := req.Weights()
	if w.Lexical > 0 && !s.repo.SupportsTextSearch(ctx) {
		return nil, domain.ErrKeywordSearchNotSupported
	}

	var lexical, vector []result.Hit
	g, gctx := errgroup.WithContext(ctx)
	if w.Lexical > 0 {
		g.Go(func() error {
			var err error
			lexical, err = s.bm25(gctx, req)
			return err
		})
	}
	if w.Vector > 0 {
		g.Go(func() error {
			var err error
			vector, err = s.knn(gctx, req)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by bm25/knn
	}

	fused, err := fusion.Run(toScored(lexical), toScored(vector), req.FusionParams())
	if err != nil {
		return nil, fmt.Errorf("fuse: %w", err)
	}
	metrics.FusionRunsTotal.WithLabelValues(string(req.Strategy()), "search").Inc()

	return assemble(fused, lexical, vector), nil
}

func (s *Service) knn(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	embResult, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(embResult.TotalTokens)

	hits, err := s.repo.SearchKNN(ctx, embResult.Embedding, req.TopN())
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return hits, nil
}

func (s *Service) bm25(ctx context.Context, req *request.Request) ([]result.Hit, error) {
	hits, err := s.repo.SearchBM25(ctx, req.Query(), req.TopN())
	if err != nil {
		return nil, fmt.Errorf("search bm25: %w", err)
	}
	return hits, nil
}

func toScored(hits []result.Hit) []fusion.ScoredDocument {
	out := make([]fusion.ScoredDocument, len(hits))
	for i := range hits {
		out[i] = fusion.ScoredDocument{ID: hits[i].ID(), Score: hits[i].Score()}
	}
	return out
}

// assemble rebuilds hits in fused order, attaching page fields and the
// per-backend raw scores.
func assemble(fused []fusion.ScoredDocument, lexical, vector []result.Hit) []result.Hit {
	lexByID := indexHits(lexical)
	vecByID := indexHits(vector)

	out := make([]result.Hit, 0, len(fused))
	for _, d := range fused {
		var lexScore, vecScore float64
		var base result.Hit
		if h, ok := vecByID[d.ID]; ok {
			vecScore = h.Score()
			base = h
		}
		if h, ok := lexByID[d.ID]; ok {
			lexScore = h.Score()
			base = h
		}
		out = append(out, base.WithComponents(d.Score, lexScore, vecScore))
	}
	return out
}

func indexHits(hits []result.Hit) map[string]result.Hit {
	m := make(map[string]result.Hit, len(hits))
	for _, h := range hits {
		m[h.ID()] = h
	}
	return m
}
