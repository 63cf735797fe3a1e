// Package analysis binds the similarity, fusion and audit cores to an
// embedding provider.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/semseo/internal/domain"
	"github.com/kailas-cloud/semseo/internal/domain/audit"
	"github.com/kailas-cloud/semseo/internal/domain/fusion"
	"github.com/kailas-cloud/semseo/internal/domain/similarity"
	"github.com/kailas-cloud/semseo/internal/metrics"
)

// DefaultGapThreshold is the similarity below which a query counts as uncovered.
const DefaultGapThreshold = 0.6

// MaxTexts caps the number of texts per analysis call.
const MaxTexts = 1000

// MaxCooccurrencePairs caps the pairs reported by Audit.
const MaxCooccurrencePairs = 50

// Gap is the coverage of one query by the content set.
type Gap struct {
	Query         string
	MaxSimilarity float64
	IsGap         bool
}

// AuditReport is the outcome of the keyword heuristics.
type AuditReport struct {
	Coverage     []audit.CoverageEntry
	DilutedPages []int
	TopicalFocus float64
	Cooccurrence []audit.PairCount
}

// QueryIntent is the keyword classification of one query.
type QueryIntent struct {
	Query          string
	Intent         audit.Intent
	Format         string
	Classification audit.Classification
	Elements       audit.PromptElements
}

// Service runs semantic analyses over texts.
type Service struct {
	docEmbedder   Embedder
	queryEmbedder Embedder
	threshold     float64
}

// New creates an analysis service. Contents and pages go through docEmbedder,
// queries and entity phrases through queryEmbedder.
func New(docEmbedder, queryEmbedder Embedder) *Service {
	return &Service{docEmbedder: docEmbedder, queryEmbedder: queryEmbedder, threshold: DefaultGapThreshold}
}

// WithGapThreshold sets the threshold used when a call passes a negative one.
func (s *Service) WithGapThreshold(t float64) *Service {
	s.threshold = t
	return s
}

// Gaps scores every query against contents and flags those below threshold.
// A negative threshold selects the configured default.
func (s *Service) Gaps(ctx context.Context, queries, contents []string, threshold float64) ([]Gap, error) {
	if len(queries) == 0 {
		return []Gap{}, nil
	}
	if err := checkSize("queries", queries); err != nil {
		return nil, err
	}
	if err := checkSize("contents", contents); err != nil {
		return nil, err
	}
	if threshold < 0 {
		threshold = s.threshold
	}

	// usage is recorded after Wait: EmbeddingUsage is not goroutine-safe
	var (
		qVecs, cVecs     []similarity.Vector
		qTokens, cTokens int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		qVecs, qTokens, err = embedVectors(gctx, s.queryEmbedder, queries)
		return err
	})
	if len(contents) > 0 {
		g.Go(func() error {
			var err error
			cVecs, cTokens, err = embedVectors(gctx, s.docEmbedder, contents)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by embedVectors
	}
	usage := domain.UsageFromContext(ctx)
	usage.AddTokens(qTokens)
	if len(contents) > 0 {
		usage.AddTokens(cTokens)
	}

	qs := make([]similarity.Query, len(queries))
	for i := range queries {
		qs[i] = similarity.Query{Text: queries[i], Vector: qVecs[i]}
	}
	scores, err := similarity.GapScores(qs, cVecs)
	if err != nil {
		return nil, fmt.Errorf("gap scores: %w", err)
	}

	out := make([]Gap, len(scores))
	for i, sc := range scores {
		isGap := sc.MaxSimilarity < threshold
		out[i] = Gap{Query: sc.Query, MaxSimilarity: sc.MaxSimilarity, IsGap: isGap}
		if isGap {
			metrics.GapQueriesTotal.WithLabelValues("gap").Inc()
		} else {
			metrics.GapQueriesTotal.WithLabelValues("covered").Inc()
		}
	}
	return out, nil
}

// Matrix embeds texts and returns their pairwise cosine similarities.
func (s *Service) Matrix(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}
	if err := checkSize("texts", texts); err != nil {
		return nil, err
	}
	vecs, err := s.embedAll(ctx, s.docEmbedder, texts)
	if err != nil {
		return nil, err
	}
	mat, err := similarity.PairwiseMatrix(vecs)
	if err != nil {
		return nil, fmt.Errorf("pairwise matrix: %w", err)
	}
	return mat, nil
}

// Relevance returns the cosine similarity of each page to the entity phrase.
func (s *Service) Relevance(ctx context.Context, pages []string, entity string) ([]float64, error) {
	if len(pages) == 0 {
		return []float64{}, nil
	}
	if entity == "" {
		return nil, fmt.Errorf("%w: entity is required", domain.ErrInvalidRequest)
	}
	if err := checkSize("pages", pages); err != nil {
		return nil, err
	}

	entityRes, err := s.queryEmbedder.Embed(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("vectorize entity: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(entityRes.TotalTokens)
	entityVec := similarity.FromFloat32(entityRes.Embedding)

	vecs, err := s.embedAll(ctx, s.docEmbedder, pages)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(vecs))
	for i, v := range vecs {
		if out[i], err = similarity.Cosine(v, entityVec); err != nil {
			return nil, fmt.Errorf("relevance: %w", err)
		}
	}
	return out, nil
}

// Audit runs the keyword heuristics. It makes no embedding calls.
func (s *Service) Audit(queries, pages, coreTerms []string) AuditReport {
	return AuditReport{
		Coverage:     audit.Coverage(queries, pages),
		DilutedPages: audit.DilutedPages(pages, coreTerms),
		TopicalFocus: audit.TopicalFocus(pages, coreTerms),
		Cooccurrence: audit.PageCooccurrence(pages, MaxCooccurrencePairs),
	}
}

// Intents classifies each query by keyword. It makes no embedding calls.
func (s *Service) Intents(queries []string) ([]QueryIntent, error) {
	if err := checkSize("queries", queries); err != nil {
		return nil, err
	}
	out := make([]QueryIntent, len(queries))
	for i, q := range queries {
		in := audit.DetectIntent(q)
		out[i] = QueryIntent{
			Query:          q,
			Intent:         in,
			Format:         audit.ContentFormat(in),
			Classification: audit.Classify(q),
			Elements:       audit.ExtractPrompt(q),
		}
	}
	return out, nil
}

// Brief outlines a page for topic. An empty intent is detected from the topic.
func (s *Service) Brief(topic string, intent audit.Intent, entities []string) (audit.Brief, error) {
	if strings.TrimSpace(topic) == "" {
		return audit.Brief{}, fmt.Errorf("%w: topic is required", domain.ErrInvalidRequest)
	}
	if err := checkSize("entities", entities); err != nil {
		return audit.Brief{}, err
	}
	switch {
	case intent == "":
		intent = audit.DetectIntent(topic)
	case !intent.Valid():
		return audit.Brief{}, fmt.Errorf("%w: unknown intent %q", domain.ErrInvalidRequest, intent)
	}
	return audit.NewBrief(topic, intent, entities), nil
}

// Fuse merges two caller-supplied ranked lists.
func (s *Service) Fuse(a, b []fusion.ScoredDocument, p fusion.Params) ([]fusion.ScoredDocument, error) {
	out, err := fusion.Run(a, b, p)
	if err != nil {
		return nil, fmt.Errorf("fuse: %w", err)
	}
	strategy := p.Strategy
	if strategy == "" {
		strategy = fusion.Weighted
	}
	metrics.FusionRunsTotal.WithLabelValues(string(strategy), "api").Inc()
	return out, nil
}

func (s *Service) embedAll(ctx context.Context, e Embedder, texts []string) ([]similarity.Vector, error) {
	vecs, tokens, err := embedVectors(ctx, e, texts)
	if err != nil {
		return nil, err
	}
	domain.UsageFromContext(ctx).AddTokens(tokens)
	return vecs, nil
}

func embedVectors(ctx context.Context, e Embedder, texts []string) ([]similarity.Vector, int, error) {
	res, err := domain.EmbedAll(ctx, e, texts)
	if err != nil {
		return nil, 0, fmt.Errorf("vectorize texts: %w", err)
	}
	out := make([]similarity.Vector, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		out[i] = similarity.FromFloat32(emb)
	}
	return out, res.TotalTokens, nil
}

func checkSize(name string, texts []string) error {
	if len(texts) > MaxTexts {
		return fmt.Errorf("%w: too many %s (max %d)", domain.ErrInvalidRequest, name, MaxTexts)
	}
	return nil
}
