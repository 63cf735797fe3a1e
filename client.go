package semseo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semseo/internal/db"
	dbRedis "github.com/kailas-cloud/semseo/internal/db/redis"
	"github.com/kailas-cloud/semseo/internal/domain"
	dompage "github.com/kailas-cloud/semseo/internal/domain/page"
	"github.com/kailas-cloud/semseo/internal/domain/search/mode"
	"github.com/kailas-cloud/semseo/internal/domain/search/request"
	"github.com/kailas-cloud/semseo/internal/domain/search/result"
	pagerepo "github.com/kailas-cloud/semseo/internal/repository/page"
	searchrepo "github.com/kailas-cloud/semseo/internal/repository/search"
	analysisuc "github.com/kailas-cloud/semseo/internal/usecase/analysis"
	embeddinguc "github.com/kailas-cloud/semseo/internal/usecase/embedding"
	pageuc "github.com/kailas-cloud/semseo/internal/usecase/page"
	searchuc "github.com/kailas-cloud/semseo/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Errors returned by Client operations, matched with errors.Is.
var (
	ErrPageNotFound              = domain.ErrPageNotFound
	ErrInvalidRequest            = domain.ErrInvalidRequest
	ErrEmbeddingProviderError    = domain.ErrEmbeddingProviderError
	ErrKeywordSearchNotSupported = domain.ErrKeywordSearchNotSupported
)

// SearchMode selects the retrieval backends of a search.
type SearchMode string

// Search modes.
const (
	ModeHybrid   SearchMode = SearchMode(mode.Hybrid)
	ModeSemantic SearchMode = SearchMode(mode.Semantic)
	ModeKeyword  SearchMode = SearchMode(mode.Keyword)
)

// Page is a web page to index. An empty ID is replaced with a generated one.
// HTML is used only on upsert, when Content is empty: its visible text
// becomes the content and its <title> fills an empty Title.
type Page struct {
	ID      string
	URL     string
	Title   string
	Content string
	HTML    string
}

// BatchItem is the outcome of one page in UpsertPages.
type BatchItem struct {
	ID      string
	Created bool
	Err     error
}

// SearchOptions tune a search. Zero values select the defaults.
type SearchOptions struct {
	Mode          SearchMode // default hybrid
	Limit         int        // default 10, max 100
	LexicalWeight float64
	VectorWeight  float64
	Strategy      FusionStrategy // default weighted
	RRFK          float64
	MinScore      float64
}

// Hit is one search result. LexicalScore and VectorScore are the raw
// backend scores behind the fused Score.
type Hit struct {
	ID           string
	URL          string
	Title        string
	Content      string
	Score        float64
	LexicalScore float64
	VectorScore  float64
}

// Gap reports how well the indexed content covers one query.
type Gap struct {
	Query         string
	MaxSimilarity float64
	IsGap         bool
}

// Client is the semseo SDK entry point.
type Client struct {
	store    db.Store
	pages    *pageuc.Service
	search   *searchuc.Service
	analysis *analysisuc.Service
	weights  request.Weights
}

// New creates a Client and connects to Redis.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions: domain.DefaultVectorConfig().Dimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("semseo: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("semseo: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("semseo: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pages := pagerepo.New(store, pagerepo.IndexConfig{
		KeyPrefix:   cfg.keyPrefix,
		Dimensions:  cfg.vectorDimensions,
		M:           cfg.hnswM,
		EFConstruct: cfg.hnswEFConstruct,
	})
	searchRepo := searchrepo.New(store, cfg.keyPrefix)

	docEmb := wrapEmbedder(cfg.embedder, logger)
	queryEmb := docEmb
	if cfg.queryEmbedder != nil {
		queryEmb = wrapEmbedder(cfg.queryEmbedder, logger)
	}

	pageSvc := pageuc.New(pages, docEmb)
	if cfg.maxBatchSize > 0 {
		pageSvc = pageSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}

	weights := request.Weights{Lexical: cfg.lexicalWeight, Vector: cfg.vectorWeight}
	if weights.Lexical == 0 && weights.Vector == 0 {
		weights = request.Weights{Lexical: 0.5, Vector: 0.5}
	}

	return &Client{
		store:    store,
		pages:    pageSvc,
		search:   searchuc.New(searchRepo, queryEmb),
		analysis: analysisuc.New(docEmb, queryEmb),
		weights:  weights,
	}
}

func wrapEmbedder(e Embedder, logger *zap.Logger) domain.Embedder {
	if e == nil {
		return noopEmbedder{}
	}
	return embeddinguc.NewInstrumentedEmbedder(&embedderAdapter{inner: e}, "sdk", "custom", 0, logger)
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndex creates the page index when it is missing.
func (c *Client) EnsureIndex(ctx context.Context) error {
	if _, err := c.pages.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("semseo: %w", err)
	}
	return nil
}

// UpsertPage embeds and stores p. It returns the page ID and whether the
// page was newly created.
func (c *Client) UpsertPage(ctx context.Context, p Page) (string, bool, error) {
	stored, created, err := c.pages.Upsert(ctx, toInput(p))
	if err != nil {
		return "", false, fmt.Errorf("semseo: %w", err)
	}
	return stored.ID(), created, nil
}

// UpsertPages embeds and stores pages in one provider call. Results are
// in input order.
func (c *Client) UpsertPages(ctx context.Context, pages []Page) []BatchItem {
	inputs := make([]pageuc.Input, len(pages))
	for i, p := range pages {
		inputs[i] = toInput(p)
	}
	results := c.pages.UpsertBatch(ctx, inputs)
	out := make([]BatchItem, len(results))
	for i, r := range results {
		out[i] = BatchItem{ID: r.ID, Created: r.Created, Err: r.Err}
		if r.Status == dompage.StatusError && r.Err == nil {
			out[i].Err = errors.New("semseo: upsert failed")
		}
	}
	return out
}

// GetPage returns a stored page.
func (c *Client) GetPage(ctx context.Context, id string) (Page, error) {
	p, err := c.pages.Get(ctx, id)
	if err != nil {
		return Page{}, fmt.Errorf("semseo: %w", err)
	}
	return Page{ID: p.ID(), URL: p.URL(), Title: p.Title(), Content: p.Content()}, nil
}

// DeletePage removes a stored page.
func (c *Client) DeletePage(ctx context.Context, id string) error {
	if err := c.pages.Delete(ctx, id); err != nil {
		return fmt.Errorf("semseo: %w", err)
	}
	return nil
}

// CountPages returns the number of indexed pages.
func (c *Client) CountPages(ctx context.Context) (int, error) {
	n, err := c.pages.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("semseo: %w", err)
	}
	return n, nil
}

// Search runs a hybrid, semantic or keyword search over the indexed pages.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]Hit, error) {
	weights := request.Weights{Lexical: opts.LexicalWeight, Vector: opts.VectorWeight}
	if weights.Lexical == 0 && weights.Vector == 0 {
		weights = c.weights
	}
	req, err := request.New(
		query, mode.Mode(opts.Mode), opts.Limit, weights, opts.Strategy, opts.RRFK, opts.MinScore,
	)
	if err != nil {
		return nil, fmt.Errorf("semseo: %w: %w", domain.ErrInvalidRequest, err)
	}

	hits, err := c.search.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("semseo: %w", err)
	}
	return fromHits(hits), nil
}

// Gaps scores each query against contents and flags queries whose best
// similarity falls below threshold. A negative threshold selects 0.6.
func (c *Client) Gaps(ctx context.Context, queries, contents []string, threshold float64) ([]Gap, error) {
	gaps, err := c.analysis.Gaps(ctx, queries, contents, threshold)
	if err != nil {
		return nil, fmt.Errorf("semseo: %w", err)
	}
	out := make([]Gap, len(gaps))
	for i, g := range gaps {
		out[i] = Gap(g)
	}
	return out, nil
}

func toInput(p Page) pageuc.Input {
	return pageuc.Input{ID: p.ID, URL: p.URL, Title: p.Title, Content: p.Content, HTML: p.HTML}
}

func fromHits(hits []result.Hit) []Hit {
	out := make([]Hit, len(hits))
	for i := range hits {
		h := &hits[i]
		out[i] = Hit{
			ID:           h.ID(),
			URL:          h.URL(),
			Title:        h.Title(),
			Content:      h.Content(),
			Score:        h.Score(),
			LexicalScore: h.LexicalScore(),
			VectorScore:  h.VectorScore(),
		}
	}
	return out
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// BatchEmbed uses the inner BatchEmbedder when available.
func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	be, ok := a.inner.(BatchEmbedder)
	if !ok {
		out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
		for i, t := range texts {
			r, err := a.Embed(ctx, t)
			if err != nil {
				return domain.BatchEmbeddingResult{}, err
			}
			out.Embeddings[i] = r.Embedding
			out.PromptTokens += r.PromptTokens
			out.TotalTokens += r.TotalTokens
		}
		return out, nil
	}

	r, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder fails every call; used when no embedder is configured.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"semseo: embedder not configured (use WithEmbedder): %w", domain.ErrEmbeddingProviderError,
	)
}
