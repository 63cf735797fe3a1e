// Package app assembles the embedding decorator chain shared by the API
// server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semseo/internal/config"
	"github.com/kailas-cloud/semseo/internal/domain"
	"github.com/kailas-cloud/semseo/internal/metrics"
	"github.com/kailas-cloud/semseo/internal/repository/embcache"
	hugotEmb "github.com/kailas-cloud/semseo/internal/transport/hugot"
	openaiEmb "github.com/kailas-cloud/semseo/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/semseo/internal/usecase/embedding"
)

// Cache is the key-value store backing the embedding cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Embedders holds the document and query chains over one provider.
type Embedders struct {
	Document domain.Embedder
	Query    domain.Embedder
	close    func() error
}

// Close releases provider resources such as a loaded ONNX session.
func (e *Embedders) Close() error {
	if e.close == nil {
		return nil
	}
	return e.close()
}

// NewProvider creates the configured base embedder.
func NewProvider(cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, func() error, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		e := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   config.ProviderOpenAI,
			Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
			Logger:     logger,
		})
		return e, nil, nil
	case config.ProviderHugot, "":
		e, err := hugotEmb.NewEmbedder(hugotEmb.Config{
			Model:    cfg.Model,
			ModelDir: cfg.ModelDir,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create hugot embedder: %w", err)
		}
		return e, e.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// NewBudget returns the token budget for the configured provider, or nil
// when no limit is set. store may be nil for a process-local budget.
func NewBudget(
	ctx context.Context,
	cfg config.EmbeddingConfig,
	store embeddinguc.BudgetStore,
	keyPrefix string,
	logger *zap.Logger,
) *embeddinguc.BudgetTracker {
	if !cfg.Budget.Enabled() {
		return nil
	}
	tracker := embeddinguc.NewBudgetTracker(embeddinguc.BudgetLimits{
		Provider:      cfg.Provider,
		KeyPrefix:     keyPrefix,
		DailyTokens:   cfg.Budget.DailyTokenLimit,
		MonthlyTokens: cfg.Budget.MonthlyTokenLimit,
		Action:        embeddinguc.BudgetAction(cfg.Budget.Action),
	}, logger)
	if store != nil {
		tracker.WithStore(ctx, store)
	}
	return tracker
}

// NewEmbedders builds provider -> budget -> cache -> instrumented ->
// instruction for documents and queries. The budget sits below the cache so
// only provider calls spend it. cache and budget may be nil.
func NewEmbedders(
	cfg config.EmbeddingConfig,
	cache Cache,
	keyPrefix string,
	budget *embeddinguc.BudgetTracker,
	logger *zap.Logger,
) (*Embedders, error) {
	base, closeFn, err := NewProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	if budget != nil {
		base = embeddinguc.NewBudgetedEmbedder(base, budget, cfg.Provider, logger)
	}
	return &Embedders{
		Document: Chain(base, cfg, cache, keyPrefix, cfg.DocumentInstruction, logger),
		Query:    Chain(base, cfg, cache, keyPrefix, cfg.QueryInstruction, logger),
		close:    closeFn,
	}, nil
}

// Chain wraps base with the cache, logging and instruction decorators.
// The instruction is outermost so cached vectors are keyed by the
// instruction-prefixed text.
func Chain(
	base domain.Embedder,
	cfg config.EmbeddingConfig,
	cache Cache,
	keyPrefix, instruction string,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Options{
			KeyPrefix: keyPrefix,
			Model:     cfg.Model,
			TTL:       time.Duration(cfg.CacheTTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Provider, cfg.Model, cfg.MaxBatchSize, logger,
	)

	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// EmbeddingHealth adapts an embedder chain to the health service. Chains
// whose provider has no health check always report healthy.
type EmbeddingHealth struct {
	Embedder domain.Embedder
}

// HealthCheck checks the provider when it supports it.
func (h EmbeddingHealth) HealthCheck(ctx context.Context) error {
	if hc, ok := h.Embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
