// Package hugot implements domain.Embedder with a local sentence-transformers
// model run through a hugot feature-extraction pipeline.
package hugot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semseo/internal/domain"
	"github.com/kailas-cloud/semseo/internal/metrics"
)

// DefaultModel produces 384-dimensional embeddings.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

const provider = "hugot"

// Config holds the local model settings.
type Config struct {
	Model    string // Hugging Face model name
	ModelDir string // download cache, default ./models
	Logger   *zap.Logger
}

// runner is the slice of the hugot pipeline the embedder needs.
type runner interface {
	RunPipeline(inputs []string) (*pipelines.FeatureExtractionOutput, error)
}

// Embedder runs a feature-extraction pipeline in process.
type Embedder struct {
	mu      sync.Mutex
	model   string
	run     runner
	destroy func() error
	logger  *zap.Logger
}

// NewEmbedder downloads the model when missing and starts a pure Go session.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = "./models"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	modelPath, err := prepareModel(cfg.Model, cfg.ModelDir, cfg.Logger)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("create hugot session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "semseo-embedder",
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("create pipeline: %w (cleanup: %w)", err, destroyErr)
		}
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	return newEmbedder(cfg.Model, pipeline, session.Destroy, cfg.Logger), nil
}

func newEmbedder(model string, run runner, destroy func() error, logger *zap.Logger) *Embedder {
	return &Embedder{model: model, run: run, destroy: destroy, logger: logger}
}

// prepareModel returns the local model path, downloading the ONNX export on first use.
func prepareModel(model, dir string, logger *zap.Logger) (string, error) {
	modelPath := filepath.Join(dir, strings.ReplaceAll(model, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		return modelPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat model dir: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}
	logger.Info("Downloading embedding model", zap.String("model", model), zap.String("dir", dir))

	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = "onnx/model.onnx"
	downloaded, err := hugot.DownloadModel(model, dir, opts)
	if err != nil {
		return "", fmt.Errorf("download model %s: %w", model, err)
	}
	return downloaded, nil
}

// Embed implements domain.Embedder. Local inference spends no tokens.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0]}, nil
}

// BatchEmbed implements domain.BatchEmbedder with one pipeline run.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	start := time.Now()
	e.mu.Lock()
	if e.run == nil {
		e.mu.Unlock()
		e.fail("closed")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("hugot pipeline closed: %w", domain.ErrEmbeddingProviderError)
	}
	out, err := e.run.RunPipeline(texts)
	e.mu.Unlock()
	duration := time.Since(start)

	if err != nil {
		e.fail("pipeline_error")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("run pipeline: %w: %w", err, domain.ErrEmbeddingProviderError)
	}
	if out == nil || len(out.Embeddings) != len(texts) {
		e.fail("count_mismatch")
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"pipeline returned wrong number of embeddings for %d inputs: %w",
			len(texts), domain.ErrEmbeddingProviderError,
		)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(duration.Seconds())
	return domain.BatchEmbeddingResult{Embeddings: out.Embeddings}, nil
}

func (e *Embedder) fail(reason string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, reason).Inc()
}

// HealthCheck reports whether the pipeline is loaded.
func (e *Embedder) HealthCheck(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run == nil {
		return fmt.Errorf("hugot pipeline closed: %w", domain.ErrEmbeddingProviderError)
	}
	return nil
}

// Close releases the hugot session.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.run = nil
	if e.destroy == nil {
		return nil
	}
	destroy := e.destroy
	e.destroy = nil
	if err := destroy(); err != nil {
		return fmt.Errorf("destroy hugot session: %w", err)
	}
	return nil
}
