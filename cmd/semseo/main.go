package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semseo/internal/app"
	"github.com/kailas-cloud/semseo/internal/config"
	"github.com/kailas-cloud/semseo/internal/db"
	dbRedis "github.com/kailas-cloud/semseo/internal/db/redis"
	"github.com/kailas-cloud/semseo/internal/domain/fusion"
	logpkg "github.com/kailas-cloud/semseo/internal/logger"
	"github.com/kailas-cloud/semseo/internal/metrics"
	budgetrepo "github.com/kailas-cloud/semseo/internal/repository/budget"
	pagerepo "github.com/kailas-cloud/semseo/internal/repository/page"
	searchrepo "github.com/kailas-cloud/semseo/internal/repository/search"
	chiTransport "github.com/kailas-cloud/semseo/internal/transport/chi"
	analysisuc "github.com/kailas-cloud/semseo/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/semseo/internal/usecase/health"
	pageuc "github.com/kailas-cloud/semseo/internal/usecase/page"
	searchuc "github.com/kailas-cloud/semseo/internal/usecase/search"
	usageuc "github.com/kailas-cloud/semseo/internal/usecase/usage"
	"github.com/kailas-cloud/semseo/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting semseo API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterAnalysisMetrics()

	budget := app.NewBudget(ctx, cfg.Embedding, budgetrepo.New(store), cfg.Storage.KeyPrefix, logger)
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
		logger.Info("Embedding budget enabled",
			zap.Int64("daily_tokens", cfg.Embedding.Budget.DailyTokenLimit),
			zap.Int64("monthly_tokens", cfg.Embedding.Budget.MonthlyTokenLimit),
			zap.String("action", cfg.Embedding.Budget.Action),
		)
	}

	embedders, err := app.NewEmbedders(cfg.Embedding, store, cfg.Storage.KeyPrefix, budget, logger)
	if err != nil {
		logger.Fatal("Failed to create embedders", zap.Error(err))
	}
	defer func() {
		if err := embedders.Close(); err != nil {
			logger.Warn("Failed to release embedder", zap.Error(err))
		}
	}()
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	pages := pagerepo.New(store, pagerepo.IndexConfig{
		KeyPrefix:   cfg.Storage.KeyPrefix,
		Dimensions:  cfg.Embedding.Dimensions,
		Algorithm:   db.VectorAlgorithm(cfg.Database.Index.Algorithm),
		M:           cfg.Database.Index.M,
		EFConstruct: cfg.Database.Index.EFConstruction,
		TitleWeight: cfg.Database.Index.TitleWeight,
	})
	searchRepo := searchrepo.New(store, cfg.Storage.KeyPrefix)

	pageSvc := pageuc.New(pages, embedders.Document).WithMaxBatchSize(cfg.Database.Index.MaxBatchSize)
	created, err := pageSvc.EnsureIndex(ctx)
	if err != nil {
		logger.Fatal("Failed to ensure page index", zap.Error(err))
	}
	logger.Info("Page index ready", zap.String("index", pages.IndexName()), zap.Bool("created", created))

	searchSvc := searchuc.New(searchRepo, embedders.Query)
	analysisSvc := analysisuc.New(embedders.Document, embedders.Query).
		WithGapThreshold(cfg.Analysis.GapThreshold)
	healthSvc := healthuc.New(store, app.EmbeddingHealth{Embedder: embedders.Document}).WithPageCounter(pageSvc)

	server := chiTransport.NewServer(chiTransport.Services{
		Analysis: analysisSvc,
		Pages:    pageSvc,
		Search:   searchSvc,
		Health:   healthSvc,
		Usage:    usageuc.New(budgetReader),
	}, chiTransport.Defaults{
		LexicalWeight: cfg.Search.LexicalWeight,
		VectorWeight:  cfg.Search.VectorWeight,
		Strategy:      fusion.Strategy(cfg.Search.Strategy),
		RRFK:          float64(cfg.Search.RRFK),
		GapThreshold:  cfg.Analysis.GapThreshold,
	}, version.Version, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
