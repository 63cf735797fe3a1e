package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semseo/internal/domain"
	"github.com/kailas-cloud/semseo/internal/metrics"
)

// BudgetAction defines behavior when the token budget is exhausted.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but lets the request through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject fails the request with domain.ErrEmbeddingQuotaExceeded.
	BudgetActionReject BudgetAction = "reject"
)

// Counter TTLs outlive their period so a restart near midnight still finds them.
const (
	dailyCounterTTL   = 48 * time.Hour
	monthlyCounterTTL = 62 * 24 * time.Hour
)

// BudgetStore persists budget counters.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64, ttl time.Duration) error
	Get(ctx context.Context, key string) (int64, error)
}

// BudgetLimits configures a BudgetTracker. A zero limit is unlimited.
type BudgetLimits struct {
	Provider      string
	KeyPrefix     string // defaults to domain.KeyPrefix
	DailyTokens   int64
	MonthlyTokens int64
	Action        BudgetAction
}

// BudgetTracker counts provider tokens per UTC day and month. Check is
// in-memory; Record writes behind to the store when one is attached.
type BudgetTracker struct {
	mu             sync.Mutex
	limits         BudgetLimits
	dailyUsed      int64
	monthlyUsed    int64
	lastDayReset   time.Time
	lastMonthReset time.Time
	store          BudgetStore
	now            func() time.Time
	logger         *zap.Logger
}

// NewBudgetTracker creates a tracker. Action defaults to warn.
func NewBudgetTracker(limits BudgetLimits, logger *zap.Logger) *BudgetTracker {
	if limits.KeyPrefix == "" {
		limits.KeyPrefix = domain.KeyPrefix
	}
	if limits.Action == "" {
		limits.Action = BudgetActionWarn
	}
	b := &BudgetTracker{limits: limits, now: func() time.Time { return time.Now().UTC() }, logger: logger}
	now := b.now()
	b.lastDayReset = truncateToDay(now)
	b.lastMonthReset = truncateToMonth(now)
	return b
}

// WithStore attaches persistence and loads the current period's counters.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	now := b.now()
	if v, err := store.Get(ctx, b.dailyKey(now)); err == nil {
		b.dailyUsed = v
	} else {
		b.logger.Warn("Failed to load daily budget", zap.Error(err))
	}
	if v, err := store.Get(ctx, b.monthlyKey(now)); err == nil {
		b.monthlyUsed = v
	} else {
		b.logger.Warn("Failed to load monthly budget", zap.Error(err))
	}

	b.logger.Info("Embedding budget loaded",
		zap.String("provider", b.limits.Provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("monthly_used", b.monthlyUsed),
	)
	return b
}

// Check reports whether a new provider call is allowed.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()

	dailyExceeded := b.limits.DailyTokens > 0 && b.dailyUsed >= b.limits.DailyTokens
	monthlyExceeded := b.limits.MonthlyTokens > 0 && b.monthlyUsed >= b.limits.MonthlyTokens
	if !dailyExceeded && !monthlyExceeded {
		return nil
	}

	if b.limits.Action == BudgetActionReject {
		return fmt.Errorf("%s token budget: %w", b.limits.Provider, domain.ErrEmbeddingQuotaExceeded)
	}
	b.logger.Warn("Embedding token budget exceeded",
		zap.String("provider", b.limits.Provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("daily_limit", b.limits.DailyTokens),
		zap.Int64("monthly_used", b.monthlyUsed),
		zap.Int64("monthly_limit", b.limits.MonthlyTokens),
	)
	return nil
}

// Record adds consumed tokens to both periods.
func (b *BudgetTracker) Record(ctx context.Context, tokens int64) {
	if tokens <= 0 {
		return
	}
	b.mu.Lock()
	b.resetIfNeeded()
	b.dailyUsed += tokens
	b.monthlyUsed += tokens
	store := b.store
	now := b.now()
	b.mu.Unlock()

	if store == nil {
		return
	}
	// the provider call already happened; persist even if the caller is gone
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := store.IncrBy(ctx, b.dailyKey(now), tokens, dailyCounterTTL); err != nil {
		b.logger.Warn("Failed to persist daily budget", zap.Error(err))
	}
	if err := store.IncrBy(ctx, b.monthlyKey(now), tokens, monthlyCounterTTL); err != nil {
		b.logger.Warn("Failed to persist monthly budget", zap.Error(err))
	}
}

// Provider returns the provider the budget applies to.
func (b *BudgetTracker) Provider() string { return b.limits.Provider }

// DailyLimit returns the daily token cap, 0 when unlimited.
func (b *BudgetTracker) DailyLimit() int64 { return b.limits.DailyTokens }

// MonthlyLimit returns the monthly token cap, 0 when unlimited.
func (b *BudgetTracker) MonthlyLimit() int64 { return b.limits.MonthlyTokens }

// DailyUsed returns tokens consumed today (UTC).
func (b *BudgetTracker) DailyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.dailyUsed
}

// MonthlyUsed returns tokens consumed this month (UTC).
func (b *BudgetTracker) MonthlyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.monthlyUsed
}

// RemainingDaily returns tokens left today, -1 when unlimited.
func (b *BudgetTracker) RemainingDaily() int64 {
	return remaining(b.limits.DailyTokens, b.DailyUsed())
}

// RemainingMonthly returns tokens left this month, -1 when unlimited.
func (b *BudgetTracker) RemainingMonthly() int64 {
	return remaining(b.limits.MonthlyTokens, b.MonthlyUsed())
}

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	return max(limit-used, 0)
}

func (b *BudgetTracker) dailyKey(t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:daily:%s", b.limits.KeyPrefix, b.limits.Provider, t.Format("2006-01-02"))
}

func (b *BudgetTracker) monthlyKey(t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:monthly:%s", b.limits.KeyPrefix, b.limits.Provider, t.Format("2006-01"))
}

// resetIfNeeded zeroes counters when the day or month rolls over. Caller holds mu.
func (b *BudgetTracker) resetIfNeeded() {
	now := b.now()
	if today := truncateToDay(now); today.After(b.lastDayReset) {
		b.dailyUsed = 0
		b.lastDayReset = today
	}
	if month := truncateToMonth(now); month.After(b.lastMonthReset) {
		b.monthlyUsed = 0
		b.lastMonthReset = month
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// BudgetChecker is what BudgetedEmbedder needs from a tracker.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(ctx context.Context, tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// BudgetedEmbedder enforces a token budget in front of a paid provider.
// It sits below the cache so cache hits never touch the budget.
type BudgetedEmbedder struct {
	inner    domain.Embedder
	budget   BudgetChecker
	provider string
	logger   *zap.Logger
}

// NewBudgetedEmbedder wraps inner with budget checks.
func NewBudgetedEmbedder(inner domain.Embedder, budget BudgetChecker, provider string, logger *zap.Logger) *BudgetedEmbedder {
	return &BudgetedEmbedder{inner: inner, budget: budget, provider: provider, logger: logger}
}

// Embed checks the budget, delegates, and records usage.
func (e *BudgetedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := e.check(ctx); err != nil {
		return domain.EmbeddingResult{}, err
	}
	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // transparent decorator
	}
	e.record(ctx, res.TotalTokens)
	return res, nil
}

// BatchEmbed checks the budget once per batch, delegates, and records usage.
func (e *BudgetedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	if err := e.check(ctx); err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	res, err := domain.EmbedAll(ctx, e.inner, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err //nolint:wrapcheck // transparent decorator
	}
	e.record(ctx, res.TotalTokens)
	return res, nil
}

// HealthCheck forwards to the inner embedder when supported.
func (e *BudgetedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (e *BudgetedEmbedder) check(ctx context.Context) error {
	if err := e.budget.Check(ctx); err != nil {
		e.logger.Error("Embedding budget exhausted", zap.String("provider", e.provider), zap.Error(err))
		return fmt.Errorf("budget check: %w", err)
	}
	return nil
}

func (e *BudgetedEmbedder) record(ctx context.Context, tokens int) {
	if tokens <= 0 {
		return
	}
	e.budget.Record(ctx, int64(tokens))
	metrics.EmbeddingBudgetTokensRemaining.WithLabelValues(e.provider, "daily").Set(float64(e.budget.RemainingDaily()))
	metrics.EmbeddingBudgetTokensRemaining.WithLabelValues(e.provider, "monthly").Set(float64(e.budget.RemainingMonthly()))
}
