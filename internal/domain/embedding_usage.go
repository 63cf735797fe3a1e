package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects the tokens spent while serving one request.
// Handlers install it in the context; services add to it after each embed call.
type EmbeddingUsage struct {
	TotalTokens int
	Calls       int
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the collector, or nil when none is installed.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records one embedding call. Safe on a nil receiver.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.TotalTokens += n
	u.Calls++
}

// Used reports whether any embedding call was made, cache hits included.
func (u *EmbeddingUsage) Used() bool {
	return u != nil && u.Calls > 0
}
