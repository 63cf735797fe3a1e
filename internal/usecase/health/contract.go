package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// PageCounter reports the size of the page index.
type PageCounter interface {
	Count(ctx context.Context) (int, error)
}
