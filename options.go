package semseo

import "go.uber.org/zap"

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	embedder      Embedder
	queryEmbedder Embedder

	keyPrefix        string
	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int
	maxBatchSize     int

	lexicalWeight float64
	vectorWeight  float64

	logger *zap.Logger
}

// WithRedis configures the Redis instance holding the page index.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the embedding provider used for pages and queries.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithQueryEmbedder sets a separate provider for queries, for asymmetric
// models that embed queries and passages differently.
func WithQueryEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryEmbedder = e
	})
}

// WithKeyPrefix namespaces every key the client writes. Default: "semseo:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithVectorDimensions sets the page vector dimension.
// Defaults to 384 (all-MiniLM-L6-v2).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithMaxBatchSize sets the maximum number of pages per batch upsert.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithHybridWeights sets the lexical and vector weights used by hybrid
// search when SearchOptions leaves them zero. Default: 0.5 and 0.5.
func WithHybridWeights(lexical, vector float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.lexicalWeight = lexical
		c.vectorWeight = vector
	})
}

// WithLogger enables structured logging of embedding calls.
// Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
