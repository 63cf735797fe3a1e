package request

import (
	"fmt"

	"github.com/kailas-cloud/semseo/internal/domain/fusion"
	"github.com/kailas-cloud/semseo/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultTopN    = 10
	MaxTopN        = 100
)

// Weights are the per-backend fusion weights of a hybrid search.
type Weights struct {
	Lexical float64
	Vector  float64
}

// Request is a validated search query.
type Request struct {
	query      string
	searchMode mode.Mode
	topN       int
	weights    Weights
	strategy   fusion.Strategy
	rrfK       float64
	minScore   float64
}

// New validates and normalizes search parameters.
// Defaults: mode=hybrid, topN=10, strategy=weighted. weights must be
// resolved by the caller (usually from configuration) before calling New.
func New(
	query string,
	m mode.Mode,
	topN int,
	weights Weights,
	strategy fusion.Strategy,
	rrfK float64,
	minScore float64,
) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode: %q", m)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	if topN > MaxTopN {
		topN = MaxTopN
	}
	if weights.Lexical < 0 || weights.Vector < 0 {
		return Request{}, fmt.Errorf("weights must be non-negative")
	}
	if m == mode.Hybrid && weights.Lexical == 0 && weights.Vector == 0 {
		return Request{}, fmt.Errorf("at least one weight must be positive in hybrid mode")
	}
	if strategy == "" {
		strategy = fusion.Weighted
	}
	if !strategy.IsValid() {
		return Request{}, fmt.Errorf("invalid fusion strategy: %q", strategy)
	}
	if rrfK < 0 {
		return Request{}, fmt.Errorf("rrf_k must be non-negative")
	}
	if rrfK == 0 {
		rrfK = fusion.DefaultRRFK
	}
	if minScore < 0 {
		return Request{}, fmt.Errorf("min_score must be non-negative")
	}

	return Request{
		query:      query,
		searchMode: m,
		topN:       topN,
		weights:    weights,
		strategy:   strategy,
		rrfK:       rrfK,
		minScore:   minScore,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the search mode.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// TopN returns the number of results to return (and candidates to fetch per backend).
func (r *Request) TopN() int { return r.topN }

// Weights returns the fusion weights.
func (r *Request) Weights() Weights { return r.weights }

// Strategy returns the fusion strategy.
func (r *Request) Strategy() fusion.Strategy { return r.strategy }

// RRFK returns the Reciprocal Rank Fusion constant.
func (r *Request) RRFK() float64 { return r.rrfK }

// MinScore returns the minimum fused score a hit must reach.
func (r *Request) MinScore() float64 { return r.minScore }

// FusionParams converts the request into fusion parameters. List a is
// lexical, list b is vector.
func (r *Request) FusionParams() fusion.Params {
	return fusion.Params{
		Strategy: r.strategy,
		WeightA:  r.weights.Lexical,
		WeightB:  r.weights.Vector,
		K:        r.rrfK,
		TopN:     r.topN,
	}
}
