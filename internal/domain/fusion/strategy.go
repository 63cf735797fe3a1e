package fusion

import "fmt"

// Strategy selects how two ranked lists are combined.
type Strategy string

// Fusion strategy constants.
const (
	// Weighted sums weighted raw scores.
	Weighted Strategy = "weighted"
	// Reciprocal uses Reciprocal Rank Fusion.
	Reciprocal Strategy = "rrf"
)

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == Weighted || s == Reciprocal
}

// Params carries everything needed to run a strategy.
type Params struct {
	Strategy Strategy
	WeightA  float64
	WeightB  float64
	K        float64 // RRF only
	TopN     int
}

// Run dispatches to Fuse or RRF. An empty strategy means Weighted.
func Run(a, b []ScoredDocument, p Params) ([]ScoredDocument, error) {
	switch p.Strategy {
	case Weighted, "":
		return Fuse(a, b, p.WeightA, p.WeightB, p.TopN)
	case Reciprocal:
		k := p.K
		if k == 0 {
			k = DefaultRRFK
		}
		return RRF(a, b, p.WeightA, p.WeightB, k, p.TopN)
	default:
		return nil, fmt.Errorf("unsupported fusion strategy: %q", p.Strategy)
	}
}
