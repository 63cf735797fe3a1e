// Package fusion merges two ranked result lists into one.
//
// Lexical (BM25) and vector (k-NN) backends score documents on unrelated
// scales, so the caller picks the weights; nothing here is learned. A
// document missing from one list contributes nothing for that list, and a
// list with weight 0 is ignored entirely. Ties keep the order in which
// identifiers first appeared (list a before list b), so output is
// deterministic for a given input.
package fusion

import (
	"math"
	"sort"
	"strconv"

	"github.com/kailas-cloud/semseo/internal/domain"
)

// DefaultRRFK is the standard Reciprocal Rank Fusion constant (Cormack et al. 2009).
const DefaultRRFK = 60

// ScoredDocument is a single entry of a ranked list.
type ScoredDocument struct {
	ID    string
	Score float64
}

// Fuse combines a and b as weightA*scoreA + weightB*scoreB per identifier
// and returns the topN best, highest first.
func Fuse(a, b []ScoredDocument, weightA, weightB float64, topN int) ([]ScoredDocument, error) {
	const op = "fuse"
	if err := validate(op, a, b, weightA, weightB, topN); err != nil {
		return nil, err
	}

	acc := newAccumulator(a, b, weightA, weightB)
	for _, l := range []struct {
		docs   []ScoredDocument
		weight float64
	}{{a, weightA}, {b, weightB}} {
		if l.weight == 0 {
			continue
		}
		for _, d := range l.docs {
			acc.add(d.ID, l.weight*d.Score)
		}
	}
	return acc.top(topN), nil
}

// RRF combines a and b by Reciprocal Rank Fusion:
// score(d) = sum of weight/(k + rank) over the lists containing d, rank 1-based.
// Input order is the rank; input scores are ignored beyond validation.
func RRF(a, b []ScoredDocument, weightA, weightB, k float64, topN int) ([]ScoredDocument, error) {
	const op = "rrf"
	if err := validate(op, a, b, weightA, weightB, topN); err != nil {
		return nil, err
	}
	if k < 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, domain.NewValueError(op, "k", k)
	}

	acc := newAccumulator(a, b, weightA, weightB)
	for _, l := range []struct {
		docs   []ScoredDocument
		weight float64
	}{{a, weightA}, {b, weightB}} {
		if l.weight == 0 {
			continue
		}
		for rank, d := range l.docs {
			acc.add(d.ID, l.weight/(k+float64(rank+1)))
		}
	}
	return acc.top(topN), nil
}

func validate(op string, a, b []ScoredDocument, weightA, weightB float64, topN int) error {
	if err := validateWeight(op, "weight_a", weightA); err != nil {
		return err
	}
	if err := validateWeight(op, "weight_b", weightB); err != nil {
		return err
	}
	if topN < 0 {
		return domain.NewValueError(op, "top_n", float64(topN))
	}
	if err := validateList(op, "list_a", a); err != nil {
		return err
	}
	return validateList(op, "list_b", b)
}

func validateWeight(op, name string, w float64) error {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return domain.NewValueError(op, name, w)
	}
	return nil
}

func validateList(op, name string, docs []ScoredDocument) error {
	seen := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			return domain.NewMalformed(op, name+": empty identifier at position "+strconv.Itoa(i))
		}
		if math.IsNaN(d.Score) || math.IsInf(d.Score, 0) {
			return domain.NewMalformed(op, name+": non-finite score for "+d.ID)
		}
		if _, dup := seen[d.ID]; dup {
			return domain.NewMalformed(op, name+": duplicate identifier "+d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}

// accumulator sums contributions per identifier. Its order is fixed up
// front: identifiers in list a, then new ones in list b, restricted to
// identifiers present in at least one list with nonzero weight. A
// zero-weight list still decides where shared identifiers rank on ties.
type accumulator struct {
	order  []string
	scores map[string]float64
}

func newAccumulator(a, b []ScoredDocument, weightA, weightB float64) *accumulator {
	live := make(map[string]struct{}, len(a)+len(b))
	for _, l := range []struct {
		docs   []ScoredDocument
		weight float64
	}{{a, weightA}, {b, weightB}} {
		if l.weight == 0 {
			continue
		}
		for _, d := range l.docs {
			live[d.ID] = struct{}{}
		}
	}

	acc := &accumulator{
		order:  make([]string, 0, len(live)),
		scores: make(map[string]float64, len(live)),
	}
	for _, l := range [][]ScoredDocument{a, b} {
		for _, d := range l {
			if _, ok := live[d.ID]; !ok {
				continue
			}
			if _, seen := acc.scores[d.ID]; seen {
				continue
			}
			acc.scores[d.ID] = 0
			acc.order = append(acc.order, d.ID)
		}
	}
	return acc
}

func (a *accumulator) add(id string, contribution float64) {
	a.scores[id] += contribution
}

func (a *accumulator) top(n int) []ScoredDocument {
	out := make([]ScoredDocument, len(a.order))
	for i, id := range a.order {
		out[i] = ScoredDocument{ID: id, Score: a.scores[id]}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}
