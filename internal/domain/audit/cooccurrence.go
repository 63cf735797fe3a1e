package audit

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
)

// PairCount is how often two tokens appear next to each other. A <= B.
type PairCount struct {
	A     string
	B     string
	Count int
}

// Tokenize lowercases s and splits it on anything that is not a letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Cooccurrence counts unordered adjacent token pairs. A pair with an empty
// token is skipped. The result is ordered by count descending, then by A and B.
func Cooccurrence(tokens []string) []PairCount {
	counts := make(map[[2]string]int)
	for i := 1; i < len(tokens); i++ {
		a, b := tokens[i-1], tokens[i]
		if a == "" || b == "" {
			continue
		}
		if b < a {
			a, b = b, a
		}
		counts[[2]string{a, b}]++
	}
	return sortedPairs(counts)
}

// PageCooccurrence sums Cooccurrence over every page. Pairs never span two
// pages. At most limit pairs are returned; limit <= 0 returns all.
func PageCooccurrence(pages []string, limit int) []PairCount {
	counts := make(map[[2]string]int)
	for _, p := range pages {
		for _, pc := range Cooccurrence(Tokenize(p)) {
			counts[[2]string{pc.A, pc.B}] += pc.Count
		}
	}
	out := sortedPairs(counts)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortedPairs(counts map[[2]string]int) []PairCount {
	out := make([]PairCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, PairCount{A: k[0], B: k[1], Count: n})
	}
	slices.SortFunc(out, func(x, y PairCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})
	return out
}
