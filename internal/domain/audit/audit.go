// Package audit holds keyword heuristics for content coverage and topical focus.
package audit

import "strings"

// CoverageEntry lists the contents that literally contain a query.
type CoverageEntry struct {
	Query   string
	Matches []int // content indices, ascending
}

// Coverage maps each query to the contents containing it (case-insensitive substring).
func Coverage(queries, contents []string) []CoverageEntry {
	lowered := lowerAll(contents)
	out := make([]CoverageEntry, len(queries))
	for i, q := range queries {
		lq := strings.ToLower(q)
		matches := []int{}
		for j, c := range lowered {
			if strings.Contains(c, lq) {
				matches = append(matches, j)
			}
		}
		out[i] = CoverageEntry{Query: q, Matches: matches}
	}
	return out
}

// DilutedPages returns the indices of pages mentioning none of the core terms.
func DilutedPages(pages, coreTerms []string) []int {
	terms := lowerAll(coreTerms)
	diluted := []int{}
	for i, p := range pages {
		if !mentionsAny(strings.ToLower(p), terms) {
			diluted = append(diluted, i)
		}
	}
	return diluted
}

// TopicalFocus is the share of pages in [0, 1] mentioning at least one core term.
func TopicalFocus(pages, coreTerms []string) float64 {
	if len(pages) == 0 {
		return 0
	}
	terms := lowerAll(coreTerms)
	covered := 0
	for _, p := range pages {
		if mentionsAny(strings.ToLower(p), terms) {
			covered++
		}
	}
	return float64(covered) / float64(len(pages))
}

func mentionsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
