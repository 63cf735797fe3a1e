package audit

import (
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Vector-search, in Redis 8!  HNSW")
	want := []string{"vector", "search", "in", "redis", "8", "hnsw"}
	if !slices.Equal(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
	if got := Tokenize(" ,. "); len(got) != 0 {
		t.Errorf("punctuation only: %v", got)
	}
}

func TestCooccurrence(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []PairCount
	}{
		{"empty", nil, []PairCount{}},
		{"single", []string{"a"}, []PairCount{}},
		{
			"unordered pairs merge",
			[]string{"b", "a", "b"},
			[]PairCount{{A: "a", B: "b", Count: 2}},
		},
		{
			"count then alphabetical",
			[]string{"x", "y", "x", "a", "c"},
			[]PairCount{{A: "x", B: "y", Count: 2}, {A: "a", B: "c", Count: 1}, {A: "a", B: "x", Count: 1}},
		},
		{
			"empty token breaks the chain",
			[]string{"a", "", "b", "c"},
			[]PairCount{{A: "b", B: "c", Count: 1}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cooccurrence(tc.tokens); !slices.Equal(got, tc.want) {
				t.Errorf("Cooccurrence = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPageCooccurrence(t *testing.T) {
	pages := []string{"Vector search", "search engine", "vector search tips"}

	got := PageCooccurrence(pages, 0)
	want := []PairCount{
		{A: "search", B: "vector", Count: 2},
		{A: "engine", B: "search", Count: 1},
		{A: "search", B: "tips", Count: 1},
	}
	if !slices.Equal(got, want) {
		t.Errorf("PageCooccurrence = %v, want %v", got, want)
	}

	if got := PageCooccurrence(pages, 1); len(got) != 1 || got[0] != want[0] {
		t.Errorf("limit 1 = %v", got)
	}
	// "search" ends page 0 and "search" starts page 1: no cross-page pair
	for _, pc := range got {
		if pc.A == "search" && pc.B == "search" {
			t.Error("pair spans two pages")
		}
	}
}
