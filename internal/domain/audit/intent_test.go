package audit

import (
	"slices"
	"testing"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		query string
		want  Intent
	}{
		{"redis vs valkey", IntentComparison},
		{"Redis VS. Valkey", IntentComparison},
		{"compare hnsw and flat indexes", IntentComparison},
		{"bm25 versus dense retrieval", IntentComparison},
		{"How to   build a vector index", IntentTutorial},
		{"rag tutorial", IntentTutorial},
		{"embedding guide for beginners", IntentTutorial},
		{"best vector database", IntentSolutionSeeking},
		{"which reranker should I use", IntentSolutionSeeking},
		{"top 10 seo tools", IntentSolutionSeeking},
		{"what is cosine similarity", IntentLookup},
		{"canvas layout", IntentLookup},
		{"laptop stand", IntentLookup},
		{"", IntentLookup},
		// comparison outranks tutorial, tutorial outranks solution-seeking
		{"how to compare the best embedders", IntentComparison},
		{"best guide to hybrid search", IntentTutorial},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			if got := DetectIntent(tc.query); got != tc.want {
				t.Errorf("DetectIntent(%q) = %q, want %q", tc.query, got, tc.want)
			}
		})
	}
}

func TestIntent_Valid(t *testing.T) {
	for _, in := range []Intent{IntentLookup, IntentComparison, IntentTutorial, IntentSolutionSeeking} {
		if !in.Valid() {
			t.Errorf("%q should be valid", in)
		}
	}
	for _, in := range []Intent{"", "research", "Comparison"} {
		if in.Valid() {
			t.Errorf("%q should be invalid", in)
		}
	}
}

func TestContentFormat(t *testing.T) {
	tests := []struct {
		intent Intent
		want   string
	}{
		{IntentComparison, FormatComparisonTable},
		{IntentTutorial, FormatHowToGuide},
		{IntentSolutionSeeking, FormatSolutionOverview},
		{IntentLookup, FormatReferenceSnippet},
		{Intent("quick-lookup"), FormatReferenceSnippet},
	}
	for _, tc := range tests {
		if got := ContentFormat(tc.intent); got != tc.want {
			t.Errorf("ContentFormat(%q) = %q, want %q", tc.intent, got, tc.want)
		}
	}
}

func TestExtractPrompt(t *testing.T) {
	tests := []struct {
		name       string
		prompt     string
		intents    []string
		attributes []string
	}{
		{"plain", "tell me about embeddings", []string{}, []string{}},
		{"comparison with attributes", "Compare Redis and Valkey on COST and latency", []string{"comparison"}, []string{"latency", "cost"}},
		{"how-to", "a guide   to scaling search", []string{"how-to"}, []string{}},
		{"both intents", "how to pick one: pinecone vs qdrant scalability", []string{"comparison", "how-to"}, []string{"scalability"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractPrompt(tc.prompt)
			if !slices.Equal(got.Intents, tc.intents) {
				t.Errorf("intents = %v, want %v", got.Intents, tc.intents)
			}
			if !slices.Equal(got.Attributes, tc.attributes) {
				t.Errorf("attributes = %v, want %v", got.Attributes, tc.attributes)
			}
			if got.Entities == nil || got.Questions == nil {
				t.Error("entities and questions should be empty, not nil")
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		query     string
		wantBroad string
		wantMicro string
	}{
		{"redis vs valkey latency", BroadResearch, MicroComparison},
		{"how to tune hnsw", BroadSolutionSeeking, MicroQuickLookup},
		{"cosine similarity", BroadSolutionSeeking, MicroQuickLookup},
	}
	for _, tc := range tests {
		got := Classify(tc.query)
		if got.Intent != tc.wantBroad || got.MicroIntent != tc.wantMicro {
			t.Errorf("Classify(%q) = %s/%s, want %s/%s", tc.query, got.Intent, got.MicroIntent, tc.wantBroad, tc.wantMicro)
		}
		if got.Query != tc.query || got.Entity != "" {
			t.Errorf("Classify(%q) = %+v", tc.query, got)
		}
	}
}

func TestNewBrief(t *testing.T) {
	b := NewBrief("Hybrid search", IntentComparison, []string{"BM25", "HNSW"})

	if b.Format != FormatComparisonTable {
		t.Errorf("format = %q", b.Format)
	}
	wantOutline := []string{
		"Introduction",
		"Hybrid search overview",
		"Key entities and concepts",
		"Examples / Code snippets",
		"FAQ",
	}
	if !slices.Equal(b.Outline, wantOutline) {
		t.Errorf("outline = %v", b.Outline)
	}
	if !slices.Equal(b.Entities, []string{"BM25", "HNSW"}) || len(b.Notes) != 2 {
		t.Errorf("unexpected brief: %+v", b)
	}

	if got := NewBrief("x", IntentLookup, nil); got.Entities == nil || got.Format != FormatReferenceSnippet {
		t.Errorf("nil entities: %+v", got)
	}
}
