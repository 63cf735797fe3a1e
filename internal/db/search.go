package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string // defaults to "__vector"
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 full-text search.
type TextQuery struct {
	IndexName    string
	Fields       []string // TEXT fields to match; all TEXT fields when empty
	Query        string
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Score is a cosine similarity for KNN
// queries and a raw BM25 score for text queries.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
