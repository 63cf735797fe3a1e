package result

// Hit is a single search result.
type Hit struct {
	id           string
	score        float64
	url          string
	title        string
	content      string
	lexicalScore float64
	vectorScore  float64
}

// New creates a search hit.
func New(id string, score float64, url, title, content string) Hit {
	return Hit{id: id, score: score, url: url, title: title, content: content}
}

// WithComponents returns a copy carrying the fused score and the raw
// per-backend scores that produced it.
func (h Hit) WithComponents(fused, lexical, vector float64) Hit {
	h.score = fused
	h.lexicalScore = lexical
	h.vectorScore = vector
	return h
}

// ID returns the page identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the relevance score (fused in hybrid mode).
func (h *Hit) Score() float64 { return h.score }

// URL returns the page address.
func (h *Hit) URL() string { return h.url }

// Title returns the page title.
func (h *Hit) Title() string { return h.title }

// Content returns the page content.
func (h *Hit) Content() string { return h.content }

// LexicalScore returns the raw BM25 score, 0 when the page was not a lexical hit.
func (h *Hit) LexicalScore() float64 { return h.lexicalScore }

// VectorScore returns the raw vector similarity, 0 when the page was not a vector hit.
func (h *Hit) VectorScore() float64 { return h.vectorScore }
