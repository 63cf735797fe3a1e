package mode

// Mode is the retrieval backend combination used by a search.
type Mode string

// Search mode constants.
const (
	// Hybrid fuses lexical and vector results.
	Hybrid   Mode = "hybrid"
	Semantic Mode = "semantic"
	Keyword  Mode = "keyword"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic || m == Keyword
}
