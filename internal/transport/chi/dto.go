package chi

import (
	"github.com/kailas-cloud/semseo/internal/domain/audit"
	"github.com/kailas-cloud/semseo/internal/domain/fusion"
	dompage "github.com/kailas-cloud/semseo/internal/domain/page"
	"github.com/kailas-cloud/semseo/internal/domain/search/result"
	analysisuc "github.com/kailas-cloud/semseo/internal/usecase/analysis"
	usageuc "github.com/kailas-cloud/semseo/internal/usecase/usage"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	CodeBadRequest                ErrorCode = "bad_request"
	CodeUnauthorized              ErrorCode = "unauthorized"
	CodeValidationFailed          ErrorCode = "validation_failed"
	CodeInvalidShape              ErrorCode = "invalid_shape"
	CodeInvalidValue              ErrorCode = "invalid_value"
	CodePageNotFound              ErrorCode = "page_not_found"
	CodeEmbeddingProviderError    ErrorCode = "embedding_provider_error"
	CodeEmbeddingQuotaExceeded    ErrorCode = "embedding_quota_exceeded"
	CodeKeywordSearchNotSupported ErrorCode = "keyword_search_not_supported"
	CodeInternalError             ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// --- similarity ---

// CosineRequest is the body of POST /similarity/cosine.
type CosineRequest struct {
	A []float64 `json:"a"`
	B []float64 `json:"b"`
}

// CosineResponse carries a single similarity.
type CosineResponse struct {
	Similarity float64 `json:"similarity"`
}

// MatrixRequest is the body of POST /similarity/matrix. Exactly one of
// Vectors or Texts must be set; texts are embedded first.
type MatrixRequest struct {
	Vectors [][]float64 `json:"vectors,omitempty"`
	Texts   []string    `json:"texts,omitempty"`
}

// MatrixResponse carries the N x N similarity matrix.
type MatrixResponse struct {
	Matrix [][]float64 `json:"matrix"`
}

// --- fusion ---

// ScoredDocument is one entry of a ranked list.
type ScoredDocument struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// FusionRequest is the body of POST /fusion. Omitted weights and strategy
// take the server defaults.
type FusionRequest struct {
	A        []ScoredDocument `json:"a"`
	B        []ScoredDocument `json:"b"`
	WeightA  *float64         `json:"weight_a,omitempty"`
	WeightB  *float64         `json:"weight_b,omitempty"`
	TopN     *int             `json:"top_n,omitempty"`
	Strategy string           `json:"strategy,omitempty"`
	RRFK     *float64         `json:"rrf_k,omitempty"`
}

// FusionResponse carries the fused ranking.
type FusionResponse struct {
	Results []ScoredDocument `json:"results"`
}

// --- analysis ---

// GapsRequest is the body of POST /gaps.
type GapsRequest struct {
	Queries   []string `json:"queries"`
	Contents  []string `json:"contents"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// GapItem is the coverage of one query.
type GapItem struct {
	Query         string  `json:"query"`
	MaxSimilarity float64 `json:"max_similarity"`
	IsGap         bool    `json:"is_gap"`
}

// GapsResponse lists every query in input order.
type GapsResponse struct {
	Threshold float64   `json:"threshold"`
	GapCount  int       `json:"gap_count"`
	Results   []GapItem `json:"results"`
}

// RelevanceRequest is the body of POST /relevance.
type RelevanceRequest struct {
	Pages  []string `json:"pages"`
	Entity string   `json:"entity"`
}

// RelevanceResponse carries one score per page.
type RelevanceResponse struct {
	Scores []float64 `json:"scores"`
}

// AuditRequest is the body of POST /audit.
type AuditRequest struct {
	Queries   []string `json:"queries"`
	Pages     []string `json:"pages"`
	CoreTerms []string `json:"core_terms"`
}

// CoverageItem lists the pages literally containing a query.
type CoverageItem struct {
	Query   string `json:"query"`
	Matches []int  `json:"matches"`
}

// AuditResponse is the keyword audit outcome.
type AuditResponse struct {
	Coverage     []CoverageItem `json:"coverage"`
	DilutedPages []int          `json:"diluted_pages"`
	TopicalFocus float64        `json:"topical_focus"`
	Cooccurrence []PairItem     `json:"cooccurrence"`
}

// PairItem is an adjacent token pair and how often it occurs across pages.
type PairItem struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Count int    `json:"count"`
}

// IntentRequest is the body of POST /intent.
type IntentRequest struct {
	Queries []string `json:"queries"`
}

// IntentItem is the keyword classification of one query.
type IntentItem struct {
	Query       string   `json:"query"`
	Intent      string   `json:"intent"`
	Format      string   `json:"format"`
	Broad       string   `json:"broad_intent"`
	MicroIntent string   `json:"micro_intent"`
	Intents     []string `json:"prompt_intents"`
	Attributes  []string `json:"attributes"`
}

// IntentResponse is the body returned by POST /intent.
type IntentResponse struct {
	Results []IntentItem `json:"results"`
}

// BriefRequest is the body of POST /brief. An empty intent is detected from the topic.
type BriefRequest struct {
	Topic    string   `json:"topic"`
	Intent   string   `json:"intent,omitempty"`
	Entities []string `json:"entities,omitempty"`
}

// BriefResponse is a content outline.
type BriefResponse struct {
	Topic    string   `json:"topic"`
	Format   string   `json:"format"`
	Entities []string `json:"entities"`
	Outline  []string `json:"outline"`
	Notes    []string `json:"notes"`
}

// --- pages ---

// PageRequest is the body of PUT /pages/{id}. Either content or html is required.
type PageRequest struct {
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// PageResponse is a stored page without its vector.
type PageResponse struct {
	ID      string `json:"id"`
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// BatchPageItem is one page of a batch upsert. An empty ID is generated.
type BatchPageItem struct {
	ID      string `json:"id,omitempty"`
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// BatchUpsertRequest is the body of POST /pages.
type BatchUpsertRequest struct {
	Pages []BatchPageItem `json:"pages"`
}

// BatchResultItem is the outcome of one batch item.
type BatchResultItem struct {
	ID      string         `json:"id"`
	Status  string         `json:"status"`
	Created bool           `json:"created,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse lists item outcomes in input order.
type BatchResponse struct {
	Results []BatchResultItem `json:"results"`
}

// --- search ---

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query          string   `json:"query"`
	Mode           string   `json:"mode,omitempty"`
	TopN           *int     `json:"top_n,omitempty"`
	LexicalWeight  *float64 `json:"lexical_weight,omitempty"`
	VectorWeight   *float64 `json:"vector_weight,omitempty"`
	Strategy       string   `json:"strategy,omitempty"`
	RRFK           *float64 `json:"rrf_k,omitempty"`
	MinScore       *float64 `json:"min_score,omitempty"`
	IncludeContent bool     `json:"include_content,omitempty"`
}

// SearchHit is a single ranked page.
type SearchHit struct {
	ID           string  `json:"id"`
	Score        float64 `json:"score"`
	URL          string  `json:"url,omitempty"`
	Title        string  `json:"title,omitempty"`
	Content      string  `json:"content,omitempty"`
	LexicalScore float64 `json:"lexical_score"`
	VectorScore  float64 `json:"vector_score"`
}

// SearchResponse lists hits, best first.
type SearchResponse struct {
	Results []SearchHit `json:"results"`
}

// --- health ---

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Pages   *int              `json:"pages,omitempty"`
	Version string            `json:"version"`
}

// --- usage ---

// UsageResponse is the body of GET /usage. Limit and remaining are -1 when unlimited.
type UsageResponse struct {
	Period    string `json:"period"`
	Provider  string `json:"provider,omitempty"`
	Start     int64  `json:"period_start_ms"`
	End       int64  `json:"period_end_ms"`
	Limit     int64  `json:"limit"`
	Used      int64  `json:"used"`
	Remaining int64  `json:"remaining"`
	Exhausted bool   `json:"exhausted"`
}

// --- converters ---

func scoredFromDTO(in []ScoredDocument) []fusion.ScoredDocument {
	out := make([]fusion.ScoredDocument, len(in))
	for i, d := range in {
		out[i] = fusion.ScoredDocument{ID: d.ID, Score: d.Score}
	}
	return out
}

func scoredToDTO(in []fusion.ScoredDocument) []ScoredDocument {
	out := make([]ScoredDocument, len(in))
	for i, d := range in {
		out[i] = ScoredDocument{ID: d.ID, Score: d.Score}
	}
	return out
}

func gapsToDTO(gaps []analysisuc.Gap, threshold float64) GapsResponse {
	resp := GapsResponse{Threshold: threshold, Results: make([]GapItem, len(gaps))}
	for i, g := range gaps {
		resp.Results[i] = GapItem{Query: g.Query, MaxSimilarity: g.MaxSimilarity, IsGap: g.IsGap}
		if g.IsGap {
			resp.GapCount++
		}
	}
	return resp
}

func auditToDTO(r analysisuc.AuditReport) AuditResponse {
	resp := AuditResponse{
		Coverage:     make([]CoverageItem, len(r.Coverage)),
		DilutedPages: r.DilutedPages,
		TopicalFocus: r.TopicalFocus,
	}
	for i, c := range r.Coverage {
		resp.Coverage[i] = CoverageItem{Query: c.Query, Matches: c.Matches}
	}
	resp.Cooccurrence = make([]PairItem, len(r.Cooccurrence))
	for i, pc := range r.Cooccurrence {
		resp.Cooccurrence[i] = PairItem{A: pc.A, B: pc.B, Count: pc.Count}
	}
	return resp
}

func intentsToDTO(in []analysisuc.QueryIntent) IntentResponse {
	resp := IntentResponse{Results: make([]IntentItem, len(in))}
	for i, q := range in {
		resp.Results[i] = IntentItem{
			Query:       q.Query,
			Intent:      string(q.Intent),
			Format:      q.Format,
			Broad:       q.Classification.Intent,
			MicroIntent: q.Classification.MicroIntent,
			Intents:     q.Elements.Intents,
			Attributes:  q.Elements.Attributes,
		}
	}
	return resp
}

func briefToDTO(b audit.Brief) BriefResponse {
	return BriefResponse{
		Topic:    b.Topic,
		Format:   b.Format,
		Entities: b.Entities,
		Outline:  b.Outline,
		Notes:    b.Notes,
	}
}

func pageToDTO(p *dompage.Page) PageResponse {
	return PageResponse{ID: p.ID(), URL: p.URL(), Title: p.Title(), Content: p.Content()}
}

func batchResultToDTO(r dompage.BatchResult) BatchResultItem {
	item := BatchResultItem{ID: r.ID, Status: string(r.Status), Created: r.Created}
	if r.Err != nil {
		item.Error = &ErrorResponse{Code: errorCode(r.Err), Message: safeDomainMessage(r.Err)}
	}
	return item
}

func hitToDTO(h *result.Hit, includeContent bool) SearchHit {
	hit := SearchHit{
		ID:           h.ID(),
		Score:        h.Score(),
		URL:          h.URL(),
		Title:        h.Title(),
		LexicalScore: h.LexicalScore(),
		VectorScore:  h.VectorScore(),
	}
	if includeContent {
		hit.Content = h.Content()
	}
	return hit
}

func usageToDTO(r usageuc.Report) UsageResponse {
	return UsageResponse{
		Period:    string(r.Period),
		Provider:  r.Provider,
		Start:     r.Start.UnixMilli(),
		End:       r.End.UnixMilli(),
		Limit:     r.Limit,
		Used:      r.Used,
		Remaining: r.Remaining,
		Exhausted: r.Exhausted,
	}
}
