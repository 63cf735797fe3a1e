package chi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semseo/internal/domain"
	"github.com/kailas-cloud/semseo/internal/domain/fusion"
	dompage "github.com/kailas-cloud/semseo/internal/domain/page"
	"github.com/kailas-cloud/semseo/internal/domain/search/result"
	analysisuc "github.com/kailas-cloud/semseo/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/semseo/internal/usecase/health"
	pageuc "github.com/kailas-cloud/semseo/internal/usecase/page"
	searchuc "github.com/kailas-cloud/semseo/internal/usecase/search"
	usageuc "github.com/kailas-cloud/semseo/internal/usecase/usage"
)

// --- Fakes ---

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	v, ok := f.vectors[text]
	if !ok {
		v = []float32{0, 0, 1}
	}
	return domain.EmbeddingResult{Embedding: v, TotalTokens: 2}, nil
}

type fakePageRepo struct {
	mu    sync.Mutex
	pages map[string]dompage.Page
}

func (f *fakePageRepo) EnsureIndex(_ context.Context) (bool, error) { return false, nil }

func (f *fakePageRepo) Upsert(_ context.Context, p *dompage.Page) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, exists := f.pages[p.ID()]
	f.pages[p.ID()] = *p
	return !exists, nil
}

func (f *fakePageRepo) UpsertBatch(ctx context.Context, pages []*dompage.Page) ([]bool, error) {
	created := make([]bool, len(pages))
	for i, p := range pages {
		created[i], _ = f.Upsert(ctx, p)
	}
	return created, nil
}

func (f *fakePageRepo) Get(_ context.Context, id string) (dompage.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[id]
	if !ok {
		return dompage.Page{}, domain.ErrPageNotFound
	}
	return p, nil
}

func (f *fakePageRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pages[id]; !ok {
		return domain.ErrPageNotFound
	}
	delete(f.pages, id)
	return nil
}

func (f *fakePageRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pages), nil
}

type fakeSearchRepo struct {
	textSearch bool
	lexical    []result.Hit
	vector     []result.Hit
}

func (f *fakeSearchRepo) SearchKNN(_ context.Context, _ []float32, _ int) ([]result.Hit, error) {
	return f.vector, nil
}

func (f *fakeSearchRepo) SearchBM25(_ context.Context, _ string, _ int) ([]result.Hit, error) {
	return f.lexical, nil
}

func (f *fakeSearchRepo) SupportsTextSearch(_ context.Context) bool { return f.textSearch }

type fakePinger struct{ err error }

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

// --- Harness ---

type harness struct {
	handler http.Handler
	pages   *fakePageRepo
	search  *fakeSearchRepo
	pinger  *fakePinger
	embed   *fakeEmbedder
}

func newHarness(t *testing.T, apiKeys ...string) *harness {
	t.Helper()
	h := &harness{
		pages: &fakePageRepo{pages: map[string]dompage.Page{}},
		search: &fakeSearchRepo{
			textSearch: true,
			lexical:    []result.Hit{result.New("a", 1.0, "https://ex.com/a", "A", "alpha body")},
			vector:     []result.Hit{result.New("b", 1.0, "https://ex.com/b", "B", "beta body")},
		},
		pinger: &fakePinger{},
		embed: &fakeEmbedder{vectors: map[string][]float32{
			"running shoes": {1, 0, 0},
			"trail running": {0.8, 0.6, 0},
			"pasta":         {0, 1, 0},
		}},
	}

	server := NewServer(Services{
		Analysis: analysisuc.New(h.embed, h.embed),
		Pages:    pageuc.New(h.pages, h.embed),
		Search:   searchuc.New(h.search, h.embed),
		Health:   healthuc.New(h.pinger, nil).WithPageCounter(h.pages),
		Usage:    usageuc.New(nil),
	}, Defaults{
		LexicalWeight: 0.5,
		VectorWeight:  0.5,
		Strategy:      fusion.Weighted,
		RRFK:          fusion.DefaultRRFK,
		GapThreshold:  0.6,
	}, "test", zap.NewNop())

	h.handler = NewRouter(server, apiKeys, zap.NewNop())
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorCode) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	if got := decodeBody[ErrorResponse](t, rr); got.Code != code {
		t.Errorf("code = %s, want %s", got.Code, code)
	}
}

// --- Similarity ---

func TestCosine(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/similarity/cosine", CosineRequest{A: []float64{1, 0}, B: []float64{1, 0}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if got := decodeBody[CosineResponse](t, rr); got.Similarity != 1 {
		t.Errorf("similarity = %v, want 1", got.Similarity)
	}

	rr = h.do(t, http.MethodPost, "/similarity/cosine", CosineRequest{A: []float64{1, 0}, B: []float64{1}})
	expectError(t, rr, http.StatusBadRequest, CodeInvalidShape)
}

func TestMatrix(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/similarity/matrix", MatrixRequest{Vectors: [][]float64{{1, 0}, {0, 1}}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	mat := decodeBody[MatrixResponse](t, rr).Matrix
	if len(mat) != 2 || mat[0][0] != 1 || mat[0][1] != 0 {
		t.Errorf("unexpected matrix: %v", mat)
	}

	rr = h.do(t, http.MethodPost, "/similarity/matrix", MatrixRequest{Texts: []string{"running shoes", "pasta"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Embedding-Tokens") != "4" {
		t.Errorf("X-Embedding-Tokens = %q, want 4", rr.Header().Get("X-Embedding-Tokens"))
	}

	rr = h.do(t, http.MethodPost, "/similarity/matrix", MatrixRequest{
		Vectors: [][]float64{{1}}, Texts: []string{"x"},
	})
	expectError(t, rr, http.StatusBadRequest, CodeValidationFailed)

	rr = h.do(t, http.MethodPost, "/similarity/matrix", MatrixRequest{Vectors: [][]float64{{1, 0}, {1}}})
	expectError(t, rr, http.StatusBadRequest, CodeInvalidShape)
}

// --- Fusion ---

func TestFusion(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/fusion", FusionRequest{
		A: []ScoredDocument{{"a", 1.0}, {"b", 0.4}},
		B: []ScoredDocument{{"b", 1.0}, {"c", 0.8}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	got := decodeBody[FusionResponse](t, rr).Results
	if len(got) != 3 || got[0].ID != "b" || got[1].ID != "a" || got[2].ID != "c" {
		t.Errorf("unexpected ranking: %+v", got)
	}

	neg := -1.0
	rr = h.do(t, http.MethodPost, "/fusion", FusionRequest{A: []ScoredDocument{{"a", 1}}, WeightA: &neg})
	expectError(t, rr, http.StatusBadRequest, CodeInvalidValue)

	rr = h.do(t, http.MethodPost, "/fusion", FusionRequest{A: []ScoredDocument{{"a", 1}, {"a", 2}}})
	expectError(t, rr, http.StatusBadRequest, CodeInvalidShape)

	rr = h.do(t, http.MethodPost, "/fusion", FusionRequest{Strategy: "borda"})
	expectError(t, rr, http.StatusBadRequest, CodeValidationFailed)
}

// --- Analysis ---

func TestGaps(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/gaps", GapsRequest{
		Queries:  []string{"trail running", "pasta"},
		Contents: []string{"running shoes"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[GapsResponse](t, rr)
	if resp.Threshold != 0.6 || resp.GapCount != 1 || len(resp.Results) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Results[0].IsGap || !resp.Results[1].IsGap {
		t.Errorf("expected only pasta to be a gap: %+v", resp.Results)
	}

	bad := 1.5
	rr = h.do(t, http.MethodPost, "/gaps", GapsRequest{Queries: []string{"q"}, Threshold: &bad})
	expectError(t, rr, http.StatusBadRequest, CodeValidationFailed)
}

func TestGaps_ProviderError(t *testing.T) {
	h := newHarness(t)
	h.embed.err = errors.Join(errors.New("503"), domain.ErrEmbeddingProviderError)

	rr := h.do(t, http.MethodPost, "/gaps", GapsRequest{Queries: []string{"q"}, Contents: []string{"c"}})
	expectError(t, rr, http.StatusBadGateway, CodeEmbeddingProviderError)
}

func TestGaps_QuotaExceeded(t *testing.T) {
	h := newHarness(t)
	h.embed.err = fmt.Errorf("daily limit 10 reached: %w", domain.ErrEmbeddingQuotaExceeded)

	rr := h.do(t, http.MethodPost, "/gaps", GapsRequest{Queries: []string{"q"}, Contents: []string{"c"}})
	expectError(t, rr, http.StatusPaymentRequired, CodeEmbeddingQuotaExceeded)
}

func TestRelevanceAndAudit(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/relevance", RelevanceRequest{
		Pages: []string{"trail running", "pasta"}, Entity: "running shoes",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	scores := decodeBody[RelevanceResponse](t, rr).Scores
	if len(scores) != 2 || scores[1] != 0 {
		t.Errorf("unexpected scores: %v", scores)
	}

	rr = h.do(t, http.MethodPost, "/relevance", RelevanceRequest{Pages: []string{"x"}})
	expectError(t, rr, http.StatusBadRequest, CodeValidationFailed)

	rr = h.do(t, http.MethodPost, "/audit", AuditRequest{
		Queries:   []string{"seo"},
		Pages:     []string{"SEO guide", "Baking bread"},
		CoreTerms: []string{"seo"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	audit := decodeBody[AuditResponse](t, rr)
	if audit.TopicalFocus != 0.5 || len(audit.DilutedPages) != 1 || audit.DilutedPages[0] != 1 {
		t.Errorf("unexpected audit: %+v", audit)
	}
	if len(audit.Cooccurrence) != 2 || audit.Cooccurrence[0] != (PairItem{A: "baking", B: "bread", Count: 1}) {
		t.Errorf("unexpected cooccurrence: %+v", audit.Cooccurrence)
	}
}

func TestIntent(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/intent", IntentRequest{Queries: []string{"pinecone vs qdrant latency", "best seo tools"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[IntentResponse](t, rr)
	if len(resp.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(resp.Results))
	}
	first := resp.Results[0]
	if first.Intent != "comparison" || first.Format != "comparison-table" || first.Broad != "research" ||
		first.MicroIntent != "comparison" || len(first.Attributes) != 1 || first.Attributes[0] != "latency" {
		t.Errorf("unexpected first result: %+v", first)
	}
	second := resp.Results[1]
	if second.Intent != "solution-seeking" || second.Format != "solution-overview" || second.MicroIntent != "quick-lookup" {
		t.Errorf("unexpected second result: %+v", second)
	}
}

func TestBrief(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/brief", BriefRequest{Topic: "how to build rag", Entities: []string{"embeddings"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[BriefResponse](t, rr)
	if resp.Format != "how-to-guide" || len(resp.Outline) != 5 || resp.Outline[1] != "how to build rag overview" {
		t.Errorf("unexpected brief: %+v", resp)
	}

	rr = h.do(t, http.MethodPost, "/brief", BriefRequest{Topic: "rag", Intent: "research"})
	expectError(t, rr, http.StatusBadRequest, CodeValidationFailed)

	rr = h.do(t, http.MethodPost, "/brief", BriefRequest{})
	expectError(t, rr, http.StatusBadRequest, CodeValidationFailed)
}

// --- Pages ---

func TestPagesLifecycle(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPut, "/pages/home", PageRequest{URL: "https://ex.com/", Title: "Home", Content: "Welcome"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Location") != "/pages/home" {
		t.Errorf("Location = %q", rr.Header().Get("Location"))
	}

	rr = h.do(t, http.MethodPut, "/pages/home", PageRequest{Content: "Welcome back"})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d", rr.Code)
	}

	rr = h.do(t, http.MethodGet, "/pages/home", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	if got := decodeBody[PageResponse](t, rr); got.Content != "Welcome back" {
		t.Errorf("content = %q", got.Content)
	}

	rr = h.do(t, http.MethodDelete, "/pages/home", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}

	expectError(t, h.do(t, http.MethodGet, "/pages/home", nil), http.StatusNotFound, CodePageNotFound)
	expectError(t, h.do(t, http.MethodDelete, "/pages/home", nil), http.StatusNotFound, CodePageNotFound)
}

func TestUpsertPage_HTML(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPut, "/pages/bread", PageRequest{
		HTML: "<html><head><title>Bread</title></head><body><p>Flour and water.</p></body></html>",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}

	got := decodeBody[PageResponse](t, h.do(t, http.MethodGet, "/pages/bread", nil))
	if got.Title != "Bread" || got.Content != "Flour and water." {
		t.Errorf("got %+v", got)
	}
}

func TestUpsertPage_Invalid(t *testing.T) {
	h := newHarness(t)
	rr := h.do(t, http.MethodPut, "/pages/home", PageRequest{URL: "not-a-url", Content: "x"})
	expectError(t, rr, http.StatusBadRequest, CodeValidationFailed)

	rr = h.do(t, http.MethodPut, "/pages/home", "{broken")
	expectError(t, rr, http.StatusBadRequest, CodeBadRequest)
}

func TestBatchUpsertPages(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/pages", BatchUpsertRequest{Pages: []BatchPageItem{
		{ID: "a", Content: "alpha"},
		{ID: "b", Content: ""},
		{Content: "generated id"},
	}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	results := decodeBody[BatchResponse](t, rr).Results
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Status != "ok" || !results[0].Created {
		t.Errorf("item 0: %+v", results[0])
	}
	if results[1].Status != "error" || results[1].Error == nil || results[1].Error.Code != CodeValidationFailed {
		t.Errorf("item 1: %+v", results[1])
	}
	if results[2].Status != "ok" {
		t.Errorf("item 2: %+v", results[2])
	}
	if n, _ := h.pages.Count(context.Background()); n != 2 {
		t.Errorf("stored pages = %d, want 2", n)
	}

	rr = h.do(t, http.MethodPost, "/pages", BatchUpsertRequest{})
	expectError(t, rr, http.StatusBadRequest, CodeValidationFailed)
}

// --- Search ---

func TestSearch(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/search", SearchRequest{Query: "running", IncludeContent: true})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	hits := decodeBody[SearchResponse](t, rr).Results
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %+v", hits)
	}
	// equal fused scores: lexical list first
	if hits[0].ID != "a" || hits[0].Score != 0.5 || hits[0].LexicalScore != 1 || hits[0].Content != "alpha body" {
		t.Errorf("hit 0: %+v", hits[0])
	}
	if hits[1].ID != "b" || hits[1].VectorScore != 1 {
		t.Errorf("hit 1: %+v", hits[1])
	}
	if rr.Header().Get("X-Embedding-Tokens") != "2" {
		t.Errorf("X-Embedding-Tokens = %q, want 2", rr.Header().Get("X-Embedding-Tokens"))
	}
}

func TestSearch_Errors(t *testing.T) {
	h := newHarness(t)

	zero := 0
	tests := []struct {
		name   string
		body   SearchRequest
		status int
		code   ErrorCode
	}{
		{"missing query", SearchRequest{}, http.StatusBadRequest, CodeValidationFailed},
		{"bad mode", SearchRequest{Query: "q", Mode: "fuzzy"}, http.StatusBadRequest, CodeValidationFailed},
		{"bad strategy", SearchRequest{Query: "q", Strategy: "borda"}, http.StatusBadRequest, CodeValidationFailed},
		{"zero top_n", SearchRequest{Query: "q", TopN: &zero}, http.StatusBadRequest, CodeValidationFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expectError(t, h.do(t, http.MethodPost, "/search", tc.body), tc.status, tc.code)
		})
	}

	h.search.textSearch = false
	rr := h.do(t, http.MethodPost, "/search", SearchRequest{Query: "q", Mode: "keyword"})
	expectError(t, rr, http.StatusNotImplemented, CodeKeywordSearchNotSupported)
}

// --- Health, routing, middleware ---

func TestHealth(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody[HealthResponse](t, rr)
	if resp.Status != "ok" || resp.Checks["database"] != "ok" || resp.Pages == nil || *resp.Pages != 0 {
		t.Errorf("unexpected health: %+v", resp)
	}
	if resp.Version != "test" {
		t.Errorf("version = %q", resp.Version)
	}

	h.pinger.err = errors.New("conn refused")
	rr = h.do(t, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded status = %d, want 503", rr.Code)
	}
}

func TestUsage(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name       string
		query      string
		wantPeriod string
	}{
		{"default is month", "", "month"},
		{"day", "?period=day", "day"},
		{"month", "?period=month", "month"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := h.do(t, http.MethodGet, "/usage"+tc.query, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
			}
			resp := decodeBody[UsageResponse](t, rr)
			if resp.Period != tc.wantPeriod {
				t.Errorf("period = %q, want %q", resp.Period, tc.wantPeriod)
			}
			if resp.Limit != -1 || resp.Remaining != -1 || resp.Exhausted {
				t.Errorf("unbudgeted usage should be unlimited: %+v", resp)
			}
			if resp.End <= resp.Start {
				t.Errorf("window [%d, %d) is empty", resp.Start, resp.End)
			}
		})
	}

	rr := h.do(t, http.MethodGet, "/usage?period=week", nil)
	expectError(t, rr, http.StatusBadRequest, CodeValidationFailed)
}

func TestRouter_AuthAndRequestID(t *testing.T) {
	h := newHarness(t, "secret")

	rr := h.do(t, http.MethodPost, "/audit", AuditRequest{})
	expectError(t, rr, http.StatusUnauthorized, CodeUnauthorized)

	rr = h.do(t, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("health should bypass auth, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRouter_NotFound(t *testing.T) {
	h := newHarness(t)
	expectError(t, h.do(t, http.MethodGet, "/collections", nil), http.StatusNotFound, CodeBadRequest)
	expectError(t, h.do(t, http.MethodGet, "/search", nil), http.StatusMethodNotAllowed, CodeBadRequest)
}

func TestRouter_Metrics(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/health", nil)

	rr := h.do(t, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "semseo_http_requests_total") {
		t.Error("expected HTTP metrics in /metrics output")
	}
}

func TestJSONRecoverer(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	handler := JSONRecoverer(zap.NewNop())(panicking)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	expectError(t, rr, http.StatusInternalServerError, CodeInternalError)
}

func TestSafeDomainMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrPageNotFound, domain.ErrPageNotFound.Error()},
		{fmt.Errorf("monthly: %w", domain.ErrEmbeddingQuotaExceeded), domain.ErrEmbeddingQuotaExceeded.Error()},
		{errors.New("dial tcp 10.0.0.1:6379: refused"), "internal error"},
		{domain.NewValueError("fuse", "weightA", -1), "fuse: invalid input value: weightA=-1"},
	}
	for _, tc := range tests {
		if got := safeDomainMessage(tc.err); got != tc.want {
			t.Errorf("safeDomainMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
