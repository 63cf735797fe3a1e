package chi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/semseo/internal/domain"
	"github.com/kailas-cloud/semseo/internal/domain/audit"
	"github.com/kailas-cloud/semseo/internal/domain/fusion"
	"github.com/kailas-cloud/semseo/internal/domain/search/mode"
	"github.com/kailas-cloud/semseo/internal/domain/search/request"
	"github.com/kailas-cloud/semseo/internal/domain/similarity"
	healthuc "github.com/kailas-cloud/semseo/internal/usecase/health"
	pageuc "github.com/kailas-cloud/semseo/internal/usecase/page"
	usageuc "github.com/kailas-cloud/semseo/internal/usecase/usage"
)

// Cosine handles POST /similarity/cosine.
func (s *Server) Cosine(w http.ResponseWriter, r *http.Request) {
	var req CosineRequest
	if !decode(w, r, &req) {
		return
	}
	sim, err := similarity.Cosine(req.A, req.B)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CosineResponse{Similarity: sim})
}

// Matrix handles POST /similarity/matrix.
func (s *Server) Matrix(w http.ResponseWriter, r *http.Request) {
	var req MatrixRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Vectors) > 0 && len(req.Texts) > 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "set either vectors or texts, not both")
		return
	}

	if len(req.Texts) > 0 {
		ctx, usage := domain.NewContextWithUsage(r.Context())
		mat, err := s.analysis.Matrix(ctx, req.Texts)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		setEmbeddingHeaders(w, usage)
		writeJSON(w, http.StatusOK, MatrixResponse{Matrix: mat})
		return
	}

	vectors := make([]similarity.Vector, len(req.Vectors))
	for i, v := range req.Vectors {
		vectors[i] = v
	}
	mat, err := similarity.PairwiseMatrix(vectors)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MatrixResponse{Matrix: mat})
}

// Fuse handles POST /fusion.
func (s *Server) Fuse(w http.ResponseWriter, r *http.Request) {
	var req FusionRequest
	if !decode(w, r, &req) {
		return
	}

	p := fusion.Params{
		Strategy: fusion.Strategy(req.Strategy),
		WeightA:  derefFloat(req.WeightA, s.defaults.LexicalWeight),
		WeightB:  derefFloat(req.WeightB, s.defaults.VectorWeight),
		K:        derefFloat(req.RRFK, s.defaults.RRFK),
		TopN:     derefInt(req.TopN, len(req.A)+len(req.B)),
	}
	if p.Strategy == "" {
		p.Strategy = s.defaults.Strategy
	}
	if !p.Strategy.IsValid() && p.Strategy != "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("invalid fusion strategy: %q", req.Strategy))
		return
	}

	fused, err := s.analysis.Fuse(scoredFromDTO(req.A), scoredFromDTO(req.B), p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FusionResponse{Results: scoredToDTO(fused)})
}

// Gaps handles POST /gaps.
func (s *Server) Gaps(w http.ResponseWriter, r *http.Request) {
	var req GapsRequest
	if !decode(w, r, &req) {
		return
	}
	threshold := derefFloat(req.Threshold, s.defaults.GapThreshold)
	if threshold < 0 || threshold > 1 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "threshold must be between 0 and 1")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	gaps, err := s.analysis.Gaps(ctx, req.Queries, req.Contents, threshold)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, gapsToDTO(gaps, threshold))
}

// Relevance handles POST /relevance.
func (s *Server) Relevance(w http.ResponseWriter, r *http.Request) {
	var req RelevanceRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	scores, err := s.analysis.Relevance(ctx, req.Pages, req.Entity)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, RelevanceResponse{Scores: scores})
}

// Audit handles POST /audit.
func (s *Server) Audit(w http.ResponseWriter, r *http.Request) {
	var req AuditRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, auditToDTO(s.analysis.Audit(req.Queries, req.Pages, req.CoreTerms)))
}

// Intent handles POST /intent.
func (s *Server) Intent(w http.ResponseWriter, r *http.Request) {
	var req IntentRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := s.analysis.Intents(req.Queries)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, intentsToDTO(out))
}

// Brief handles POST /brief.
func (s *Server) Brief(w http.ResponseWriter, r *http.Request) {
	var req BriefRequest
	if !decode(w, r, &req) {
		return
	}
	b, err := s.analysis.Brief(req.Topic, audit.Intent(req.Intent), req.Entities)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, briefToDTO(b))
}

// UpsertPage handles PUT /pages/{id}.
func (s *Server) UpsertPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req PageRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	p, created, err := s.pages.Upsert(ctx, pageuc.Input{
		ID: id, URL: req.URL, Title: req.Title, Content: req.Content, HTML: req.HTML,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", "/pages/"+p.ID())
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, status, pageToDTO(&p))
}

// BatchUpsertPages handles POST /pages.
func (s *Server) BatchUpsertPages(w http.ResponseWriter, r *http.Request) {
	var req BatchUpsertRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Pages) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "pages must not be empty")
		return
	}

	items := make([]pageuc.Input, len(req.Pages))
	for i, p := range req.Pages {
		items[i] = pageuc.Input{ID: p.ID, URL: p.URL, Title: p.Title, Content: p.Content, HTML: p.HTML}
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results := s.pages.UpsertBatch(ctx, items)

	resp := BatchResponse{Results: make([]BatchResultItem, len(results))}
	for i, res := range results {
		resp.Results[i] = batchResultToDTO(res)
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// GetPage handles GET /pages/{id}.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	p, err := s.pages.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToDTO(&p))
}

// DeletePage handles DELETE /pages/{id}.
func (s *Server) DeletePage(w http.ResponseWriter, r *http.Request) {
	if err := s.pages.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if !decode(w, r, &body) {
		return
	}

	req, err := s.searchRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	hits, err := s.search.Search(ctx, &req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := SearchResponse{Results: make([]SearchHit, len(hits))}
	for i := range hits {
		resp.Results[i] = hitToDTO(&hits[i], body.IncludeContent)
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) searchRequest(body SearchRequest) (request.Request, error) {
	if body.TopN != nil && (*body.TopN <= 0 || *body.TopN > request.MaxTopN) {
		return request.Request{}, fmt.Errorf("top_n must be between 1 and %d", request.MaxTopN)
	}
	strategy := fusion.Strategy(body.Strategy)
	if strategy == "" {
		strategy = s.defaults.Strategy
	}

	req, err := request.New(
		body.Query,
		mode.Mode(body.Mode),
		derefInt(body.TopN, 0),
		request.Weights{
			Lexical: derefFloat(body.LexicalWeight, s.defaults.LexicalWeight),
			Vector:  derefFloat(body.VectorWeight, s.defaults.VectorWeight),
		},
		strategy,
		derefFloat(body.RRFK, s.defaults.RRFK),
		derefFloat(body.MinScore, 0),
	)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return req, nil
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	resp := HealthResponse{Status: string(report.Status), Checks: checks, Version: s.version}
	if report.Pages >= 0 {
		n := report.Pages
		resp.Pages = &n
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// Usage handles GET /usage?period=day|month.
func (s *Server) Usage(w http.ResponseWriter, r *http.Request) {
	period, err := usageuc.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToDTO(s.usage.Report(period)))
}

func errorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrShape):
		return CodeInvalidShape
	case errors.Is(err, domain.ErrInvalidValue):
		return CodeInvalidValue
	case errors.Is(err, domain.ErrInvalidRequest):
		return CodeValidationFailed
	case errors.Is(err, domain.ErrPageNotFound):
		return CodePageNotFound
	case errors.Is(err, domain.ErrEmbeddingQuotaExceeded):
		return CodeEmbeddingQuotaExceeded
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return CodeEmbeddingProviderError
	default:
		return CodeInternalError
	}
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
