// Package chi exposes the analysis, page and search use cases over HTTP.
package chi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semseo/internal/domain"
	"github.com/kailas-cloud/semseo/internal/domain/fusion"
	logpkg "github.com/kailas-cloud/semseo/internal/logger"
	analysisuc "github.com/kailas-cloud/semseo/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/semseo/internal/usecase/health"
	pageuc "github.com/kailas-cloud/semseo/internal/usecase/page"
	searchuc "github.com/kailas-cloud/semseo/internal/usecase/search"
	usageuc "github.com/kailas-cloud/semseo/internal/usecase/usage"
)

// maxBodyBytes caps request bodies: a full batch of maximum-size pages plus JSON overhead.
const maxBodyBytes = 20 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Services groups the use cases served over HTTP.
type Services struct {
	Analysis *analysisuc.Service
	Pages    *pageuc.Service
	Search   *searchuc.Service
	Health   *healthuc.Service
	Usage    *usageuc.Service
}

// Defaults are applied to request fields the client leaves out.
type Defaults struct {
	LexicalWeight float64
	VectorWeight  float64
	Strategy      fusion.Strategy
	RRFK          float64
	GapThreshold  float64
}

// Server holds the HTTP handlers.
type Server struct {
	analysis      *analysisuc.Service
	pages         *pageuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	usage         *usageuc.Service
	defaults      Defaults
	version       string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, defaults Defaults, version string, logger *zap.Logger) *Server {
	s := &Server{
		analysis: svc.Analysis,
		pages:    svc.Pages,
		search:   svc.Search,
		health:   svc.Health,
		usage:    svc.Usage,
		defaults: defaults,
		version:  version,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrShape, http.StatusBadRequest, CodeInvalidShape),
		sentinelHandler(domain.ErrInvalidValue, http.StatusBadRequest, CodeInvalidValue),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrPageNotFound, http.StatusNotFound, CodePageNotFound),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired, CodeEmbeddingQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrKeywordSearchNotSupported,
			http.StatusNotImplemented, CodeKeywordSearchNotSupported),
	}
	return s
}

// clientErrors are the sentinels whose wrapped message is safe to return verbatim.
var clientErrors = []error{domain.ErrShape, domain.ErrInvalidValue, domain.ErrInvalidRequest}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range clientErrors {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	sentinels := []error{
		domain.ErrPageNotFound,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrKeywordSearchNotSupported,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// decode reads a JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
