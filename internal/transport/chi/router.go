package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semseo/internal/metrics"
)

// NewRouter mounts every route of s behind the standard middleware stack.
func NewRouter(s *Server, apiKeys []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/similarity", func(r chi.Router) {
		r.Post("/cosine", s.Cosine)
		r.Post("/matrix", s.Matrix)
	})
	r.Post("/fusion", s.Fuse)
	r.Post("/gaps", s.Gaps)
	r.Post("/relevance", s.Relevance)
	r.Post("/audit", s.Audit)
	r.Post("/intent", s.Intent)
	r.Post("/brief", s.Brief)

	r.Route("/pages", func(r chi.Router) {
		r.Post("/", s.BatchUpsertPages)
		r.Put("/{id}", s.UpsertPage)
		r.Get("/{id}", s.GetPage)
		r.Delete("/{id}", s.DeletePage)
	})
	r.Post("/search", s.Search)
	r.Get("/usage", s.Usage)

	return r
}
