package server

import (
	"net/http"

	"github.com/brandloom-ai/brandloom/internal/api"
	"github.com/brandloom-ai/brandloom/internal/api/handlers"
	"github.com/brandloom-ai/brandloom/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	APIToken       string
	IndexHandler   *handlers.IndexHandler
	SearchHandler  *handlers.SearchHandler
	RewriteHandler *handlers.RewriteHandler
	DedupeHandler  *handlers.DedupeHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.APIToken))

		r.Route("/index", func(r chi.Router) {
			r.Post("/products", cfg.IndexHandler.IndexProducts)
			r.Post("/knowledge", cfg.IndexHandler.IndexKnowledge)
		})

		r.Get("/collections/{name}/count", cfg.IndexHandler.Count)

		r.Post("/search", cfg.SearchHandler.Search)
		r.Post("/rewrite", cfg.RewriteHandler.Rewrite)
		r.Post("/dedupe", cfg.DedupeHandler.Dedupe)
	})

	return r
}
