package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/corpusai/internal/api"
	"github.com/cloo-solutions/corpusai/internal/api/handlers"
	"github.com/cloo-solutions/corpusai/internal/api/middleware"
)

type RouterConfig struct {
	KnowledgeHandler *handlers.KnowledgeHandler
	SearchHandler    *handlers.SearchHandler
	ImportHandler    *handlers.ImportHandler
	ChatHandler      *handlers.ChatHandler
	StatsHandler     *handlers.StatsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 15 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/stats", cfg.StatsHandler.Get)

	r.Route("/knowledge", func(r chi.Router) {
		r.Post("/", cfg.KnowledgeHandler.Create)
		r.Get("/", cfg.KnowledgeHandler.List)
		r.Get("/{id}", cfg.KnowledgeHandler.Get)
		r.Put("/{id}", cfg.KnowledgeHandler.Update)
	})

	r.Post("/search", cfg.SearchHandler.Search)

	r.Route("/import", func(r chi.Router) {
		r.Post("/", cfg.ImportHandler.Upload)
		r.Get("/", cfg.ImportHandler.List)
		r.Get("/{id}", cfg.ImportHandler.Get)
		r.Get("/{id}/file", cfg.ImportHandler.DownloadOriginal)
	})

	r.Post("/chat/knowledge", cfg.ChatHandler.ChatKnowledge)

	return r
}
