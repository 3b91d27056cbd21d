package server

import (
	"net/http"

	"github.com/asktube/asktube/internal/api"
	"github.com/asktube/asktube/internal/api/handlers"
	"github.com/asktube/asktube/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	VideoHandler *handlers.VideoHandler
	ChatHandler  *handlers.ChatHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/videos", cfg.VideoHandler.Process)
	r.Get("/jobs/{jobID}", cfg.VideoHandler.JobStatus)

	r.Post("/chat", cfg.ChatHandler.Chat)

	return r
}
