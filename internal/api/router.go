package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/flashdeck/internal/api/middleware"
)

// NewRouter creates the application router with all routes and middleware.
func NewRouter(h *DeckHandler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))

	r.Route("/api/decks", func(r chi.Router) {
		r.Get("/", h.ListDecks)
		r.Post("/", h.GenerateDeck)
		r.Post("/upload", h.UploadDeck)

		r.Route("/{subject}", func(r chi.Router) {
			r.Get("/", h.GetDeck)
			r.Put("/", h.SaveDeck)
			r.Delete("/", h.DeleteDeck)
			r.Get("/progress", h.GetProgress)
			r.Post("/attempts", h.RecordAttempt)
			r.Get("/mistakes", h.GetMistakes)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
