package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/filmoteka/internal/movieservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *movieservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog.
	r.Get("/movies", h.ListMovies)
	r.Post("/movies", h.AddMovie)
	r.Delete("/movies/{index}", h.DeleteMovie)

	// Aggregates.
	r.Get("/top", h.Top)
	r.Get("/stats", h.Stats)
	r.Get("/genres", h.Genres)

	r.Post("/reload", h.Reload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
