package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/filmoteka/internal/movieservice"
)

const (
	defaultTopN = 3
	defaultTopK = 10
)

// Handler holds API route handlers.
type Handler struct {
	svc *movieservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *movieservice.Service) *Handler {
	return &Handler{svc: svc}
}

// intParam reads an optional integer query parameter.
func intParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be an integer", name)
	}
	return v, nil
}

// ListMovies handles GET /api/movies.
//
//	@Summary		List movies with optional genre and year filters
//	@Tags			movies
//	@Produce		json
//	@Param			genre		query		string	false	"Case-insensitive genre substring"
//	@Param			year		query		int		false	"Year (exact or lower bound, per config)"
//	@Param			year_min	query		int		false	"Lowest year"
//	@Param			year_max	query		int		false	"Highest year"
//	@Success		200			{object}	MovieListResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/movies [get]
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := intParam(q, "year", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	yearMin, err := intParam(q, "year_min", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	yearMax, err := intParam(q, "year_max", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	query := h.svc.Query(q.Get("genre"), year, yearMin, yearMax)
	writeJSON(w, http.StatusOK, h.svc.Filter(r.Context(), query))
}

// AddMovie handles POST /api/movies.
//
//	@Summary		Append a movie to the source
//	@Tags			movies
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddMovieRequest	true	"Movie to add"
//	@Success		201		{object}	MovieListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/movies [post]
func (h *Handler) AddMovie(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AddMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	list, err := h.svc.Add(r.Context(), movieservice.NewMovie{
		Title:  req.Title,
		Year:   req.Year,
		Genre:  req.Genre,
		Rating: req.Rating,
	})
	if err != nil {
		writeError(w, "add movie", err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// DeleteMovie handles DELETE /api/movies/{index}.
//
//	@Summary		Delete the movie at a catalog position
//	@Tags			movies
//	@Param			index		path	int		true	"Catalog position"
//	@Param			If-Match	header	string	false	"Record checksum for optimistic concurrency"
//	@Success		204			"Movie deleted"
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		502			{object}	errResponse
//	@Failure		503			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/movies/{index} [delete]
func (h *Handler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}

	ifMatch := etagValue(r.Header.Get("If-Match"))

	if _, err := h.svc.Delete(r.Context(), index, ifMatch); err != nil {
		writeError(w, "delete movie", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// etagValue reduces an If-Match header to the bare checksum. Weak tags
// compare like strong ones; "*" matches any record.
func etagValue(h string) string {
	h = strings.TrimSpace(h)
	if h == "*" {
		return ""
	}
	h = strings.TrimPrefix(h, "W/")
	return strings.Trim(h, `"`)
}

// Top handles GET /api/top.
//
//	@Summary		Best rated movies
//	@Tags			stats
//	@Produce		json
//	@Param			n	query		int	false	"Number of movies"	default(3)
//	@Success		200	{object}	TopResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/top [get]
func (h *Handler) Top(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r.URL.Query(), "n", defaultTopN)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Top(r.Context(), n))
}

// Stats handles GET /api/stats.
//
//	@Summary		Rating histogram, genre frequency and summary
//	@Tags			stats
//	@Produce		json
//	@Param			top_k	query		int	false	"Number of genres"	default(10)
//	@Success		200		{object}	StatsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	topK, err := intParam(r.URL.Query(), "top_k", defaultTopK)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Stats(r.Context(), topK))
}

// Genres handles GET /api/genres.
//
//	@Summary		Distinct genre tags in first-seen order
//	@Tags			movies
//	@Produce		json
//	@Success		200	{object}	GenresResponse
//	@Security		BearerAuth
//	@Router			/genres [get]
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GenresResponse{Genres: h.svc.GenreOptions(r.Context())})
}

// Reload handles POST /api/reload.
//
//	@Summary		Drop the cached catalog and read the source again
//	@Tags			movies
//	@Produce		json
//	@Success		200	{object}	MovieListResponse
//	@Security		BearerAuth
//	@Router			/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	h.svc.Reload()
	writeJSON(w, http.StatusOK, h.svc.List(r.Context()))
}
