// Package movieservice coordinates the catalog session, the store adapter
// and change notifications for the presentation layers.
package movieservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/filmoteka/internal/apperr"
	"github.com/starford/filmoteka/internal/catalog"
	"github.com/starford/filmoteka/internal/checksum"
	"github.com/starford/filmoteka/internal/models"
)

// Event kinds passed to a Publisher.
const (
	EventAdded   = "added"
	EventDeleted = "deleted"
	EventChanged = "changed"
)

// Publisher receives catalog change notifications.
type Publisher interface {
	PublishMovieEvent(kind string, index int, title string)
}

// MovieItem is a record together with its catalog position and fingerprint.
type MovieItem struct {
	Index    int    `json:"index"`
	Checksum string `json:"checksum"`
	models.Movie
}

// ListResult is the response payload for list and filter operations.
// Added is set after an append when the new record was found on reload.
type ListResult struct {
	Movies []MovieItem `json:"movies"`
	Total  int         `json:"total"`
	Source string      `json:"source"`
	Added  *MovieItem  `json:"added,omitempty"`
}

// TopResult is the response payload for the ranking.
type TopResult struct {
	Movies []MovieItem `json:"movies"`
	Empty  bool        `json:"empty"`
	Source string      `json:"source"`
}

// StatsResult bundles the aggregates shown next to the table.
type StatsResult struct {
	Ratings []catalog.RatingCount `json:"ratings"`
	Genres  []catalog.GenreCount  `json:"genres"`
	Summary catalog.Summary       `json:"summary"`
	Source  string                `json:"source"`
}

// NewMovie is user input for an added record.
type NewMovie struct {
	Title  string `json:"title"`
	Year   int    `json:"year"`
	Genre  string `json:"genre"`
	Rating int    `json:"rating"`
}

// Validate checks the form rules: title, genre and year are required and
// the rating is on the 1-10 scale.
func (n NewMovie) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&n.Year, validation.Required, validation.Min(1888), validation.Max(2100)),
		validation.Field(&n.Genre, validation.Required, validation.Length(1, 200)),
		validation.Field(&n.Rating, validation.Required, validation.Min(1), validation.Max(10)),
	)
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the change notification sink.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithYearMode sets how a single year parameter is interpreted.
func WithYearMode(m catalog.YearMode) Option {
	return func(s *Service) { s.yearMode = m }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service is the catalog facade used by the HTTP API, MCP server and CLI.
type Service struct {
	session  *catalog.Session
	yearMode catalog.YearMode
	events   Publisher
	logger   *slog.Logger
}

// NewService creates a new movie service over session.
func NewService(session *catalog.Session, opts ...Option) *Service {
	s := &Service{session: session, yearMode: catalog.YearExact, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// YearMode returns the configured interpretation of a single year parameter.
func (s *Service) YearMode() catalog.YearMode { return s.yearMode }

// Query builds filter criteria from request parameters. Explicit bounds
// always select a range; a single year follows the configured mode, where
// range mode reads it as a lower bound.
func (s *Service) Query(genre string, year, yearMin, yearMax int) catalog.Query {
	q := catalog.Query{Genre: genre}
	switch {
	case yearMin != 0 || yearMax != 0:
		q.YearMode, q.YearMin, q.YearMax = catalog.YearRange, yearMin, yearMax
	case year == 0:
	case s.yearMode == catalog.YearExact:
		q.YearMode, q.Year = catalog.YearExact, year
	case s.yearMode == catalog.YearRange:
		q.YearMode, q.YearMin = catalog.YearRange, year
	}
	return q
}

// List returns the whole catalog.
func (s *Service) List(ctx context.Context) ListResult {
	return s.Filter(ctx, catalog.Query{})
}

// Filter returns the records matching q. Indices refer to the full catalog.
func (s *Service) Filter(ctx context.Context, q catalog.Query) ListResult {
	res := s.session.Catalog(ctx)
	idx := catalog.FilterIndices(res.Catalog, q)
	return ListResult{
		Movies: items(res.Catalog, idx),
		Total:  len(idx),
		Source: res.State.String(),
	}
}

// Top returns the n best rated records.
func (s *Service) Top(ctx context.Context, n int) TopResult {
	res := s.session.Catalog(ctx)
	idx := catalog.RankIndices(res.Catalog, n)
	return TopResult{
		Movies: items(res.Catalog, idx),
		Empty:  len(idx) == 0,
		Source: res.State.String(),
	}
}

// Stats returns the rating histogram, the topK genres and a summary.
func (s *Service) Stats(ctx context.Context, topK int) StatsResult {
	res := s.session.Catalog(ctx)
	return StatsResult{
		Ratings: catalog.RatingHistogram(res.Catalog),
		Genres:  catalog.GenreFrequency(res.Catalog, topK),
		Summary: catalog.Summarize(res.Catalog),
		Source:  res.State.String(),
	}
}

// GenreOptions lists the distinct genre tags for filter inputs.
func (s *Service) GenreOptions(ctx context.Context) []string {
	return catalog.GenreOptions(s.session.Catalog(ctx).Catalog)
}

// Add validates in, appends it to the store and returns the reloaded catalog.
// On failure the catalog is left as it was.
func (s *Service) Add(ctx context.Context, in NewMovie) (ListResult, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Genre = strings.TrimSpace(in.Genre)
	if err := in.Validate(); err != nil {
		return ListResult{}, fmt.Errorf("%w: %w", apperr.ErrInvalid, err)
	}

	res := s.session.Catalog(ctx)
	adapter := s.session.Adapter()
	m := models.Movie{Title: in.Title, Year: in.Year, Genre: in.Genre, Rating: in.Rating}
	if adapter.HasIDColumn() {
		m.ID = uuid.NewString()
	}
	if err := adapter.Append(ctx, res.Handle, m); err != nil {
		s.logger.Warn("add movie failed", slog.String("title", m.Title), slog.String("error", err.Error()))
		return ListResult{}, err
	}

	s.session.Invalidate()
	list := s.List(ctx)
	list.Added = locate(list, m)
	if list.Added == nil {
		// Someone else changed the store in between; let clients refetch.
		s.logger.Warn("added movie not found on reload", slog.String("title", m.Title))
		s.publish(EventChanged, -1, "")
	} else {
		s.publish(EventAdded, list.Added.Index, m.Title)
	}
	s.logger.Info("movie added", slog.String("title", m.Title), slog.Int("year", m.Year))
	return list, nil
}

// locate finds the last record in a loaded list that matches m.
func locate(list ListResult, m models.Movie) *MovieItem {
	if list.Source != catalog.Loaded.String() {
		return nil
	}
	for i := len(list.Movies) - 1; i >= 0; i-- {
		it := list.Movies[i]
		same := it.Title == m.Title && it.Year == m.Year && it.Genre == m.Genre && it.Rating == m.Rating
		if m.ID != "" {
			same = it.ID == m.ID
		}
		if same {
			return &it
		}
	}
	return nil
}

// Delete removes the record at catalog position index. When ifMatch is not
// empty the store is re-read first and the record at index must still carry
// that fingerprint, otherwise apperr.ErrConflict is returned.
func (s *Service) Delete(ctx context.Context, index int, ifMatch string) (ListResult, error) {
	res := s.session.Catalog(ctx)
	if ifMatch != "" {
		res = s.session.Fresh(ctx)
	}
	if res.Handle == nil {
		return ListResult{}, fmt.Errorf("delete: %w: %w", apperr.ErrStore, apperr.ErrSourceUnavailable)
	}
	if index < 0 || index >= len(res.Catalog) {
		return ListResult{}, fmt.Errorf("delete: index %d: %w", index, apperr.ErrNotFound)
	}
	target := res.Catalog[index]
	if ifMatch != "" && checksum.Record(target) != ifMatch {
		return ListResult{}, fmt.Errorf("delete: index %d changed since it was read: %w", index, apperr.ErrConflict)
	}

	if err := s.session.Adapter().DeleteAt(ctx, res.Handle, target.SourceRow); err != nil {
		s.logger.Warn("delete movie failed", slog.Int("index", index), slog.String("error", err.Error()))
		return ListResult{}, err
	}

	s.session.Invalidate()
	s.publish(EventDeleted, index, target.Title)
	s.logger.Info("movie deleted", slog.String("title", target.Title), slog.Int("index", index))
	return s.List(ctx), nil
}

// Reload drops the memoized catalog so the next read goes to the store.
func (s *Service) Reload() {
	s.session.Invalidate()
}

// SourceChanged is called when the store was modified outside this process.
func (s *Service) SourceChanged() {
	s.session.Invalidate()
	s.publish(EventChanged, -1, "")
}

func (s *Service) publish(kind string, index int, title string) {
	if s.events != nil {
		s.events.PublishMovieEvent(kind, index, title)
	}
}

func items(c catalog.Catalog, idx []int) []MovieItem {
	out := make([]MovieItem, len(idx))
	for i, j := range idx {
		out[i] = MovieItem{Index: j, Checksum: checksum.Record(c[j]), Movie: c[j]}
	}
	return out
}

// IsUnavailable reports whether err was caused by an unreachable store.
func IsUnavailable(err error) bool {
	return errors.Is(err, apperr.ErrSourceUnavailable)
}
