package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/filmoteka/internal/apperr"
	"github.com/starford/filmoteka/internal/models"
	"github.com/starford/filmoteka/internal/storage"
)

// DefaultHeaderOffset maps a 0-based data row to its 1-based physical row
// when the header occupies row 1.
const DefaultHeaderOffset = 2

// LoadState tells whether a load reached the store.
type LoadState int

const (
	Loaded LoadState = iota
	Unavailable
)

func (s LoadState) String() string {
	if s == Unavailable {
		return "unavailable"
	}
	return "loaded"
}

// LoadResult is the outcome of Adapter.Load. Handle is nil when State is
// Unavailable; Catalog then holds the fixture and Err the cause.
type LoadResult struct {
	State   LoadState
	Catalog Catalog
	Handle  storage.Provider
	Report  Report
	Err     error
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithHeaderOffset overrides DefaultHeaderOffset.
func WithHeaderOffset(n int) AdapterOption {
	return func(a *Adapter) { a.headerOffset = n }
}

// WithIDColumn makes appended rows carry a stable key in the ID column.
func WithIDColumn(enabled bool) AdapterOption {
	return func(a *Adapter) { a.withID = enabled }
}

// WithLogger sets the adapter logger.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l }
}

// Adapter is the boundary between the catalog and the store of record.
type Adapter struct {
	provider     storage.Provider
	headerOffset int
	withID       bool
	logger       *slog.Logger
}

// NewAdapter creates an adapter over p. A nil p behaves as a store that is
// never reachable.
func NewAdapter(p storage.Provider, opts ...AdapterOption) *Adapter {
	a := &Adapter{provider: p, headerOffset: DefaultHeaderOffset, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Source identifies the underlying store.
func (a *Adapter) Source() string {
	if a.provider == nil {
		return "fixture"
	}
	return a.provider.Name()
}

// HasIDColumn reports whether appended rows get a stable key.
func (a *Adapter) HasIDColumn() bool { return a.withID }

// Load fetches and normalizes every row. It never fails: when the store
// cannot be read the fixture catalog is returned with State Unavailable.
func (a *Adapter) Load(ctx context.Context) LoadResult {
	if a.provider == nil {
		return a.unavailable(fmt.Errorf("catalog: no store configured: %w", apperr.ErrSourceUnavailable))
	}
	rows, err := a.provider.Rows(ctx)
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return a.interrupted(err)
	}
	if err != nil {
		return a.unavailable(fmt.Errorf("catalog: load %s: %w: %w", a.provider.Name(), apperr.ErrSourceUnavailable, err))
	}
	c, rep := NormalizeReport(rows)
	if rep.Dropped > 0 {
		a.logger.Debug("catalog: dropped rows failing coercion",
			slog.String("source", a.provider.Name()),
			slog.Int("dropped", rep.Dropped),
			slog.Int("rows", rep.Rows))
	}
	return LoadResult{State: Loaded, Catalog: c, Handle: a.provider, Report: rep}
}

func (a *Adapter) unavailable(err error) LoadResult {
	a.logger.Warn("catalog: store unreachable, using fixture data", slog.String("error", err.Error()))
	c := Fixture()
	return LoadResult{
		State:   Unavailable,
		Catalog: c,
		Report:  Report{Rows: len(c), Kept: len(c)},
		Err:     err,
	}
}

// interrupted is the result for a caller that stopped waiting. It carries
// the fixture like an unavailable load but does not blame the store.
func (a *Adapter) interrupted(err error) LoadResult {
	c := Fixture()
	return LoadResult{
		State:   Unavailable,
		Catalog: c,
		Report:  Report{Rows: len(c), Kept: len(c)},
		Err:     fmt.Errorf("catalog: load interrupted: %w", err),
	}
}

// Append writes m as a new last row. The caller reloads afterwards.
func (a *Adapter) Append(ctx context.Context, h storage.Provider, m models.Movie) error {
	if h == nil {
		return fmt.Errorf("catalog: append: %w: %w", apperr.ErrStore, apperr.ErrSourceUnavailable)
	}
	if err := h.AppendRow(ctx, m.Cells(a.withID)); err != nil {
		return fmt.Errorf("catalog: append: %w: %w", apperr.ErrStore, err)
	}
	return nil
}

// DeleteAt removes the data row at rowIndex (0-based), which is physical row
// rowIndex + header offset in the store. The caller reloads afterwards.
func (a *Adapter) DeleteAt(ctx context.Context, h storage.Provider, rowIndex int) error {
	if h == nil {
		return fmt.Errorf("catalog: delete: %w: %w", apperr.ErrStore, apperr.ErrSourceUnavailable)
	}
	if rowIndex < 0 {
		return fmt.Errorf("catalog: delete: %w: negative row index %d", apperr.ErrStore, rowIndex)
	}
	if err := h.DeleteRow(ctx, rowIndex+a.headerOffset); err != nil {
		return fmt.Errorf("catalog: delete: %w: %w", apperr.ErrStore, err)
	}
	return nil
}
