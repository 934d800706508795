package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/filmoteka/internal/catalog"
	"github.com/starford/filmoteka/internal/movieservice"
	"github.com/starford/filmoteka/internal/storage"
)

// NewLogger builds the JSON logger used by every run mode.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// Catalog is an opened movie source with the service built on top of it.
type Catalog struct {
	Service *movieservice.Service
	// CSVPath is set when the source is a local CSV file that can be watched.
	CSVPath string
	closers []func() error
}

// Close releases the store.
func (c *Catalog) Close() error {
	var first error
	for _, fn := range c.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenCatalog connects to the configured source and builds the movie service.
// A source that cannot be opened is logged and served from the fixture, the
// same way an unreachable one is.
func OpenCatalog(ctx context.Context, cfg *Config, logger *slog.Logger, pub movieservice.Publisher) *Catalog {
	c := &Catalog{}

	provider, err := c.openProvider(ctx, cfg.Source)
	if err != nil {
		logger.Warn("source unavailable, serving sample data",
			slog.String("kind", cfg.Source.Kind),
			slog.String("error", err.Error()))
		provider = nil
	}

	offset := cfg.Source.HeaderOffset
	if offset == 0 {
		offset = catalog.DefaultHeaderOffset
	}
	adapter := catalog.NewAdapter(provider,
		catalog.WithHeaderOffset(offset),
		catalog.WithIDColumn(cfg.Source.IDColumn),
		catalog.WithLogger(logger),
	)

	opts := []movieservice.Option{
		movieservice.WithYearMode(cfg.Query.Mode()),
		movieservice.WithLogger(logger),
	}
	if pub != nil {
		opts = append(opts, movieservice.WithPublisher(pub))
	}
	c.Service = movieservice.NewService(catalog.NewSession(adapter), opts...)

	logger.Info("Catalog source",
		slog.String("kind", cfg.Source.Kind),
		slog.String("source", adapter.Source()))
	return c
}

func (c *Catalog) openProvider(ctx context.Context, src SourceConfig) (storage.Provider, error) {
	switch src.Kind {
	case SourceSheets:
		sh, err := storage.NewSheets(ctx, sheetsConfig(src))
		if err != nil {
			return nil, err
		}
		return storage.NewRateLimited(sh, src.RatePerMinute), nil

	case SourceCSV:
		csv, err := storage.NewCSV(src.CSVPath, src.IDColumn)
		if err != nil {
			return nil, err
		}
		c.CSVPath = csv.Path()
		return csv, nil

	case SourceSQLite:
		db, err := storage.OpenSQLite(src.SQLitePath)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, db.Close)
		return db, nil
	}
	return nil, fmt.Errorf("unknown source kind %q", src.Kind)
}

func sheetsConfig(src SourceConfig) storage.SheetsConfig {
	cfg := storage.SheetsConfig{
		SheetURL:        src.SheetURL,
		SheetName:       src.SheetName,
		CredentialsFile: src.CredentialsFile,
	}
	if src.CredentialsJSON != "" {
		cfg.CredentialsJSON = []byte(src.CredentialsJSON)
	}
	return cfg
}
