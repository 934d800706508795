package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/filmoteka/internal"
	"github.com/starford/filmoteka/internal/render"
	pkgconfig "github.com/starford/filmoteka/pkg/config"
)

var version = "dev"

// defaultConfigFile is the shipped config, used when --config names a
// file that does not exist.
var defaultConfigFile = "config/config.yaml"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), defaultConfigFile, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

// openCatalog loads config and opens the source for a one-shot command.
// Logs go to stderr so table output stays clean.
func openCatalog(ctx context.Context, cmd *cli.Command) (*internal.Catalog, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return internal.OpenCatalog(ctx, cfg, internal.NewLogger(cfg, os.Stderr), nil), nil
}

func warnUnavailable(w io.Writer, source string) {
	if source != "loaded" {
		fmt.Fprintln(w, "Izvor podataka nije dostupan, prikazani su primjeri.")
	}
}

func list(ctx context.Context, cmd *cli.Command) error {
	cat, err := openCatalog(ctx, cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	svc := cat.Service
	q := svc.Query(cmd.String("genre"), int(cmd.Int("year")), int(cmd.Int("year-min")), int(cmd.Int("year-max")))
	res := svc.Filter(ctx, q)

	out := cmd.Root().Writer
	warnUnavailable(cmd.Root().ErrWriter, res.Source)
	fmt.Fprintln(out, render.Movies(res.Movies, render.IsTerminal(out)))
	return nil
}

func top(ctx context.Context, cmd *cli.Command) error {
	cat, err := openCatalog(ctx, cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	res := cat.Service.Top(ctx, int(cmd.Int("n")))
	out := cmd.Root().Writer
	warnUnavailable(cmd.Root().ErrWriter, res.Source)
	if res.Empty {
		fmt.Fprintln(out, "Nema filmova za rangiranje.")
		return nil
	}
	fmt.Fprintln(out, render.Movies(res.Movies, render.IsTerminal(out)))
	return nil
}

func stats(ctx context.Context, cmd *cli.Command) error {
	cat, err := openCatalog(ctx, cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	res := cat.Service.Stats(ctx, int(cmd.Int("top-k")))
	out := cmd.Root().Writer
	tty := render.IsTerminal(out)
	warnUnavailable(cmd.Root().ErrWriter, res.Source)
	fmt.Fprintln(out, render.Summary(res.Summary, tty))
	fmt.Fprintln(out, render.Ratings(res.Ratings, tty))
	fmt.Fprintln(out, render.Genres(res.Genres, tty))
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "filmoteka",
		Usage:   "Movie catalog kept in a spreadsheet, with filtering, ranking and statistics",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (.yaml or .toml); falls back to config/config.yaml when missing",
				DefaultText: "filmoteka.yaml",
				Value:       "filmoteka.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the catalog to MCP clients over stdio",
				Action: serveMCP,
			},
			{
				Name:   "list",
				Usage:  "Print the catalog, optionally filtered",
				Action: list,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Genre substring"},
					&cli.IntFlag{Name: "year", Aliases: []string{"y"}, Usage: "Release year"},
					&cli.IntFlag{Name: "year-min", Usage: "Lowest release year"},
					&cli.IntFlag{Name: "year-max", Usage: "Highest release year"},
				},
			},
			{
				Name:   "top",
				Usage:  "Print the best rated movies",
				Action: top,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Value: 3, Usage: "Number of movies"},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print rating and genre statistics",
				Action: stats,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "top-k", Value: 10, Usage: "Number of genres"},
				},
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
