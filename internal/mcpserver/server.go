// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the movie catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/filmoteka/internal/apperr"
	"github.com/starford/filmoteka/internal/movieservice"
)

// SchemaURI identifies the sheet schema resource.
const SchemaURI = "filmoteka://schema"

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *movieservice.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *movieservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Filmoteka",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	s.mcp.AddTool(mcp.NewTool("list_movies",
		mcp.WithDescription("List every movie in the catalog with its index and checksum."),
	), s.listMovies)

	s.mcp.AddTool(mcp.NewTool("filter_movies",
		mcp.WithDescription("Filter movies by genre substring and year. "+
			"year_min/year_max select a range; a single year follows the server's year mode."),
		mcp.WithString("genre", mcp.Description("Case-insensitive genre substring, e.g. drama")),
		mcp.WithNumber("year", mcp.Description("Release year")),
		mcp.WithNumber("year_min", mcp.Description("Lowest release year")),
		mcp.WithNumber("year_max", mcp.Description("Highest release year")),
	), s.filterMovies)

	s.mcp.AddTool(mcp.NewTool("top_movies",
		mcp.WithDescription("Best rated movies, ties broken by the older release."),
		mcp.WithNumber("n", mcp.Description("Number of movies (default 3)")),
	), s.topMovies)

	s.mcp.AddTool(mcp.NewTool("movie_stats",
		mcp.WithDescription("Rating histogram, most frequent genres and a catalog summary."),
		mcp.WithNumber("top_k", mcp.Description("Number of genres (default 10)")),
	), s.movieStats)

	s.mcp.AddTool(mcp.NewTool("add_movie",
		mcp.WithDescription("Append a movie to the source sheet. "+
			"Read the schema first via get_sheet_schema or the filmoteka://schema resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Movie title")),
		mcp.WithNumber("year", mcp.Required(), mcp.Description("Release year")),
		mcp.WithString("genre", mcp.Required(), mcp.Description("Genre tags separated by /")),
		mcp.WithNumber("rating", mcp.Required(), mcp.Description("Rating from 1 to 10")),
	), s.addMovie)

	s.mcp.AddTool(mcp.NewTool("delete_movie",
		mcp.WithDescription("Delete the movie at a catalog index. Pass the checksum from "+
			"list_movies so a concurrent change is detected instead of deleting the wrong row."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based catalog index")),
		mcp.WithString("checksum", mcp.Description("Checksum of the movie expected at index")),
	), s.deleteMovie)

	s.mcp.AddTool(mcp.NewTool("get_sheet_schema",
		mcp.WithDescription("Returns the worksheet layout and the addressing rules for movies."),
	), s.getSheetSchema)

	// Resource: sheet schema.
	s.mcp.AddResource(
		mcp.NewResource(SchemaURI, "Sheet Schema",
			mcp.WithResourceDescription("Column layout and rules of the movie worksheet."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSchemaResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// errorResult turns a service error into a tool error the model can act on.
func errorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		return mcp.NewToolResultError(err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("no movie at that index; call list_movies again")
	case errors.Is(err, apperr.ErrConflict):
		return mcp.NewToolResultError("the movie at that index changed; call list_movies again")
	case movieservice.IsUnavailable(err):
		return mcp.NewToolResultError("movie source unavailable; showing sample data only")
	}
	return mcp.NewToolResultError(fmt.Sprintf("movie source error: %v", err))
}

func (s *Server) listMovies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.List(ctx))
}

func (s *Server) filterMovies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := s.svc.Query(
		req.GetString("genre", ""),
		req.GetInt("year", 0),
		req.GetInt("year_min", 0),
		req.GetInt("year_max", 0),
	)
	return jsonResult(s.svc.Filter(ctx, q))
}

func (s *Server) topMovies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res := s.svc.Top(ctx, req.GetInt("n", 3))
	if res.Empty {
		return mcp.NewToolResultText("no movies to rank"), nil
	}
	return jsonResult(res)
}

func (s *Server) movieStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Stats(ctx, req.GetInt("top_k", 10)))
}

func (s *Server) addMovie(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	genre, err := req.RequireString("genre")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	year, err := req.RequireInt("year")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rating, err := req.RequireInt("rating")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	list, err := s.svc.Add(ctx, movieservice.NewMovie{Title: title, Year: year, Genre: genre, Rating: rating})
	if err != nil {
		return errorResult(err), nil
	}
	if list.Added == nil {
		return mcp.NewToolResultText(fmt.Sprintf("added: %s (%d); not found in the reloaded catalog", title, year)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s (%d) at index %d", list.Added.Title, list.Added.Year, list.Added.Index)), nil
}

func (s *Server) deleteMovie(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list, err := s.svc.Delete(ctx, index, req.GetString("checksum", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted index %d; %d movies remain", index, list.Total)), nil
}

func (s *Server) getSheetSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SheetSchema), nil
}

func (s *Server) readSchemaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SchemaURI,
			MIMEType: "text/markdown",
			Text:     SheetSchema,
		},
	}, nil
}
