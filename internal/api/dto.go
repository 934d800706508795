package api

import (
	"github.com/starford/filmoteka/internal/movieservice"
)

// AddMovieRequest is the request body for adding a movie.
type AddMovieRequest struct {
	Title  string `json:"title" example:"Kum" validate:"required"`
	Year   int    `json:"year" example:"1972" validate:"required"`
	Genre  string `json:"genre" example:"Krimić/Drama" validate:"required"`
	Rating int    `json:"rating" example:"10" validate:"required"`
}

// MovieItem is a catalog record with its position and fingerprint (aliased from the domain layer).
type MovieItem = movieservice.MovieItem

// MovieListResponse is returned by list, filter, add and delete.
type MovieListResponse = movieservice.ListResult

// TopResponse is returned by the ranking endpoint.
type TopResponse = movieservice.TopResult

// StatsResponse is returned by the statistics endpoint.
type StatsResponse = movieservice.StatsResult

// GenresResponse lists the distinct genre tags.
type GenresResponse struct {
	Genres []string `json:"genres" validate:"required"`
}
