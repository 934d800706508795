package render

import (
	"fmt"
	"strconv"

	"github.com/starford/filmoteka/internal/catalog"
	"github.com/starford/filmoteka/internal/models"
	"github.com/starford/filmoteka/internal/movieservice"
)

// Movies renders catalog records with their index.
func Movies(items []movieservice.MovieItem, interactive bool) string {
	headers := []string{"#", models.ColumnTitle, models.ColumnYear, models.ColumnGenre, models.ColumnRating}
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{
			strconv.Itoa(it.Index),
			it.Title,
			strconv.Itoa(it.Year),
			it.Genre,
			strconv.Itoa(it.Rating),
		}
	}
	return Table(headers, rows, []Align{AlignRight, AlignLeft, AlignRight, AlignLeft, AlignRight}, interactive)
}

// Ratings renders the rating histogram.
func Ratings(counts []catalog.RatingCount, interactive bool) string {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{strconv.Itoa(c.Rating), strconv.Itoa(c.Count)}
	}
	return Table([]string{models.ColumnRating, "Broj"}, rows, []Align{AlignRight, AlignRight}, interactive)
}

// Genres renders genre frequencies.
func Genres(counts []catalog.GenreCount, interactive bool) string {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Genre, strconv.Itoa(c.Count)}
	}
	return Table([]string{models.ColumnGenre, "Broj"}, rows, []Align{AlignLeft, AlignRight}, interactive)
}

// Summary renders the catalog summary as a two-column table.
func Summary(s catalog.Summary, interactive bool) string {
	span := "-"
	if s.Count > 0 {
		span = fmt.Sprintf("%d-%d", s.YearMin, s.YearMax)
	}
	rows := [][]string{
		{"Filmova", strconv.Itoa(s.Count)},
		{"Prosječna ocjena", strconv.FormatFloat(s.AverageRating, 'f', 2, 64)},
		{"Godine", span},
	}
	return Table([]string{"", ""}, rows, []Align{AlignLeft, AlignRight}, interactive)
}
