// Package models defines the domain types for Filmoteka.
package models

import "strconv"

// Canonical column names of the movie sheet. Header row is row 1.
const (
	ColumnTitle  = "Naslov"
	ColumnYear   = "Godina"
	ColumnGenre  = "Žanr"
	ColumnRating = "Ocjena"
	ColumnID     = "ID"
)

// Columns returns the canonical columns in sheet order.
// When withID is true the optional stable key column is appended.
func Columns(withID bool) []string {
	cols := []string{ColumnTitle, ColumnYear, ColumnGenre, ColumnRating}
	if withID {
		cols = append(cols, ColumnID)
	}
	return cols
}

// GenreSeparator joins multiple genre tags inside a single cell ("Krimić/Drama").
const GenreSeparator = "/"

// RawRow is one data row as read from the store: column name -> cell text.
type RawRow map[string]string

// Movie is a normalized catalog record.
type Movie struct {
	ID     string   `json:"id,omitempty"`
	Title  string   `json:"title"`
	Year   int      `json:"year"`
	Genre  string   `json:"genre"`
	Genres []string `json:"genres"`
	Rating int      `json:"rating"`

	// SourceRow is the 0-based position of the row among the store's data rows.
	// It differs from the catalog position when earlier rows were dropped.
	SourceRow int `json:"-"`
}

// Cells returns the movie as a raw row keyed by canonical column.
func (m Movie) Cells(withID bool) RawRow {
	row := RawRow{
		ColumnTitle:  m.Title,
		ColumnYear:   strconv.Itoa(m.Year),
		ColumnGenre:  m.Genre,
		ColumnRating: strconv.Itoa(m.Rating),
	}
	if withID {
		row[ColumnID] = m.ID
	}
	return row
}
