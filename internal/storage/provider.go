// Package storage defines the store-of-record abstraction for the movie sheet.
//
// Every provider models a spreadsheet tab: row 1 holds the column headers and
// data starts at row 2. Rows are addressed by their 1-based physical position.
package storage

import (
	"context"

	"github.com/starford/filmoteka/internal/models"
)

// Provider is the interface for store-of-record operations.
type Provider interface {
	// Name identifies the source (kind plus location).
	Name() string
	// Rows returns every data row, header excluded, in row order.
	Rows(ctx context.Context) ([]models.RawRow, error)
	// AppendRow appends one row after the last data row. Cells are matched to
	// the header by column name. An empty store gets the canonical header
	// first; a header lacking a data column is an error.
	AppendRow(ctx context.Context, row models.RawRow) error
	// DeleteRow removes the row at the 1-based physical position. Row 1 is the header.
	DeleteRow(ctx context.Context, physicalRow int) error
}
