package storage

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/starford/filmoteka/internal/models"
)

// HeaderName canonicalizes a header cell: BOM and surrounding space removed,
// NFC composed so that a decomposed "Žanr" matches models.ColumnGenre.
func HeaderName(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return norm.NFC.String(strings.TrimSpace(s))
}

// rowsFromTable turns a header-first table into raw rows. Short rows are
// padded with empty cells; extra cells without a header are ignored. Blank
// rows are kept so that positions keep matching physical rows.
func rowsFromTable(table [][]string) []models.RawRow {
	if len(table) == 0 {
		return []models.RawRow{}
	}
	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		header[i] = HeaderName(h)
	}
	out := make([]models.RawRow, 0, len(table)-1)
	for _, rec := range table[1:] {
		row := make(models.RawRow, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		out = append(out, row)
	}
	return out
}

// checkHeader fails when header lacks one of the four data columns, so an
// append never writes a row whose cells cannot be read back.
func checkHeader(header []string) error {
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[HeaderName(h)] = true
	}
	var missing []string
	for _, col := range models.Columns(false) {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("storage: header %q lacks columns %s", header, strings.Join(missing, ", "))
	}
	return nil
}

// orderCells lays row out in header order.
func orderCells(header []string, row models.RawRow) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = row[HeaderName(h)]
	}
	return out
}
