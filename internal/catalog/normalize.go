package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/starford/filmoteka/internal/models"
	"github.com/starford/filmoteka/internal/storage"
)

// Report summarizes one normalization pass.
type Report struct {
	Rows    int
	Kept    int
	Dropped int
}

// Normalize converts raw rows into a Catalog, dropping rows whose year or
// rating cannot be coerced to an integer.
func Normalize(rows []models.RawRow) Catalog {
	c, _ := NormalizeReport(rows)
	return c
}

// NormalizeReport is Normalize with a count of kept and dropped rows.
func NormalizeReport(rows []models.RawRow) (Catalog, Report) {
	out := make(Catalog, 0, len(rows))
	for i, row := range rows {
		year, ok := ParseInt(cell(row, models.ColumnYear))
		if !ok {
			continue
		}
		rating, ok := ParseInt(cell(row, models.ColumnRating))
		if !ok {
			continue
		}
		genre := strings.TrimSpace(cell(row, models.ColumnGenre))
		out = append(out, models.Movie{
			ID:        strings.TrimSpace(cell(row, models.ColumnID)),
			Title:     strings.TrimSpace(cell(row, models.ColumnTitle)),
			Year:      year,
			Genre:     genre,
			Genres:    SplitGenres(genre),
			Rating:    rating,
			SourceRow: i,
		})
	}
	return out, Report{Rows: len(rows), Kept: len(out), Dropped: len(rows) - len(out)}
}

// ParseInt coerces cell text to an integer without locale rules: surrounding
// space is ignored and integral decimals such as "1994.0" or "1e1" are
// accepted. Hex notation and values outside the 32-bit range report false.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || isHex(s) {
		return 0, false
	}
	var f float64
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		f = float64(n)
	} else {
		f, err = strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// SplitGenres splits a genre cell on "/" into trimmed, non-empty tags.
func SplitGenres(genre string) []string {
	tags := []string{}
	for _, t := range strings.Split(genre, models.GenreSeparator) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// cell looks up a column, tolerating header names that were not canonicalized.
func cell(row models.RawRow, col string) string {
	if v, ok := row[col]; ok {
		return v
	}
	for k, v := range row {
		if storage.HeaderName(k) == col {
			return v
		}
	}
	return ""
}
