package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/starford/filmoteka/internal/models"
)

// YearMode selects the shape of the year predicate.
type YearMode int

const (
	YearAny YearMode = iota
	YearExact
	YearRange
)

// ParseYearMode maps a config value ("exact", "range") to a YearMode.
func ParseYearMode(s string) (YearMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return YearExact, nil
	case "range":
		return YearRange, nil
	case "any":
		return YearAny, nil
	}
	return YearAny, fmt.Errorf("catalog: unknown year mode %q", s)
}

func (m YearMode) String() string {
	switch m {
	case YearExact:
		return "exact"
	case YearRange:
		return "range"
	}
	return "any"
}

// Query holds filter criteria. Zero values mean "no constraint":
// an empty Genre, a zero Year in exact mode, a zero bound in range mode.
type Query struct {
	Genre    string
	YearMode YearMode
	Year     int
	YearMin  int
	YearMax  int
}

// Filter returns the records matching q in their original order.
// The input catalog is not modified.
func Filter(c Catalog, q Query) Catalog {
	m := q.matcher()
	out := make(Catalog, 0, len(c))
	for _, movie := range c {
		if m.match(movie) {
			out = append(out, movie)
		}
	}
	return out
}

// FilterIndices returns the catalog positions of the records matching q.
func FilterIndices(c Catalog, q Query) []int {
	m := q.matcher()
	out := make([]int, 0, len(c))
	for i, movie := range c {
		if m.match(movie) {
			out = append(out, i)
		}
	}
	return out
}

type matcher struct {
	q      Query
	genre  string
	folder cases.Caser
}

func (q Query) matcher() *matcher {
	m := &matcher{q: q, folder: cases.Fold()}
	if q.Genre != "" {
		m.genre = m.folder.String(q.Genre)
	}
	return m
}

func (m *matcher) match(movie models.Movie) bool {
	if m.genre != "" {
		if movie.Genre == "" || !strings.Contains(m.folder.String(movie.Genre), m.genre) {
			return false
		}
	}
	switch m.q.YearMode {
	case YearExact:
		if m.q.Year != 0 && movie.Year != m.q.Year {
			return false
		}
	case YearRange:
		if m.q.YearMin != 0 && movie.Year < m.q.YearMin {
			return false
		}
		if m.q.YearMax != 0 && movie.Year > m.q.YearMax {
			return false
		}
	}
	return true
}
