package catalog

import (
	"cmp"
	"slices"

	"github.com/starford/filmoteka/internal/models"
)

// RankIndices returns the positions of the n best records: rating
// descending, earlier year first on equal rating, catalog order after that.
func RankIndices(c Catalog, n int) []int {
	if n <= 0 || len(c) == 0 {
		return []int{}
	}
	idx := make([]int, len(c))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		if r := cmp.Compare(c[b].Rating, c[a].Rating); r != 0 {
			return r
		}
		return cmp.Compare(c[a].Year, c[b].Year)
	})
	return idx[:min(n, len(idx))]
}

// TopN returns the n best records in rank order. An empty catalog yields an
// empty, non-nil result.
func TopN(c Catalog, n int) Catalog {
	idx := RankIndices(c, n)
	out := make(Catalog, len(idx))
	for i, j := range idx {
		out[i] = c[j]
	}
	return out
}

// RatingCount is one histogram bucket.
type RatingCount struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// RatingHistogram counts records per rating, ascending by rating.
func RatingHistogram(c Catalog) []RatingCount {
	counts := map[int]int{}
	for _, m := range c {
		counts[m.Rating]++
	}
	out := make([]RatingCount, 0, len(counts))
	for r, n := range counts {
		out = append(out, RatingCount{Rating: r, Count: n})
	}
	slices.SortFunc(out, func(a, b RatingCount) int { return cmp.Compare(a.Rating, b.Rating) })
	return out
}

// GenreCount is the number of occurrences of one genre tag.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// GenreFrequency counts tag occurrences across all records and returns the
// topK most frequent, descending by count. Equal counts keep first-seen
// order. A non-positive topK returns every tag.
func GenreFrequency(c Catalog, topK int) []GenreCount {
	pos := map[string]int{}
	out := []GenreCount{}
	for _, m := range c {
		for _, tag := range tags(m) {
			i, ok := pos[tag]
			if !ok {
				i = len(out)
				pos[tag] = i
				out = append(out, GenreCount{Genre: tag})
			}
			out[i].Count++
		}
	}
	slices.SortStableFunc(out, func(a, b GenreCount) int { return cmp.Compare(b.Count, a.Count) })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// GenreOptions lists distinct genre tags in first-seen order.
func GenreOptions(c Catalog) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, m := range c {
		for _, tag := range tags(m) {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// Summary describes a catalog at a glance.
type Summary struct {
	Count         int     `json:"count"`
	AverageRating float64 `json:"average_rating"`
	YearMin       int     `json:"year_min"`
	YearMax       int     `json:"year_max"`
}

// Summarize computes count, mean rating and year span.
func Summarize(c Catalog) Summary {
	if len(c) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(c), YearMin: c[0].Year, YearMax: c[0].Year}
	total := 0
	for _, m := range c {
		total += m.Rating
		s.YearMin = min(s.YearMin, m.Year)
		s.YearMax = max(s.YearMax, m.Year)
	}
	s.AverageRating = float64(total) / float64(len(c))
	return s
}

// tags prefers the tags parsed at load time.
func tags(m models.Movie) []string {
	if m.Genres != nil {
		return m.Genres
	}
	return SplitGenres(m.Genre)
}
