package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/filmoteka/internal/models"
)

func scenarioCatalog() Catalog {
	return Normalize([]models.RawRow{
		raw("Kum", "1972", "Krimić/Drama", "10"),
		raw("Iskupljenje u Shawshanku", "1994", "Drama", "10"),
		raw("Pulp Fiction", "1994", "Krimić/Triler", "9"),
	})
}

func titles(c Catalog) []string {
	out := make([]string, len(c))
	for i, m := range c {
		out[i] = m.Title
	}
	return out
}

func TestFilter_GenreCaseInsensitive(t *testing.T) {
	c := scenarioCatalog()
	got := Filter(c, Query{Genre: "krimić"})
	assert.Equal(t, []string{"Kum", "Pulp Fiction"}, titles(got))

	got = Filter(c, Query{Genre: "KRIMIĆ"})
	assert.Equal(t, []string{"Kum", "Pulp Fiction"}, titles(got))
}

func TestFilter_GenreSubstringOfWholeField(t *testing.T) {
	c := Normalize([]models.RawRow{
		raw("Matrix", "1999", "SF/Akcija", "9"),
		raw("Bez žanra", "2000", "", "5"),
	})
	assert.Equal(t, []string{"Matrix"}, titles(Filter(c, Query{Genre: "sf"})))
	assert.Equal(t, []string{"Matrix"}, titles(Filter(c, Query{Genre: "f/a"})))
}

func TestFilter_GenreIsNotTrimmed(t *testing.T) {
	c := scenarioCatalog()
	assert.Empty(t, Filter(c, Query{Genre: " drama"}))
	assert.Empty(t, Filter(c, Query{Genre: "  "}))
	assert.Equal(t, []string{"Kum"}, titles(Filter(c, Query{Genre: "ć/d"})))
}

func TestFilter_YearRange(t *testing.T) {
	c := scenarioCatalog()
	got := Filter(c, Query{YearMode: YearRange, YearMin: 1990, YearMax: 2000})
	assert.Equal(t, []string{"Iskupljenje u Shawshanku", "Pulp Fiction"}, titles(got))

	got = Filter(c, Query{YearMode: YearRange, YearMin: 1972, YearMax: 1972})
	assert.Equal(t, []string{"Kum"}, titles(got), "bounds are inclusive")

	got = Filter(c, Query{YearMode: YearRange, YearMax: 1980})
	assert.Equal(t, []string{"Kum"}, titles(got), "zero lower bound is open")
}

func TestFilter_YearExact(t *testing.T) {
	c := scenarioCatalog()
	got := Filter(c, Query{YearMode: YearExact, Year: 1994})
	assert.Equal(t, []string{"Iskupljenje u Shawshanku", "Pulp Fiction"}, titles(got))
	assert.Empty(t, Filter(c, Query{YearMode: YearExact, Year: 1995}))
}

func TestFilter_ComposesWithAnd(t *testing.T) {
	c := scenarioCatalog()
	got := Filter(c, Query{Genre: "krimić", YearMode: YearExact, Year: 1994})
	assert.Equal(t, []string{"Pulp Fiction"}, titles(got))
}

func TestFilter_NoCriteriaIsIdentity(t *testing.T) {
	c := scenarioCatalog()
	for _, q := range []Query{{}, {YearMode: YearExact}, {YearMode: YearRange}, {Genre: "  "}} {
		assert.Equal(t, c, Filter(c, q))
	}
}

func TestFilter_Idempotent(t *testing.T) {
	c := scenarioCatalog()
	queries := []Query{
		{Genre: "drama"},
		{YearMode: YearRange, YearMin: 1990, YearMax: 2000},
		{Genre: "krimić", YearMode: YearExact, Year: 1972},
	}
	for _, q := range queries {
		once := Filter(c, q)
		assert.Equal(t, once, Filter(once, q))
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	c := scenarioCatalog()
	before := append(Catalog(nil), c...)
	got := Filter(c, Query{Genre: "drama"})
	require.NotEmpty(t, got)
	got[0].Title = "changed"
	assert.Equal(t, before, c)
}

func TestFilterIndices(t *testing.T) {
	c := scenarioCatalog()
	assert.Equal(t, []int{0, 2}, FilterIndices(c, Query{Genre: "krimić"}))
}

func TestParseYearMode(t *testing.T) {
	m, err := ParseYearMode("range")
	require.NoError(t, err)
	assert.Equal(t, YearRange, m)

	m, err = ParseYearMode("")
	require.NoError(t, err)
	assert.Equal(t, YearExact, m)

	_, err = ParseYearMode("decade")
	assert.Error(t, err)
}
