package catalog

import "github.com/starford/filmoteka/internal/models"

var fixtureRows = []models.RawRow{
	{models.ColumnTitle: "Kum", models.ColumnYear: "1972", models.ColumnGenre: "Krimić/Drama", models.ColumnRating: "10"},
	{models.ColumnTitle: "Iskupljenje u Shawshanku", models.ColumnYear: "1994", models.ColumnGenre: "Drama", models.ColumnRating: "10"},
	{models.ColumnTitle: "Pulp Fiction", models.ColumnYear: "1994", models.ColumnGenre: "Krimić/Triler", models.ColumnRating: "9"},
	{models.ColumnTitle: "Gospodar prstenova: Povratak kralja", models.ColumnYear: "2003", models.ColumnGenre: "Fantastika/Avantura", models.ColumnRating: "9"},
}

// Fixture returns the catalog shown when the store cannot be reached.
// Each call returns a fresh copy.
func Fixture() Catalog {
	return Normalize(fixtureRows)
}
