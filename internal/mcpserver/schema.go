package mcpserver

// SheetSchema describes the record layout LLM consumers should assume when
// reading or adding movies.
const SheetSchema = `# Filmoteka Sheet Schema

The catalog is a single worksheet (default tab name ` + "`" + `filmovi` + "`" + `).
Row 1 is the header; every following row is one movie.

## Columns

| Column | Meaning | Type |
|--------|---------|------|
| ` + "`" + `Naslov` + "`" + ` | title | text, required |
| ` + "`" + `Godina` + "`" + ` | release year | integer, required |
| ` + "`" + `Žanr` + "`" + ` | genre tags separated by ` + "`" + `/` + "`" + ` | text, required |
| ` + "`" + `Ocjena` + "`" + ` | rating on a 1-10 scale | integer, required |
| ` + "`" + `ID` + "`" + ` | stable row key | text, optional |

## Rules

1. Rows whose year or rating is not an integer are skipped when reading.
2. Genres are matched case-insensitively as a substring of the whole field,
   so ` + "`" + `krimi` + "`" + ` matches ` + "`" + `Krimić/Drama` + "`" + `.
3. A movie is addressed by its **index**: its 0-based position in the
   unfiltered catalog. Indices shift after every add or delete, so always
   take them from a fresh ` + "`" + `list_movies` + "`" + ` call.
4. Pass the ` + "`" + `checksum` + "`" + ` returned with a movie to ` + "`" + `delete_movie` + "`" + `. If the
   row at that index changed in the meantime the delete is refused.
5. Ranking sorts by rating (highest first), then by year (oldest first).

## Example row

` + "```" + `
Naslov,Godina,Žanr,Ocjena
Kum,1972,Krimić/Drama,10
` + "```" + `
`
