package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/filmoteka/internal/models"
)

// Cells are stored as text, the same way a spreadsheet holds them; typing is
// left to the normalizer.
const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS movies (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	row_key TEXT NOT NULL DEFAULT '',
	naslov  TEXT NOT NULL DEFAULT '',
	godina  TEXT NOT NULL DEFAULT '',
	zanr    TEXT NOT NULL DEFAULT '',
	ocjena  TEXT NOT NULL DEFAULT ''
);
`

// SQLite implements Provider on a single table ordered by insertion.
// Physical row 2 is the first row of the table, mirroring a sheet header.
type SQLite struct {
	conn *sql.DB
	dsn  string
}

// OpenSQLite opens (or creates) the database and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(sqliteSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn, dsn: dsn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Name implements Provider.
func (s *SQLite) Name() string { return "sqlite:" + s.dsn }

// Rows implements Provider.
func (s *SQLite) Rows(ctx context.Context) ([]models.RawRow, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT row_key, naslov, godina, zanr, ocjena FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: query rows: %w", err)
	}
	defer rows.Close()

	out := []models.RawRow{}
	for rows.Next() {
		var key, title, year, genre, rating string
		if err := rows.Scan(&key, &title, &year, &genre, &rating); err != nil {
			return nil, fmt.Errorf("storage: scan row: %w", err)
		}
		out = append(out, models.RawRow{
			models.ColumnID:     key,
			models.ColumnTitle:  title,
			models.ColumnYear:   year,
			models.ColumnGenre:  genre,
			models.ColumnRating: rating,
		})
	}
	return out, rows.Err()
}

// AppendRow implements Provider.
func (s *SQLite) AppendRow(ctx context.Context, row models.RawRow) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO movies (row_key, naslov, godina, zanr, ocjena) VALUES (?, ?, ?, ?, ?)`,
		row[models.ColumnID], row[models.ColumnTitle], row[models.ColumnYear],
		row[models.ColumnGenre], row[models.ColumnRating])
	if err != nil {
		return fmt.Errorf("storage: insert row: %w", err)
	}
	return nil
}

// DeleteRow implements Provider.
func (s *SQLite) DeleteRow(ctx context.Context, physicalRow int) error {
	if physicalRow < 2 {
		return fmt.Errorf("storage: row %d out of range", physicalRow)
	}
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM movies WHERE id = (SELECT id FROM movies ORDER BY id LIMIT 1 OFFSET ?)`,
		physicalRow-2)
	if err != nil {
		return fmt.Errorf("storage: delete row: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: delete row: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("storage: row %d out of range", physicalRow)
	}
	return nil
}
