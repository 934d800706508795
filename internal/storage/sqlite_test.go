package storage

import (
	"context"
	"os"
	"testing"

	"github.com/starford/filmoteka/internal/models"
)

func testSQLite(t *testing.T) *SQLite {
	t.Helper()
	f, err := os.CreateTemp("", "filmoteka-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := OpenSQLite(f.Name())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite_AppendAndRows(t *testing.T) {
	db := testSQLite(t)
	ctx := context.Background()
	movies := []models.Movie{
		{Title: "Kum", Year: 1972, Genre: "Krimić/Drama", Rating: 10},
		{Title: "Pulp Fiction", Year: 1994, Genre: "Krimić/Triler", Rating: 9},
	}
	for _, m := range movies {
		if err := db.AppendRow(ctx, m.Cells(false)); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}
	rows, err := db.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[1][models.ColumnTitle] != "Pulp Fiction" || rows[1][models.ColumnYear] != "1994" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestSQLite_DeleteRow(t *testing.T) {
	db := testSQLite(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		_ = db.AppendRow(ctx, models.RawRow{models.ColumnTitle: title})
	}
	if err := db.DeleteRow(ctx, 3); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}
	rows, _ := db.Rows(ctx)
	if len(rows) != 2 || rows[0][models.ColumnTitle] != "a" || rows[1][models.ColumnTitle] != "c" {
		t.Errorf("rows = %v", rows)
	}
	if err := db.DeleteRow(ctx, 10); err == nil {
		t.Error("expected out of range error")
	}
	if err := db.DeleteRow(ctx, 1); err == nil {
		t.Error("expected error for header row")
	}
}
