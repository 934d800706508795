// Package testutil provides shared test helpers for setting up stores.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/filmoteka/internal/models"
	"github.com/starford/filmoteka/internal/storage"
)

// ErrUnreachable is returned by a MemoryStore with Down set.
var ErrUnreachable = errors.New("testutil: store unreachable")

// MemoryStore is an in-memory storage.Provider that counts calls.
type MemoryStore struct {
	mu    sync.Mutex
	rows  []models.RawRow
	Down  bool
	Loads int

	lossy bool
	gate  <-chan struct{}
}

// NewMemoryStore returns a store holding the given movies in order.
func NewMemoryStore(movies ...models.Movie) *MemoryStore {
	s := &MemoryStore{}
	for _, m := range movies {
		s.rows = append(s.rows, m.Cells(m.ID != ""))
	}
	return s
}

// AddRaw appends a raw row directly, bypassing any validation.
func (s *MemoryStore) AddRaw(row models.RawRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
}

// SetDown toggles reachability.
func (s *MemoryStore) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Down = down
}

// SetLossy makes AppendRow report success without storing anything, like a
// concurrent writer removing the row right away.
func (s *MemoryStore) SetLossy(lossy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lossy = lossy
}

// Hold makes Rows block until gate is closed or the caller's context ends.
func (s *MemoryStore) Hold(gate <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = gate
}

// LoadCount returns the number of Rows calls.
func (s *MemoryStore) LoadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Loads
}

// Name implements storage.Provider.
func (s *MemoryStore) Name() string { return "memory" }

// Rows implements storage.Provider.
func (s *MemoryStore) Rows(ctx context.Context) ([]models.RawRow, error) {
	s.mu.Lock()
	s.Loads++
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Down {
		return nil, ErrUnreachable
	}
	out := make([]models.RawRow, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

// AppendRow implements storage.Provider.
func (s *MemoryStore) AppendRow(_ context.Context, row models.RawRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Down {
		return ErrUnreachable
	}
	if !s.lossy {
		s.rows = append(s.rows, row)
	}
	return nil
}

// DeleteRow implements storage.Provider.
func (s *MemoryStore) DeleteRow(_ context.Context, physicalRow int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Down {
		return ErrUnreachable
	}
	i := physicalRow - 2
	if i < 0 || i >= len(s.rows) {
		return fmt.Errorf("testutil: row %d out of range", physicalRow)
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	return nil
}

// ThreeMovies is the catalog used throughout the tests.
func ThreeMovies() []models.Movie {
	return []models.Movie{
		{Title: "Kum", Year: 1972, Genre: "Krimić/Drama", Rating: 10},
		{Title: "Iskupljenje u Shawshanku", Year: 1994, Genre: "Drama", Rating: 10},
		{Title: "Pulp Fiction", Year: 1994, Genre: "Krimić/Triler", Rating: 9},
	}
}

// TestSQLite creates a temporary SQLite store that is automatically cleaned up.
func TestSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "filmoteka-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := storage.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestCSV creates a CSV store in a temp dir and returns its path too.
func TestCSV(t *testing.T) (string, *storage.CSV) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filmovi.csv")
	store, err := storage.NewCSV(path, false)
	if err != nil {
		t.Fatal(err)
	}
	return path, store
}
