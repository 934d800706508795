package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/starford/filmoteka/internal/models"
)

// CSV implements Provider backed by a local CSV file whose first line is the header.
type CSV struct {
	path string // absolute path to the CSV file
	lock *flock.Flock
}

// NewCSV creates a CSV provider for the file at path. A missing file is
// created with the canonical header so the store is immediately writable.
func NewCSV(path string, withID bool) (*CSV, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve csv path: %w", err)
	}
	c := &CSV{path: abs, lock: flock.New(abs + ".lock")}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, fmt.Errorf("storage: mkdir: %w", err)
		}
		if err := c.writeAll([][]string{models.Columns(withID)}); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("storage: stat csv: %w", err)
	case info.IsDir():
		return nil, fmt.Errorf("storage: csv path is a directory: %s", abs)
	}
	return c, nil
}

// Name implements Provider.
func (c *CSV) Name() string { return "csv:" + c.path }

// Path returns the absolute file path.
func (c *CSV) Path() string { return c.path }

// Rows implements Provider.
func (c *CSV) Rows(_ context.Context) ([]models.RawRow, error) {
	if err := c.lock.RLock(); err != nil {
		return nil, fmt.Errorf("storage: lock csv: %w", err)
	}
	defer c.lock.Unlock() //nolint:errcheck

	table, err := c.readAll()
	if err != nil {
		return nil, err
	}
	return rowsFromTable(table), nil
}

// AppendRow implements Provider.
func (c *CSV) AppendRow(_ context.Context, row models.RawRow) error {
	return c.update(func(table [][]string) ([][]string, error) {
		if len(table) == 0 {
			table = [][]string{models.Columns(row[models.ColumnID] != "")}
		}
		if err := checkHeader(table[0]); err != nil {
			return nil, err
		}
		return append(table, orderCells(table[0], row)), nil
	})
}

// DeleteRow implements Provider.
func (c *CSV) DeleteRow(_ context.Context, physicalRow int) error {
	return c.update(func(table [][]string) ([][]string, error) {
		i := physicalRow - 1
		if physicalRow < 2 || i >= len(table) {
			return nil, fmt.Errorf("storage: row %d out of range (%d rows)", physicalRow, len(table))
		}
		return append(table[:i], table[i+1:]...), nil
	})
}

// update runs a read-modify-write cycle under the exclusive file lock.
func (c *CSV) update(fn func([][]string) ([][]string, error)) error {
	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("storage: lock csv: %w", err)
	}
	defer c.lock.Unlock() //nolint:errcheck

	table, err := c.readAll()
	if err != nil {
		return err
	}
	table, err = fn(table)
	if err != nil {
		return err
	}
	return c.writeAll(table)
}

func (c *CSV) readAll() ([][]string, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("storage: open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	table, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: parse csv: %w", err)
	}
	return table, nil
}

// writeAll atomically replaces the file: tmp file → fsync → rename.
func (c *CSV) writeAll(table [][]string) error {
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".filmoteka-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(table); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
