// Package catalog holds the in-memory movie table and the logic over it:
// normalization of raw store rows, filtering, ranking and aggregation, plus
// the adapter and session cache that load it from a storage.Provider.
package catalog

import "github.com/starford/filmoteka/internal/models"

// Catalog is the ordered sequence of normalized records. Order mirrors the
// store's row order. Catalogs returned by a Session are shared: callers must
// not modify them in place.
type Catalog []models.Movie
