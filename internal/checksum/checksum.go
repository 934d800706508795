// Package checksum fingerprints records for optimistic concurrency checks.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/starford/filmoteka/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Record returns the fingerprint a client must echo back to delete m.
// Rows with a stable ID use the ID; others hash their four fields.
func Record(m models.Movie) string {
	if m.ID != "" {
		return m.ID
	}
	return Sum([]byte(strings.Join([]string{
		m.Title, strconv.Itoa(m.Year), m.Genre, strconv.Itoa(m.Rating),
	}, "\x1f")))
}
