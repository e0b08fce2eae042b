// Package vectorindex specifies the Vector Indexer collaborator contract
// (spec.md §4.13, §6) and ships a deterministic reference implementation.
// The real nearest-neighbor backend is an external collaborator outside the
// core's scope (spec.md §1); the core depends only on determinism and
// per-tenant isolation, which the reference implementation provides via a
// stable hash of the vector's byte representation.
package vectorindex

import (
	"crypto/sha1" //nolint:gosec // deterministic fingerprint, not a security boundary
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/katosystems/kato-core/internal/katoerr"
)

// SymbolPrefix is the wire-format prefix for vector-derived synthetic
// symbols (spec.md §6).
const SymbolPrefix = "VCTR|"

// Indexer resolves a numeric vector to a deterministic synthetic symbol.
// The same vector under the same tenant must produce the same symbol across
// calls and restarts.
type Indexer interface {
	Index(tenantID string, vector []float64) (string, error)
}

// HashIndexer is a deterministic reference Indexer: it hashes the vector's
// big-endian float64 byte representation (a vector whose length differs
// from a non-zero Dimensionality is rejected, not truncated), combined with
// the tenant id so that the same vector under different
// tenants never collides on the synthetic symbol despite sharing a
// namespace-free store key.
type HashIndexer struct {
	// Dimensionality is the expected vector length; 0 disables the check.
	Dimensionality int
}

// NewHashIndexer constructs a HashIndexer with the given expected
// dimensionality (spec.md §4.13 mentions 768 as a common example; 0 means
// any length is accepted).
func NewHashIndexer(dimensionality int) *HashIndexer {
	return &HashIndexer{Dimensionality: dimensionality}
}

// Index implements Indexer.
func (h *HashIndexer) Index(tenantID string, vector []float64) (string, error) {
	if h.Dimensionality > 0 && len(vector) != h.Dimensionality {
		return "", katoerr.NewInvalidInput("vector", fmt.Sprintf("expected dimensionality %d, got %d", h.Dimensionality, len(vector)))
	}

	hasher := sha1.New() //nolint:gosec
	hasher.Write([]byte(tenantID))

	buf := make([]byte, 8)
	for _, f := range vector {
		binary.BigEndian.PutUint64(buf, math.Float64bits(f))
		hasher.Write(buf)
	}

	return SymbolPrefix + hex.EncodeToString(hasher.Sum(nil)), nil
}
