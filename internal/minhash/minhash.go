// Package minhash derives a MinHash signature and LSH band keys for a
// pattern or STM's token multiset, per spec.md §4.3. Hashing uses stdlib
// hash/fnv for the per-seed minima (fast, no ecosystem dependency improves
// on this for a simple seeded 64-bit hash) and crypto/sha1 for band-key
// hashing, consistent with internal/patternhash's choice of SHA-1.
package minhash

import (
	"crypto/sha1" //nolint:gosec // band-key hashing, not a security boundary
	"encoding/binary"
	"encoding/hex"
	"hash/fnv"
	"math"
)

// Config fixes the signature size and band/row split. Bands*Rows must equal
// NumHashes — the engine's Configuration Resolver enforces this at config
// time (spec.md §4.14).
type Config struct {
	NumHashes int // K, default 100
	Bands     int // B, default 20
	Rows      int // R, default 5
}

// DefaultConfig matches spec.md §4.3's defaults.
var DefaultConfig = Config{NumHashes: 100, Bands: 20, Rows: 5}

// MaxUint64 is the signature value assigned to a hash seed when the input
// multiset is empty — guarantees an empty signature never matches any other.
const MaxUint64 = ^uint64(0)

// Signature computes the K-dimensional MinHash signature of a token
// multiset (duplicates in the input do not change the result — MinHash
// operates over the underlying set).
func Signature(tokens []string, cfg Config) []uint64 {
	sig := make([]uint64, cfg.NumHashes)
	for i := range sig {
		sig[i] = MaxUint64
	}
	if len(tokens) == 0 {
		return sig
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		seen[t] = struct{}{}
	}

	for i := 0; i < cfg.NumHashes; i++ {
		seed := uint64(i)
		var min uint64 = MaxUint64
		for t := range seen {
			v := seededHash(seed, t)
			if v < min {
				min = v
			}
		}
		sig[i] = min
	}
	return sig
}

// seededHash computes a 64-bit FNV-1a hash of seed and token combined, giving
// K independent hash functions from K distinct seeds.
func seededHash(seed uint64, token string) uint64 {
	h := fnv.New64a()
	var seedBuf [8]byte
	binary.BigEndian.PutUint64(seedBuf[:], seed)
	h.Write(seedBuf[:])
	h.Write([]byte(token))
	return h.Sum64()
}

// Bands splits a signature into cfg.Bands band keys of cfg.Rows rows each.
// Two patterns share a band key iff their signatures agree on those R rows —
// a proxy for estimated Jaccard similarity ≥ ~(1/B)^(1/R).
func Bands(sig []uint64, cfg Config) []string {
	bands := make([]string, 0, cfg.Bands)
	for b := 0; b < cfg.Bands; b++ {
		start := b * cfg.Rows
		end := start + cfg.Rows
		if end > len(sig) {
			end = len(sig)
		}
		bands = append(bands, bandKey(sig[start:end]))
	}
	return bands
}

func bandKey(rows []uint64) string {
	h := sha1.New() //nolint:gosec
	var buf [8]byte
	for _, v := range rows {
		binary.BigEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RetentionProbability is the probability that two multisets with true
// Jaccard similarity j survive the LSH band filter: 1 − (1 − j^R)^B.
func RetentionProbability(j float64, cfg Config) float64 {
	return 1 - math.Pow(1-math.Pow(j, float64(cfg.Rows)), float64(cfg.Bands))
}

// SharesBand reports whether two band-key slices have any key in common.
func SharesBand(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	for _, k := range b {
		if _, ok := set[k]; ok {
			return true
		}
	}
	return false
}
