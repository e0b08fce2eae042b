// Package patternhash computes the deterministic content identifier for a
// sequence of events, per spec.md §4.2. SHA-1 is used deliberately: the
// spec normatively fixes "PTRN|" + 40 lowercase hex characters as the wire
// format, which is exactly a SHA-1 digest, and no third-party library in the
// example pack improves on crypto/sha1 for this (see DESIGN.md).
package patternhash

import (
	"crypto/sha1" //nolint:gosec // required by the wire format, not used for security
	"encoding/binary"
	"encoding/hex"

	"github.com/katosystems/kato-core/internal/model"
)

// Hash computes the PTRN|<40-hex> identifier for an event sequence.
// Serialization is a canonical, length-prefixed byte encoding: for each
// event, its symbol count, then for each symbol its byte length followed by
// its bytes, in the exact order stored in the event. This makes the hash a
// pure function of Events, independent of tenant, and reproducible across
// process restarts and nodes.
func Hash(events []model.Event) string {
	h := sha1.New() //nolint:gosec
	var lenBuf [8]byte

	writeUint := func(n int) {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(n))
		h.Write(lenBuf[:])
	}

	for _, event := range events {
		writeUint(len(event))
		for _, sym := range event {
			writeUint(len(sym))
			h.Write([]byte(sym))
		}
	}

	sum := h.Sum(nil)
	return model.PatternIDPrefix + hex.EncodeToString(sum)
}

// Valid reports whether id has the correct "PTRN|" prefix and a 40-character
// lowercase hex suffix.
func Valid(id string) bool {
	const prefixLen = len(model.PatternIDPrefix)
	if len(id) != prefixLen+40 {
		return false
	}
	if id[:prefixLen] != model.PatternIDPrefix {
		return false
	}
	for _, c := range id[prefixLen:] {
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		if !isHex {
			return false
		}
	}
	return true
}
