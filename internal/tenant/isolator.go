// Package tenant derives the canonical tenant identifier every store
// operation must be scoped by, and nothing else — it holds no state and
// makes no I/O calls.
package tenant

import "strings"

// DefaultServiceSuffix is appended to every derived tenant id when the
// caller does not override it via Resolver.Suffix.
const DefaultServiceSuffix = "_kato"

// Resolver derives tenant ids with a configurable service suffix. The zero
// value uses DefaultServiceSuffix.
type Resolver struct {
	Suffix string
}

// Derive converts a caller-supplied node id into a canonical tenant id:
// replace the characters / \ . " $ * < > : | ? - and space with '_', append
// the service suffix, lowercase. This is the normative rule for
// cross-process, bit-exact tenant ids: any other character (e.g. '@', '!',
// '#') passes through unchanged. Pure and deterministic.
func (r Resolver) Derive(nodeID string) string {
	suffix := r.Suffix
	if suffix == "" {
		suffix = DefaultServiceSuffix
	}

	var b strings.Builder
	b.Grow(len(nodeID) + len(suffix))
	for _, ch := range nodeID {
		if isDisallowed(ch) {
			b.WriteByte('_')
		} else {
			b.WriteRune(ch)
		}
	}
	b.WriteString(suffix)
	return strings.ToLower(b.String())
}

func isDisallowed(r rune) bool {
	switch r {
	case '/', '\\', '.', '"', '$', '*', '<', '>', ':', '|', '?', '-', ' ':
		return true
	default:
		return false
	}
}

// Derive is a package-level convenience using DefaultServiceSuffix.
func Derive(nodeID string) string {
	return Resolver{}.Derive(nodeID)
}
