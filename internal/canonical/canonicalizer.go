// Package canonical turns a raw Observation into a canonical Event plus its
// emotive and metadata side-channel, per spec.md §4.1. Canonicalization has
// no nondeterministic inputs: the same observation always yields the same
// event.
package canonical

import (
	"sort"

	"github.com/katosystems/kato-core/internal/model"
)

// VectorIndexer resolves a numeric vector to a deterministic synthetic
// symbol. Implemented by internal/vectorindex; declared here to avoid an
// import cycle.
type VectorIndexer interface {
	Index(tenantID string, vector []float64) (string, error)
}

// Result is the output of canonicalizing one observation.
type Result struct {
	// Event is nil when the observation produced no symbols (it may still
	// carry emotives/metadata to accumulate).
	Event    model.Event
	Emotives map[string]float64
	Metadata map[string]string
}

// Canonicalize applies the vector indexer to each vector (in input order,
// prepended to the event), then appends string symbols — sorted
// byte-lexicographically when sortSymbols is true, preserved as given
// otherwise.
func Canonicalize(tenantID string, obs model.Observation, indexer VectorIndexer, sortSymbols bool) (Result, error) {
	res := Result{Emotives: obs.Emotives, Metadata: obs.Metadata}

	var symbols []string
	for _, v := range obs.Vectors {
		sym, err := indexer.Index(tenantID, v)
		if err != nil {
			return Result{}, err
		}
		symbols = append(symbols, sym)
	}

	strs := make([]string, len(obs.Strings))
	copy(strs, obs.Strings)
	if sortSymbols {
		sort.Strings(strs)
	}
	symbols = append(symbols, strs...)

	if len(symbols) == 0 {
		return res, nil
	}
	res.Event = model.Event(symbols)
	return res, nil
}
