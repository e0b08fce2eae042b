package model

// STM is a session's short-term memory: an ordered sequence of events. It is
// a bounded ring when the session's max_pattern_length is positive, and
// unbounded otherwise. STM never contains empty events — the canonicalizer
// guarantees this by never appending one.
type STM struct {
	Events []Event `json:"events"`
}

// Clone returns a deep copy of the STM, safe to mutate independently.
func (s STM) Clone() STM {
	out := STM{Events: make([]Event, len(s.Events))}
	for i, e := range s.Events {
		out.Events[i] = e.Clone()
	}
	return out
}

// Append adds an event to the STM. STM is bounded by the auto-learn trigger
// (max_pattern_length), not by Append itself, so it never trims here.
func (s *STM) Append(e Event) {
	s.Events = append(s.Events, e)
}

// Clear empties the STM.
func (s *STM) Clear() {
	s.Events = nil
}

// KeepLastEvent truncates the STM to at most its final event, used by the
// ROLLING stm_mode after a learn.
func (s *STM) KeepLastEvent() {
	if len(s.Events) == 0 {
		return
	}
	s.Events = []Event{s.Events[len(s.Events)-1]}
}

// SymbolCount returns the total number of symbols across all events,
// counting duplicates.
func (s STM) SymbolCount() int {
	n := 0
	for _, e := range s.Events {
		n += len(e)
	}
	return n
}

// Length returns the number of events currently held.
func (s STM) Length() int {
	return len(s.Events)
}

// FlattenedSymbols returns the set of distinct symbols across all events.
func (s STM) FlattenedSymbols() map[string]struct{} {
	set := make(map[string]struct{})
	for _, e := range s.Events {
		for _, sym := range e {
			set[sym] = struct{}{}
		}
	}
	return set
}

// TokenMultiset returns every symbol occurrence across all events, including
// duplicates, as a slice — used where multiplicity matters (e.g. MinHash
// input construction mirrors the stored pattern's token_multiset shape).
func (s STM) TokenMultiset() []string {
	var toks []string
	for _, e := range s.Events {
		toks = append(toks, e...)
	}
	return toks
}
