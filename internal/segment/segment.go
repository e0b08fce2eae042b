// Package segment implements the temporal-segmentation algorithm (spec.md
// §4.8): splitting a matched pattern's events into past/present/future
// relative to the current short-term memory, plus the missing and extras
// symbol differences.
package segment

import "github.com/katosystems/kato-core/internal/model"

// Result is one pattern's segmentation against the current STM.
type Result struct {
	Past    []model.Event
	Present []model.Event
	Future  []model.Event
	Missing []model.Event
	Extras  []model.Event
}

// Segment computes Result for pattern events against the STM's flattened
// symbol set. Returns ok=false if no event of the pattern intersects the
// STM symbols — segmentation is then undefined and the pattern must be
// rejected by the caller (spec.md §4.8).
func Segment(patternEvents []model.Event, stm []model.Event) (Result, bool) {
	s := make(map[string]struct{})
	for _, e := range stm {
		for _, sym := range e {
			s[sym] = struct{}{}
		}
	}

	iFirst, iLast, found := -1, -1, false
	for i, e := range patternEvents {
		if eventIntersects(e, s) {
			if !found {
				iFirst = i
				found = true
			}
			iLast = i
		}
	}
	if !found {
		return Result{}, false
	}

	past := cloneSlice(patternEvents[:iFirst])
	present := cloneSlice(patternEvents[iFirst : iLast+1])
	future := cloneSlice(patternEvents[iLast+1:])

	missing := make([]model.Event, len(present))
	for i, e := range present {
		missing[i] = setDifference(e, s)
	}

	presentSymbols := make(map[string]struct{})
	for _, e := range present {
		for _, sym := range e {
			presentSymbols[sym] = struct{}{}
		}
	}
	extras := make([]model.Event, len(stm))
	for i, e := range stm {
		extras[i] = setDifference(e, presentSymbols)
	}

	return Result{
		Past:    past,
		Present: present,
		Future:  future,
		Missing: missing,
		Extras:  extras,
	}, true
}

// Fragmentation is one less than the number of contiguous runs of matching
// events within present (spec.md §4.9); present with no internal gaps is 0.
func Fragmentation(present []model.Event, stm []model.Event) int {
	s := make(map[string]struct{})
	for _, e := range stm {
		for _, sym := range e {
			s[sym] = struct{}{}
		}
	}

	runs := 0
	inRun := false
	for _, e := range present {
		if eventIntersects(e, s) {
			if !inRun {
				runs++
				inRun = true
			}
		} else {
			inRun = false
		}
	}
	if runs == 0 {
		return 0
	}
	return runs - 1
}

func eventIntersects(e model.Event, s map[string]struct{}) bool {
	for _, sym := range e {
		if _, ok := s[sym]; ok {
			return true
		}
	}
	return false
}

// setDifference returns the symbols of e not present in s, preserving e's
// order and duplicates (the result is itself an Event, empty but non-nil
// when every symbol is in s).
func setDifference(e model.Event, s map[string]struct{}) model.Event {
	out := model.Event{}
	for _, sym := range e {
		if _, ok := s[sym]; !ok {
			out = append(out, sym)
		}
	}
	return out
}

func cloneSlice(events []model.Event) []model.Event {
	if len(events) == 0 {
		return nil
	}
	out := make([]model.Event, len(events))
	for i, e := range events {
		out[i] = e.Clone()
	}
	return out
}
