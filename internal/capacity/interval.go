package capacity

import "time"

// DefaultDurationDays is the fallback task length when a date is missing.
const DefaultDurationDays = 30

// ResolveInterval produces a concrete work interval from optional dates.
//
// A due-only task starts at the later of today and due minus the default
// duration. A due date already in the past collapses to the single day it names.
// Inverted start/due pairs collapse to the start day. The result always has
// Start <= Due.
func ResolveInterval(start, due *time.Time, today time.Time, defaultDays int) WorkInterval {
	if defaultDays <= 0 {
		defaultDays = DefaultDurationDays
	}
	today = Day(today)

	var iv WorkInterval
	switch {
	case start != nil && due != nil:
		iv = WorkInterval{Start: Day(*start), Due: Day(*due)}
	case due != nil:
		d := Day(*due)
		s := AddDays(d, -defaultDays)
		if s.Before(today) {
			s = today
		}
		iv = WorkInterval{Start: s, Due: d}
	case start != nil:
		s := Day(*start)
		iv = WorkInterval{Start: s, Due: AddDays(s, defaultDays)}
	default:
		iv = WorkInterval{Start: today, Due: AddDays(today, defaultDays)}
	}

	if iv.Due.Before(iv.Start) {
		if start != nil && due != nil {
			iv.Due = iv.Start
		} else {
			iv.Start = iv.Due
		}
	}
	return iv
}
