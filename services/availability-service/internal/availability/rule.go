// Package availability expands recurring weekly wall-clock rules into
// absolute intervals within a query window, across timezone offset changes.
package availability

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidClock reports a rule time outside the strict HH:MM form
// (hours 00-23, minutes 00-59).
var ErrInvalidClock = errors.New("availability: invalid HH:MM clock")

// ErrInvalidWeekday reports a weekday outside 0 (Sunday) .. 6 (Saturday).
var ErrInvalidWeekday = errors.New("availability: weekday out of range")

// WeeklyRule is one recurring wall-clock window on one weekday, repeating
// every week indefinitely. Start is expected to precede End; the engine does
// not enforce it and a reversed rule simply yields an empty candidate.
type WeeklyRule struct {
	Weekday time.Weekday
	Start   string // "HH:MM", minute resolution
	End     string // "HH:MM"
}

// clockMinutes parses a strict HH:MM clock into minutes after midnight.
func clockMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	for i, c := range []byte(s) {
		if i == 2 {
			continue
		}
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	}
	hh := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[3]-'0')*10 + int(s[4]-'0')
	if hh > 23 || mm > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return hh*60 + mm, nil
}

// dayRule is a WeeklyRule with its clocks parsed, ready for expansion.
type dayRule struct {
	startMin int
	endMin   int
}

// indexByWeekday groups parsed rules per weekday, preserving input order
// within each bucket. Weekdays with no rules get an empty bucket. The index
// is rebuilt on every expansion; nothing is cached across calls.
func indexByWeekday(rules []WeeklyRule) ([7][]dayRule, error) {
	var idx [7][]dayRule
	for _, r := range rules {
		if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
			return idx, fmt.Errorf("%w: %d", ErrInvalidWeekday, r.Weekday)
		}
		start, err := clockMinutes(r.Start)
		if err != nil {
			return idx, err
		}
		end, err := clockMinutes(r.End)
		if err != nil {
			return idx, err
		}
		idx[r.Weekday] = append(idx[r.Weekday], dayRule{startMin: start, endMin: end})
	}
	return idx, nil
}
