// Package interval implements the half-open absolute-time interval algebra
// behind free/busy computation: overlap tests, exact subtraction with
// splitting, duration filters, and local-date bucketing.
package interval

import "time"

// Interval is a contiguous span of absolute time. End is exclusive; an
// interval with End <= Start covers no time at all.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Empty reports whether the interval covers no time.
func (iv Interval) Empty() bool {
	return !iv.End.After(iv.Start)
}

// Overlaps reports whether two half-open intervals share any instant.
// Boundary contact (one ending exactly where the other starts) is not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// LongerThan returns a predicate keeping intervals of at least min duration.
// Callers use it to drop availability windows too short to book.
func LongerThan(min time.Duration) func(Interval) bool {
	return func(iv Interval) bool {
		return iv.Duration() >= min
	}
}

func Filter(in []Interval, keep func(Interval) bool) []Interval {
	out := make([]Interval, 0, len(in))
	for _, iv := range in {
		if keep(iv) {
			out = append(out, iv)
		}
	}
	return out
}
