package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/scheduleops/freebusy/services/availability-service/internal/interval"
	"github.com/scheduleops/freebusy/services/availability-service/internal/tz"
)

// staticOffset is a resolver double pinned to one offset for every instant.
type staticOffset time.Duration

func (o staticOffset) OffsetAt(time.Time, string) (time.Duration, error) {
	return time.Duration(o), nil
}

func utc(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestExpand_OneMondayInNewYork_Winter(t *testing.T) {
	// 2026-01-05 is a Monday; New York is on EST (-05:00).
	rules := []WeeklyRule{{Weekday: time.Monday, Start: "09:00", End: "17:00"}}
	windowStart := utc(2026, time.January, 5, 0, 0)
	windowEnd := utc(2026, time.January, 12, 0, 0)

	got, err := Expand(windowStart, windowEnd, rules, "America/New_York", tz.Database{})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one interval, got %v", got)
	}
	if !got[0].Start.Equal(utc(2026, time.January, 5, 14, 0)) || !got[0].End.Equal(utc(2026, time.January, 5, 22, 0)) {
		t.Fatalf("expected 14:00-22:00 UTC, got %v", got[0])
	}
}

func TestExpand_OneMondayInNewYork_Summer(t *testing.T) {
	// 2026-07-06 is a Monday; New York is on EDT (-04:00).
	rules := []WeeklyRule{{Weekday: time.Monday, Start: "09:00", End: "17:00"}}
	windowStart := utc(2026, time.July, 6, 0, 0)
	windowEnd := utc(2026, time.July, 13, 0, 0)

	got, err := Expand(windowStart, windowEnd, rules, "America/New_York", tz.Database{})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one interval, got %v", got)
	}
	if !got[0].Start.Equal(utc(2026, time.July, 6, 13, 0)) || !got[0].End.Equal(utc(2026, time.July, 6, 21, 0)) {
		t.Fatalf("expected 13:00-21:00 UTC, got %v", got[0])
	}
}

func TestExpand_SpringForwardShortensWindow(t *testing.T) {
	// US DST starts 2026-03-08 02:00 local: the 02:00-03:00 wall hour does
	// not exist, so a 01:00-04:00 rule covers two absolute hours.
	rules := []WeeklyRule{{Weekday: time.Sunday, Start: "01:00", End: "04:00"}}
	windowStart := utc(2026, time.March, 8, 0, 0)
	windowEnd := utc(2026, time.March, 9, 0, 0)

	got, err := Expand(windowStart, windowEnd, rules, "America/New_York", tz.Database{})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one interval, got %v", got)
	}
	if !got[0].Start.Equal(utc(2026, time.March, 8, 6, 0)) || !got[0].End.Equal(utc(2026, time.March, 8, 8, 0)) {
		t.Fatalf("expected 06:00-08:00 UTC, got %v", got[0])
	}
	if got[0].Duration() != 2*time.Hour {
		t.Fatalf("expected a 2h absolute interval from a 3h wall window, got %s", got[0].Duration())
	}
}

func TestExpand_MarginCatchesAdjacentDateShift(t *testing.T) {
	// At +14:00, Sunday 00:30 wall clock is Saturday 10:30 UTC: the rule's
	// anchor date lies outside the window, but its resolved interval shifts
	// back into it. The 2-day walk margin must pick it up.
	rules := []WeeklyRule{{Weekday: time.Sunday, Start: "00:30", End: "08:00"}}
	windowStart := utc(2026, time.July, 4, 0, 0)
	windowEnd := utc(2026, time.July, 4, 12, 0)

	got, err := Expand(windowStart, windowEnd, rules, "test", staticOffset(14*time.Hour))
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one interval, got %v", got)
	}
	if !got[0].Start.Equal(utc(2026, time.July, 4, 10, 30)) || !got[0].End.Equal(utc(2026, time.July, 4, 18, 0)) {
		t.Fatalf("expected 10:30-18:00 UTC, got %v", got[0])
	}
}

func TestExpand_OrderAndNoMerging(t *testing.T) {
	// Two overlapping Monday rules plus a Tuesday rule over a two-week
	// window: day-ascending output, rule order within a day, overlaps kept.
	rules := []WeeklyRule{
		{Weekday: time.Monday, Start: "09:00", End: "12:00"},
		{Weekday: time.Monday, Start: "11:00", End: "15:00"},
		{Weekday: time.Tuesday, Start: "08:00", End: "10:00"},
	}
	windowStart := utc(2026, time.January, 5, 0, 0) // Monday
	windowEnd := utc(2026, time.January, 19, 0, 0)

	got, err := Expand(windowStart, windowEnd, rules, "test", staticOffset(0))
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 intervals over two weeks, got %d: %v", len(got), got)
	}

	want := []interval.Interval{
		{Start: utc(2026, time.January, 5, 9, 0), End: utc(2026, time.January, 5, 12, 0)},
		{Start: utc(2026, time.January, 5, 11, 0), End: utc(2026, time.January, 5, 15, 0)},
		{Start: utc(2026, time.January, 6, 8, 0), End: utc(2026, time.January, 6, 10, 0)},
		{Start: utc(2026, time.January, 12, 9, 0), End: utc(2026, time.January, 12, 12, 0)},
		{Start: utc(2026, time.January, 12, 11, 0), End: utc(2026, time.January, 12, 15, 0)},
		{Start: utc(2026, time.January, 13, 8, 0), End: utc(2026, time.January, 13, 10, 0)},
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Fatalf("interval %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestExpand_EveryResultOverlapsWindow(t *testing.T) {
	rules := []WeeklyRule{
		{Weekday: time.Saturday, Start: "22:00", End: "23:59"},
		{Weekday: time.Sunday, Start: "00:00", End: "06:00"},
		{Weekday: time.Monday, Start: "09:00", End: "17:00"},
	}
	windowStart := utc(2026, time.January, 4, 3, 0) // Sunday 03:00
	windowEnd := utc(2026, time.January, 5, 12, 0)  // Monday 12:00
	window := interval.Interval{Start: windowStart, End: windowEnd}

	got, err := Expand(windowStart, windowEnd, rules, "America/New_York", tz.Database{})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one interval")
	}
	for _, iv := range got {
		if !iv.Overlaps(window) {
			t.Fatalf("interval %v does not overlap the query window", iv)
		}
	}
}

func TestExpand_DegenerateWindow(t *testing.T) {
	rules := []WeeklyRule{{Weekday: time.Monday, Start: "09:00", End: "17:00"}}
	at := utc(2026, time.January, 5, 12, 0)

	got, err := Expand(at, at, rules, "test", staticOffset(0))
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result for empty window, got %v", got)
	}

	got, err = Expand(at, at.Add(-time.Hour), rules, "test", staticOffset(0))
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result for inverted window, got %v", got)
	}
}

func TestExpand_InvalidClockFailsWhole(t *testing.T) {
	rules := []WeeklyRule{
		{Weekday: time.Monday, Start: "09:00", End: "17:00"},
		{Weekday: time.Tuesday, Start: "25:00", End: "26:00"},
	}
	got, err := Expand(utc(2026, time.January, 5, 0, 0), utc(2026, time.January, 12, 0, 0), rules, "test", staticOffset(0))
	if !errors.Is(err, ErrInvalidClock) {
		t.Fatalf("expected ErrInvalidClock, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial output, got %v", got)
	}
}

func TestExpand_UnknownZone(t *testing.T) {
	rules := []WeeklyRule{{Weekday: time.Monday, Start: "09:00", End: "17:00"}}
	_, err := Expand(utc(2026, time.January, 5, 0, 0), utc(2026, time.January, 12, 0, 0), rules, "Nowhere/Special", tz.Database{})
	if !errors.Is(err, tz.ErrUnknownZone) {
		t.Fatalf("expected ErrUnknownZone, got %v", err)
	}
}
