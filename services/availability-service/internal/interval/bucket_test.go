package interval

import (
	"testing"
	"time"
)

// Bucketing uses the process local zone, so fixtures are built in time.Local
// to stay deterministic regardless of the host zone.
func localTime(day, hour, min int) time.Time {
	return time.Date(2026, 3, day, hour, min, 0, 0, time.Local)
}

func TestLocalDates_SingleDay(t *testing.T) {
	got := LocalDates(Interval{Start: localTime(10, 9, 0), End: localTime(10, 17, 0)})
	if len(got) != 1 || got[0] != "2026-03-10" {
		t.Fatalf("expected [2026-03-10], got %v", got)
	}
}

func TestLocalDates_CrossesMidnight(t *testing.T) {
	got := LocalDates(Interval{Start: localTime(10, 22, 0), End: localTime(11, 2, 0)})
	if len(got) != 2 || got[0] != "2026-03-10" || got[1] != "2026-03-11" {
		t.Fatalf("expected both dates, got %v", got)
	}
}

func TestLocalDates_EndsExactlyAtMidnight(t *testing.T) {
	// End is exclusive: an interval ending at midnight does not touch the
	// following date.
	got := LocalDates(Interval{Start: localTime(10, 22, 0), End: localTime(11, 0, 0)})
	if len(got) != 1 || got[0] != "2026-03-10" {
		t.Fatalf("expected [2026-03-10], got %v", got)
	}
}

func TestBucketByLocalDate(t *testing.T) {
	morning := Interval{Start: localTime(10, 9, 0), End: localTime(10, 12, 0)}
	overnight := Interval{Start: localTime(10, 23, 0), End: localTime(11, 1, 0)}

	got := BucketByLocalDate([]Interval{morning, overnight})
	if len(got) != 2 {
		t.Fatalf("expected 2 date buckets, got %v", got)
	}
	if len(got["2026-03-10"]) != 2 {
		t.Fatalf("expected both intervals under 2026-03-10, got %v", got["2026-03-10"])
	}
	if len(got["2026-03-11"]) != 1 || !sameInterval(got["2026-03-11"][0], overnight) {
		t.Fatalf("expected the overnight interval under 2026-03-11, got %v", got["2026-03-11"])
	}
}
