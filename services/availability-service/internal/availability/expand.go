package availability

import (
	"time"

	"github.com/scheduleops/freebusy/services/availability-service/internal/interval"
	"github.com/scheduleops/freebusy/services/availability-service/internal/tz"
)

// expandMargin is the number of days walked past each window edge. A rule
// anchored on one UTC calendar date can resolve, once the zone offset is
// applied, to an absolute interval belonging to an adjacent date; the margin
// absorbs that shift.
const expandMargin = 2

// Expand walks every UTC calendar day from windowStart-2d to windowEnd+2d and
// resolves each rule matching that day's weekday into an absolute interval:
// the rule's wall clocks on that date, read in zone. Candidates are kept iff
// they overlap [windowStart, windowEnd).
//
// Output order is day-ascending, then rule input order within a day.
// Overlapping rules stay separate intervals; nothing is merged or
// deduplicated. A window with windowEnd <= windowStart is a degenerate empty
// query, not an error. Rule clocks are validated before any expansion, so a
// malformed rule never yields partial output.
func Expand(windowStart, windowEnd time.Time, rules []WeeklyRule, zone string, offsets tz.OffsetResolver) ([]interval.Interval, error) {
	if !windowEnd.After(windowStart) {
		return nil, nil
	}

	idx, err := indexByWeekday(rules)
	if err != nil {
		return nil, err
	}

	cursor := windowStart.UTC().AddDate(0, 0, -expandMargin)
	bound := windowEnd.UTC().AddDate(0, 0, expandMargin)

	var out []interval.Interval
	for day := cursor; !day.After(bound); day = day.AddDate(0, 0, 1) {
		bucket := idx[day.Weekday()]
		if len(bucket) == 0 {
			continue
		}

		y, m, d := day.Date()
		midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		for _, r := range bucket {
			start, err := tz.ResolveCivil(midnight.Add(time.Duration(r.startMin)*time.Minute), zone, offsets)
			if err != nil {
				return nil, err
			}
			end, err := tz.ResolveCivil(midnight.Add(time.Duration(r.endMin)*time.Minute), zone, offsets)
			if err != nil {
				return nil, err
			}
			if end.After(windowStart) && start.Before(windowEnd) {
				out = append(out, interval.Interval{Start: start, End: end})
			}
		}
	}
	return out, nil
}
