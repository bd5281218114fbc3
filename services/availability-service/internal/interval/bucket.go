package interval

import "time"

const dateLayout = "2006-01-02"

// LocalDates returns every calendar date the interval touches in the process
// local zone, start date through end date inclusive. An interval ending
// exactly at local midnight does not touch the following date (End is
// exclusive).
//
// Bucketing follows the server's zone rather than the zone the interval was
// computed in; display-oriented, and a documented limitation.
func LocalDates(iv Interval) []string {
	start := iv.Start.Local()
	end := iv.End.Local()

	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.Local)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.Local)
	if end.Equal(endDay) && end.After(start) {
		endDay = endDay.AddDate(0, 0, -1)
	}

	var dates []string
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates
}

// BucketByLocalDate groups intervals by the local dates they touch. An
// interval crossing local midnight appears under each date it spans.
func BucketByLocalDate(in []Interval) map[string][]Interval {
	out := make(map[string][]Interval, len(in))
	for _, iv := range in {
		for _, d := range LocalDates(iv) {
			out[d] = append(out[d], iv)
		}
	}
	return out
}
