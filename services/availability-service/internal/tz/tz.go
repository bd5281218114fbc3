// Package tz resolves civil wall-clock times to absolute instants against the
// IANA timezone database.
package tz

import (
	"errors"
	"fmt"
	"time"

	// The embedded database keeps zone resolution working on hosts without a
	// zoneinfo directory. Resolution is this service's core dependency.
	_ "time/tzdata"
)

// ErrUnknownZone reports a zone identifier that is not in the IANA catalog.
var ErrUnknownZone = errors.New("tz: unknown timezone")

// OffsetResolver reports the UTC offset in effect at a given instant in a
// zone. Implementations must behave as pure functions of their inputs; tests
// substitute deterministic fixed-offset doubles.
type OffsetResolver interface {
	OffsetAt(at time.Time, zone string) (time.Duration, error)
}

// Database resolves offsets against the IANA database shipped with the
// process.
type Database struct{}

func (Database) OffsetAt(at time.Time, zone string) (time.Duration, error) {
	loc, err := loadZone(zone)
	if err != nil {
		return 0, err
	}
	_, offsetSec := at.In(loc).Zone()
	return time.Duration(offsetSec) * time.Second, nil
}

// Validate checks a zone identifier against the catalog.
func Validate(zone string) error {
	_, err := loadZone(zone)
	return err
}

func loadZone(zone string) (*time.Location, error) {
	// time.LoadLocation treats "" and "Local" specially; neither is a
	// canonical IANA name.
	if zone == "" || zone == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, zone)
	}
	return loc, nil
}

// ResolveCivil converts a civil wall-clock timestamp, carried as a naive UTC
// instant, into the absolute instant it denotes in zone.
//
// The offset to subtract depends on the absolute instant, which in turn
// depends on the offset. A single refinement query settles every case except
// civil times within one hour of a DST transition, where the result can be
// off by up to an hour. That error window is accepted behavior; no further
// fixed-point iteration is done.
func ResolveCivil(civil time.Time, zone string, offsets OffsetResolver) (time.Time, error) {
	offset0, err := offsets.OffsetAt(civil, zone)
	if err != nil {
		return time.Time{}, err
	}
	refined := civil.Add(-offset0)

	offset1, err := offsets.OffsetAt(refined, zone)
	if err != nil {
		return time.Time{}, err
	}
	return civil.Add(-offset1), nil
}
