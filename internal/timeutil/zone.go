package timeutil

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Zone is the committee's local time zone. Month boundaries and the cron
// schedule are evaluated in it.
type Zone struct {
	loc *time.Location
	now func() time.Time
}

// LoadZone resolves an IANA zone name.
func LoadZone(name string) (*Zone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return &Zone{loc: loc, now: time.Now}, nil
}

// FixedZone returns a zone whose clock always reads t. Used by tests and
// by the CLI --as-of flag.
func FixedZone(loc *time.Location, t time.Time) *Zone {
	return &Zone{loc: loc, now: func() time.Time { return t }}
}

// Location returns the underlying location.
func (z *Zone) Location() *time.Location {
	return z.loc
}

// Now returns the current time in the zone
func (z *Zone) Now() time.Time {
	return z.now().In(z.loc)
}

// Format formats t in the zone using layout
func (z *Zone) Format(t time.Time, layout string) string {
	return t.In(z.loc).Format(layout)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02/01/2006"
)
