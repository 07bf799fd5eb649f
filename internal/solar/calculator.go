package solar

import (
	"fmt"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// Window is the daylight window for one calendar date.
//
// It is computed once per date and immutable for the remainder of that date.
// All timestamps are in the calculator's timezone.
type Window struct {
	// Sunrise is when the sun rises on this date.
	Sunrise time.Time

	// Sunset is when the sun sets on this date.
	Sunset time.Time

	// SunsetWithBuffer is Sunset plus the configured buffer. The evening
	// close happens at this instant, not at sunset itself.
	SunsetWithBuffer time.Time

	// EarliestOpen is the optional lower bound on the morning opening time,
	// anchored to this date. Nil means no lower bound.
	EarliestOpen *time.Time
}

// Calculator produces daylight windows for a fixed location and schedule.
//
// It is a pure function of date once constructed; the same date always yields
// the same window. Safe for concurrent use.
type Calculator struct {
	latitude     float64
	longitude    float64
	buffer       time.Duration
	earliestOpen string
	loc          *time.Location
}

// NewCalculator creates a Calculator for the given location and schedule.
//
// Parameters:
//   - latitude, longitude: Site coordinates in decimal degrees
//   - buffer: Duration added to sunset for the evening close (may be zero)
//   - earliestOpen: Optional "HH:MM:SS" lower bound on opening, "" for none
//   - loc: Timezone window timestamps are expressed in (nil means time.Local)
func NewCalculator(latitude, longitude float64, buffer time.Duration, earliestOpen string, loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	return &Calculator{
		latitude:     latitude,
		longitude:    longitude,
		buffer:       buffer,
		earliestOpen: earliestOpen,
		loc:          loc,
	}
}

// WindowFor computes the daylight window for the calendar date containing t.
//
// A malformed earliest-open string degrades to "no lower bound" rather than
// invalidating the window: the returned Window is always usable, and the
// error reports the degradation so the caller can log it. This keeps a bad
// config value from ever blocking the morning open.
//
// Parameters:
//   - t: Any instant within the target calendar date (site timezone applies)
//
// Returns:
//   - Window: The computed window, always valid
//   - error: ErrInvalidTimeOfDay (wrapped) if earliest-open failed to parse,
//     ErrNoSunEvent if the sun neither rises nor sets on this date
func (c *Calculator) WindowFor(t time.Time) (Window, error) {
	year, month, day := t.In(c.loc).Date()

	rise, set := sunrise.SunriseSunset(c.latitude, c.longitude, year, month, day)

	w := Window{
		Sunrise:          rise.In(c.loc),
		Sunset:           set.In(c.loc),
		SunsetWithBuffer: set.In(c.loc).Add(c.buffer),
	}

	var retErr error
	// go-sunrise reports polar day/night as zero times. The window is still
	// returned; the decision logic then never opens, which is the safe side.
	if rise.IsZero() && set.IsZero() {
		retErr = fmt.Errorf("%w: lat=%v date=%04d-%02d-%02d", ErrNoSunEvent, c.latitude, year, month, day)
	}

	if c.earliestOpen != "" {
		tod, err := ParseTimeOfDay(c.earliestOpen)
		if err != nil {
			// Degrade to no lower bound; never block opening on a bad string.
			retErr = err
		} else {
			earliest := tod.On(t, c.loc)
			w.EarliestOpen = &earliest
		}
	}

	return w, retErr
}

// Location returns the timezone the calculator expresses windows in.
func (c *Calculator) Location() *time.Location {
	return c.loc
}
