package solar

import "errors"

// Domain errors for the solar package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, solar.ErrInvalidTimeOfDay) {
//	    // handle malformed earliest_open
//	}
var (
	// ErrInvalidTimeOfDay is returned when a time-of-day string is not
	// in HH:MM:SS format or a component is out of range.
	ErrInvalidTimeOfDay = errors.New("solar: invalid time of day (format is HH:MM:SS)")

	// ErrNoSunEvent is returned when the sun neither rises nor sets on the
	// requested date (polar latitudes).
	ErrNoSunEvent = errors.New("solar: sun does not rise or set on this date")
)
