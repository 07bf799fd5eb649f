package solar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timeOfDayParts is the expected number of colon-separated components.
const timeOfDayParts = 3

// TimeOfDay is a wall-clock time within a day, independent of date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses a "HH:MM:SS" string into a TimeOfDay.
//
// Parameters:
//   - s: The time-of-day string (e.g. "07:30:00")
//
// Returns:
//   - TimeOfDay: The parsed value
//   - error: ErrInvalidTimeOfDay (wrapped) if the string is malformed or
//     any component is out of range
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != timeOfDayParts {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	values := make([]int, timeOfDayParts)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
		}
		values[i] = n
	}

	tod := TimeOfDay{Hour: values[0], Minute: values[1], Second: values[2]}
	if tod.Hour < 0 || tod.Hour > 23 ||
		tod.Minute < 0 || tod.Minute > 59 ||
		tod.Second < 0 || tod.Second > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}

	return tod, nil
}

// On anchors the time-of-day to a calendar date in the given location.
//
// Parameters:
//   - date: Any instant within the target calendar date
//   - loc: The timezone the date is interpreted in
//
// Returns:
//   - time.Time: The instant at this time-of-day on that date
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, loc)
}

// String returns the time-of-day in HH:MM:SS format.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}
