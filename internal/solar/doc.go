// Package solar computes the daily daylight window that drives the door schedule.
//
// This package manages:
//   - Sunrise and sunset calculation for a geographic coordinate and date
//   - The configured post-sunset buffer (sunset + buffer = evening close time)
//   - The optional earliest-open time-of-day gate
//
// A Window is computed once per calendar date and is immutable for the
// remainder of that date. All timestamps are expressed in the site timezone,
// which is how an operator reasons about when the door should move.
//
// Usage:
//
//	calc := solar.NewCalculator(55.4, 12.3, 30*time.Minute, "07:00:00", loc)
//	window, err := calc.WindowFor(time.Now())
//	if err != nil {
//	    // earliest_open was malformed; window is still usable without the gate
//	}
package solar
