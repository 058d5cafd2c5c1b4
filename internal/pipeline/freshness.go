package pipeline

import "time"

// IsStale reports whether cached data written at last must be refreshed.
// A nil last means no data was ever written. Threshold is caller-supplied:
// rankings and calendars expire on different schedules.
func IsStale(last *time.Time, threshold time.Duration, now time.Time) bool {
	if last == nil || last.IsZero() {
		return true
	}
	return now.Sub(*last) >= threshold
}
