package pipeline

import "time"

// Clock supplies the current time. Injected so freshness and date-pruning
// logic stay deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// BusinessDay returns the calendar day that now belongs to, treating hours
// before cutoffHour as part of the previous day. cutoffHour 0 disables the
// shift. The result is truncated to midnight.
func BusinessDay(now time.Time, cutoffHour int) time.Time {
	if cutoffHour > 0 && now.Hour() < cutoffHour {
		now = now.AddDate(0, 0, -1)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// DateKey formats a business day as the YYYY-MM-DD snapshot key.
func DateKey(now time.Time, cutoffHour int) string {
	return BusinessDay(now, cutoffHour).Format("2006-01-02")
}
