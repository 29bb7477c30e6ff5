package utils

import (
	"fmt"
	"time"
)

// FormatTimestamp renders a timestamp for digest display: time of day for
// today, weekday plus time within the last week, plain date beyond that.
func FormatTimestamp(t time.Time) string {
	now := time.Now()
	sameDay := t.Year() == now.Year() && t.YearDay() == now.YearDay()
	switch {
	case sameDay:
		return t.Format("15:04")
	case now.Sub(t) < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// TimeAgo returns a human-readable elapsed-time phrase
func TimeAgo(t time.Time) string {
	elapsed := time.Since(t)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute")
	case elapsed < 24*time.Hour:
		return plural(int(elapsed.Hours()), "hour")
	}

	days := int(elapsed.Hours() / 24)
	switch {
	case days == 1:
		return "yesterday"
	case days < 7:
		return plural(days, "day")
	default:
		return plural(days/7, "week")
	}
}

// CutoffWindow computes a fixed [start, end) aggregation window ending at
// the given hour-of-day (UTC). The end is the most recent occurrence of the
// cutoff hour at or before now, so a job that starts late or runs long sees
// the same window as one that starts on time.
func CutoffWindow(now time.Time, cutoffHour int, span time.Duration) (time.Time, time.Time) {
	now = now.UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), cutoffHour, 0, 0, 0, time.UTC)
	if end.After(now) {
		end = end.Add(-24 * time.Hour)
	}
	return end.Add(-span), end
}
