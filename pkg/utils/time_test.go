package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCutoffWindowEndsAtMostRecentCutoff(t *testing.T) {
	now := time.Date(2026, 3, 12, 10, 30, 0, 0, time.UTC)

	start, end := CutoffWindow(now, 8, 24*time.Hour)
	assert.Equal(t, time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC), end)
	assert.Equal(t, time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), start)
}

func TestCutoffWindowBeforeTodaysCutoff(t *testing.T) {
	now := time.Date(2026, 3, 12, 6, 0, 0, 0, time.UTC)

	start, end := CutoffWindow(now, 8, 24*time.Hour)
	assert.Equal(t, time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), end)
	assert.Equal(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), start)
}

func TestCutoffWindowExactlyAtCutoff(t *testing.T) {
	now := time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)

	_, end := CutoffWindow(now, 8, 24*time.Hour)
	assert.Equal(t, now, end)
}

func TestCutoffWindowWeeklySpan(t *testing.T) {
	now := time.Date(2026, 3, 12, 23, 59, 0, 0, time.UTC)

	start, end := CutoffWindow(now, 8, 7*24*time.Hour)
	assert.Equal(t, time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC), end)
	assert.Equal(t, time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC), start)
}

func TestCutoffWindowNormalizesToUTC(t *testing.T) {
	// 10:30 in UTC+2 is 08:30 UTC, so the 08:00 UTC cutoff already passed
	zone := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, 3, 12, 10, 30, 0, 0, zone)

	_, end := CutoffWindow(now, 8, 24*time.Hour)
	assert.Equal(t, time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC), end)

	// A job that starts late inside the same day sees the identical window
	later := time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC)
	_, laterEnd := CutoffWindow(later, 8, 24*time.Hour)
	assert.Equal(t, end, laterEnd)
}
