package models

import (
	"time"
)

// Course represents a Canvas course site with SuiteC tools installed - EXACTLY matches schema.sql
type Course struct {
	ID                         string    `json:"id" db:"id"`
	CanvasCourseID             int       `json:"canvas_course_id" db:"canvas_course_id"`
	Name                       string    `json:"name" db:"name"`
	AssetLibraryEnabled        bool      `json:"asset_library_enabled" db:"asset_library_enabled"`
	EngagementIndexEnabled     bool      `json:"engagement_index_enabled" db:"engagement_index_enabled"`
	DailyNotificationsEnabled  bool      `json:"daily_notifications_enabled" db:"daily_notifications_enabled"`
	WeeklyNotificationsEnabled bool      `json:"weekly_notifications_enabled" db:"weekly_notifications_enabled"`
	CreatedAt                  time.Time `json:"created_at" db:"created_at"`
}

// WeeklyDigestEligible reports whether the course can receive weekly digests.
// Both collaboration tools must be live, otherwise the digest has nothing to
// summarize.
func (c *Course) WeeklyDigestEligible() bool {
	return c.AssetLibraryEnabled && c.EngagementIndexEnabled && c.WeeklyNotificationsEnabled
}

// DailyDigestEligible reports whether the course can receive daily digests
func (c *Course) DailyDigestEligible() bool {
	return c.DailyNotificationsEnabled
}
