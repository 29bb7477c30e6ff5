package models

import (
	"time"
)

// All digest structures are transient: they are built fresh for one course's
// digest run and discarded once the per-user payloads have been handed to the
// email sender. Nothing in here is persisted.

// AssetTotals holds one asset's weekly activity counters
type AssetTotals struct {
	Asset    *Asset `json:"asset"`
	Comments int    `json:"comments"`
	Likes    int    `json:"likes"`
	Views    int    `json:"views"`
}

// CourseTotals holds the six course-wide point buckets
type CourseTotals struct {
	PointsFromAssetsUploaded int `json:"points_from_assets_uploaded"`
	PointsFromComments       int `json:"points_from_comments"`
	PointsFromLikes          int `json:"points_from_likes"`
	PointsFromWhiteboards    int `json:"points_from_whiteboards"`
	PointsGenerated          int `json:"points_generated"`
	PointsReceived           int `json:"points_received"`
}

// UserTotals mirrors CourseTotals per user, plus received-engagement
// counters and the snapshots of every asset the user's activities touched
// (used to pick the user's most popular asset for the digest).
type UserTotals struct {
	UserID           string            `json:"user_id"`
	User             *User             `json:"user,omitempty"`
	CourseTotals
	CommentsReceived int               `json:"comments_received"`
	LikesReceived    int               `json:"likes_received"`
	Assets           map[string]*Asset `json:"-"`
}

// TopAsset is one "top asset" winner for a weekly category
type TopAsset struct {
	Asset *Asset `json:"asset"`
	Value int    `json:"value"`
}

// TopUser is one "top user" winner for a weekly category. Identity fields
// are blank when the winner does not share points; only Value is guaranteed.
type TopUser struct {
	UserID   string `json:"user_id,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Value    int    `json:"value"`
}

// CourseSummary is the course-wide portion of a weekly summary. TopAssets is
// keyed by counter name (comments, likes, views); TopUsers by bucket name
// (points_generated, points_received). A key is absent when no entity scored
// above zero in that category.
type CourseSummary struct {
	Totals    CourseTotals         `json:"totals"`
	Averages  CourseTotals         `json:"averages"`
	TopAssets map[string]*TopAsset `json:"top_assets"`
	TopUsers  map[string]*TopUser  `json:"top_users"`
}

// WeeklySummary is the aggregate root produced by one course's weekly fold
type WeeklySummary struct {
	Course CourseSummary           `json:"course"`
	Assets map[string]*AssetTotals `json:"assets"`
	Users  map[string]*UserTotals  `json:"users"`
}

// WeeklyDigest is the render payload for one user's weekly digest email
type WeeklyDigest struct {
	Course           *Course       `json:"course"`
	User             *User         `json:"user"`
	Rank             int           `json:"rank"`
	Totals           *UserTotals   `json:"totals,omitempty"`
	Summary          CourseSummary `json:"summary"`
	MostPopularAsset *Asset        `json:"most_popular_asset,omitempty"`
	WindowStart      time.Time     `json:"window_start"`
	WindowEnd        time.Time     `json:"window_end"`
}

// DigestActivity is one entry of a daily digest, classified relative to a
// specific recipient. Exactly one of Asset/Whiteboard is set depending on
// Type. Comments holds the reshaped two-level comment tree for asset
// activities; Messages holds new chat for whiteboard activities.
type DigestActivity struct {
	Type         string         `json:"type"`
	Actors       []*User        `json:"actors"`
	LastActivity time.Time      `json:"last_activity"`
	Asset        *Asset         `json:"asset,omitempty"`
	Whiteboard   *Whiteboard    `json:"whiteboard,omitempty"`
	Comments     []*Comment     `json:"comments,omitempty"`
	Messages     []*ChatMessage `json:"messages,omitempty"`
}

// DailyCourseData is the raw material for one course's daily digest run
type DailyCourseData struct {
	Course      *Course              `json:"course"`
	Users       []*User              `json:"users"`
	Assets      []*CommentedAsset    `json:"assets"`
	Whiteboards []*ChattedWhiteboard `json:"whiteboards"`
}

// DailyDigest is the render payload for one user's daily digest email
type DailyDigest struct {
	Course      *Course           `json:"course"`
	User        *User             `json:"user"`
	Activities  []*DigestActivity `json:"activities"`
	WindowStart time.Time         `json:"window_start"`
	WindowEnd   time.Time         `json:"window_end"`
}

// DigestRecord logs one sent digest email - EXACTLY matches schema.sql
type DigestRecord struct {
	ID        string    `json:"id" db:"id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Frequency string    `json:"frequency" db:"frequency"` // daily or weekly
	Subject   string    `json:"subject" db:"subject"`
	SentAt    time.Time `json:"sent_at" db:"sent_at"`
}
