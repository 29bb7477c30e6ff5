package models

import (
	"time"
)

// Activity types constants - ENFORCES schema CHECK constraint
const (
	ActivityTypeAddAsset           = "add_asset"
	ActivityTypeAssetComment       = "asset_comment"
	ActivityTypeLike               = "like"
	ActivityTypeViewAsset          = "view_asset"
	ActivityTypeExportWhiteboard   = "export_whiteboard"
	ActivityTypeWhiteboardAddAsset = "whiteboard_add_asset"
)

// Digest activity categories used by the daily pipeline. These never carry
// points; they classify what happened relative to one recipient.
const (
	DigestActivityAssetComment      = "asset_comment"
	DigestActivityAssetCommentReply = "asset_comment_reply"
	DigestActivityWhiteboardChat    = "whiteboard_chat"
)

// Activity represents one recorded user action - EXACTLY matches schema.sql.
// UserID is the point-earning recipient; ActorID is the performer when the
// two differ (someone liking another user's asset, for example).
type Activity struct {
	ID        string            `json:"id" db:"id"`
	CourseID  string            `json:"course_id" db:"course_id"`
	Type      string            `json:"type" db:"type"`
	UserID    string            `json:"user_id" db:"user_id"`
	ActorID   *string           `json:"actor_id,omitempty" db:"actor_id"`
	AssetID   *string           `json:"asset_id,omitempty" db:"asset_id"`
	Metadata  map[string]string `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// Reciprocal reports whether the activity was performed by someone other
// than the user credited with it
func (a *Activity) Reciprocal() bool {
	return a.ActorID != nil && *a.ActorID != a.UserID
}

// ActivityTypeConfiguration holds the per-course point value of one
// activity type
type ActivityTypeConfiguration struct {
	CourseID string `json:"course_id" db:"course_id"`
	Type     string `json:"type" db:"type"`
	Points   int    `json:"points" db:"points"`
	Enabled  bool   `json:"enabled" db:"enabled"`
}

// UpdateActivityTypeRequest configures one activity type's point value
type UpdateActivityTypeRequest struct {
	Type    string `json:"type" validate:"required"`
	Points  int    `json:"points"`
	Enabled bool   `json:"enabled"`
}

// ActivityResponse represents an activity with resolved user/asset info
type ActivityResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	User      *UserProfile `json:"user,omitempty"`
	AssetID   *string   `json:"asset_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityFeedResponse represents a paginated activity feed
type ActivityFeedResponse struct {
	Data    []ActivityResponse `json:"data"`
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
	HasMore bool               `json:"has_more"`
}
