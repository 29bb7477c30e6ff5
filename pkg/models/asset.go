package models

import (
	"time"
)

// Asset categories stored in the assets.type column
const (
	AssetTypeFile       = "file"
	AssetTypeLink       = "link"
	AssetTypeWhiteboard = "whiteboard"
)

// Asset represents an asset library entry - EXACTLY matches schema.sql.
// Views/Likes/CommentCount are lifetime counters maintained by the
// engagement bookkeeping; weekly digest counters are computed separately.
type Asset struct {
	ID           string    `json:"id" db:"id"`
	CourseID     string    `json:"course_id" db:"course_id"`
	Type         string    `json:"type" db:"type"`
	Title        string    `json:"title" db:"title"`
	URL          string    `json:"url,omitempty" db:"url"`
	Description  string    `json:"description,omitempty" db:"description"`
	Views        int       `json:"views" db:"views"`
	Likes        int       `json:"likes" db:"likes"`
	CommentCount int       `json:"comment_count" db:"comment_count"`
	Visible      bool      `json:"visible" db:"visible"`
	Deleted      bool      `json:"-" db:"deleted"`
	Users        []AssetUser `json:"users"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// AssetUser - a user associated with an asset (uploader or co-creator)
type AssetUser struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// OwnedBy reports whether the given user is associated with the asset
func (a *Asset) OwnedBy(userID string) bool {
	for _, u := range a.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// AdminOnly reports whether every associated user is an administrator.
// Such assets are excluded from "top asset" selection.
func (a *Asset) AdminOnly() bool {
	if len(a.Users) == 0 {
		return true
	}
	for _, u := range a.Users {
		if u.Role != UserRoleAdmin {
			return false
		}
	}
	return true
}

// Comment represents an asset comment. ParentID is nil for top-level
// comments and references the parent for direct replies (one level deep).
type Comment struct {
	ID        string       `json:"id" db:"id"`
	AssetID   string       `json:"asset_id" db:"asset_id"`
	UserID    string       `json:"user_id" db:"user_id"`
	User      *UserProfile `json:"user,omitempty"`
	ParentID  *string      `json:"parent_id,omitempty" db:"parent_id"`
	Body      string       `json:"body" db:"body"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// Reply reports whether the comment is a direct reply
func (c *Comment) Reply() bool {
	return c.ParentID != nil
}

// CommentedAsset bundles an asset with the comments created inside a digest
// window plus the parents those comments reply to (parents may predate the
// window; their authors may be inactive).
type CommentedAsset struct {
	Asset       *Asset     `json:"asset"`
	NewComments []*Comment `json:"new_comments"`
	Parents     map[string]*Comment `json:"parents,omitempty"`
}

// CreateAssetRequest
type CreateAssetRequest struct {
	Type        string `json:"type" validate:"required,oneof=file link whiteboard"`
	Title       string `json:"title" validate:"required,min=1,max=255"`
	URL         string `json:"url" validate:"omitempty,url"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// CreateCommentRequest
type CreateCommentRequest struct {
	Body     string  `json:"body" validate:"required,min=1,max=5000"`
	ParentID *string `json:"parent_id,omitempty"`
}

// CommentListResponse is a paginated list of comments
type CommentListResponse struct {
	Data    []Comment `json:"data"`
	Total   int       `json:"total"`
	Limit   int       `json:"limit"`
	Offset  int       `json:"offset"`
	HasMore bool      `json:"has_more"`
}

const MaxCommentLength = 5000
