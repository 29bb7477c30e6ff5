package models

import (
	"time"
)

// Whiteboard represents a collaborative whiteboard - EXACTLY matches schema.sql
type Whiteboard struct {
	ID        string           `json:"id" db:"id"`
	CourseID  string           `json:"course_id" db:"course_id"`
	Title     string           `json:"title" db:"title"`
	Deleted   bool             `json:"-" db:"deleted"`
	Members   []WhiteboardUser `json:"members"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// WhiteboardUser - a whiteboard member
type WhiteboardUser struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// MemberIDs returns the ids of all whiteboard members
func (w *Whiteboard) MemberIDs() []string {
	ids := make([]string, 0, len(w.Members))
	for _, m := range w.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

// HasMember reports whether the given user belongs to the whiteboard
func (w *Whiteboard) HasMember(userID string) bool {
	for _, m := range w.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// ChatMessage represents a whiteboard chat message
type ChatMessage struct {
	ID           string       `json:"id" db:"id"`
	WhiteboardID string       `json:"whiteboard_id" db:"whiteboard_id"`
	UserID       string       `json:"user_id" db:"user_id"`
	User         *UserProfile `json:"user,omitempty"`
	Body         string       `json:"body" db:"body"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// ChattedWhiteboard bundles a whiteboard with chat messages created inside a
// digest window
type ChattedWhiteboard struct {
	Whiteboard  *Whiteboard    `json:"whiteboard"`
	NewMessages []*ChatMessage `json:"new_messages"`
}

// SendChatMessageRequest
type SendChatMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

// ChatHistoryResponse is a paginated list of chat messages
type ChatHistoryResponse struct {
	Data    []ChatMessage `json:"data"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"has_more"`
}
