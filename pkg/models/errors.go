package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Common error codes - HTTP focused but protocol-aware
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// Protocol-specific error codes
	ErrCodeWebSocketClose = "WEBSOCKET_CLOSE"
	ErrCodeEmailDelivery  = "EMAIL_DELIVERY_ERROR"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrWhiteboardNotFound = errors.New("whiteboard not found")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden access")
	ErrInvalidInput       = errors.New("invalid input")

	// Digest pipeline errors
	ErrCourseDisabled = errors.New("notifications are not enabled for this course")
	ErrNoRecipients   = errors.New("no users with an email address in this course")

	// WebSocket protocol errors
	ErrWebSocketAuthFailed   = errors.New("websocket authentication failed")
	ErrWebSocketRoomNotFound = errors.New("whiteboard chat room not found")
)

// AppError - protocol-aware application error
type AppError struct {
	Code          string                 `json:"code"`
	Message       string                 `json:"message"`
	StatusCode    int                    `json:"status_code,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
	Protocol      string                 `json:"protocol,omitempty"` // http, websocket, email
	WebSocketCode int                    `json:"websocket_code,omitempty"`
}

func (e *AppError) Error() string {
	if e.Protocol != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Protocol, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ToHTTPError converts to HTTP-compatible error response
func (e *AppError) ToHTTPError() *APIResponse {
	return &APIResponse{
		Success:   false,
		Error:     e.Message,
		Message:   e.Message,
		Timestamp: time.Now(),
	}
}

// ToWebSocketError returns WebSocket close code and message
func (e *AppError) ToWebSocketError() (int, string) {
	if e.WebSocketCode != 0 {
		return e.WebSocketCode, e.Message
	}

	switch e.Code {
	case ErrCodeUnauthorized:
		return websocket.ClosePolicyViolation, "authentication required"
	case ErrCodeForbidden:
		return websocket.ClosePolicyViolation, "forbidden access"
	case ErrCodeNotFound:
		return websocket.CloseNormalClosure, "resource not found"
	default:
		return websocket.CloseInternalServerErr, e.Message
	}
}

// NewHTTPError builds an HTTP-scoped application error
func NewHTTPError(code, message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Protocol:   "http",
		Details:    map[string]interface{}{"original_error": err.Error()},
	}
}

// NewWebSocketError builds a WebSocket-scoped application error
func NewWebSocketError(wsCode int, code, message string, err error) *AppError {
	return &AppError{
		Code:          code,
		Message:       message,
		WebSocketCode: wsCode,
		Protocol:      "websocket",
		Details:       map[string]interface{}{"original_error": err.Error()},
	}
}

// NewEmailError builds an email-delivery-scoped application error
func NewEmailError(code, message string, recipient string, err error) *AppError {
	details := map[string]interface{}{"recipient": recipient}
	if err != nil {
		details["original_error"] = err.Error()
	}
	return &AppError{
		Code:     code,
		Message:  message,
		Protocol: "email",
		Details:  details,
	}
}
