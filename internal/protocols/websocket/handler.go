package websocket

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"suitec/internal/core"
	"suitec/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	CheckOrigin:       checkOrigin,
	EnableCompression: true,
}

// Handler manages WebSocket connections for whiteboard chat rooms
type Handler struct {
	hub           *Hub
	authSvc       core.AuthService
	whiteboardSvc core.WhiteboardService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc core.AuthService, whiteboardSvc core.WhiteboardService) *Handler {
	return &Handler{
		hub:           hub,
		authSvc:       authSvc,
		whiteboardSvc: whiteboardSvc,
	}
}

// HandleWebSocket upgrades the HTTP connection for whiteboard chat. Only
// whiteboard members may connect.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	whiteboardID := c.Param("id")
	if whiteboardID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "whiteboard id is required"})
		return
	}

	ctx := c.Request.Context()
	whiteboard, err := h.whiteboardSvc.GetWhiteboard(ctx, whiteboardID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "whiteboard not found"})
		return
	}

	token, err := extractToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authSvc.ValidateToken(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if !whiteboard.HasMember(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this whiteboard"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// gorilla/websocket writes its own HTTP response when CheckOrigin
		// fails; writing JSON here would double-write.
		logger.Errorf("websocket upgrade failed: %v", err)
		return
	}

	h.hub.ServeClient(conn, user, whiteboardID)
	logger.WebSocket(whiteboardID, "client_connected", user.ID)
}

// extractToken extracts the authentication token from the request
func extractToken(c *gin.Context) (string, error) {
	// Query parameter first: browsers cannot set headers on websocket dials
	token := c.Query("token")
	if token != "" {
		return token, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1], nil
		}
	}

	cookie, err := c.Request.Cookie("token")
	if err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", fmt.Errorf("no authentication token provided")
}

// checkOrigin validates the request origin
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// Non-browser clients may omit Origin; treat as allowed
	if origin == "" {
		return true
	}

	if u, err := url.Parse(origin); err == nil {
		host := strings.ToLower(u.Hostname())
		if host == "localhost" || host == "127.0.0.1" || host == "0.0.0.0" {
			return true
		}
	}

	return gin.Mode() == gin.DebugMode
}
