package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"suitec/pkg/models"
)

// createWhiteboard creates a whiteboard with the caller as a member
func (s *Server) createWhiteboard(c *gin.Context) {
	user, ok := GetUser(c)
	if !ok {
		c.JSON(401, models.APIResponse{Success: false, Error: "unauthorized", Timestamp: time.Now()})
		return
	}

	var req struct {
		Title     string   `json:"title"`
		MemberIDs []string `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.APIResponse{
			Success:   false,
			Error:     "invalid request body",
			Timestamp: time.Now(),
		})
		return
	}

	whiteboard, err := s.whiteboardSvc.CreateWhiteboard(c.Request.Context(), user, req.Title, req.MemberIDs)
	if err != nil {
		c.JSON(errorStatus(err), models.APIResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(201, models.APIResponse{
		Success:   true,
		Message:   "Whiteboard created",
		Data:      whiteboard,
		Timestamp: time.Now(),
	})
}

// getWhiteboard fetches one whiteboard
func (s *Server) getWhiteboard(c *gin.Context) {
	whiteboard, err := s.whiteboardSvc.GetWhiteboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errorStatus(err), models.APIResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(200, models.APIResponse{
		Success:   true,
		Data:      whiteboard,
		Timestamp: time.Now(),
	})
}

// sendChatMessage posts a chat message to a whiteboard
func (s *Server) sendChatMessage(c *gin.Context) {
	user, ok := GetUser(c)
	if !ok {
		c.JSON(401, models.APIResponse{Success: false, Error: "unauthorized", Timestamp: time.Now()})
		return
	}

	var req models.SendChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.APIResponse{
			Success:   false,
			Error:     "invalid request body",
			Timestamp: time.Now(),
		})
		return
	}

	message, err := s.whiteboardSvc.SendChatMessage(c.Request.Context(), user, c.Param("id"), &req)
	if err != nil {
		c.JSON(errorStatus(err), models.APIResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(201, models.APIResponse{
		Success:   true,
		Message:   "Message sent",
		Data:      message,
		Timestamp: time.Now(),
	})
}

// getChatHistory returns a page of a whiteboard's chat messages
func (s *Server) getChatHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := s.whiteboardSvc.GetChatHistory(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		c.JSON(errorStatus(err), models.APIResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(200, models.APIResponse{
		Success:   true,
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// exportWhiteboard snapshots a whiteboard into the asset library
func (s *Server) exportWhiteboard(c *gin.Context) {
	user, ok := GetUser(c)
	if !ok {
		c.JSON(401, models.APIResponse{Success: false, Error: "unauthorized", Timestamp: time.Now()})
		return
	}

	asset, err := s.whiteboardSvc.ExportWhiteboard(c.Request.Context(), user, c.Param("id"))
	if err != nil && asset == nil {
		c.JSON(errorStatus(err), models.APIResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(201, models.APIResponse{
		Success:   true,
		Message:   "Whiteboard exported",
		Data:      asset,
		Timestamp: time.Now(),
	})
}
