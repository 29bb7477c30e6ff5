package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"suitec/pkg/models"
)

// createAsset adds an asset to the caller's course library
func (s *Server) createAsset(c *gin.Context) {
	user, ok := GetUser(c)
	if !ok {
		c.JSON(401, models.APIResponse{Success: false, Error: "unauthorized", Timestamp: time.Now()})
		return
	}

	var req models.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.APIResponse{
			Success:   false,
			Error:     "invalid request body",
			Timestamp: time.Now(),
		})
		return
	}

	asset, err := s.assetSvc.CreateAsset(c.Request.Context(), user, &req)
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
		Message:   "Asset created",
		Data:      asset,
		Timestamp: time.Now(),
	})
}

// getAsset fetches one asset and counts the view
func (s *Server) getAsset(c *gin.Context) {
	user, _ := GetUser(c)

	asset, err := s.assetSvc.GetAsset(c.Request.Context(), user, c.Param("id"))
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
		Data:      asset,
		Timestamp: time.Now(),
	})
}

// likeAsset likes an asset on behalf of the caller
func (s *Server) likeAsset(c *gin.Context) {
	user, ok := GetUser(c)
	if !ok {
		c.JSON(401, models.APIResponse{Success: false, Error: "unauthorized", Timestamp: time.Now()})
		return
	}

	if err := s.assetSvc.LikeAsset(c.Request.Context(), user, c.Param("id")); err != nil {
		c.JSON(errorStatus(err), models.APIResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(200, models.APIResponse{
		Success:   true,
		Message:   "Asset liked",
		Timestamp: time.Now(),
	})
}

// createComment adds a comment or reply to an asset
func (s *Server) createComment(c *gin.Context) {
	user, ok := GetUser(c)
	if !ok {
		c.JSON(401, models.APIResponse{Success: false, Error: "unauthorized", Timestamp: time.Now()})
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.APIResponse{
			Success:   false,
			Error:     "invalid request body",
			Timestamp: time.Now(),
		})
		return
	}

	comment, err := s.assetSvc.CreateComment(c.Request.Context(), user, c.Param("id"), &req)
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
		Message:   "Comment created",
		Data:      comment,
		Timestamp: time.Now(),
	})
}

// listComments returns a page of an asset's comments
func (s *Server) listComments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := s.assetSvc.ListComments(c.Request.Context(), c.Param("id"), limit, offset)
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
