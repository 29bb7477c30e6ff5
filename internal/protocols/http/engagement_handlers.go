package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"suitec/pkg/models"
)

// getLeaderboard returns the ranked engagement index for a course
func (s *Server) getLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := s.engagementSvc.GetLeaderboard(c.Request.Context(), c.Param("id"), limit)
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

// getActivityTypes returns a course's activity type point configuration
func (s *Server) getActivityTypes(c *gin.Context) {
	configs, err := s.engagementSvc.GetTypeConfiguration(c.Request.Context(), c.Param("id"))
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
		Data:      configs,
		Timestamp: time.Now(),
	})
}

// updateActivityType changes one activity type's point value (admin only)
func (s *Server) updateActivityType(c *gin.Context) {
	caller, _ := GetUser(c)

	var req models.UpdateActivityTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, models.APIResponse{
			Success:   false,
			Error:     "invalid request body",
			Timestamp: time.Now(),
		})
		return
	}

	if err := s.engagementSvc.UpdateTypeConfiguration(c.Request.Context(), caller, c.Param("id"), &req); err != nil {
		c.JSON(errorStatus(err), models.APIResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(200, models.APIResponse{
		Success:   true,
		Message:   "Activity type updated",
		Timestamp: time.Now(),
	})
}

// recalculatePoints rebuilds point totals from the activity log (admin only)
func (s *Server) recalculatePoints(c *gin.Context) {
	caller, _ := GetUser(c)

	if err := s.engagementSvc.RecalculatePoints(c.Request.Context(), caller, c.Param("id")); err != nil {
		c.JSON(errorStatus(err), models.APIResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(200, models.APIResponse{
		Success:   true,
		Message:   "Points recalculated",
		Timestamp: time.Now(),
	})
}

// recordActivity records one engagement activity directly. Meant for
// LMS-side integrations that observe actions this API does not mediate.
func (s *Server) recordActivity(c *gin.Context) {
	caller, _ := GetUser(c)
	if caller == nil || !caller.IsAdmin() {
		c.JSON(403, models.APIResponse{
			Success:   false,
			Error:     "forbidden: admin access required",
			Timestamp: time.Now(),
		})
		return
	}

	var activity models.Activity
	if err := c.ShouldBindJSON(&activity); err != nil {
		c.JSON(400, models.APIResponse{
			Success:   false,
			Error:     "invalid request body",
			Timestamp: time.Now(),
		})
		return
	}
	activity.CourseID = c.Param("id")

	if err := s.engagementSvc.RecordActivity(c.Request.Context(), &activity); err != nil {
		c.JSON(errorStatus(err), models.APIResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(201, models.APIResponse{
		Success:   true,
		Message:   "Activity recorded",
		Data:      activity,
		Timestamp: time.Now(),
	})
}
