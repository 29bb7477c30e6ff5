package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"suitec/pkg/models"
)

// triggerDailyDigest runs one course's daily digest on demand. The service
// enforces the admin requirement and answers 401 to everyone else.
func (s *Server) triggerDailyDigest(c *gin.Context) {
	caller, _ := GetUser(c)

	if err := s.dailySvc.SendDigestForCourse(c.Request.Context(), caller, c.Param("id")); err != nil {
		c.JSON(errorStatus(err), models.APIResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(202, models.APIResponse{
		Success:   true,
		Message:   "Daily digest triggered",
		Timestamp: time.Now(),
	})
}

// triggerWeeklyDigest runs one course's weekly digest on demand
func (s *Server) triggerWeeklyDigest(c *gin.Context) {
	caller, _ := GetUser(c)

	if err := s.weeklySvc.SendDigestForCourse(c.Request.Context(), caller, c.Param("id")); err != nil {
		c.JSON(errorStatus(err), models.APIResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(202, models.APIResponse{
		Success:   true,
		Message:   "Weekly digest triggered",
		Timestamp: time.Now(),
	})
}
