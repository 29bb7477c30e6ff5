// Package http exposes the REST API surface
package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"suitec/internal/core"
	"suitec/pkg/config"
	"suitec/pkg/database"
)

// Server manages the HTTP REST API server
type Server struct {
	router        *gin.Engine
	config        *config.Config
	db            *database.DB
	authSvc       core.AuthService
	assetSvc      core.AssetService
	whiteboardSvc core.WhiteboardService
	engagementSvc core.EngagementService
	dailySvc      core.DailyDigestService
	weeklySvc     core.WeeklyDigestService
}

// NewServer creates a new HTTP server with all handlers
func NewServer(
	cfg *config.Config,
	db *database.DB,
	authSvc core.AuthService,
	assetSvc core.AssetService,
	whiteboardSvc core.WhiteboardService,
	engagementSvc core.EngagementService,
	dailySvc core.DailyDigestService,
	weeklySvc core.WeeklyDigestService,
) *Server {
	// Set Gin to release mode by default
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	s := &Server{
		router:        router,
		config:        cfg,
		db:            db,
		authSvc:       authSvc,
		assetSvc:      assetSvc,
		whiteboardSvc: whiteboardSvc,
		engagementSvc: engagementSvc,
		dailySvc:      dailySvc,
		weeklySvc:     weeklySvc,
	}

	s.setupRoutes()
	return s
}

// setupRoutes registers all HTTP routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.healthCheck)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", s.register)
			auth.POST("/login", s.login)
		}

		// Admin routes (requires admin role)
		admin := v1.Group("/admin", AuthMiddleware(s.authSvc), AdminMiddleware(s.authSvc))
		{
			admin.PUT("/users/:id/role", s.updateUserRole)
		}

		// Everything below needs a logged-in course member
		protected := v1.Group("", AuthMiddleware(s.authSvc))
		{
			// Asset library
			protected.POST("/assets", s.createAsset)
			protected.GET("/assets/:id", s.getAsset)
			protected.POST("/assets/:id/like", s.likeAsset)
			protected.GET("/assets/:id/comments", s.listComments)
			protected.POST("/assets/:id/comments", s.createComment)

			// Whiteboards
			protected.POST("/whiteboards", s.createWhiteboard)
			protected.GET("/whiteboards/:id", s.getWhiteboard)
			protected.GET("/whiteboards/:id/chat", s.getChatHistory)
			protected.POST("/whiteboards/:id/chat", s.sendChatMessage)
			protected.POST("/whiteboards/:id/export", s.exportWhiteboard)

			// Engagement index
			protected.GET("/courses/:id/leaderboard", s.getLeaderboard)
			protected.GET("/courses/:id/activity-types", s.getActivityTypes)
			protected.PUT("/courses/:id/activity-types", s.updateActivityType)
			protected.POST("/courses/:id/recalculate", s.recalculatePoints)
			protected.POST("/courses/:id/activities", s.recordActivity)

			// Manual digest triggers; the services enforce the admin gate
			protected.POST("/courses/:id/digests/daily", s.triggerDailyDigest)
			protected.POST("/courses/:id/digests/weekly", s.triggerWeeklyDigest)
		}
	}
}

// RegisterWebSocket mounts the whiteboard chat websocket endpoint
func (s *Server) RegisterWebSocket(handler gin.HandlerFunc) {
	s.router.GET("/ws/whiteboards/:id", handler)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Router returns the gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// healthCheck reports server and database health. db may be nil in tests,
// in which case only the process itself is reported.
func (s *Server) healthCheck(c *gin.Context) {
	status := "ok"
	code := 200
	if s.db != nil {
		if err := s.db.HealthCheck(c.Request.Context()); err != nil {
			status = "degraded"
			code = 503
		}
	}
	c.JSON(code, gin.H{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
