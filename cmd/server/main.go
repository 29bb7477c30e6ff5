package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"suitec/internal/core"
	"suitec/internal/email"
	httpProtocol "suitec/internal/protocols/http"
	wsProtocol "suitec/internal/protocols/websocket"
	"suitec/internal/repository"
	"suitec/internal/scheduler"
	"suitec/pkg/config"
	"suitec/pkg/database"
	"suitec/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("./configs/development.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Logging)

	logger.Info("Starting SuiteC server...")

	// Connect to database
	dbCfg := database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime.Std(),
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime.Std(),
		Timeout:         cfg.Database.Timeout.Std(),
	}

	pool, err := database.NewPGXPool(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Separate database/sql handle for the health endpoint
	healthDB, err := database.NewDB(dbCfg)
	if err != nil {
		log.Fatalf("Failed to open health check connection: %v", err)
	}
	defer healthDB.Close()

	logger.Info("Connected to PostgreSQL database")

	// Leaderboard cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	assetRepo := repository.NewAssetRepository(pool)
	whiteboardRepo := repository.NewWhiteboardRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	digestRepo := repository.NewDigestRepository(pool)

	logger.Info("Initialized all repositories")

	// Email sender
	var sender email.Sender
	if cfg.Email.Provider == "sendgrid" {
		sender = email.NewSendgridSender(cfg.Email)
	} else {
		sender = email.NewConsoleSender(cfg.Email)
	}

	// Initialize core services
	authSvc := core.NewAuthService(userRepo, courseRepo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration.Std())
	engagementSvc := core.NewEngagementService(activityRepo, userRepo, redisClient, cfg.Redis.CacheTTL.Std())
	assetSvc := core.NewAssetService(assetRepo, engagementSvc)
	whiteboardSvc := core.NewWhiteboardService(whiteboardRepo, userRepo, assetRepo, engagementSvc)
	weeklySvc := core.NewWeeklyDigestService(courseRepo, userRepo, activityRepo, assetRepo, digestRepo, sender, cfg.Digest, nil, nil)
	dailySvc := core.NewDailyDigestService(courseRepo, userRepo, assetRepo, whiteboardRepo, digestRepo, sender, cfg.Digest, nil)

	logger.Info("Initialized all core services")

	// HTTP REST API server
	httpServer := httpProtocol.NewServer(
		cfg,
		healthDB,
		authSvc,
		assetSvc,
		whiteboardSvc,
		engagementSvc,
		dailySvc,
		weeklySvc,
	)

	// WebSocket chat server
	wsHub := wsProtocol.NewHub(whiteboardSvc)
	wsHandler := wsProtocol.NewHandler(wsHub, authSvc, whiteboardSvc)
	httpServer.RegisterWebSocket(wsHandler.HandleWebSocket)

	// Digest scheduler
	digestScheduler := scheduler.New(dailySvc, weeklySvc, cfg.Digest)
	if err := digestScheduler.Start(); err != nil {
		log.Fatalf("Failed to start digest scheduler: %v", err)
	}

	// Start HTTP server
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("HTTP server panic recovered: %v", r)
			}
		}()
		httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info(fmt.Sprintf("Starting HTTP server on %s", httpAddr))
		if err := httpServer.Start(httpAddr); err != nil {
			logger.Errorf("HTTP server error (non-fatal): %v", err)
		}
	}()

	logger.Info("Server started successfully")
	logger.Info("Press Ctrl+C to shutdown")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info(fmt.Sprintf("Received signal: %v", sig))

	// Graceful shutdown
	logger.Info("Shutting down...")

	digestScheduler.Stop()
	wsHub.Stop()

	logger.Info("Shutdown complete")
}
