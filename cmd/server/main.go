package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"halador/internal/config"
	"halador/internal/handlers"
	"halador/internal/middleware"
	"halador/internal/repositories/mongodb"
	"halador/internal/services"
	"halador/internal/validators"
	"halador/pkg/cache"
	"halador/pkg/database"
	"halador/pkg/logger"
	"halador/pkg/websocket"
	"halador/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     "json",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	validators.RegisterGinValidators()

	// Storage.
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Repositories.
	userRepo := mongodb.NewUserRepository(db.Database, redisCache)
	profileRepo := mongodb.NewProfileRepository(db.Database, redisCache)
	tripRepo := mongodb.NewTripRepository(db.Database, redisCache)
	requestRepo := mongodb.NewTripRequestRepository(db.Database, redisCache)
	reviewRepo := mongodb.NewReviewRepository(db.Database, redisCache)

	// Services.
	profileService := services.NewProfileService(profileRepo, log)
	authService := services.NewAuthService(userRepo, profileRepo, profileService, cfg.Security.JWTSecret, cfg.Security.JWTAccessTokenTTL, log)
	tripService := services.NewTripService(tripRepo, profileRepo, redisCache, log)
	requestService := services.NewRequestService(requestRepo, tripRepo, log)
	reviewService := services.NewReviewService(reviewRepo, tripRepo, requestRepo, profileRepo, log)
	subscriptionService := services.NewSubscriptionService(profileRepo, log)

	// Realtime relay.
	hub := websocket.NewHub()
	go hub.Run()

	notifyCtx, stopNotify := context.WithCancel(context.Background())
	defer stopNotify()
	services.NewNotificationService(db.Database, hub, log).Run(notifyCtx)

	wsHandler := websocket.NewHandler(hub)

	// HTTP surface.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RateLimitMiddleware(redisCache, cfg.Security.RateLimitPerMinute))
	router.Use(middleware.LoggingMiddleware(log))

	v1 := router.Group("/api/v1")
	routes.Setup(v1, &routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Trip:         handlers.NewTripHandler(tripService),
		Request:      handlers.NewRequestHandler(requestService),
		Review:       handlers.NewReviewHandler(reviewService),
		Profile:      handlers.NewProfileHandler(profileService),
		Subscription: handlers.NewSubscriptionHandler(subscriptionService, cfg.Subscription),
	}, authService)

	ws := router.Group(cfg.WebSocket.Path)
	ws.Use(middleware.AuthRequired(authService))
	ws.GET("", wsHandler.HandleWebSocket)

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		health := gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		}
		if err := db.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "unhealthy"
			health["mongodb"] = err.Error()
		}
		if err := redisCache.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "unhealthy"
			health["redis"] = err.Error()
		}
		c.JSON(status, health)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.App.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	stopNotify()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}

	log.Info("Server stopped")
}
