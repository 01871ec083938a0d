package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"pricing-service/internal/config"
	"pricing-service/internal/events"
	"pricing-service/internal/handlers"
	"pricing-service/internal/middleware"
	"pricing-service/internal/models"
	"pricing-service/internal/repository"
	"pricing-service/internal/services"
	"pricing-service/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize logrus logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Object storage for the raw reports
	objectStore, err := storage.NewMinioObjectStore(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3UseSSL)
	if err != nil {
		log.Fatal("Failed to connect to object storage:", err)
	}

	// Redis recommendation store
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	recoStore := storage.NewRedisRecommendationStore(rdb, cfg.RecoKeyPrefix)

	// Pricing pipeline
	service := services.NewRecommendationService(objectStore, recoStore, cfg.ReportsBucket, logger)

	// Run history database (optional)
	var runRepo *repository.RunRepository
	if cfg.DBHost != "" {
		db, err := config.InitDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		if err := db.AutoMigrate(&models.PricingRun{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		runRepo = repository.NewRunRepository(db)
		service.WithRunRecorder(runRepo)
	} else {
		log.Println("DB_HOST not configured, run history disabled")
	}

	// NATS event publisher (optional - graceful degradation if NATS unavailable)
	if cfg.NATSURL != "" {
		eventPublisher, err := events.NewPricingEventPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("Warning: Failed to initialize NATS event publisher: %v", err)
			log.Println("Continuing without event publishing...")
		} else {
			log.Println("Connected to NATS JetStream for event publishing")
			defer eventPublisher.Close()
			service.WithEventPublisher(eventPublisher)
		}
	} else {
		log.Println("NATS_URL not configured, event publishing disabled")
	}

	// Handlers
	var runLister handlers.RunLister
	if runRepo != nil {
		runLister = runRepo
	}
	recommendationHandler := handlers.NewRecommendationHandler(service, runLister, logger)
	healthHandler := &handlers.HealthHandler{
		RedisPing: recoStore.Ping,
		ObjectStore: func(ctx context.Context) error {
			return objectStore.BucketReachable(ctx, cfg.ReportsBucket)
		},
	}

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())

	// Health check endpoints
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)
	router.GET("/health/extended", healthHandler.ExtendedHealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	pricing := api.Group("/pricing")
	{
		pricing.POST("/runs", recommendationHandler.CreateRun)
		pricing.GET("/runs", recommendationHandler.ListRuns)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Pricing service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down pricing-service...")

	if err := rdb.Close(); err != nil {
		log.Printf("Error closing redis client: %v", err)
	}

	log.Println("Pricing service stopped")
}
