package main

import (
	"context"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"

	"stockhub/internal/alerts"
	"stockhub/internal/analytics"
	"stockhub/internal/caching"
	"stockhub/internal/config"
	"stockhub/internal/docstore"
	"stockhub/internal/handlers"
	"stockhub/internal/jobs"
	"stockhub/internal/jobs/background"
	"stockhub/internal/middleware"
	"stockhub/internal/services"
	"stockhub/pkg/database"
)

const version = "1.0.0"

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" && cfg.JWKSURL == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret: %s", jwtSecret)
	}

	jwtConfig := middleware.AuthConfig(jwtSecret)
	if cfg.JWKSURL != "" {
		jwtConfig, err = middleware.JWKSAuthConfig(cfg.JWKSURL)
		if err != nil {
			log.Fatalf("Failed to load JWKS from %s: %v", cfg.JWKSURL, err)
		}
	}

	// Storage and caching
	store := docstore.NewPostgresStore(pool)
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	imageSvc, err := services.NewMinioImageService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}
	if err := imageSvc.EnsureBucketExists(context.Background(), cfg.ImageBucket); err != nil {
		log.Printf("WARN: Could not ensure image bucket %s: %v", cfg.ImageBucket, err)
	}

	// Forecast tuning (defaults unless a TOML override is configured)
	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		log.Printf("WARN: %v; using default tuning", err)
	}

	// Core engine and services
	generator := alerts.NewGenerator(store, tuning)
	itemSvc := services.NewItemService(store, cacheSvc)
	hubSvc := services.NewHubService(store)
	alertSvc := services.NewAlertService(store, cacheSvc)
	analyticsSvc := analytics.NewService(store, cacheSvc, tuning.Forecast)

	// Task queue: workers run queued generation passes, the scheduler
	// enqueues them per owner on an interval
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	taskClient := asynq.NewClient(redisOpt)
	defer taskClient.Close()

	taskMux := asynq.NewServeMux()
	jobs.NewRefreshHandler(generator).Register(taskMux)
	taskServer := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 5})
	go func() {
		if err := taskServer.Run(taskMux); err != nil {
			log.Printf("Task server stopped: %v", err)
		}
	}()

	scheduler := background.NewJobScheduler(store, taskClient, analyticsSvc, cfg.RefreshInterval)
	if err := scheduler.Start(); err != nil {
		log.Printf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Handlers
	itemHandlers := handlers.NewItemHandlers(itemSvc, imageSvc, cfg.ImageBucket)
	hubHandlers := handlers.NewHubHandlers(hubSvc)
	alertHandlers := handlers.NewAlertHandlers(alertSvc, generator, cacheSvc)
	analyticsHandlers := handlers.NewAnalyticsHandlers(analyticsSvc)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/ready", func(c echo.Context) error {
		return handlers.ReadinessCheck(c, pool)
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Protected API routes
	v1 := e.Group("/v1")
	v1.Use(echojwt.WithConfig(jwtConfig))

	// Item routes
	v1.GET("/items", itemHandlers.ListItems)
	v1.POST("/items", itemHandlers.CreateItem)
	v1.GET("/items/:id", itemHandlers.GetItem)
	v1.PUT("/items/:id", itemHandlers.UpdateItem)
	v1.PUT("/items/:id/quantity", itemHandlers.AdjustQuantity)
	v1.DELETE("/items/:id", itemHandlers.DeleteItem)
	v1.POST("/items/:id/image", itemHandlers.UploadImage)
	v1.GET("/items/:id/image", itemHandlers.GetImageURL)

	// Hub and location routes
	v1.GET("/hubs", hubHandlers.ListHubs)
	v1.POST("/hubs", hubHandlers.CreateHub)
	v1.PUT("/hubs/:id", hubHandlers.UpdateHub)
	v1.DELETE("/hubs/:id", hubHandlers.DeleteHub)
	v1.GET("/locations", hubHandlers.ListLocations)
	v1.POST("/locations", hubHandlers.CreateLocation)
	v1.DELETE("/locations/:id", hubHandlers.DeleteLocation)

	// Alert routes
	v1.GET("/alerts", alertHandlers.ListAlerts)
	v1.POST("/alerts/refresh", alertHandlers.Refresh)
	v1.PUT("/alerts/:id/read", alertHandlers.MarkRead)
	v1.PUT("/alerts/:id/action", alertHandlers.MarkActionTaken)
	v1.DELETE("/alerts/:id", alertHandlers.DeleteAlert)

	// Analytics routes
	v1.GET("/analytics/summary", analyticsHandlers.GetSummary)
	v1.GET("/analytics/items/:id/trend", analyticsHandlers.GetItemTrend)

	log.Printf("🚀 Stockhub server v%s starting on port %d", version, cfg.Port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
