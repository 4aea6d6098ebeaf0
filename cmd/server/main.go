package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tongue-analyzer/internal/config"
	"tongue-analyzer/internal/handler"
	"tongue-analyzer/internal/repository"
	"tongue-analyzer/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	log.Printf("Tongue Analyzer")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	if cfg.Auth.APIToken == "" {
		log.Println("⚠️  API_TOKEN is not set - every /analyze request will be rejected as a server configuration error")
	}

	// Optional assessment history
	var repo *repository.PostgresRepository
	if cfg.Postgres.Enabled() {
		repo, err = repository.NewPostgresRepository(
			cfg.Postgres.DSN,
			cfg.Postgres.MaxConnections,
			cfg.Postgres.MaxIdleConnections,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()
		log.Println("✅ Assessment history enabled (PostgreSQL)")
	} else {
		log.Println("⚠️  DATABASE_URL not set - assessment history is disabled")
	}

	// Vision inference client (lazy; unavailable without an API key)
	vision := service.NewVisionClient(cfg.Gemini)
	defer vision.Close()
	if vision.Enabled() {
		log.Printf("✅ Vision inference configured (model: %s)", cfg.Gemini.Model)
	} else {
		log.Println("⚠️  GEMINI_API_KEY not set - all analyses will return synthetic results")
	}

	// Pipeline services
	fetcher := service.NewImageFetcher(time.Duration(cfg.Fetch.Timeout)*time.Second, cfg.Fetch.MaxBytes)
	generator := service.NewGenerator(rand.NewSource(time.Now().UnixNano()))
	analyzer := service.NewAnalyzer(fetcher, vision, generator)

	log.Println("✅ Services initialized")

	// Initialize handlers
	analyzeHandler := handler.NewAnalyzeHandler(analyzer, repo, cfg.Auth.APIToken)
	historyHandler := handler.NewHistoryHandler(repo)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "tongue-analyzer",
			"version": Version,
		})
	})

	// Analysis endpoint
	router.POST("/analyze", analyzeHandler.Analyze)

	// History endpoints (404 when history is disabled)
	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/history/recent", historyHandler.Recent)
		apiV1.POST("/history/similar", historyHandler.Similar)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
