package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rag-visualizer-backend/internal/ai"
	"rag-visualizer-backend/internal/config"
	"rag-visualizer-backend/internal/logger"
	"rag-visualizer-backend/internal/telemetry"
	"rag-visualizer-backend/middleware"
	"rag-visualizer-backend/routes"
	"rag-visualizer-backend/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Telemetry is best-effort: the demo must run without a collector.
	if shutdown, err := telemetry.InitTracer("rag-visualizer-backend"); err != nil {
		logger.Warn("Tracing disabled", "error", err.Error())
	} else {
		defer shutdown()
	}
	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err.Error())
		metrics = nil
	}

	ctx := context.Background()
	docs := services.NewDocumentStore()
	gateway := ai.NewGateway(ctx, cfg, docs.All(), metrics)
	defer gateway.Close()

	orchestrator := services.NewOrchestrator(gateway, docs, metrics, cfg.MaxChunkSize, cfg.SearchTopK)

	logger.Info("Provider status",
		"embeddings", cfg.EmbeddingsConfigured(),
		"vector_index", cfg.VectorIndexConfigured(),
		"environment", cfg.Environment)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))

	// Redis is optional: without it the per-IP limiter is skipped,
	// matching the fail-open policy of the limiter itself.
	if rdb, err := config.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, HTTP rate limiting disabled", "error", err.Error())
	} else {
		defer rdb.Close()
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	// Health check endpoint
	startTime := time.Now()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"timestamp":   time.Now(),
			"uptime":      time.Since(startTime).Seconds(),
			"environment": cfg.Environment,
		})
	})

	// Setup routes
	routes.SetupVisualizerRoutes(router, cfg, docs, orchestrator)
	routes.SetupLiveRoutes(router, cfg, orchestrator, metrics)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
