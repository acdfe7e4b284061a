package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propsearch/internal/bootstrap"
	"propsearch/internal/config"
	"propsearch/internal/handler"
	"propsearch/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Named("server")

	log.Infof("Property search %s (built %s, commit %s)", Version, BuildTime, GitCommit)

	gin.SetMode(cfg.Server.GinMode)

	app, err := bootstrap.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer app.Close()
	data, searchService := app.Data, app.Search

	// Warm the dataset; a failure here is retried on the first request.
	if listings, err := data.Listings(context.Background()); err != nil {
		log.Warnf("⚠️  Dataset not loaded yet: %v", err)
	} else {
		log.Infof("✅ Dataset ready: %d listings from %s", len(listings), cfg.Dataset.Source)
	}

	searchHandler := handler.NewSearchHandler(searchService, cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	feedbackHandler := handler.NewFeedbackHandler(searchService)
	healthHandler := handler.NewHealthHandler(data, handler.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	})

	router := gin.New()
	router.Use(recovery(), requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthHandler.Health)
	router.GET("/version", healthHandler.Version)

	// Legacy single-endpoint API
	router.POST("/api/search", searchHandler.Search)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/search", searchHandler.Search)
		apiV1.POST("/search/stream", searchHandler.SearchStream)
		apiV1.GET("/listings/:id", searchHandler.GetListing)
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	setupNoRoute(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Infof("🚀 Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Forced shutdown: %v", err)
	}
	log.Info("✅ Server stopped")
}
