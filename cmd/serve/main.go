package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hualin/docpack/internal/api"
	"github.com/hualin/docpack/internal/api/middleware"
	"github.com/hualin/docpack/internal/catalog"
	"github.com/hualin/docpack/internal/config"
	"github.com/hualin/docpack/internal/logger"
)

func main() {
	// Initialize logger from environment (file rotation in production)
	envCfg := logger.LoadFromEnv()
	envCfg.ServiceName = "docpack-serve"
	appLogger := logger.NewFromEnv(envCfg)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Parse command line flags
	archiveDir := flag.String("archive", "downloaded_docs", "Directory holding the Markdown archive")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	if *configPath == "" {
		*configPath = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	if !cfg.Catalog.Enabled {
		appLogger.Fatal("The archive API requires the document catalog, set catalog.enabled")
	}

	// Initialize database
	db, err := catalog.InitDB(&cfg.Catalog)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize catalog database")
	}
	repo := catalog.NewRepository(db)

	// Setup router
	router := api.SetupRouter(repo, *archiveDir, cfg.Server.Mode, middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting archive API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
