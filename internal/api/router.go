package api

import (
	"github.com/gin-gonic/gin"

	"github.com/hualin/docpack/internal/api/handler"
	"github.com/hualin/docpack/internal/api/middleware"
	"github.com/hualin/docpack/internal/catalog"
	"github.com/hualin/docpack/internal/logger"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	repo *catalog.Repository,
	archiveDir string,
	mode string,
	cors middleware.CORSConfig,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cors))

	// Create handlers
	healthHandler := handler.NewHealthHandler(archiveDir)
	documentHandler := handler.NewDocumentHandler(repo)
	runHandler := handler.NewRunHandler(archiveDir)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Documents
		v1.GET("/documents", documentHandler.ListDocuments)
		v1.GET("/documents/:id", documentHandler.GetDocument)

		// Categories
		v1.GET("/categories", documentHandler.GetCategories)

		// Runs
		v1.GET("/runs", runHandler.GetRun)
	}

	return r
}
