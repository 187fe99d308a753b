package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rosie/reelworthy/internal/api/handler"
	"github.com/rosie/reelworthy/internal/api/middleware"
	"github.com/rosie/reelworthy/internal/config"
	"github.com/rosie/reelworthy/internal/logger"
	"github.com/rosie/reelworthy/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	recommendService *service.RecommendService,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
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
	r.Use(middleware.CORS(cfg.Server.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	recommendHandler := handler.NewRecommendHandler(recommendService)
	movieHandler := handler.NewMovieHandler(recommendService)
	adminHandler := handler.NewAdminHandler(recommendService, log)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Content-based similarity search
		v1.GET("/search", recommendHandler.SearchGet)
		v1.POST("/search", recommendHandler.Search)

		// Hybrid recommendations
		v1.GET("/recommendations", recommendHandler.RecommendGet)
		v1.POST("/recommendations", recommendHandler.Recommend)

		// Catalog
		v1.GET("/movies", movieHandler.ListMovies)
		v1.GET("/movies/:id", movieHandler.GetMovie)

		// Stats
		v1.GET("/stats", recommendHandler.GetStats)

		// Index lifecycle
		v1.POST("/admin/index/rebuild", adminHandler.RebuildIndex)
		v1.GET("/admin/index/status", adminHandler.GetRebuildStatus)
	}

	return r
}
