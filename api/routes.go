package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/mediatag/tagger-api/api/health"
	"github.com/mediatag/tagger-api/api/middleware"
	"github.com/mediatag/tagger-api/api/images"
	"github.com/mediatag/tagger-api/api/jobs"
	"github.com/mediatag/tagger-api/api/scenes"
	"github.com/mediatag/tagger-api/api/search"
	"github.com/mediatag/tagger-api/api/types"
	"github.com/mediatag/tagger-api/api/version"
	"github.com/mediatag/tagger-api/api/videos"
	_ "github.com/mediatag/tagger-api/docs/swagger"
	imagesService "github.com/mediatag/tagger-api/internal/services/images"
	jobsService "github.com/mediatag/tagger-api/internal/services/jobs"
	searchService "github.com/mediatag/tagger-api/internal/services/search"
	"github.com/mediatag/tagger-api/internal/services/tags"
	videosService "github.com/mediatag/tagger-api/internal/services/videos"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(301, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	// API v1 routes
	v1 := engine.Group("/api/v1")

	if deps == nil {
		deps = &types.Dependencies{}
	}

	// Initialize services if database is available
	if deps.DB != nil && deps.DB.DB != nil {
		if err := initializeServices(deps); err != nil {
			return err
		}

		// Register video routes with general rate limiting (10 req/s, burst of 20)
		videoGroup := v1.Group("/videos")
		videoGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
		videos.RegisterRoutes(videoGroup, deps)

		// Register image routes with general rate limiting (10 req/s, burst of 20)
		imageGroup := v1.Group("/images")
		imageGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
		images.RegisterRoutes(imageGroup, deps)

		// Register scene routes with general rate limiting (10 req/s, burst of 20)
		sceneGroup := v1.Group("/scenes")
		sceneGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
		scenes.RegisterRoutes(sceneGroup, deps)

		// Register job routes with general rate limiting (10 req/s, burst of 20)
		jobGroup := v1.Group("/jobs")
		jobGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
		jobs.RegisterRoutes(jobGroup, deps)

		// Register search routes with dedicated rate limiting (5 req/s, burst of 10)
		searchGroup := v1.Group("/search")
		searchGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 5, 10))
		if deps.SearchCache != nil {
			// Caches GET /search/tags only; POST /search passes through
			searchGroup.Use(middleware.CacheMiddleware(middleware.CacheConfig{
				Cache:      deps.SearchCache,
				DefaultTTL: 30 * time.Second,
				Enabled:    true,
			}))
		}
		search.RegisterRoutes(searchGroup, deps)
	}

	return nil
}

// initializeServices fills in any handler dependencies not already set
func initializeServices(deps *types.Dependencies) error {
	if deps.DB == nil || deps.DB.DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if deps.VideoService == nil {
		videoRepo := videosService.NewRepository(deps.DB.DB)
		deps.VideoService = videosService.NewService(videoRepo)
	}

	if deps.ImageService == nil {
		imageRepo := imagesService.NewRepository(deps.DB.DB)
		deps.ImageService = imagesService.NewService(imageRepo)
	}

	if deps.TagStore == nil {
		deps.TagStore = tags.NewStore(deps.DB.DB)
	}

	if deps.SearchEngine == nil {
		deps.SearchEngine = searchService.NewEngine(deps.DB.DB, deps.TagStore)
	}

	if deps.JobService == nil {
		jobRepo := jobsService.NewRepository(deps.DB.DB)
		deps.JobService = jobsService.NewService(jobRepo)
	}

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
