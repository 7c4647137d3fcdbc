package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mediatag/tagger-api/api"
	"github.com/mediatag/tagger-api/api/types"
	"github.com/mediatag/tagger-api/internal/database"
	"github.com/mediatag/tagger-api/internal/models"
	"github.com/mediatag/tagger-api/internal/services/cache"
	"github.com/mediatag/tagger-api/internal/services/cleanup"
	"github.com/mediatag/tagger-api/internal/services/frames"
	"github.com/mediatag/tagger-api/internal/services/generation"
	imagesService "github.com/mediatag/tagger-api/internal/services/images"
	jobsService "github.com/mediatag/tagger-api/internal/services/jobs"
	"github.com/mediatag/tagger-api/internal/services/scenes"
	searchService "github.com/mediatag/tagger-api/internal/services/search"
	"github.com/mediatag/tagger-api/internal/services/tagging"
	"github.com/mediatag/tagger-api/internal/services/tags"
	videosService "github.com/mediatag/tagger-api/internal/services/videos"
	"github.com/mediatag/tagger-api/internal/services/workers"
	"github.com/mediatag/tagger-api/pkg/config"
	"github.com/mediatag/tagger-api/pkg/ffmpeg"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Media Tagger API server with the configured settings.

The server handles entity registration, queues tagging jobs and runs
the worker pool that executes the tagging pipeline.

Example:
  tagger-api serve
  tagger-api serve --port 9090
  tagger-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if serverHost == "" {
		serverHost = cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = cfg.Server.Port
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(
		&models.Video{},
		&models.Scene{},
		&models.Image{},
		&models.Tag{},
		&models.VideoTag{},
		&models.SceneTag{},
		&models.ImageTag{},
		&models.Job{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	frameDir := filepath.Join(cfg.Storage.BasePath, "frames")
	thumbnailDir := filepath.Join(cfg.Storage.BasePath, cfg.Storage.ThumbnailsDir)
	clipDir := filepath.Join(cfg.Storage.BasePath, cfg.Storage.ClipsDir)
	exportDir := filepath.Join(cfg.Storage.BasePath, "exports")
	for _, dir := range []string{frameDir, thumbnailDir, clipDir, exportDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	// Shared services
	videoService := videosService.NewService(videosService.NewRepository(db.DB))
	imageService := imagesService.NewService(imagesService.NewRepository(db.DB))
	tagStore := tags.NewStore(db.DB)
	jobService := jobsService.NewService(jobsService.NewRepository(db.DB))
	searchEngine := searchService.NewEngine(db.DB, tagStore)

	// Pipeline collaborators
	toolkit := ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFprobePath, cfg.Processing.FFmpegTimeout)
	genClient := generation.NewHTTPClient(generation.Config{
		BaseURL:       cfg.Ollama.BaseURL,
		Model:         cfg.Ollama.Model,
		TextTimeout:   cfg.Ollama.TextTimeout,
		VisionTimeout: cfg.Ollama.VisionTimeout,
		RatePerSecond: cfg.Ollama.RatePerSecond,
		RateBurst:     cfg.Ollama.RateBurst,
	})
	detector := scenes.NewFFmpegDetector(
		toolkit,
		cfg.SceneDetection.Threshold,
		cfg.SceneDetection.MinSceneFrames,
		cfg.SceneDetection.FallbackFPS,
	)
	sampler := frames.NewSampler(toolkit)

	pipelineOpts := tagging.Options{
		FramesPerScene:   cfg.Tagging.FramesPerScene,
		MaxSceneTags:     cfg.Tagging.MaxSceneTags,
		MaxVideoTags:     cfg.Tagging.MaxVideoTags,
		MaxImageTags:     cfg.Tagging.MaxImageTags,
		MaxAggregateTags: cfg.Tagging.MaxAggregateTags,
		FrameDir:         frameDir,
		ThumbnailDir:     thumbnailDir,
		ClipDir:          clipDir,
	}
	videoTagger := tagging.NewVideoOrchestrator(videoService, tagStore, genClient, detector, sampler, toolkit, pipelineOpts)
	imageTagger := tagging.NewImageOrchestrator(imageService, tagStore, genClient, pipelineOpts)

	// Worker pool serving the job queue
	pool := workers.NewWorkerPool(jobService, cfg.Processing.Workers, cfg.Processing.PollInterval)
	pool.RegisterProcessor(workers.NewTaggingProcessor(videoTagger, imageTagger, jobService))

	poolCtx, poolCancel := context.WithCancel(context.Background())
	defer poolCancel()
	if err := pool.Start(poolCtx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	// Orphaned frame sweeper
	sweeper := cleanup.NewService(frameDir, time.Hour, 15*time.Minute)
	sweeper.Start(poolCtx)

	// Response cache for tag listings
	searchCache := cache.NewMemoryCache(32)

	// HTTP server
	server := api.NewServer(fmt.Sprintf("%s:%d", serverHost, serverPort))
	server.SetDependencies(&types.Dependencies{
		DB:           db,
		VideoService: videoService,
		ImageService: imageService,
		TagStore:     tagStore,
		SearchEngine: searchEngine,
		JobService:   jobService,
		WorkerPool:   pool,
		SearchCache:  searchCache,
		Media:        toolkit,
		ClipDir:      clipDir,
		ExportDir:    exportDir,
	})
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	fmt.Printf("Starting Media Tagger API server on %s:%d\n", serverHost, serverPort)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-stop:
		fmt.Println("\nShutting down server...")
	case err := <-serverErr:
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		fmt.Println("Shutting down server...")
	}

	// Stop accepting work before draining HTTP connections
	sweeper.Stop()
	pool.Stop()
	searchCache.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server forced to shutdown: %v\n", err)
		return err
	}

	fmt.Println("Server gracefully stopped")
	return nil
}
