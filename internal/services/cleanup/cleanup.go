package cleanup

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Service removes stale sampled frames left behind when a tagging run
// was interrupted. Frames are transient by design; anything older than
// maxAge in the frame directory is an orphan.
type Service struct {
	frameDir        string
	maxAge          time.Duration
	cleanupInterval time.Duration
	cancel          context.CancelFunc
}

// NewService creates a new cleanup service
func NewService(frameDir string, maxAge, cleanupInterval time.Duration) *Service {
	return &Service{
		frameDir:        frameDir,
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
	}
}

// Start begins the cleanup service
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	// Run initial cleanup
	s.cleanup()

	go func() {
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.cleanup()
			case <-ctx.Done():
				log.Println("[INFO] Cleanup service stopped")
				return
			}
		}
	}()

	log.Printf("[INFO] Cleanup service started (interval: %v, max age: %v)", s.cleanupInterval, s.maxAge)
}

// Stop stops the cleanup service
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// cleanup removes orphaned frame files
func (s *Service) cleanup() {
	if _, err := os.Stat(s.frameDir); os.IsNotExist(err) {
		return
	}

	err := filepath.Walk(s.frameDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files with errors
		}

		if info.IsDir() {
			return nil
		}

		// Sampled frames are named <prefix>_frame_<k>.jpg
		if strings.Contains(info.Name(), "_frame_") && strings.HasSuffix(info.Name(), ".jpg") {
			if time.Since(info.ModTime()) > s.maxAge {
				log.Printf("[DEBUG] Removing orphaned frame: %s", path)
				if err := os.Remove(path); err != nil {
					log.Printf("[WARN] Failed to remove frame %s: %v", path, err)
				}
			}
		}

		return nil
	})

	if err != nil {
		log.Printf("[ERROR] Cleanup walk error: %v", err)
	}
}
