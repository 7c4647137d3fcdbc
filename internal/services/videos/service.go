package videos

import (
	"context"
	"log"
	"os"

	"github.com/mediatag/tagger-api/internal/models"
)

// ServiceImpl implements the Service interface
type ServiceImpl struct {
	repo Repository
}

// NewService creates a new video service
func NewService(repo Repository) Service {
	return &ServiceImpl{repo: repo}
}

// Register records a newly uploaded video
func (s *ServiceImpl) Register(ctx context.Context, filename, filePath string, fileSize int64) (*models.Video, error) {
	if filename == "" {
		return nil, NewValidationError("filename", "filename is required")
	}
	if filePath == "" {
		return nil, NewValidationError("file_path", "file path is required")
	}

	video := &models.Video{
		Filename: filename,
		Title:    filename,
		FilePath: filePath,
		FileSize: fileSize,
		Status:   models.StatusUploaded,
	}
	if err := s.repo.Create(ctx, video); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Registered video %d (%s)", video.ID, video.Filename)
	return video, nil
}

// Get retrieves a video by ID
func (s *ServiceImpl) Get(ctx context.Context, id uint) (*models.Video, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns videos newest first with the total count
func (s *ServiceImpl) List(ctx context.Context, limit, offset int) ([]models.Video, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// UpdateDetails applies user edits to a video's title and notes
func (s *ServiceImpl) UpdateDetails(ctx context.Context, id uint, req UpdateRequest) (*models.Video, error) {
	fields := map[string]interface{}{}
	if req.Title != nil {
		if *req.Title == "" {
			return nil, NewValidationError("title", "title cannot be empty")
		}
		fields["title"] = *req.Title
	}
	if req.UserNotes != nil {
		fields["user_notes"] = *req.UserNotes
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a video record and its media files. A video cannot be
// deleted while the tagging pipeline is running against it.
func (s *ServiceImpl) Delete(ctx context.Context, id uint) error {
	video, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if video.IsProcessing() {
		return ErrVideoBusy
	}

	scenes, err := s.repo.ListScenes(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	removeFile(video.FilePath)
	for _, scene := range scenes {
		removeFile(scene.ThumbnailPath)
		removeFile(scene.ClipPath)
	}

	log.Printf("[INFO] Deleted video %d (%s)", id, video.Filename)
	return nil
}

// SetStatus moves a video to a new pipeline status
func (s *ServiceImpl) SetStatus(ctx context.Context, id uint, status string) error {
	switch status {
	case models.StatusUploaded, models.StatusProcessing, models.StatusTagged, models.StatusError:
	default:
		return NewValidationError("status", "unknown status "+status)
	}
	return s.repo.UpdateFields(ctx, id, map[string]interface{}{"status": status})
}

// SetSummary stores the generated summary for a video
func (s *ServiceImpl) SetSummary(ctx context.Context, id uint, summary string) error {
	return s.repo.UpdateFields(ctx, id, map[string]interface{}{"summary": summary})
}

// SetDuration stores the probed duration for a video
func (s *ServiceImpl) SetDuration(ctx context.Context, id uint, duration float64) error {
	if duration <= 0 {
		return NewValidationError("duration", "duration must be positive")
	}
	return s.repo.UpdateFields(ctx, id, map[string]interface{}{"duration": duration})
}

// GetScene retrieves a single scene by ID
func (s *ServiceImpl) GetScene(ctx context.Context, sceneID uint) (*models.Scene, error) {
	return s.repo.GetSceneByID(ctx, sceneID)
}

// ListScenes returns a video's scenes in playback order
func (s *ServiceImpl) ListScenes(ctx context.Context, videoID uint) ([]models.Scene, error) {
	if _, err := s.repo.GetByID(ctx, videoID); err != nil {
		return nil, err
	}
	return s.repo.ListScenes(ctx, videoID)
}

// SetSceneClipPath records where a scene's extracted clip was written
func (s *ServiceImpl) SetSceneClipPath(ctx context.Context, sceneID uint, path string) error {
	return s.repo.UpdateSceneFields(ctx, sceneID, map[string]interface{}{"clip_path": path})
}

// ReplaceScenes swaps a video's scenes for a freshly detected set. Old
// scene records, their tag links and their media files are removed.
func (s *ServiceImpl) ReplaceScenes(ctx context.Context, videoID uint, scenes []models.Scene) ([]models.Scene, error) {
	old, err := s.repo.ListScenes(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteScenes(ctx, videoID); err != nil {
		return nil, err
	}
	for _, scene := range old {
		removeFile(scene.ThumbnailPath)
		removeFile(scene.ClipPath)
	}

	created := make([]models.Scene, 0, len(scenes))
	for i := range scenes {
		scene := scenes[i]
		scene.VideoID = videoID
		if err := s.repo.CreateScene(ctx, &scene); err != nil {
			return nil, err
		}
		created = append(created, scene)
	}
	return created, nil
}

func removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] Failed to remove file %s: %v", path, err)
	}
}
