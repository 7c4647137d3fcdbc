package images

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

// NewService creates a new image service
func NewService(repo Repository) Service {
	return &ServiceImpl{repo: repo}
}

// Register records a newly uploaded image
func (s *ServiceImpl) Register(ctx context.Context, filename, filePath string, fileSize int64) (*models.Image, error) {
	if filename == "" {
		return nil, NewValidationError("filename", "filename is required")
	}
	if filePath == "" {
		return nil, NewValidationError("file_path", "file path is required")
	}

	image := &models.Image{
		Filename: filename,
		Title:    filename,
		FilePath: filePath,
		FileSize: fileSize,
		Status:   models.StatusUploaded,
	}
	if err := s.repo.Create(ctx, image); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Registered image %d (%s)", image.ID, image.Filename)
	return image, nil
}

// Get retrieves an image by ID
func (s *ServiceImpl) Get(ctx context.Context, id uint) (*models.Image, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns images newest first with the total count
func (s *ServiceImpl) List(ctx context.Context, limit, offset int) ([]models.Image, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// UpdateDetails applies user edits to an image's title and notes
func (s *ServiceImpl) UpdateDetails(ctx context.Context, id uint, req UpdateRequest) (*models.Image, error) {
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

// Delete removes an image record and its media files. An image cannot be
// deleted while the tagging pipeline is running against it.
func (s *ServiceImpl) Delete(ctx context.Context, id uint) error {
	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if image.IsProcessing() {
		return ErrImageBusy
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	removeFile(image.FilePath)
	removeFile(image.ThumbnailPath)

	log.Printf("[INFO] Deleted image %d (%s)", id, image.Filename)
	return nil
}

// SetStatus moves an image to a new pipeline status
func (s *ServiceImpl) SetStatus(ctx context.Context, id uint, status string) error {
	switch status {
	case models.StatusUploaded, models.StatusProcessing, models.StatusTagged, models.StatusError:
	default:
		return NewValidationError("status", "unknown status "+status)
	}
	return s.repo.UpdateFields(ctx, id, map[string]interface{}{"status": status})
}

// SetDescription stores the generated description for an image
func (s *ServiceImpl) SetDescription(ctx context.Context, id uint, description string) error {
	return s.repo.UpdateFields(ctx, id, map[string]interface{}{"description": description})
}

// SetDimensions stores the probed pixel dimensions for an image
func (s *ServiceImpl) SetDimensions(ctx context.Context, id uint, width, height int) error {
	if width <= 0 || height <= 0 {
		return NewValidationError("dimensions", "width and height must be positive")
	}
	return s.repo.UpdateFields(ctx, id, map[string]interface{}{"width": width, "height": height})
}

func removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] Failed to remove file %s: %v", path, err)
	}
}
