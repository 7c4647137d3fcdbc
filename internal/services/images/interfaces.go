package images

import (
	"context"

	"github.com/mediatag/tagger-api/internal/models"
)

// Repository defines the data access interface for images
type Repository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id uint) (*models.Image, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Image, error)
	List(ctx context.Context, limit, offset int) ([]models.Image, int64, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

// UpdateRequest carries the user-editable image fields
type UpdateRequest struct {
	Title     *string `json:"title,omitempty"`
	UserNotes *string `json:"user_notes,omitempty"`
}

// Service defines the business logic interface for images
type Service interface {
	Register(ctx context.Context, filename, filePath string, fileSize int64) (*models.Image, error)
	Get(ctx context.Context, id uint) (*models.Image, error)
	List(ctx context.Context, limit, offset int) ([]models.Image, int64, error)
	UpdateDetails(ctx context.Context, id uint, req UpdateRequest) (*models.Image, error)
	Delete(ctx context.Context, id uint) error

	SetStatus(ctx context.Context, id uint, status string) error
	SetDescription(ctx context.Context, id uint, description string) error
	SetDimensions(ctx context.Context, id uint, width, height int) error
}
