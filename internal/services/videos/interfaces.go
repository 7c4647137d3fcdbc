package videos

import (
	"context"

	"github.com/mediatag/tagger-api/internal/models"
)

// Repository defines the data access interface for videos and their scenes
type Repository interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id uint) (*models.Video, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Video, error)
	List(ctx context.Context, limit, offset int) ([]models.Video, int64, error)
	Update(ctx context.Context, video *models.Video) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error

	CreateScene(ctx context.Context, scene *models.Scene) error
	GetSceneByID(ctx context.Context, id uint) (*models.Scene, error)
	ListScenes(ctx context.Context, videoID uint) ([]models.Scene, error)
	UpdateSceneFields(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteScenes(ctx context.Context, videoID uint) error
}

// UpdateRequest carries the user-editable video fields
type UpdateRequest struct {
	Title     *string `json:"title,omitempty"`
	UserNotes *string `json:"user_notes,omitempty"`
}

// Service defines the business logic interface for videos
type Service interface {
	Register(ctx context.Context, filename, filePath string, fileSize int64) (*models.Video, error)
	Get(ctx context.Context, id uint) (*models.Video, error)
	List(ctx context.Context, limit, offset int) ([]models.Video, int64, error)
	UpdateDetails(ctx context.Context, id uint, req UpdateRequest) (*models.Video, error)
	Delete(ctx context.Context, id uint) error

	SetStatus(ctx context.Context, id uint, status string) error
	SetSummary(ctx context.Context, id uint, summary string) error
	SetDuration(ctx context.Context, id uint, duration float64) error

	GetScene(ctx context.Context, sceneID uint) (*models.Scene, error)
	ListScenes(ctx context.Context, videoID uint) ([]models.Scene, error)
	ReplaceScenes(ctx context.Context, videoID uint, scenes []models.Scene) ([]models.Scene, error)
	SetSceneClipPath(ctx context.Context, sceneID uint, path string) error
}
