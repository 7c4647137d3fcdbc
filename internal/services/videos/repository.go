package videos

import (
	"context"
	"errors"
	"fmt"

	"github.com/mediatag/tagger-api/internal/models"
	"gorm.io/gorm"
)

// RepositoryImpl implements the Repository interface
type RepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new video repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// Create inserts a new video record
func (r *RepositoryImpl) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return fmt.Errorf("creating video: %w", err)
	}
	return nil
}

// GetByID retrieves a video by its ID
func (r *RepositoryImpl) GetByID(ctx context.Context, id uint) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("video", id)
		}
		return nil, fmt.Errorf("getting video: %w", err)
	}
	return &video, nil
}

// GetByUUID retrieves a video by its UUID
func (r *RepositoryImpl) GetByUUID(ctx context.Context, uuid string) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("video", uuid)
		}
		return nil, fmt.Errorf("getting video: %w", err)
	}
	return &video, nil
}

// List returns videos newest first with the total count
func (r *RepositoryImpl) List(ctx context.Context, limit, offset int) ([]models.Video, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Video{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting videos: %w", err)
	}

	var videos []models.Video
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&videos).Error; err != nil {
		return nil, 0, fmt.Errorf("listing videos: %w", err)
	}
	return videos, total, nil
}

// Update saves all fields of a video
func (r *RepositoryImpl) Update(ctx context.Context, video *models.Video) error {
	result := r.db.WithContext(ctx).Save(video)
	if result.Error != nil {
		return fmt.Errorf("updating video: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("video", video.ID)
	}
	return nil
}

// UpdateFields applies a partial update to a video
func (r *RepositoryImpl) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("updating video fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("video", id)
	}
	return nil
}

// Delete removes a video together with its scenes and tag links. SQLite does
// not enforce cascades unless the foreign_keys pragma is on, so dependent
// rows are removed explicitly.
func (r *RepositoryImpl) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteSceneRows(tx, id); err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&models.VideoTag{}).Error; err != nil {
			return fmt.Errorf("deleting video tags: %w", err)
		}
		result := tx.Delete(&models.Video{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting video: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return NewNotFoundError("video", id)
		}
		return nil
	})
	return err
}

// deleteSceneRows removes all scenes of a video and their tag links
func deleteSceneRows(tx *gorm.DB, videoID uint) error {
	if err := tx.Where("scene_id IN (?)",
		tx.Session(&gorm.Session{NewDB: true}).Model(&models.Scene{}).Select("id").Where("video_id = ?", videoID),
	).Delete(&models.SceneTag{}).Error; err != nil {
		return fmt.Errorf("deleting scene tags: %w", err)
	}
	if err := tx.Where("video_id = ?", videoID).Delete(&models.Scene{}).Error; err != nil {
		return fmt.Errorf("deleting scenes: %w", err)
	}
	return nil
}

// CreateScene inserts a new scene record
func (r *RepositoryImpl) CreateScene(ctx context.Context, scene *models.Scene) error {
	if err := r.db.WithContext(ctx).Create(scene).Error; err != nil {
		return fmt.Errorf("creating scene: %w", err)
	}
	return nil
}

// GetSceneByID retrieves a scene by its ID
func (r *RepositoryImpl) GetSceneByID(ctx context.Context, id uint) (*models.Scene, error) {
	var scene models.Scene
	if err := r.db.WithContext(ctx).First(&scene, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("scene", id)
		}
		return nil, fmt.Errorf("getting scene: %w", err)
	}
	return &scene, nil
}

// UpdateSceneFields applies a partial update to a scene
func (r *RepositoryImpl) UpdateSceneFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Scene{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("updating scene fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("scene", id)
	}
	return nil
}

// ListScenes returns a video's scenes in playback order
func (r *RepositoryImpl) ListScenes(ctx context.Context, videoID uint) ([]models.Scene, error) {
	var scenes []models.Scene
	if err := r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("start_time ASC").
		Find(&scenes).Error; err != nil {
		return nil, fmt.Errorf("listing scenes: %w", err)
	}
	return scenes, nil
}

// DeleteScenes removes all scenes for a video along with their tag links
func (r *RepositoryImpl) DeleteScenes(ctx context.Context, videoID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteSceneRows(tx, videoID)
	})
}
