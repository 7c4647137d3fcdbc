package images

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

// NewRepository creates a new image repository
func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// Create inserts a new image record
func (r *RepositoryImpl) Create(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("creating image: %w", err)
	}
	return nil
}

// GetByID retrieves an image by its ID
func (r *RepositoryImpl) GetByID(ctx context.Context, id uint) (*models.Image, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(id)
		}
		return nil, fmt.Errorf("getting image: %w", err)
	}
	return &image, nil
}

// GetByUUID retrieves an image by its UUID
func (r *RepositoryImpl) GetByUUID(ctx context.Context, uuid string) (*models.Image, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(uuid)
		}
		return nil, fmt.Errorf("getting image: %w", err)
	}
	return &image, nil
}

// List returns images newest first with the total count
func (r *RepositoryImpl) List(ctx context.Context, limit, offset int) ([]models.Image, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Image{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting images: %w", err)
	}

	var images []models.Image
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&images).Error; err != nil {
		return nil, 0, fmt.Errorf("listing images: %w", err)
	}
	return images, total, nil
}

// UpdateFields applies a partial update to an image
func (r *RepositoryImpl) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Image{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("updating image fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError(id)
	}
	return nil
}

// Delete removes an image and its tag links. Dependent rows are removed
// explicitly since SQLite cascades are not enforced by default.
func (r *RepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", id).Delete(&models.ImageTag{}).Error; err != nil {
			return fmt.Errorf("deleting image tags: %w", err)
		}
		result := tx.Delete(&models.Image{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting image: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return NewNotFoundError(id)
		}
		return nil
	})
}
