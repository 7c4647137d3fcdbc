package tags

import (
	"context"
	"errors"
	"fmt"

	"github.com/mediatag/tagger-api/internal/models"
	"gorm.io/gorm"
)

// Sentinel errors returned by the store
var (
	ErrTagNotFound = errors.New("tag not found")
	ErrInvalidKind = errors.New("invalid tag kind")
)

// StoreImpl implements the Store interface on a gorm database
type StoreImpl struct {
	db *gorm.DB
}

// NewStore creates a new tag store
func NewStore(db *gorm.DB) Store {
	return &StoreImpl{db: db}
}

// tableFor maps a kind to its association table and owner column
func tableFor(kind Kind) (table, ownerColumn string, err error) {
	switch kind {
	case KindVideo:
		return "video_tags", "video_id", nil
	case KindScene:
		return "scene_tags", "scene_id", nil
	case KindImage:
		return "image_tags", "image_id", nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
}

// modelFor returns an empty association model for a kind
func modelFor(kind Kind) (interface{}, error) {
	switch kind {
	case KindVideo:
		return &models.VideoTag{}, nil
	case KindScene:
		return &models.SceneTag{}, nil
	case KindImage:
		return &models.ImageTag{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
}

// FindOrCreateTag resolves a name to a tag row, creating it if needed.
// Concurrent creation of the same name is resolved by re-reading after a
// unique constraint failure.
func (s *StoreImpl) FindOrCreateTag(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("finding tag %q: %w", name, err)
	}

	tag = models.Tag{Name: name}
	if createErr := s.db.WithContext(ctx).Create(&tag).Error; createErr != nil {
		// another writer may have inserted the same name first
		if retryErr := s.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; retryErr != nil {
			return nil, fmt.Errorf("creating tag %q: %w", name, createErr)
		}
	}
	return &tag, nil
}

// Attach associates a tag name with an owner. When the association already
// exists nothing is created; a user attach upgrades an existing generated
// association, but a generated attach never overwrites a user one.
func (s *StoreImpl) Attach(ctx context.Context, kind Kind, ownerID uint, name, provenance string, confidence *float64) (bool, error) {
	table, ownerCol, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	tag, err := s.FindOrCreateTag(ctx, name)
	if err != nil {
		return false, err
	}

	model, err := modelFor(kind)
	if err != nil {
		return false, err
	}

	existing, err := s.findAssociation(ctx, model, ownerCol, ownerID, tag.ID)
	if err != nil {
		return false, fmt.Errorf("checking %s association: %w", kind, err)
	}

	if existing.ID == 0 {
		createErr := s.createAssociation(ctx, kind, ownerID, tag.ID, provenance, confidence)
		if createErr == nil {
			return true, nil
		}
		// a concurrent attach may have inserted the same pair between the
		// existence check and the insert; a row present now means we lost
		// that race, which is not an error
		existing, err = s.findAssociation(ctx, model, ownerCol, ownerID, tag.ID)
		if err != nil || existing.ID == 0 {
			return false, createErr
		}
	}

	if provenance == models.ProvenanceUser && existing.Provenance != models.ProvenanceUser {
		updates := map[string]interface{}{"provenance": models.ProvenanceUser, "confidence": nil}
		if err := s.db.WithContext(ctx).Table(table).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return false, fmt.Errorf("upgrading %s association: %w", kind, err)
		}
	}
	return false, nil
}

type associationRow struct {
	ID         uint
	Provenance string
}

func (s *StoreImpl) findAssociation(ctx context.Context, model interface{}, ownerCol string, ownerID, tagID uint) (associationRow, error) {
	var row associationRow
	err := s.db.WithContext(ctx).Model(model).
		Select("id, provenance").
		Where(ownerCol+" = ? AND tag_id = ?", ownerID, tagID).
		Scan(&row).Error
	return row, err
}

func (s *StoreImpl) createAssociation(ctx context.Context, kind Kind, ownerID, tagID uint, provenance string, confidence *float64) error {
	var row interface{}
	switch kind {
	case KindVideo:
		row = &models.VideoTag{VideoID: ownerID, TagID: tagID, Provenance: provenance, Confidence: confidence}
	case KindScene:
		row = &models.SceneTag{SceneID: ownerID, TagID: tagID, Provenance: provenance, Confidence: confidence}
	case KindImage:
		row = &models.ImageTag{ImageID: ownerID, TagID: tagID, Provenance: provenance, Confidence: confidence}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("creating %s association: %w", kind, err)
	}
	return nil
}

// Detach removes the association between an owner and a tag name
func (s *StoreImpl) Detach(ctx context.Context, kind Kind, ownerID uint, name string) error {
	_, ownerCol, err := tableFor(kind)
	if err != nil {
		return err
	}

	var tag models.Tag
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("finding tag %q: %w", name, err)
	}

	model, err := modelFor(kind)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Where(ownerCol+" = ? AND tag_id = ?", ownerID, tag.ID).
		Delete(model)
	if result.Error != nil {
		return fmt.Errorf("detaching %s tag: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTagNotFound
	}
	return nil
}

// ClearGenerated removes all non-user associations for an owner
func (s *StoreImpl) ClearGenerated(ctx context.Context, kind Kind, ownerID uint) error {
	_, ownerCol, err := tableFor(kind)
	if err != nil {
		return err
	}
	model, err := modelFor(kind)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).
		Where(ownerCol+" = ? AND provenance != ?", ownerID, models.ProvenanceUser).
		Delete(model).Error; err != nil {
		return fmt.Errorf("clearing generated %s tags: %w", kind, err)
	}
	return nil
}

// ListFor returns an owner's associations with resolved tag names
func (s *StoreImpl) ListFor(ctx context.Context, kind Kind, ownerID uint) ([]Association, error) {
	table, ownerCol, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	var associations []Association
	if err := s.db.WithContext(ctx).Table(table).
		Select(table+".tag_id, tags.name, "+table+".provenance, "+table+".confidence").
		Joins("JOIN tags ON tags.id = "+table+".tag_id").
		Where(table+"."+ownerCol+" = ?", ownerID).
		Order("tags.name ASC").
		Scan(&associations).Error; err != nil {
		return nil, fmt.Errorf("listing %s tags: %w", kind, err)
	}
	return associations, nil
}

// ListUsage returns all tags with per-kind usage counts, most used first
func (s *StoreImpl) ListUsage(ctx context.Context) ([]UsageCount, error) {
	var usage []UsageCount
	err := s.db.WithContext(ctx).Table("tags").
		Select(`tags.name,
			(SELECT COUNT(*) FROM video_tags WHERE video_tags.tag_id = tags.id) AS videos,
			(SELECT COUNT(*) FROM scene_tags WHERE scene_tags.tag_id = tags.id) AS scenes,
			(SELECT COUNT(*) FROM image_tags WHERE image_tags.tag_id = tags.id) AS images`).
		Order("(videos + scenes + images) DESC, tags.name ASC").
		Scan(&usage).Error
	if err != nil {
		return nil, fmt.Errorf("listing tag usage: %w", err)
	}
	return usage, nil
}
