package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag provenance constants. User-defined associations are protected from
// automatic deletion; AI-generated ones are replaced on re-tagging.
const (
	ProvenanceUser = "user"
	ProvenanceAI   = "ai"
)

// Tag is a globally unique name used to classify videos, scenes and images.
// Names are matched exactly and case-sensitively.
type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`

	Name string `json:"name" gorm:"uniqueIndex;not null;size:100"`
}

// BeforeCreate generates a UUID before creating a new tag
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.New().String()
	}
	return nil
}

// TableName returns the table name for the Tag model
func (Tag) TableName() string {
	return "tags"
}

// VideoTag links a tag to a video. At most one row per (video, tag) pair.
type VideoTag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	VideoID uint `json:"video_id" gorm:"not null;uniqueIndex:idx_video_tag"`
	TagID   uint `json:"tag_id" gorm:"not null;uniqueIndex:idx_video_tag"`
	Tag     *Tag `json:"tag,omitempty" gorm:"foreignKey:TagID"`

	Provenance string   `json:"provenance" gorm:"not null;default:ai;size:10"`
	Confidence *float64 `json:"confidence,omitempty"` // model score for AI tags, nil for user tags
}

// TableName returns the table name for the VideoTag model
func (VideoTag) TableName() string {
	return "video_tags"
}

// IsUserDefined returns true for user-authored associations
func (vt *VideoTag) IsUserDefined() bool {
	return vt.Provenance == ProvenanceUser
}

// EffectiveConfidence reports user tags as 1.0 for API compatibility
func (vt *VideoTag) EffectiveConfidence() float64 {
	return effectiveConfidence(vt.Provenance, vt.Confidence)
}

// SceneTag links a tag to a scene. At most one row per (scene, tag) pair.
type SceneTag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	SceneID uint `json:"scene_id" gorm:"not null;uniqueIndex:idx_scene_tag"`
	TagID   uint `json:"tag_id" gorm:"not null;uniqueIndex:idx_scene_tag"`
	Tag     *Tag `json:"tag,omitempty" gorm:"foreignKey:TagID"`

	Provenance string   `json:"provenance" gorm:"not null;default:ai;size:10"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// TableName returns the table name for the SceneTag model
func (SceneTag) TableName() string {
	return "scene_tags"
}

// IsUserDefined returns true for user-authored associations
func (st *SceneTag) IsUserDefined() bool {
	return st.Provenance == ProvenanceUser
}

// EffectiveConfidence reports user tags as 1.0 for API compatibility
func (st *SceneTag) EffectiveConfidence() float64 {
	return effectiveConfidence(st.Provenance, st.Confidence)
}

// ImageTag links a tag to an image. At most one row per (image, tag) pair.
type ImageTag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ImageID uint `json:"image_id" gorm:"not null;uniqueIndex:idx_image_tag"`
	TagID   uint `json:"tag_id" gorm:"not null;uniqueIndex:idx_image_tag"`
	Tag     *Tag `json:"tag,omitempty" gorm:"foreignKey:TagID"`

	Provenance string   `json:"provenance" gorm:"not null;default:ai;size:10"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// TableName returns the table name for the ImageTag model
func (ImageTag) TableName() string {
	return "image_tags"
}

// IsUserDefined returns true for user-authored associations
func (it *ImageTag) IsUserDefined() bool {
	return it.Provenance == ProvenanceUser
}

// EffectiveConfidence reports user tags as 1.0 for API compatibility
func (it *ImageTag) EffectiveConfidence() float64 {
	return effectiveConfidence(it.Provenance, it.Confidence)
}

func effectiveConfidence(provenance string, confidence *float64) float64 {
	if provenance == ProvenanceUser {
		return 1.0
	}
	if confidence == nil {
		return 0
	}
	return *confidence
}
