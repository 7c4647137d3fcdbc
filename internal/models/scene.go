package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scene represents a contiguous time range within a video, produced by
// scene detection. Scenes are only ever created by the tagging pipeline.
type Scene struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`

	VideoID uint   `json:"video_id" gorm:"not null;index"`
	Video   *Video `json:"-" gorm:"foreignKey:VideoID"`

	StartTime float64 `json:"start_time" gorm:"not null"` // seconds
	EndTime   float64 `json:"end_time" gorm:"not null"`   // seconds

	ThumbnailPath string `json:"thumbnail_path" gorm:"size:1000"`
	ClipPath      string `json:"clip_path" gorm:"size:1000"`

	Tags []SceneTag `json:"tags,omitempty" gorm:"foreignKey:SceneID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate generates a UUID before creating a new scene
func (s *Scene) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.New().String()
	}
	return nil
}

// TableName returns the table name for the Scene model
func (Scene) TableName() string {
	return "scenes"
}

// Duration returns the scene length in seconds
func (s *Scene) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Midpoint returns the timestamp halfway through the scene
func (s *Scene) Midpoint() float64 {
	return (s.StartTime + s.EndTime) / 2
}
