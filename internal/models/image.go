package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image represents an uploaded still image and its tagging state
type Image struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Filename    string `json:"filename" gorm:"not null;size:255"`
	Title       string `json:"title" gorm:"size:500"`
	Description string `json:"description" gorm:"type:text"` // AI-generated description
	UserNotes   string `json:"user_notes" gorm:"type:text"`
	FilePath    string `json:"file_path" gorm:"not null;size:1000"`

	ThumbnailPath string `json:"thumbnail_path" gorm:"size:1000"`
	Width         *int   `json:"width"`
	Height        *int   `json:"height"`
	FileSize      int64  `json:"file_size"`

	Status string `json:"status" gorm:"not null;default:uploaded;size:50;index"`

	Tags []ImageTag `json:"tags,omitempty" gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate generates a UUID before creating a new image
func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == "" {
		i.UUID = uuid.New().String()
	}
	if i.Status == "" {
		i.Status = StatusUploaded
	}
	return nil
}

// TableName returns the table name for the Image model
func (Image) TableName() string {
	return "images"
}

// IsProcessing returns true while the tagging pipeline runs
func (i *Image) IsProcessing() bool {
	return i.Status == StatusProcessing
}
