package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity status constants shared by videos and images
const (
	StatusUploaded   = "uploaded"   // Registered, not yet analyzed
	StatusProcessing = "processing" // Tagging pipeline running
	StatusTagged     = "tagged"     // Pipeline completed
	StatusError      = "error"      // Pipeline failed
)

// Video represents an uploaded video file and its tagging state
type Video struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UUID      string    `json:"uuid" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Filename  string `json:"filename" gorm:"not null;size:255"`
	Title     string `json:"title" gorm:"size:500"`
	Summary   string `json:"summary" gorm:"type:text"` // AI-generated summary
	UserNotes string `json:"user_notes" gorm:"type:text"`
	FilePath  string `json:"file_path" gorm:"not null;size:1000"`

	Duration *float64 `json:"duration"` // Duration in seconds, nullable until probed
	FileSize int64    `json:"file_size"`

	Status string `json:"status" gorm:"not null;default:uploaded;size:50;index"`

	// Owned records, removed with the video
	Scenes []Scene    `json:"scenes,omitempty" gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
	Tags   []VideoTag `json:"tags,omitempty" gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate generates a UUID before creating a new video
func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.UUID == "" {
		v.UUID = uuid.New().String()
	}
	if v.Status == "" {
		v.Status = StatusUploaded
	}
	return nil
}

// TableName returns the table name for the Video model
func (Video) TableName() string {
	return "videos"
}

// DurationSeconds returns the probed duration, or a fallback when unknown
func (v *Video) DurationSeconds(fallback float64) float64 {
	if v.Duration == nil || *v.Duration <= 0 {
		return fallback
	}
	return *v.Duration
}

// IsProcessing returns true while the tagging pipeline runs
func (v *Video) IsProcessing() bool {
	return v.Status == StatusProcessing
}
