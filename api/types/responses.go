package types

import "github.com/mediatag/tagger-api/internal/models"

// Status constants for API responses
const (
	StatusOK     = "ok"
	StatusError  = "error"
	StatusQueued = "queued"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`  // One of the Status constants above
	Message string `json:"message"` // Human-readable message
}

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string      `json:"status,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`   // Error code/type
	Details interface{} `json:"details,omitempty"` // Additional error details
}

// VideosResponse for video lists
type VideosResponse struct {
	BaseResponse
	Videos []models.Video `json:"videos"`
	Count  int            `json:"count"`           // Number of results in this response
	Total  int64          `json:"total,omitempty"` // Total available (if known)
	Offset int            `json:"offset,omitempty"`
}

// ImagesResponse for image lists
type ImagesResponse struct {
	BaseResponse
	Images []models.Image `json:"images"`
	Count  int            `json:"count"`
	Total  int64          `json:"total,omitempty"`
	Offset int            `json:"offset,omitempty"`
}

// TaggingQueuedResponse for asynchronous tagging triggers
type TaggingQueuedResponse struct {
	BaseResponse
	JobID    uint   `json:"job_id"`
	EntityID uint   `json:"entity_id"`
	Kind     string `json:"kind"` // "video" or "image"
}

// ExportedScene describes one clip produced by a scene export
type ExportedScene struct {
	SceneID       uint    `json:"scene_id"`
	VideoFilename string  `json:"video_filename"`
	StartTime     float64 `json:"start_time"`
	EndTime       float64 `json:"end_time"`
	ClipPath      string  `json:"clip_path"`
}

// ExportScenesResponse for scene clip exports
type ExportScenesResponse struct {
	BaseResponse
	Files      []ExportedScene `json:"files"`
	MergedFile string          `json:"merged_file,omitempty"`
}
