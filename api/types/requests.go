package types

// RegisterVideoRequest registers an already uploaded video file
type RegisterVideoRequest struct {
	Filename string `json:"filename" binding:"required" example:"holiday.mp4"`
	FilePath string `json:"file_path" binding:"required" example:"/media/videos/holiday.mp4"`
	FileSize int64  `json:"file_size" example:"10485760"`
}

// RegisterImageRequest registers an already uploaded image file
type RegisterImageRequest struct {
	Filename string `json:"filename" binding:"required" example:"sunset.jpg"`
	FilePath string `json:"file_path" binding:"required" example:"/media/images/sunset.jpg"`
	FileSize int64  `json:"file_size" example:"524288"`
}

// UpdateEntityRequest carries the user-editable fields of a video or image.
// Nil fields are left unchanged.
type UpdateEntityRequest struct {
	Title     *string `json:"title,omitempty"`
	UserNotes *string `json:"user_notes,omitempty"`
}

// TagRequest adds a user tag to a video or image
type TagRequest struct {
	Name string `json:"name" binding:"required" example:"vacation"`
}

// ExportScenesRequest selects scenes for clip export, optionally merged
// into a single file
type ExportScenesRequest struct {
	SceneIDs []uint `json:"scene_ids" binding:"required"`
	Merge    bool   `json:"merge"`
}
