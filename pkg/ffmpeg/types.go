package ffmpeg

// VideoMetadata represents metadata extracted from a media file
type VideoMetadata struct {
	Duration  float64 `json:"duration"`   // Duration in seconds
	Width     int     `json:"width"`      // Frame width in pixels
	Height    int     `json:"height"`     // Frame height in pixels
	FrameRate float64 `json:"frame_rate"` // Average frames per second
	Format    string  `json:"format"`     // Container format (mp4, mkv, etc.)
	Codec     string  `json:"codec"`      // Video codec
	Size      int64   `json:"size"`       // File size in bytes
}

// SceneChange represents a content change detected in a video stream
type SceneChange struct {
	Time  float64 `json:"time"`  // Timestamp of the cut in seconds
	Score float64 `json:"score"` // Detector score (0.0 - 1.0)
}
