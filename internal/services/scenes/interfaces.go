package scenes

import "context"

// TimeRange is a contiguous span of a video in seconds
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the range length in seconds
func (r TimeRange) Duration() float64 {
	return r.End - r.Start
}

// Detector finds content changes in a video and returns the resulting
// scene ranges in ascending start order. An empty result is a valid
// "no cuts found" answer; callers fall back to a single whole-duration
// scene on empty results and on errors alike.
type Detector interface {
	DetectScenes(ctx context.Context, mediaPath string) ([]TimeRange, error)
}
