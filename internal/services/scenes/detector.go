package scenes

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/mediatag/tagger-api/pkg/ffmpeg"
)

// FFmpegDetector wraps ffmpeg's content-change detection filter
type FFmpegDetector struct {
	ff             *ffmpeg.FFmpeg
	threshold      float64 // Detection threshold, lower = more sensitive
	minSceneFrames int     // Minimum scene length in frames
	fallbackFPS    float64 // Used when the stream rate cannot be probed
}

// Ensure FFmpegDetector implements the Detector interface
var _ Detector = (*FFmpegDetector)(nil)

// NewFFmpegDetector creates a new detector
func NewFFmpegDetector(ff *ffmpeg.FFmpeg, threshold float64, minSceneFrames int, fallbackFPS float64) *FFmpegDetector {
	if threshold <= 0 {
		threshold = 0.3
	}
	if minSceneFrames <= 0 {
		minSceneFrames = 10
	}
	if fallbackFPS <= 0 {
		fallbackFPS = 25
	}
	return &FFmpegDetector{
		ff:             ff,
		threshold:      threshold,
		minSceneFrames: minSceneFrames,
		fallbackFPS:    fallbackFPS,
	}
}

// DetectScenes runs content-change detection and converts the cut points
// into (start, end) ranges, enforcing the minimum scene length floor.
func (d *FFmpegDetector) DetectScenes(ctx context.Context, mediaPath string) ([]TimeRange, error) {
	metadata, err := d.ff.GetMetadata(ctx, mediaPath)
	if err != nil {
		return nil, fmt.Errorf("probing media for scene detection: %w", err)
	}

	fps := metadata.FrameRate
	if fps <= 0 {
		fps = d.fallbackFPS
	}
	minSceneLen := float64(d.minSceneFrames) / fps

	changes, err := d.ff.DetectSceneChanges(ctx, mediaPath, d.threshold)
	if err != nil {
		return nil, fmt.Errorf("detecting scene changes: %w", err)
	}

	if len(changes) == 0 {
		// No cuts found, valid response
		return nil, nil
	}

	cuts := make([]float64, 0, len(changes))
	for _, change := range changes {
		cuts = append(cuts, change.Time)
	}
	sort.Float64s(cuts)

	ranges := rangesFromCuts(cuts, metadata.Duration, minSceneLen)
	log.Printf("Detected %d scenes in %s (%d raw cuts, min scene %.2fs)",
		len(ranges), mediaPath, len(cuts), minSceneLen)
	return ranges, nil
}

// rangesFromCuts converts ascending cut timestamps into scene ranges over
// [0, duration], dropping cuts that would create a scene shorter than
// minSceneLen. The final range always ends at the media duration.
func rangesFromCuts(cuts []float64, duration, minSceneLen float64) []TimeRange {
	var ranges []TimeRange
	start := 0.0

	for _, cut := range cuts {
		if cut <= start {
			continue
		}
		if cut >= duration {
			break
		}
		if cut-start < minSceneLen {
			// Too short, merge into the next scene
			continue
		}
		ranges = append(ranges, TimeRange{Start: start, End: cut})
		start = cut
	}

	if duration > start {
		ranges = append(ranges, TimeRange{Start: start, End: duration})
	}

	return ranges
}
