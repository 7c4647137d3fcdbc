package frames

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
)

// ThumbnailExtractor extracts a single frame at a timestamp.
// Implemented by pkg/ffmpeg.FFmpeg.
type ThumbnailExtractor interface {
	ExtractThumbnail(ctx context.Context, inputPath, outputPath string, timestamp float64) error
}

// Sampler computes evenly distributed sample timestamps inside a time
// range and extracts one frame per timestamp. Individual extraction
// failures are logged and skipped; the sampler never fails wholesale
// because one frame failed.
type Sampler struct {
	extractor ThumbnailExtractor
}

// NewSampler creates a new frame sampler
func NewSampler(extractor ThumbnailExtractor) *Sampler {
	return &Sampler{extractor: extractor}
}

// Plan returns the sample timestamps for the interval (start, end) given a
// frame budget: at least one frame per two seconds of duration, never more
// than the budget, always at least one. For a single frame the midpoint is
// used; for n frames the k-th point sits at start + k*duration/(n+1), so
// samples never land on the interval boundaries.
func Plan(start, end float64, budget int) []float64 {
	duration := end - start
	if duration <= 0 || budget <= 0 {
		return nil
	}

	n := int(duration / 2)
	if n < 1 {
		n = 1
	}
	if n > budget {
		n = budget
	}

	timestamps := make([]float64, 0, n)
	if n == 1 {
		timestamps = append(timestamps, start+duration/2)
		return timestamps
	}

	for k := 1; k <= n; k++ {
		timestamps = append(timestamps, start+float64(k)*duration/float64(n+1))
	}
	return timestamps
}

// SampleRange extracts frames for the interval (start, end) into outputDir,
// named "<prefix>_frame_<k>.jpg". Returns the paths of the frames that were
// successfully written, in timestamp order.
func (s *Sampler) SampleRange(ctx context.Context, inputPath, outputDir, prefix string, start, end float64, budget int) []string {
	timestamps := Plan(start, end, budget)
	paths := make([]string, 0, len(timestamps))

	for i, timestamp := range timestamps {
		outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_frame_%d.jpg", prefix, i))
		if err := s.extractor.ExtractThumbnail(ctx, inputPath, outputPath, timestamp); err != nil {
			log.Printf("[WARN] Could not extract frame at %.2fs from %s: %v", timestamp, inputPath, err)
			continue
		}
		paths = append(paths, outputPath)
	}

	return paths
}

// SampleAt extracts frames at explicit timestamps, skipping failures.
// Used by the summary stage which samples fixed positions in the video.
func (s *Sampler) SampleAt(ctx context.Context, inputPath, outputDir, prefix string, timestamps []float64) []string {
	paths := make([]string, 0, len(timestamps))

	for i, timestamp := range timestamps {
		outputPath := filepath.Join(outputDir, fmt.Sprintf("%s_frame_%d.jpg", prefix, i))
		if err := s.extractor.ExtractThumbnail(ctx, inputPath, outputPath, timestamp); err != nil {
			log.Printf("[WARN] Could not extract frame at %.2fs from %s: %v", timestamp, inputPath, err)
			continue
		}
		paths = append(paths, outputPath)
	}

	return paths
}
