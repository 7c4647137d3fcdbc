package tagging

import (
	"context"
	"errors"

	"github.com/mediatag/tagger-api/pkg/ffmpeg"
)

// ErrAlreadyProcessing rejects a tagging request for an entity whose
// pipeline is still running
var ErrAlreadyProcessing = errors.New("entity is already being processed")

// FrameSampler extracts representative frames for a time range.
// Satisfied by frames.Sampler.
type FrameSampler interface {
	SampleRange(ctx context.Context, inputPath, outputDir, prefix string, start, end float64, budget int) []string
	SampleAt(ctx context.Context, inputPath, outputDir, prefix string, timestamps []float64) []string
}

// MediaToolkit covers the probing and extraction operations the pipeline
// needs. Satisfied by ffmpeg.FFmpeg.
type MediaToolkit interface {
	GetMetadata(ctx context.Context, inputPath string) (*ffmpeg.VideoMetadata, error)
	ExtractThumbnail(ctx context.Context, inputPath, outputPath string, timestamp float64) error
	ExtractClip(ctx context.Context, inputPath, outputPath string, start, end float64) error
}

// Options carries the pipeline limits and working directories
type Options struct {
	FramesPerScene   int
	MaxSceneTags     int
	MaxVideoTags     int
	MaxImageTags     int
	MaxAggregateTags int

	// FrameDir holds transient sampled frames, removed after each stage.
	// ThumbnailDir and ClipDir hold persistent per-scene artifacts;
	// an empty ClipDir disables clip extraction.
	FrameDir     string
	ThumbnailDir string
	ClipDir      string
}

// withDefaults fills unset limits with the pipeline defaults
func (o Options) withDefaults() Options {
	if o.FramesPerScene <= 0 {
		o.FramesPerScene = 3
	}
	if o.MaxSceneTags <= 0 {
		o.MaxSceneTags = 7
	}
	if o.MaxVideoTags <= 0 {
		o.MaxVideoTags = 10
	}
	if o.MaxImageTags <= 0 {
		o.MaxImageTags = 15
	}
	if o.MaxAggregateTags <= 0 {
		o.MaxAggregateTags = 10
	}
	return o
}
