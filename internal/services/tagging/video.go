package tagging

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mediatag/tagger-api/internal/models"
	"github.com/mediatag/tagger-api/internal/services/generation"
	"github.com/mediatag/tagger-api/internal/services/scenes"
	"github.com/mediatag/tagger-api/internal/services/tags"
	"github.com/mediatag/tagger-api/internal/services/videos"
)

// VideoOrchestrator drives the video tagging pipeline: summary,
// segmentation, per-scene tagging, aggregation, general tags. Stages run
// strictly in order and each commits its results before the next begins,
// so a failure mid-run leaves a consistent, partially tagged video.
//
// Upstream and extraction failures degrade the affected stage to an
// absent result. Database failures and recovered panics flip the video
// to the error status; results committed before the failure stay.
type VideoOrchestrator struct {
	videos   videos.Service
	store    tags.Store
	client   generation.Client
	detector scenes.Detector
	sampler  FrameSampler
	media    MediaToolkit
	opts     Options
}

// NewVideoOrchestrator creates a video orchestrator with explicit collaborators
func NewVideoOrchestrator(videoSvc videos.Service, store tags.Store, client generation.Client, detector scenes.Detector, sampler FrameSampler, media MediaToolkit, opts Options) *VideoOrchestrator {
	return &VideoOrchestrator{
		videos:   videoSvc,
		store:    store,
		client:   client,
		detector: detector,
		sampler:  sampler,
		media:    media,
		opts:     opts.withDefaults(),
	}
}

// TagVideo runs the full pipeline against one video. It returns an error
// only for pre-flight conditions (unknown video, run already in flight);
// pipeline failures are reported through the result's status and error
// fields after the video has been moved to the error status.
func (o *VideoOrchestrator) TagVideo(ctx context.Context, videoID uint) (res *Result, err error) {
	video, err := o.videos.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.IsProcessing() {
		return nil, ErrAlreadyProcessing
	}

	result := &Result{EntityID: video.ID, Kind: "video", Tags: []string{}}
	defer func() {
		if r := recover(); r != nil {
			res = o.fail(ctx, video.ID, result, fmt.Errorf("pipeline panic: %v", r))
			err = nil
		}
	}()

	log.Printf("[INFO] Tagging video %d (%s)", video.ID, video.Filename)

	// A previous run's generated tags and scenes are replaced wholesale.
	// User tags on the video survive; scene-level tags go with the scenes.
	if video.Status == models.StatusTagged {
		if err := o.store.ClearGenerated(ctx, tags.KindVideo, video.ID); err != nil {
			return o.fail(ctx, video.ID, result, err), nil
		}
		if _, err := o.videos.ReplaceScenes(ctx, video.ID, nil); err != nil {
			return o.fail(ctx, video.ID, result, err), nil
		}
	}

	if err := o.videos.SetStatus(ctx, video.ID, models.StatusProcessing); err != nil {
		return o.fail(ctx, video.ID, result, err), nil
	}

	duration, err := o.probeDuration(ctx, video)
	if err != nil {
		return o.fail(ctx, video.ID, result, err), nil
	}

	summary, err := o.summaryStage(ctx, video, duration)
	if err != nil {
		return o.fail(ctx, video.ID, result, err), nil
	}
	result.Summary = summary

	created, err := o.segmentationStage(ctx, video, duration)
	if err != nil {
		return o.fail(ctx, video.ID, result, err), nil
	}

	sceneTagLists, err := o.sceneTaggingStage(ctx, video, created, summary, duration, result)
	if err != nil {
		return o.fail(ctx, video.ID, result, err), nil
	}

	promoted := promoteTags(sceneTagLists, o.opts.MaxAggregateTags)
	if err := o.attachAll(ctx, tags.KindVideo, video.ID, promoted); err != nil {
		return o.fail(ctx, video.ID, result, err), nil
	}

	if err := o.generalTagStage(ctx, video, summary, duration); err != nil {
		return o.fail(ctx, video.ID, result, err), nil
	}

	finalTags, err := o.store.ListFor(ctx, tags.KindVideo, video.ID)
	if err != nil {
		return o.fail(ctx, video.ID, result, err), nil
	}
	for _, assoc := range finalTags {
		result.Tags = append(result.Tags, assoc.Name)
	}

	if err := o.videos.SetStatus(ctx, video.ID, models.StatusTagged); err != nil {
		return o.fail(ctx, video.ID, result, err), nil
	}
	result.Status = models.StatusTagged

	log.Printf("[INFO] Tagged video %d: %d scenes, %d video tags", video.ID, len(result.Scenes), len(result.Tags))
	return result, nil
}

// probeDuration reads the media duration and persists it. An unreadable
// file is not fatal; later stages degrade on a zero duration.
func (o *VideoOrchestrator) probeDuration(ctx context.Context, video *models.Video) (float64, error) {
	metadata, err := o.media.GetMetadata(ctx, video.FilePath)
	if err != nil {
		log.Printf("[WARN] Probing video %d failed: %v", video.ID, err)
		return video.DurationSeconds(0), nil
	}
	if metadata.Duration > 0 {
		if err := o.videos.SetDuration(ctx, video.ID, metadata.Duration); err != nil {
			return 0, err
		}
		return metadata.Duration, nil
	}
	return video.DurationSeconds(0), nil
}

// summaryStage samples frames at 25/50/75% of the runtime and asks the
// generation service for a short summary, falling back to a text-only
// prompt when no frames could be extracted
func (o *VideoOrchestrator) summaryStage(ctx context.Context, video *models.Video, duration float64) (string, error) {
	var framePaths []string
	if duration > 0 {
		timestamps := []float64{duration * 0.25, duration * 0.5, duration * 0.75}
		prefix := fmt.Sprintf("video_%d_summary", video.ID)
		framePaths = o.sampler.SampleAt(ctx, video.FilePath, o.opts.FrameDir, prefix, timestamps)
	}
	defer removeFiles(framePaths)

	prompt := generation.SummaryPrompt(video.Filename, duration, len(framePaths) > 0)
	summary, err := o.client.GenerateWithImages(ctx, prompt, framePaths)
	if err != nil {
		log.Printf("[WARN] Summary generation for video %d failed: %v", video.ID, err)
		return "", nil
	}
	if summary == "" {
		return "", nil
	}

	if err := o.videos.SetSummary(ctx, video.ID, summary); err != nil {
		return "", err
	}
	return summary, nil
}

// segmentationStage detects scenes and persists them with a midpoint
// thumbnail each. Detector failure or an empty cut list falls back to a
// single scene spanning the whole runtime.
func (o *VideoOrchestrator) segmentationStage(ctx context.Context, video *models.Video, duration float64) ([]models.Scene, error) {
	ranges, err := o.detector.DetectScenes(ctx, video.FilePath)
	if err != nil {
		log.Printf("[WARN] Scene detection for video %d failed: %v", video.ID, err)
		ranges = nil
	}
	if len(ranges) == 0 && duration > 0 {
		ranges = []scenes.TimeRange{{Start: 0, End: duration}}
	}
	if len(ranges) == 0 {
		return nil, nil
	}

	records := make([]models.Scene, 0, len(ranges))
	for i, r := range ranges {
		scene := models.Scene{StartTime: r.Start, EndTime: r.End}

		thumbPath := filepath.Join(o.opts.ThumbnailDir, fmt.Sprintf("video_%d_scene_%d.jpg", video.ID, i+1))
		midpoint := (r.Start + r.End) / 2
		if err := o.media.ExtractThumbnail(ctx, video.FilePath, thumbPath, midpoint); err != nil {
			log.Printf("[WARN] Thumbnail for video %d scene %d failed: %v", video.ID, i+1, err)
		} else {
			scene.ThumbnailPath = thumbPath
		}

		if o.opts.ClipDir != "" {
			clipPath := filepath.Join(o.opts.ClipDir, fmt.Sprintf("video_%d_scene_%d.mp4", video.ID, i+1))
			if err := o.media.ExtractClip(ctx, video.FilePath, clipPath, r.Start, r.End); err != nil {
				log.Printf("[WARN] Clip for video %d scene %d failed: %v", video.ID, i+1, err)
			} else {
				scene.ClipPath = clipPath
			}
		}

		records = append(records, scene)
	}

	return o.videos.ReplaceScenes(ctx, video.ID, records)
}

// sceneTaggingStage tags every scene sequentially in playback order.
// The per-scene tag lists are returned for aggregation.
func (o *VideoOrchestrator) sceneTaggingStage(ctx context.Context, video *models.Video, created []models.Scene, summary string, duration float64, result *Result) ([][]string, error) {
	sceneTagLists := make([][]string, 0, len(created))
	for i, scene := range created {
		prefix := fmt.Sprintf("video_%d_scene_%d", video.ID, i+1)
		framePaths := o.sampler.SampleRange(ctx, video.FilePath, o.opts.FrameDir, prefix, scene.StartTime, scene.EndTime, o.opts.FramesPerScene)

		context := sceneContext(video.Filename, summary, i+1, len(created), scene.StartTime, scene.EndTime, duration)

		var sceneTags []string
		var genErr error
		if len(framePaths) > 0 {
			sceneTags, genErr = o.client.GenerateTagsWithImages(ctx, framePaths, context, o.opts.MaxSceneTags)
		} else {
			sceneTags, genErr = generateTagsFromPrompt(ctx, o.client, generation.SceneFallbackPrompt(context), o.opts.MaxSceneTags)
		}
		removeFiles(framePaths)
		if genErr != nil {
			log.Printf("[WARN] Tagging video %d scene %d failed: %v", video.ID, i+1, genErr)
			sceneTags = nil
		}

		if err := o.attachAll(ctx, tags.KindScene, scene.ID, sceneTags); err != nil {
			return nil, err
		}

		sceneTagLists = append(sceneTagLists, sceneTags)
		result.Scenes = append(result.Scenes, SceneResult{
			ID:        scene.ID,
			StartTime: scene.StartTime,
			EndTime:   scene.EndTime,
			Tags:      sceneTags,
		})
	}
	return sceneTagLists, nil
}

// generalTagStage asks for additional video-level tags from metadata and
// summary alone, independent of the scene aggregation
func (o *VideoOrchestrator) generalTagStage(ctx context.Context, video *models.Video, summary string, duration float64) error {
	prompt := generation.VideoTagPrompt(video.Filename, summary, duration)
	general, err := generateTagsFromPrompt(ctx, o.client, prompt, o.opts.MaxVideoTags)
	if err != nil {
		log.Printf("[WARN] General tags for video %d failed: %v", video.ID, err)
		return nil
	}
	return o.attachAll(ctx, tags.KindVideo, video.ID, general)
}

// attachAll attaches generated tags to an owner, ignoring duplicates
func (o *VideoOrchestrator) attachAll(ctx context.Context, kind tags.Kind, ownerID uint, names []string) error {
	for _, name := range names {
		if _, err := o.store.Attach(ctx, kind, ownerID, name, models.ProvenanceAI, nil); err != nil {
			return err
		}
	}
	return nil
}

func (o *VideoOrchestrator) fail(ctx context.Context, videoID uint, result *Result, cause error) *Result {
	log.Printf("[ERROR] Tagging video %d failed: %v", videoID, cause)
	result.Status = models.StatusError
	result.Error = cause.Error()
	if err := o.videos.SetStatus(ctx, videoID, models.StatusError); err != nil {
		log.Printf("[ERROR] Failed to mark video %d as errored: %v", videoID, err)
	}
	return result
}

// generateTagsFromPrompt runs a prepared prompt through the text path and
// applies the standard tag cleaning
func generateTagsFromPrompt(ctx context.Context, client generation.Client, prompt string, max int) ([]string, error) {
	response, err := client.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return generation.CleanTagList(response, max), nil
}

func removeFiles(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("[WARN] Failed to remove frame %s: %v", path, err)
		}
	}
}
