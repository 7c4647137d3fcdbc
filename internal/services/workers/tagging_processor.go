package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mediatag/tagger-api/internal/models"
	"github.com/mediatag/tagger-api/internal/services/jobs"
	"github.com/mediatag/tagger-api/internal/services/tagging"
)

// VideoTagger runs the video pipeline. Satisfied by tagging.VideoOrchestrator.
type VideoTagger interface {
	TagVideo(ctx context.Context, videoID uint) (*tagging.Result, error)
}

// ImageTagger runs the image pipeline. Satisfied by tagging.ImageOrchestrator.
type ImageTagger interface {
	TagImage(ctx context.Context, imageID uint) (*tagging.Result, error)
}

// TaggingProcessor executes tagging jobs by driving the orchestrators
type TaggingProcessor struct {
	videoTagger VideoTagger
	imageTagger ImageTagger
	jobService  jobs.Service
}

// NewTaggingProcessor creates a processor for video and image tagging jobs
func NewTaggingProcessor(videoTagger VideoTagger, imageTagger ImageTagger, jobService jobs.Service) *TaggingProcessor {
	return &TaggingProcessor{
		videoTagger: videoTagger,
		imageTagger: imageTagger,
		jobService:  jobService,
	}
}

// CanProcess returns true for tagging job types
func (p *TaggingProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeVideoTagging || jobType == models.JobTypeImageTagging
}

// ProcessJob runs the pipeline for the job's entity and records the
// outcome on the job. A pipeline that ends with the entity in the error
// status fails the job; pre-flight errors (unknown entity, run already in
// flight) are returned to the worker, which fails the job with them.
func (p *TaggingProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	var result *tagging.Result
	var err error

	switch job.Type {
	case models.JobTypeVideoTagging:
		videoID, ok := job.GetPayloadUint("video_id")
		if !ok {
			return fmt.Errorf("job %d has no video_id in payload", job.ID)
		}
		result, err = p.videoTagger.TagVideo(ctx, videoID)
	case models.JobTypeImageTagging:
		imageID, ok := job.GetPayloadUint("image_id")
		if !ok {
			return fmt.Errorf("job %d has no image_id in payload", job.ID)
		}
		result, err = p.imageTagger.TagImage(ctx, imageID)
	default:
		return fmt.Errorf("unsupported job type %s", job.Type)
	}

	if err != nil {
		return err
	}

	if result.Status == models.StatusError {
		return p.jobService.FailJob(ctx, job.ID, errors.New(result.Error))
	}

	payload, err := resultPayload(result)
	if err != nil {
		return err
	}
	return p.jobService.CompleteJob(ctx, job.ID, payload)
}

// resultPayload converts a pipeline result into the job result column
func resultPayload(result *tagging.Result) (models.JobResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding tagging result: %w", err)
	}
	var payload models.JobResult
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decoding tagging result: %w", err)
	}
	return payload, nil
}
