package tagging

import (
	"context"
	"fmt"
	"log"

	"github.com/mediatag/tagger-api/internal/models"
	"github.com/mediatag/tagger-api/internal/services/generation"
	"github.com/mediatag/tagger-api/internal/services/images"
	"github.com/mediatag/tagger-api/internal/services/tags"
)

// ImageOrchestrator drives the reduced pipeline for still images:
// description generation followed by a single vision tagging call. The
// degradation policy matches the video pipeline.
type ImageOrchestrator struct {
	images images.Service
	store  tags.Store
	client generation.Client
	opts   Options
}

// NewImageOrchestrator creates an image orchestrator with explicit collaborators
func NewImageOrchestrator(imageSvc images.Service, store tags.Store, client generation.Client, opts Options) *ImageOrchestrator {
	return &ImageOrchestrator{
		images: imageSvc,
		store:  store,
		client: client,
		opts:   opts.withDefaults(),
	}
}

// TagImage runs the image pipeline. Like TagVideo it returns an error only
// for pre-flight conditions; pipeline failures surface in the result.
func (o *ImageOrchestrator) TagImage(ctx context.Context, imageID uint) (res *Result, err error) {
	image, err := o.images.Get(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if image.IsProcessing() {
		return nil, ErrAlreadyProcessing
	}

	result := &Result{EntityID: image.ID, Kind: "image", Tags: []string{}}
	defer func() {
		if r := recover(); r != nil {
			res = o.fail(ctx, image.ID, result, fmt.Errorf("pipeline panic: %v", r))
			err = nil
		}
	}()

	log.Printf("[INFO] Tagging image %d (%s)", image.ID, image.Filename)

	if image.Status == models.StatusTagged {
		if err := o.store.ClearGenerated(ctx, tags.KindImage, image.ID); err != nil {
			return o.fail(ctx, image.ID, result, err), nil
		}
	}

	if err := o.images.SetStatus(ctx, image.ID, models.StatusProcessing); err != nil {
		return o.fail(ctx, image.ID, result, err), nil
	}

	description, err := o.descriptionStage(ctx, image)
	if err != nil {
		return o.fail(ctx, image.ID, result, err), nil
	}
	result.Description = description

	if err := o.tagStage(ctx, image, description); err != nil {
		return o.fail(ctx, image.ID, result, err), nil
	}

	finalTags, err := o.store.ListFor(ctx, tags.KindImage, image.ID)
	if err != nil {
		return o.fail(ctx, image.ID, result, err), nil
	}
	for _, assoc := range finalTags {
		result.Tags = append(result.Tags, assoc.Name)
	}

	if err := o.images.SetStatus(ctx, image.ID, models.StatusTagged); err != nil {
		return o.fail(ctx, image.ID, result, err), nil
	}
	result.Status = models.StatusTagged

	log.Printf("[INFO] Tagged image %d: %d tags", image.ID, len(result.Tags))
	return result, nil
}

// descriptionStage asks the vision path to describe the image
func (o *ImageOrchestrator) descriptionStage(ctx context.Context, image *models.Image) (string, error) {
	prompt := generation.ImageDescriptionPrompt(image.Filename)
	description, err := o.client.GenerateWithImages(ctx, prompt, []string{image.FilePath})
	if err != nil {
		log.Printf("[WARN] Description for image %d failed: %v", image.ID, err)
		return "", nil
	}
	if description == "" {
		return "", nil
	}

	if err := o.images.SetDescription(ctx, image.ID, description); err != nil {
		return "", err
	}
	return description, nil
}

// tagStage asks the vision path for tags, grounded in the description
// when one was generated
func (o *ImageOrchestrator) tagStage(ctx context.Context, image *models.Image, description string) error {
	prompt := generation.ImageTagPrompt(image.Filename, description)
	response, err := o.client.GenerateWithImages(ctx, prompt, []string{image.FilePath})
	if err != nil {
		log.Printf("[WARN] Tag generation for image %d failed: %v", image.ID, err)
		return nil
	}

	for _, name := range generation.CleanTagList(response, o.opts.MaxImageTags) {
		if _, err := o.store.Attach(ctx, tags.KindImage, image.ID, name, models.ProvenanceAI, nil); err != nil {
			return err
		}
	}
	return nil
}

func (o *ImageOrchestrator) fail(ctx context.Context, imageID uint, result *Result, cause error) *Result {
	log.Printf("[ERROR] Tagging image %d failed: %v", imageID, cause)
	result.Status = models.StatusError
	result.Error = cause.Error()
	if err := o.images.SetStatus(ctx, imageID, models.StatusError); err != nil {
		log.Printf("[ERROR] Failed to mark image %d as errored: %v", imageID, err)
	}
	return result
}
