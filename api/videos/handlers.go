package videos

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
	"github.com/mediatag/tagger-api/internal/models"
	"github.com/mediatag/tagger-api/internal/services/tags"
	"github.com/mediatag/tagger-api/internal/services/videos"
)

// GetAll returns registered videos, newest first
// @Summary      List videos
// @Description  List registered videos ordered by creation time, newest first
// @Tags         videos
// @Produce      json
// @Param        limit query int false "Maximum results (default 50)"
// @Param        offset query int false "Results to skip"
// @Success      200 {object} types.VideosResponse "Video list"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/videos [get]
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := types.ParsePagination(c, 50, 100)

		items, total, err := deps.VideoService.List(c.Request.Context(), limit, offset)
		if err != nil {
			log.Printf("[ERROR] Failed to list videos (limit %d, offset %d): %v", limit, offset, err)
			types.SendInternalError(c, "Failed to list videos")
			return
		}

		c.JSON(http.StatusOK, types.VideosResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Videos retrieved successfully"},
			Videos:       items,
			Count:        len(items),
			Total:        total,
			Offset:       offset,
		})
	}
}

// Register registers an already uploaded video file
// @Summary      Register a video
// @Description  Register a video file that already exists on disk. The entity starts in status "uploaded".
// @Tags         videos
// @Accept       json
// @Produce      json
// @Param        request body types.RegisterVideoRequest true "Video file metadata"
// @Success      201 {object} models.Video "Registered video"
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/videos [post]
func Register(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.RegisterVideoRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		video, err := deps.VideoService.Register(c.Request.Context(), req.Filename, req.FilePath, req.FileSize)
		if err != nil {
			if errors.Is(err, videos.ErrInvalidInput) {
				types.SendBadRequest(c, err.Error())
				return
			}
			log.Printf("[ERROR] Failed to register video %q: %v", req.Filename, err)
			types.SendInternalError(c, "Failed to register video")
			return
		}

		types.SendCreated(c, video)
	}
}

// GetByID returns a single video with its scenes and tags
// @Summary      Get video
// @Description  Get a video by ID including its scenes and resolved tags
// @Tags         videos
// @Produce      json
// @Param        id path int true "Video ID"
// @Success      200 {object} models.Video "Video details"
// @Failure      400 {object} types.ErrorResponse "Invalid video ID"
// @Failure      404 {object} types.ErrorResponse "Video not found"
// @Router       /api/v1/videos/{id} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		video, err := deps.VideoService.Get(c.Request.Context(), id)
		if err != nil {
			if videos.IsNotFound(err) {
				types.SendNotFound(c, "Video not found")
			} else {
				log.Printf("[ERROR] Failed to fetch video %d: %v", id, err)
				types.SendInternalError(c, "Failed to fetch video")
			}
			return
		}

		scenes, err := deps.VideoService.ListScenes(c.Request.Context(), id)
		if err != nil {
			log.Printf("[ERROR] Failed to list scenes for video %d: %v", id, err)
			types.SendInternalError(c, "Failed to fetch video")
			return
		}
		video.Scenes = scenes

		associations, err := deps.TagStore.ListFor(c.Request.Context(), tags.KindVideo, id)
		if err != nil {
			log.Printf("[ERROR] Failed to list tags for video %d: %v", id, err)
			types.SendInternalError(c, "Failed to fetch video")
			return
		}

		c.JSON(http.StatusOK, gin.H{"video": video, "tags": associations})
	}
}

// Update changes the user-editable fields of a video
// @Summary      Update video
// @Description  Update the title or user notes of a video. Omitted fields are left unchanged. Hashtags in the user notes become user tags on the video and all its scenes.
// @Tags         videos
// @Accept       json
// @Produce      json
// @Param        id path int true "Video ID"
// @Param        request body types.UpdateEntityRequest true "Fields to update"
// @Success      200 {object} models.Video "Updated video"
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Failure      404 {object} types.ErrorResponse "Video not found"
// @Router       /api/v1/videos/{id} [put]
func Update(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		var req types.UpdateEntityRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		video, err := deps.VideoService.UpdateDetails(c.Request.Context(), id, videos.UpdateRequest{
			Title:     req.Title,
			UserNotes: req.UserNotes,
		})
		if err != nil {
			switch {
			case videos.IsNotFound(err):
				types.SendNotFound(c, "Video not found")
			case errors.Is(err, videos.ErrInvalidInput):
				types.SendBadRequest(c, err.Error())
			default:
				log.Printf("[ERROR] Failed to update video %d: %v", id, err)
				types.SendInternalError(c, "Failed to update video")
			}
			return
		}

		// #hashtags in the notes become protected user tags on the video
		// and every one of its scenes
		if names := tags.ParseHashtags(video.UserNotes); len(names) > 0 {
			if err := attachNoteTags(c, deps, id, names); err != nil {
				log.Printf("[ERROR] Failed to attach note tags to video %d: %v", id, err)
				types.SendInternalError(c, "Failed to attach tags from notes")
				return
			}
		}

		c.JSON(http.StatusOK, video)
	}
}

func attachNoteTags(c *gin.Context, deps *types.Dependencies, videoID uint, names []string) error {
	scenes, err := deps.VideoService.ListScenes(c.Request.Context(), videoID)
	if err != nil {
		return err
	}

	for _, name := range names {
		if _, err := deps.TagStore.Attach(c.Request.Context(), tags.KindVideo, videoID, name, models.ProvenanceUser, nil); err != nil {
			return err
		}
		for _, scene := range scenes {
			if _, err := deps.TagStore.Attach(c.Request.Context(), tags.KindScene, scene.ID, name, models.ProvenanceUser, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// Delete removes a video together with its scenes, tag links and artifacts
// @Summary      Delete video
// @Description  Delete a video and everything owned by it: scenes, tag associations and extracted media files
// @Tags         videos
// @Produce      json
// @Param        id path int true "Video ID"
// @Success      200 {object} object{message=string} "Video deleted"
// @Failure      400 {object} types.ErrorResponse "Invalid video ID"
// @Failure      404 {object} types.ErrorResponse "Video not found"
// @Failure      409 {object} types.ErrorResponse "Video is being processed"
// @Router       /api/v1/videos/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		if err := deps.VideoService.Delete(c.Request.Context(), id); err != nil {
			switch {
			case videos.IsNotFound(err):
				types.SendNotFound(c, "Video not found")
			case errors.Is(err, videos.ErrVideoBusy):
				types.SendConflict(c, "Video is being processed")
			default:
				log.Printf("[ERROR] Failed to delete video %d: %v", id, err)
				types.SendInternalError(c, "Failed to delete video")
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
	}
}

// GetScenes returns the detected scenes of a video, ordered by start time
// @Summary      List video scenes
// @Description  List the scenes detected for a video, ordered by start time
// @Tags         videos
// @Produce      json
// @Param        id path int true "Video ID"
// @Success      200 {object} object{scenes=[]models.Scene} "Scene list"
// @Failure      400 {object} types.ErrorResponse "Invalid video ID"
// @Failure      404 {object} types.ErrorResponse "Video not found"
// @Router       /api/v1/videos/{id}/scenes [get]
func GetScenes(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		if _, err := deps.VideoService.Get(c.Request.Context(), id); err != nil {
			if videos.IsNotFound(err) {
				types.SendNotFound(c, "Video not found")
			} else {
				types.SendInternalError(c, "Failed to fetch video")
			}
			return
		}

		scenes, err := deps.VideoService.ListScenes(c.Request.Context(), id)
		if err != nil {
			log.Printf("[ERROR] Failed to list scenes for video %d: %v", id, err)
			types.SendInternalError(c, "Failed to list scenes")
			return
		}

		c.JSON(http.StatusOK, gin.H{"scenes": scenes})
	}
}

// PostTagging queues a tagging run for a video
// @Summary      Queue video tagging
// @Description  Enqueue the tagging pipeline for a video. Returns 202 with the job ID. A video that is already processing is rejected; requesting again while a job is pending reuses the existing job.
// @Tags         videos
// @Produce      json
// @Param        id path int true "Video ID"
// @Success      202 {object} types.TaggingQueuedResponse "Tagging job queued"
// @Failure      400 {object} types.ErrorResponse "Invalid video ID"
// @Failure      404 {object} types.ErrorResponse "Video not found"
// @Failure      409 {object} types.ErrorResponse "Video is already being processed"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/videos/{id}/tag [post]
func PostTagging(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		video, err := deps.VideoService.Get(c.Request.Context(), id)
		if err != nil {
			if videos.IsNotFound(err) {
				types.SendNotFound(c, "Video not found")
			} else {
				types.SendInternalError(c, "Failed to fetch video")
			}
			return
		}

		if video.IsProcessing() {
			types.SendConflict(c, "Video is already being processed")
			return
		}

		job, err := deps.JobService.EnqueueUniqueJob(
			c.Request.Context(),
			models.JobTypeVideoTagging,
			models.JobPayload{"video_id": id},
			"video_id",
		)
		if err != nil {
			log.Printf("[ERROR] Failed to enqueue tagging job for video %d: %v", id, err)
			types.SendInternalError(c, "Failed to queue tagging job")
			return
		}

		c.JSON(http.StatusAccepted, types.TaggingQueuedResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusQueued, Message: "Tagging job queued"},
			JobID:        job.ID,
			EntityID:     id,
			Kind:         "video",
		})
	}
}

// GetTags returns a video's tag associations
// @Summary      List video tags
// @Description  List a video's tags with provenance and confidence, ordered by name
// @Tags         videos
// @Produce      json
// @Param        id path int true "Video ID"
// @Success      200 {object} object{tags=[]tags.Association} "Tag list"
// @Failure      400 {object} types.ErrorResponse "Invalid video ID"
// @Failure      404 {object} types.ErrorResponse "Video not found"
// @Router       /api/v1/videos/{id}/tags [get]
func GetTags(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		if _, err := deps.VideoService.Get(c.Request.Context(), id); err != nil {
			if videos.IsNotFound(err) {
				types.SendNotFound(c, "Video not found")
			} else {
				types.SendInternalError(c, "Failed to fetch video")
			}
			return
		}

		associations, err := deps.TagStore.ListFor(c.Request.Context(), tags.KindVideo, id)
		if err != nil {
			log.Printf("[ERROR] Failed to list tags for video %d: %v", id, err)
			types.SendInternalError(c, "Failed to list tags")
			return
		}

		c.JSON(http.StatusOK, gin.H{"tags": associations})
	}
}

// AddTag attaches a user tag to a video
// @Summary      Add user tag
// @Description  Attach a tag to a video with provenance "user". The tag is created if it does not exist. User tags survive retagging.
// @Tags         videos
// @Accept       json
// @Produce      json
// @Param        id path int true "Video ID"
// @Param        request body types.TagRequest true "Tag name"
// @Success      201 {object} object{message=string} "Tag attached"
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Failure      404 {object} types.ErrorResponse "Video not found"
// @Router       /api/v1/videos/{id}/tags [post]
func AddTag(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		var req types.TagRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}
		if req.Name == "" {
			types.SendBadRequest(c, "Tag name is required")
			return
		}

		if _, err := deps.VideoService.Get(c.Request.Context(), id); err != nil {
			if videos.IsNotFound(err) {
				types.SendNotFound(c, "Video not found")
			} else {
				types.SendInternalError(c, "Failed to fetch video")
			}
			return
		}

		created, err := deps.TagStore.Attach(c.Request.Context(), tags.KindVideo, id, req.Name, models.ProvenanceUser, nil)
		if err != nil {
			log.Printf("[ERROR] Failed to attach tag %q to video %d: %v", req.Name, id, err)
			types.SendInternalError(c, "Failed to attach tag")
			return
		}

		if created {
			types.SendCreated(c, gin.H{"message": "Tag attached"})
		} else {
			c.JSON(http.StatusOK, gin.H{"message": "Tag already attached"})
		}
	}
}

// RemoveTag detaches a tag from a video
// @Summary      Remove tag
// @Description  Remove the association between a video and a tag name. The tag itself is kept.
// @Tags         videos
// @Produce      json
// @Param        id path int true "Video ID"
// @Param        name path string true "Tag name"
// @Success      200 {object} object{message=string} "Tag detached"
// @Failure      400 {object} types.ErrorResponse "Invalid video ID"
// @Failure      404 {object} types.ErrorResponse "Video or tag not found"
// @Router       /api/v1/videos/{id}/tags/{name} [delete]
func RemoveTag(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		name := c.Param("name")

		if err := deps.TagStore.Detach(c.Request.Context(), tags.KindVideo, id, name); err != nil {
			if errors.Is(err, tags.ErrTagNotFound) {
				types.SendNotFound(c, "Tag not found")
			} else {
				log.Printf("[ERROR] Failed to detach tag %q from video %d: %v", name, id, err)
				types.SendInternalError(c, "Failed to detach tag")
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Tag detached successfully"})
	}
}
