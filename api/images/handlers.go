package images

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
	"github.com/mediatag/tagger-api/internal/models"
	"github.com/mediatag/tagger-api/internal/services/images"
	"github.com/mediatag/tagger-api/internal/services/tags"
)

// GetAll returns registered images, newest first
// @Summary      List images
// @Description  List registered images ordered by creation time, newest first
// @Tags         images
// @Produce      json
// @Param        limit query int false "Maximum results (default 50)"
// @Param        offset query int false "Results to skip"
// @Success      200 {object} types.ImagesResponse "Image list"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/images [get]
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := types.ParsePagination(c, 50, 100)

		items, total, err := deps.ImageService.List(c.Request.Context(), limit, offset)
		if err != nil {
			log.Printf("[ERROR] Failed to list images (limit %d, offset %d): %v", limit, offset, err)
			types.SendInternalError(c, "Failed to list images")
			return
		}

		c.JSON(http.StatusOK, types.ImagesResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Images retrieved successfully"},
			Images:       items,
			Count:        len(items),
			Total:        total,
			Offset:       offset,
		})
	}
}

// Register registers an already uploaded image file
// @Summary      Register an image
// @Description  Register an image file that already exists on disk. The entity starts in status "uploaded".
// @Tags         images
// @Accept       json
// @Produce      json
// @Param        request body types.RegisterImageRequest true "Image file metadata"
// @Success      201 {object} models.Image "Registered image"
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/images [post]
func Register(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.RegisterImageRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		image, err := deps.ImageService.Register(c.Request.Context(), req.Filename, req.FilePath, req.FileSize)
		if err != nil {
			if errors.Is(err, images.ErrInvalidInput) {
				types.SendBadRequest(c, err.Error())
				return
			}
			log.Printf("[ERROR] Failed to register image %q: %v", req.Filename, err)
			types.SendInternalError(c, "Failed to register image")
			return
		}

		types.SendCreated(c, image)
	}
}

// GetByID returns a single image with its tags
// @Summary      Get image
// @Description  Get an image by ID including its resolved tags
// @Tags         images
// @Produce      json
// @Param        id path int true "Image ID"
// @Success      200 {object} models.Image "Image details"
// @Failure      400 {object} types.ErrorResponse "Invalid image ID"
// @Failure      404 {object} types.ErrorResponse "Image not found"
// @Router       /api/v1/images/{id} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		image, err := deps.ImageService.Get(c.Request.Context(), id)
		if err != nil {
			if images.IsNotFound(err) {
				types.SendNotFound(c, "Image not found")
			} else {
				log.Printf("[ERROR] Failed to fetch image %d: %v", id, err)
				types.SendInternalError(c, "Failed to fetch image")
			}
			return
		}

		associations, err := deps.TagStore.ListFor(c.Request.Context(), tags.KindImage, id)
		if err != nil {
			log.Printf("[ERROR] Failed to list tags for image %d: %v", id, err)
			types.SendInternalError(c, "Failed to fetch image")
			return
		}

		c.JSON(http.StatusOK, gin.H{"image": image, "tags": associations})
	}
}

// Update changes the user-editable fields of an image
// @Summary      Update image
// @Description  Update the title or user notes of an image. Omitted fields are left unchanged.
// @Tags         images
// @Accept       json
// @Produce      json
// @Param        id path int true "Image ID"
// @Param        request body types.UpdateEntityRequest true "Fields to update"
// @Success      200 {object} models.Image "Updated image"
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Failure      404 {object} types.ErrorResponse "Image not found"
// @Router       /api/v1/images/{id} [put]
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

		image, err := deps.ImageService.UpdateDetails(c.Request.Context(), id, images.UpdateRequest{
			Title:     req.Title,
			UserNotes: req.UserNotes,
		})
		if err != nil {
			switch {
			case images.IsNotFound(err):
				types.SendNotFound(c, "Image not found")
			case errors.Is(err, images.ErrInvalidInput):
				types.SendBadRequest(c, err.Error())
			default:
				log.Printf("[ERROR] Failed to update image %d: %v", id, err)
				types.SendInternalError(c, "Failed to update image")
			}
			return
		}

		c.JSON(http.StatusOK, image)
	}
}

// Delete removes an image together with its tag links and files
// @Summary      Delete image
// @Description  Delete an image, its tag associations and its files on disk
// @Tags         images
// @Produce      json
// @Param        id path int true "Image ID"
// @Success      200 {object} object{message=string} "Image deleted"
// @Failure      400 {object} types.ErrorResponse "Invalid image ID"
// @Failure      404 {object} types.ErrorResponse "Image not found"
// @Failure      409 {object} types.ErrorResponse "Image is being processed"
// @Router       /api/v1/images/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		if err := deps.ImageService.Delete(c.Request.Context(), id); err != nil {
			switch {
			case images.IsNotFound(err):
				types.SendNotFound(c, "Image not found")
			case errors.Is(err, images.ErrImageBusy):
				types.SendConflict(c, "Image is being processed")
			default:
				log.Printf("[ERROR] Failed to delete image %d: %v", id, err)
				types.SendInternalError(c, "Failed to delete image")
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
	}
}

// PostTagging queues a tagging run for an image
// @Summary      Queue image tagging
// @Description  Enqueue the tagging pipeline for an image. Returns 202 with the job ID. An image that is already processing is rejected; requesting again while a job is pending reuses the existing job.
// @Tags         images
// @Produce      json
// @Param        id path int true "Image ID"
// @Success      202 {object} types.TaggingQueuedResponse "Tagging job queued"
// @Failure      400 {object} types.ErrorResponse "Invalid image ID"
// @Failure      404 {object} types.ErrorResponse "Image not found"
// @Failure      409 {object} types.ErrorResponse "Image is already being processed"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/images/{id}/tag [post]
func PostTagging(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		image, err := deps.ImageService.Get(c.Request.Context(), id)
		if err != nil {
			if images.IsNotFound(err) {
				types.SendNotFound(c, "Image not found")
			} else {
				types.SendInternalError(c, "Failed to fetch image")
			}
			return
		}

		if image.IsProcessing() {
			types.SendConflict(c, "Image is already being processed")
			return
		}

		job, err := deps.JobService.EnqueueUniqueJob(
			c.Request.Context(),
			models.JobTypeImageTagging,
			models.JobPayload{"image_id": id},
			"image_id",
		)
		if err != nil {
			log.Printf("[ERROR] Failed to enqueue tagging job for image %d: %v", id, err)
			types.SendInternalError(c, "Failed to queue tagging job")
			return
		}

		c.JSON(http.StatusAccepted, types.TaggingQueuedResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusQueued, Message: "Tagging job queued"},
			JobID:        job.ID,
			EntityID:     id,
			Kind:         "image",
		})
	}
}

// AddTag attaches a user tag to an image
// @Summary      Add user tag
// @Description  Attach a tag to an image with provenance "user". The tag is created if it does not exist. User tags survive retagging.
// @Tags         images
// @Accept       json
// @Produce      json
// @Param        id path int true "Image ID"
// @Param        request body types.TagRequest true "Tag name"
// @Success      201 {object} object{message=string} "Tag attached"
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Failure      404 {object} types.ErrorResponse "Image not found"
// @Router       /api/v1/images/{id}/tags [post]
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

		if _, err := deps.ImageService.Get(c.Request.Context(), id); err != nil {
			if images.IsNotFound(err) {
				types.SendNotFound(c, "Image not found")
			} else {
				types.SendInternalError(c, "Failed to fetch image")
			}
			return
		}

		created, err := deps.TagStore.Attach(c.Request.Context(), tags.KindImage, id, req.Name, models.ProvenanceUser, nil)
		if err != nil {
			log.Printf("[ERROR] Failed to attach tag %q to image %d: %v", req.Name, id, err)
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

// RemoveTag detaches a tag from an image
// @Summary      Remove tag
// @Description  Remove the association between an image and a tag name. The tag itself is kept.
// @Tags         images
// @Produce      json
// @Param        id path int true "Image ID"
// @Param        name path string true "Tag name"
// @Success      200 {object} object{message=string} "Tag detached"
// @Failure      400 {object} types.ErrorResponse "Invalid image ID"
// @Failure      404 {object} types.ErrorResponse "Image or tag not found"
// @Router       /api/v1/images/{id}/tags/{name} [delete]
func RemoveTag(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		name := c.Param("name")

		if err := deps.TagStore.Detach(c.Request.Context(), tags.KindImage, id, name); err != nil {
			if errors.Is(err, tags.ErrTagNotFound) {
				types.SendNotFound(c, "Tag not found")
			} else {
				log.Printf("[ERROR] Failed to detach tag %q from image %d: %v", name, id, err)
				types.SendInternalError(c, "Failed to detach tag")
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Tag detached successfully"})
	}
}
