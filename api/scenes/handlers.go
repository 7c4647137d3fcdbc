package scenes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
	"github.com/mediatag/tagger-api/internal/services/tags"
	"github.com/mediatag/tagger-api/internal/services/videos"
)

// GetByID returns a single scene with its tags
// @Summary      Get scene
// @Description  Get a detected scene by ID including its resolved tags
// @Tags         scenes
// @Produce      json
// @Param        id path int true "Scene ID"
// @Success      200 {object} models.Scene "Scene details"
// @Failure      400 {object} types.ErrorResponse "Invalid scene ID"
// @Failure      404 {object} types.ErrorResponse "Scene not found"
// @Router       /api/v1/scenes/{id} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		scene, err := deps.VideoService.GetScene(c.Request.Context(), id)
		if err != nil {
			if videos.IsNotFound(err) {
				types.SendNotFound(c, "Scene not found")
			} else {
				log.Printf("[ERROR] Failed to fetch scene %d: %v", id, err)
				types.SendInternalError(c, "Failed to fetch scene")
			}
			return
		}

		associations, err := deps.TagStore.ListFor(c.Request.Context(), tags.KindScene, id)
		if err != nil {
			log.Printf("[ERROR] Failed to list tags for scene %d: %v", id, err)
			types.SendInternalError(c, "Failed to fetch scene")
			return
		}

		c.JSON(http.StatusOK, gin.H{"scene": scene, "tags": associations})
	}
}
