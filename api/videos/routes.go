package videos

import (
	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
)

// RegisterRoutes registers video routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", GetAll(deps))
	router.POST("", Register(deps))
	router.GET("/:id", GetByID(deps))
	router.PUT("/:id", Update(deps))
	router.DELETE("/:id", Delete(deps))

	router.GET("/:id/scenes", GetScenes(deps))

	// POST /api/v1/videos/:id/tag - queue the tagging pipeline
	router.POST("/:id/tag", PostTagging(deps))

	router.GET("/:id/tags", GetTags(deps))
	router.POST("/:id/tags", AddTag(deps))
	router.DELETE("/:id/tags/:name", RemoveTag(deps))
}
