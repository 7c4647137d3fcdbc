package images

import (
	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
)

// RegisterRoutes registers image routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("", GetAll(deps))
	router.POST("", Register(deps))
	router.GET("/:id", GetByID(deps))
	router.PUT("/:id", Update(deps))
	router.DELETE("/:id", Delete(deps))

	// POST /api/v1/images/:id/tag - queue the tagging pipeline
	router.POST("/:id/tag", PostTagging(deps))

	router.POST("/:id/tags", AddTag(deps))
	router.DELETE("/:id/tags/:name", RemoveTag(deps))
}
