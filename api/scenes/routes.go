package scenes

import (
	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
)

// RegisterRoutes registers scene routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("/:id", GetByID(deps))
	router.POST("/export", Export(deps))
	router.GET("/export/:filename/download", DownloadExport(deps))
}
