package jobs

import (
	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
)

// RegisterRoutes registers job routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("/:id", GetByID(deps))
}
