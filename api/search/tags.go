package search

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
)

// GetTags lists every known tag with usage counts
// @Summary      List tags
// @Description  List all known tags with per-kind usage counts, most used first
// @Tags         search
// @Produce      json
// @Success      200 {object} object{tags=[]tags.UsageCount} "Tag usage list"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/search/tags [get]
func GetTags(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		usage, err := deps.SearchEngine.ListTags(c.Request.Context())
		if err != nil {
			log.Printf("[ERROR] Failed to list tags: %v", err)
			types.SendInternalError(c, "Failed to list tags")
			return
		}

		c.JSON(http.StatusOK, gin.H{"tags": usage, "count": len(usage)})
	}
}
