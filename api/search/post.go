package search

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
	"github.com/mediatag/tagger-api/internal/services/search"
)

// Post runs a boolean tag search across videos, scenes and images
// @Summary      Search by tags
// @Description  Boolean tag-set search. All and_tags must be present, at least one or_tag must match, not_tags exclude. Targets defaults to all three kinds. Results are paginated per kind with pre-pagination totals.
// @Tags         search
// @Accept       json
// @Produce      json
// @Param        request body search.Query true "Search parameters"
// @Success      200 {object} search.Results "Per-kind result pages"
// @Failure      400 {object} types.ErrorResponse "Bad request - invalid parameters"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/search [post]
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query search.Query
		if err := c.ShouldBindJSON(&query); err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Status:  types.StatusError,
				Message: "Invalid request format",
				Details: err.Error(),
			})
			return
		}

		if query.Limit < 0 || query.Limit > 100 {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Status:  types.StatusError,
				Message: "Limit must be between 1 and 100",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		results, err := deps.SearchEngine.Search(ctx, query)
		if err != nil {
			if errors.Is(err, search.ErrUnknownTarget) {
				c.JSON(http.StatusBadRequest, types.ErrorResponse{
					Status:  types.StatusError,
					Message: "Invalid search target",
					Details: err.Error(),
				})
				return
			}
			c.JSON(http.StatusInternalServerError, types.ErrorResponse{
				Status:  types.StatusError,
				Message: "Search failed",
				Details: err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, results)
	}
}
