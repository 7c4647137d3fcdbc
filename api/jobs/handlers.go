package jobs

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
	"github.com/mediatag/tagger-api/internal/services/jobs"
)

// GetByID returns the status of a queued tagging job
// @Summary      Get job status
// @Description  Get a tagging job by ID to poll its status and result
// @Tags         jobs
// @Produce      json
// @Param        id path int true "Job ID"
// @Success      200 {object} models.Job "Job status"
// @Failure      400 {object} types.ErrorResponse "Invalid job ID"
// @Failure      404 {object} types.ErrorResponse "Job not found"
// @Router       /api/v1/jobs/{id} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		job, err := deps.JobService.GetJob(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, jobs.ErrJobNotFound) {
				types.SendNotFound(c, "Job not found")
			} else {
				log.Printf("[ERROR] Failed to fetch job %d: %v", id, err)
				types.SendInternalError(c, "Failed to fetch job")
			}
			return
		}

		c.JSON(http.StatusOK, job)
	}
}
