package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
)

// Get reports service liveness along with the database connection state.
// It always returns 200; consumers inspect the database status field.
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  databaseStatus(deps),
		})
	}
}

func databaseStatus(deps *types.Dependencies) gin.H {
	if deps == nil || deps.DB == nil || deps.DB.DB == nil {
		return gin.H{"status": "not configured"}
	}

	if err := deps.DB.HealthCheck(); err != nil {
		return gin.H{"status": "unhealthy", "error": err.Error()}
	}

	return gin.H{"status": "healthy"}
}
