package images

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
	"github.com/mediatag/tagger-api/internal/models"
	imagesService "github.com/mediatag/tagger-api/internal/services/images"
	"github.com/mediatag/tagger-api/internal/services/jobs"
	"github.com/mediatag/tagger-api/internal/services/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) (*gin.Engine, *types.Dependencies) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	err = db.AutoMigrate(
		&models.Image{},
		&models.Tag{},
		&models.VideoTag{},
		&models.SceneTag{},
		&models.ImageTag{},
		&models.Job{},
	)
	require.NoError(t, err, "Failed to migrate test database")

	deps := &types.Dependencies{
		ImageService: imagesService.NewService(imagesService.NewRepository(db)),
		TagStore:     tags.NewStore(db),
		JobService:   jobs.NewService(jobs.NewRepository(db)),
	}

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1/images"), deps)
	return router, deps
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var data []byte
	if body != nil {
		data, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndList(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, "POST", "/api/v1/images", types.RegisterImageRequest{
		Filename: "sunset.jpg",
		FilePath: "/media/sunset.jpg",
		FileSize: 512,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "GET", "/api/v1/images", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response types.ImagesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	assert.Equal(t, int64(1), response.Total)
}

func TestGetWithTags(t *testing.T) {
	router, deps := setupRouter(t)
	ctx := context.Background()

	image, err := deps.ImageService.Register(ctx, "cat.jpg", "/media/cat.jpg", 1)
	require.NoError(t, err)
	_, err = deps.TagStore.Attach(ctx, tags.KindImage, image.ID, "cat", models.ProvenanceUser, nil)
	require.NoError(t, err)

	w := doJSON(router, "GET", "/api/v1/images/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Image models.Image       `json:"image"`
		Tags  []tags.Association `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "cat.jpg", response.Image.Filename)
	require.Len(t, response.Tags, 1)
	assert.Equal(t, "cat", response.Tags[0].Name)
}

func TestPostTaggingQueuesJob(t *testing.T) {
	router, deps := setupRouter(t)
	_, err := deps.ImageService.Register(context.Background(), "dog.jpg", "/media/dog.jpg", 1)
	require.NoError(t, err)

	w := doJSON(router, "POST", "/api/v1/images/1/tag", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	var response types.TaggingQueuedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "image", response.Kind)

	job, err := deps.JobService.GetJob(context.Background(), response.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobTypeImageTagging, job.Type)
}

func TestPostTaggingRejectsProcessing(t *testing.T) {
	router, deps := setupRouter(t)
	ctx := context.Background()

	image, err := deps.ImageService.Register(ctx, "busy.jpg", "/media/busy.jpg", 1)
	require.NoError(t, err)
	require.NoError(t, deps.ImageService.SetStatus(ctx, image.ID, models.StatusProcessing))

	w := doJSON(router, "POST", "/api/v1/images/1/tag", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserTagAddRemove(t *testing.T) {
	router, deps := setupRouter(t)
	image, err := deps.ImageService.Register(context.Background(), "tag.jpg", "/media/tag.jpg", 1)
	require.NoError(t, err)

	w := doJSON(router, "POST", "/api/v1/images/1/tags", types.TagRequest{Name: "pet"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, "DELETE", "/api/v1/images/1/tags/pet", nil)
	require.Equal(t, http.StatusOK, w.Code)

	associations, err := deps.TagStore.ListFor(context.Background(), tags.KindImage, image.ID)
	require.NoError(t, err)
	assert.Empty(t, associations)
}
