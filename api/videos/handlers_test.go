package videos

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
	"github.com/mediatag/tagger-api/internal/services/jobs"
	"github.com/mediatag/tagger-api/internal/services/tags"
	videosService "github.com/mediatag/tagger-api/internal/services/videos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) (*gin.Engine, *types.Dependencies, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	err = db.AutoMigrate(
		&models.Video{},
		&models.Scene{},
		&models.Tag{},
		&models.VideoTag{},
		&models.SceneTag{},
		&models.ImageTag{},
		&models.Job{},
	)
	require.NoError(t, err, "Failed to migrate test database")

	deps := &types.Dependencies{
		VideoService: videosService.NewService(videosService.NewRepository(db)),
		TagStore:     tags.NewStore(db),
		JobService:   jobs.NewService(jobs.NewRepository(db)),
	}

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1/videos"), deps)
	return router, deps, db
}

func seedVideo(t *testing.T, deps *types.Dependencies, filename string) *models.Video {
	video, err := deps.VideoService.Register(context.Background(), filename, "/media/"+filename, 1024)
	require.NoError(t, err)
	return video
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndGet(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, "POST", "/api/v1/videos", types.RegisterVideoRequest{
		Filename: "beach.mp4",
		FilePath: "/media/beach.mp4",
		FileSize: 2048,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Video
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.StatusUploaded, created.Status)

	w = doJSON(router, "GET", "/api/v1/videos/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response, "video")
	assert.Contains(t, response, "tags")
}

func TestRegisterValidation(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, "POST", "/api/v1/videos", map[string]string{"filename": "x.mp4"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "file_path is required")
}

func TestGetAllPagination(t *testing.T) {
	router, deps, _ := setupRouter(t)
	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		seedVideo(t, deps, name)
	}

	w := doJSON(router, "GET", "/api/v1/videos?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response types.VideosResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, int64(3), response.Total)
}

func TestGetNotFound(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := doJSON(router, "GET", "/api/v1/videos/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "GET", "/api/v1/videos/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateVideo(t *testing.T) {
	router, deps, _ := setupRouter(t)
	video := seedVideo(t, deps, "old.mp4")

	title := "Summer trip"
	w := doJSON(router, "PUT", "/api/v1/videos/1", types.UpdateEntityRequest{Title: &title})
	require.Equal(t, http.StatusOK, w.Code)

	updated, err := deps.VideoService.Get(context.Background(), video.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summer trip", updated.Title)
}

func TestUpdateNotesAttachesHashtags(t *testing.T) {
	router, deps, db := setupRouter(t)
	video := seedVideo(t, deps, "trip.mp4")

	scene := models.Scene{VideoID: video.ID, StartTime: 0, EndTime: 5}
	require.NoError(t, db.Create(&scene).Error)

	notes := "trip to the #beach at #sunset, #beach again"
	w := doJSON(router, "PUT", "/api/v1/videos/1", types.UpdateEntityRequest{UserNotes: &notes})
	require.Equal(t, http.StatusOK, w.Code)

	videoTags, err := deps.TagStore.ListFor(context.Background(), tags.KindVideo, video.ID)
	require.NoError(t, err)
	require.Len(t, videoTags, 2)
	for _, association := range videoTags {
		assert.Equal(t, models.ProvenanceUser, association.Provenance)
	}

	sceneTags, err := deps.TagStore.ListFor(context.Background(), tags.KindScene, scene.ID)
	require.NoError(t, err)
	assert.Len(t, sceneTags, 2, "note hashtags propagate to every scene")

	// repeating the notes does not duplicate associations
	w = doJSON(router, "PUT", "/api/v1/videos/1", types.UpdateEntityRequest{UserNotes: &notes})
	require.Equal(t, http.StatusOK, w.Code)

	videoTags, err = deps.TagStore.ListFor(context.Background(), tags.KindVideo, video.ID)
	require.NoError(t, err)
	assert.Len(t, videoTags, 2)
}

func TestDeleteBusyVideo(t *testing.T) {
	router, deps, _ := setupRouter(t)
	video := seedVideo(t, deps, "busy.mp4")
	require.NoError(t, deps.VideoService.SetStatus(context.Background(), video.ID, models.StatusProcessing))

	w := doJSON(router, "DELETE", "/api/v1/videos/1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPostTaggingQueuesJob(t *testing.T) {
	router, deps, _ := setupRouter(t)
	seedVideo(t, deps, "queue.mp4")

	w := doJSON(router, "POST", "/api/v1/videos/1/tag", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	var response types.TaggingQueuedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, types.StatusQueued, response.Status)
	assert.NotZero(t, response.JobID)
	assert.Equal(t, "video", response.Kind)

	job, err := deps.JobService.GetJob(context.Background(), response.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobTypeVideoTagging, job.Type)
	assert.Equal(t, models.JobStatusPending, job.Status)

	// A second request while the job is pending reuses it
	w = doJSON(router, "POST", "/api/v1/videos/1/tag", nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	var second types.TaggingQueuedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, response.JobID, second.JobID)
}

func TestPostTaggingRejectsProcessing(t *testing.T) {
	router, deps, _ := setupRouter(t)
	video := seedVideo(t, deps, "busy.mp4")
	require.NoError(t, deps.VideoService.SetStatus(context.Background(), video.ID, models.StatusProcessing))

	w := doJSON(router, "POST", "/api/v1/videos/1/tag", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserTagLifecycle(t *testing.T) {
	router, deps, _ := setupRouter(t)
	video := seedVideo(t, deps, "tagged.mp4")

	w := doJSON(router, "POST", "/api/v1/videos/1/tags", types.TagRequest{Name: "vacation"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Attaching the same tag again is reported, not duplicated
	w = doJSON(router, "POST", "/api/v1/videos/1/tags", types.TagRequest{Name: "vacation"})
	require.Equal(t, http.StatusOK, w.Code)

	associations, err := deps.TagStore.ListFor(context.Background(), tags.KindVideo, video.ID)
	require.NoError(t, err)
	require.Len(t, associations, 1)
	assert.Equal(t, models.ProvenanceUser, associations[0].Provenance)

	w = doJSON(router, "GET", "/api/v1/videos/1/tags", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "DELETE", "/api/v1/videos/1/tags/vacation", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "DELETE", "/api/v1/videos/1/tags/vacation", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
