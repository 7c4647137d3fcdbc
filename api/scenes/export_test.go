package scenes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mediatag/tagger-api/api/types"
	"github.com/mediatag/tagger-api/internal/models"
	"github.com/mediatag/tagger-api/internal/services/tags"
	videosService "github.com/mediatag/tagger-api/internal/services/videos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeExporter writes marker files instead of invoking ffmpeg
type fakeExporter struct {
	extracted []string
	merged    [][]string
}

func (f *fakeExporter) ExtractClip(ctx context.Context, inputPath, outputPath string, start, end float64) error {
	f.extracted = append(f.extracted, outputPath)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte("clip"), 0644)
}

func (f *fakeExporter) ConcatClips(ctx context.Context, clipPaths []string, outputPath string) error {
	f.merged = append(f.merged, clipPaths)
	return os.WriteFile(outputPath, []byte("merged"), 0644)
}

func setupExportRouter(t *testing.T) (*gin.Engine, *types.Dependencies, *fakeExporter, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	err = db.AutoMigrate(
		&models.Video{},
		&models.Scene{},
		&models.Tag{},
		&models.SceneTag{},
	)
	require.NoError(t, err, "Failed to migrate test database")

	exporter := &fakeExporter{}
	deps := &types.Dependencies{
		VideoService: videosService.NewService(videosService.NewRepository(db)),
		TagStore:     tags.NewStore(db),
		Media:        exporter,
		ClipDir:      t.TempDir(),
		ExportDir:    t.TempDir(),
	}

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1/scenes"), deps)
	return router, deps, exporter, db
}

func seedScenes(t *testing.T, deps *types.Dependencies, db *gorm.DB, count int) []models.Scene {
	video, err := deps.VideoService.Register(context.Background(), "trip.mp4", "/media/trip.mp4", 1024)
	require.NoError(t, err)

	scenes := make([]models.Scene, 0, count)
	for i := 0; i < count; i++ {
		scene := models.Scene{VideoID: video.ID, StartTime: float64(i * 10), EndTime: float64(i*10 + 5)}
		require.NoError(t, db.Create(&scene).Error)
		scenes = append(scenes, scene)
	}
	return scenes
}

func postExport(router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/v1/scenes/export", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestExportScenes(t *testing.T) {
	router, deps, exporter, db := setupExportRouter(t)
	scenes := seedScenes(t, deps, db, 2)

	w := postExport(router, types.ExportScenesRequest{SceneIDs: []uint{scenes[0].ID, scenes[1].ID}})
	require.Equal(t, http.StatusOK, w.Code)

	var response types.ExportScenesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Files, 2)
	assert.Empty(t, response.MergedFile)
	assert.Len(t, exporter.extracted, 2)

	assert.Equal(t, scenes[0].ID, response.Files[0].SceneID)
	assert.Equal(t, "trip.mp4", response.Files[0].VideoFilename)
	assert.FileExists(t, response.Files[0].ClipPath)

	// clip paths are persisted so a later export reuses them
	stored, err := deps.VideoService.GetScene(context.Background(), scenes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, response.Files[0].ClipPath, stored.ClipPath)

	w = postExport(router, types.ExportScenesRequest{SceneIDs: []uint{scenes[0].ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, exporter.extracted, 2, "existing clips are not re-extracted")
}

func TestExportScenesMerged(t *testing.T) {
	router, deps, exporter, db := setupExportRouter(t)
	scenes := seedScenes(t, deps, db, 3)

	w := postExport(router, types.ExportScenesRequest{
		SceneIDs: []uint{scenes[0].ID, scenes[1].ID, scenes[2].ID},
		Merge:    true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response types.ExportScenesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Files, 3)
	require.NotEmpty(t, response.MergedFile)
	assert.FileExists(t, response.MergedFile)
	require.Len(t, exporter.merged, 1)
	assert.Len(t, exporter.merged[0], 3)
}

func TestExportSkipsUnknownScenes(t *testing.T) {
	router, deps, _, db := setupExportRouter(t)
	scenes := seedScenes(t, deps, db, 1)

	w := postExport(router, types.ExportScenesRequest{SceneIDs: []uint{scenes[0].ID, 999}})
	require.Equal(t, http.StatusOK, w.Code)

	var response types.ExportScenesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Files, 1)
}

func TestExportValidation(t *testing.T) {
	router, _, _, _ := setupExportRouter(t)

	req := httptest.NewRequest("POST", "/api/v1/scenes/export", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "scene_ids is required")
}

func TestDownloadExport(t *testing.T) {
	router, deps, _, _ := setupExportRouter(t)

	path := filepath.Join(deps.ExportDir, "merged_abc.mp4")
	require.NoError(t, os.WriteFile(path, []byte("merged"), 0644))

	req := httptest.NewRequest("GET", "/api/v1/scenes/export/merged_abc.mp4/download", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "merged", w.Body.String())

	req = httptest.NewRequest("GET", "/api/v1/scenes/export/missing.mp4/download", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
