package videos

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mediatag/tagger-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupService(t *testing.T) Service {
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
	)
	require.NoError(t, err, "Failed to migrate test database")

	return NewService(NewRepository(db))
}

func TestRegister(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	video, err := svc.Register(ctx, "beach.mp4", "/media/beach.mp4", 2048)
	require.NoError(t, err)
	assert.NotZero(t, video.ID)
	assert.NotEmpty(t, video.UUID)
	assert.Equal(t, models.StatusUploaded, video.Status)
	assert.Equal(t, "beach.mp4", video.Title, "title defaults to the filename")

	_, err = svc.Register(ctx, "", "/media/x.mp4", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetNotFound(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Get(context.Background(), 999)
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestUpdateDetails(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	video, err := svc.Register(ctx, "beach.mp4", "/media/beach.mp4", 2048)
	require.NoError(t, err)

	title := "Beach day"
	notes := "shot on the old camera"
	updated, err := svc.UpdateDetails(ctx, video.ID, UpdateRequest{Title: &title, UserNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "Beach day", updated.Title)
	assert.Equal(t, "shot on the old camera", updated.UserNotes)

	empty := ""
	_, err = svc.UpdateDetails(ctx, video.ID, UpdateRequest{Title: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDelete(t *testing.T) {
	t.Run("removes record and media file", func(t *testing.T) {
		svc := setupService(t)
		ctx := context.Background()

		mediaPath := filepath.Join(t.TempDir(), "beach.mp4")
		require.NoError(t, os.WriteFile(mediaPath, []byte("data"), 0644))

		video, err := svc.Register(ctx, "beach.mp4", mediaPath, 4)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, video.ID))

		_, err = svc.Get(ctx, video.ID)
		assert.True(t, IsNotFound(err))
		_, err = os.Stat(mediaPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("rejects a video being processed", func(t *testing.T) {
		svc := setupService(t)
		ctx := context.Background()

		video, err := svc.Register(ctx, "beach.mp4", "/media/beach.mp4", 4)
		require.NoError(t, err)
		require.NoError(t, svc.SetStatus(ctx, video.ID, models.StatusProcessing))

		assert.ErrorIs(t, svc.Delete(ctx, video.ID), ErrVideoBusy)
	})
}

func TestSetStatus(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	video, err := svc.Register(ctx, "beach.mp4", "/media/beach.mp4", 4)
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, video.ID, models.StatusTagged))
	got, err := svc.Get(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTagged, got.Status)

	assert.ErrorIs(t, svc.SetStatus(ctx, video.ID, "archived"), ErrInvalidInput)
}

func TestReplaceScenes(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	video, err := svc.Register(ctx, "beach.mp4", "/media/beach.mp4", 4)
	require.NoError(t, err)

	first, err := svc.ReplaceScenes(ctx, video.ID, []models.Scene{
		{StartTime: 0, EndTime: 10},
		{StartTime: 10, EndTime: 25},
	})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := svc.ReplaceScenes(ctx, video.ID, []models.Scene{
		{StartTime: 0, EndTime: 25},
	})
	require.NoError(t, err)
	require.Len(t, second, 1)

	scenes, err := svc.ListScenes(ctx, video.ID)
	require.NoError(t, err)
	require.Len(t, scenes, 1, "old scenes are gone after a replace")
	assert.Equal(t, video.ID, scenes[0].VideoID)
}

func TestListScenesOrdered(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	video, err := svc.Register(ctx, "beach.mp4", "/media/beach.mp4", 4)
	require.NoError(t, err)

	_, err = svc.ReplaceScenes(ctx, video.ID, []models.Scene{
		{StartTime: 20, EndTime: 30},
		{StartTime: 0, EndTime: 10},
		{StartTime: 10, EndTime: 20},
	})
	require.NoError(t, err)

	scenes, err := svc.ListScenes(ctx, video.ID)
	require.NoError(t, err)
	require.Len(t, scenes, 3)
	assert.Equal(t, 0.0, scenes[0].StartTime)
	assert.Equal(t, 10.0, scenes[1].StartTime)
	assert.Equal(t, 20.0, scenes[2].StartTime)

	_, err = svc.ListScenes(ctx, 999)
	assert.True(t, IsNotFound(err))
}
