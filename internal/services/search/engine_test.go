package search

import (
	"context"
	"testing"
	"time"

	"github.com/mediatag/tagger-api/internal/models"
	"github.com/mediatag/tagger-api/internal/services/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	engine *Engine
	store  tags.Store
	db     *gorm.DB
}

// seeded videos: V1 tagged cat; V2 tagged cat+dog; V3 tagged dog
func setupEngine(t *testing.T) (fixture, []models.Video) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	err = db.AutoMigrate(
		&models.Video{},
		&models.Scene{},
		&models.Image{},
		&models.Tag{},
		&models.VideoTag{},
		&models.SceneTag{},
		&models.ImageTag{},
	)
	require.NoError(t, err, "Failed to migrate test database")

	store := tags.NewStore(db)
	ctx := context.Background()

	// distinct creation times keep the newest-first ordering deterministic
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	videos := make([]models.Video, 3)
	for i := range videos {
		videos[i] = models.Video{
			Filename:  "v.mp4",
			FilePath:  "/media/v.mp4",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&videos[i]).Error)
	}

	for _, seed := range []struct {
		video int
		tag   string
	}{
		{0, "cat"},
		{1, "cat"},
		{1, "dog"},
		{2, "dog"},
	} {
		_, err := store.Attach(ctx, tags.KindVideo, videos[seed.video].ID, seed.tag, models.ProvenanceAI, nil)
		require.NoError(t, err)
	}

	return fixture{engine: NewEngine(db, store), store: store, db: db}, videos
}

func videoIDs(page *VideoPage) []uint {
	ids := make([]uint, 0, len(page.Items))
	for _, item := range page.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestSearchBooleanOperators(t *testing.T) {
	fx, videos := setupEngine(t)
	ctx := context.Background()

	t.Run("AND intersects", func(t *testing.T) {
		results, err := fx.engine.Search(ctx, Query{AndTags: []string{"cat", "dog"}, Targets: []string{TargetVideos}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), results.Videos.Total)
		assert.Equal(t, []uint{videos[1].ID}, videoIDs(results.Videos))
	})

	t.Run("OR unions", func(t *testing.T) {
		results, err := fx.engine.Search(ctx, Query{OrTags: []string{"cat", "dog"}, Targets: []string{TargetVideos}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), results.Videos.Total)
		assert.ElementsMatch(t, []uint{videos[0].ID, videos[1].ID, videos[2].ID}, videoIDs(results.Videos))
	})

	t.Run("NOT subtracts", func(t *testing.T) {
		results, err := fx.engine.Search(ctx, Query{AndTags: []string{"cat"}, NotTags: []string{"dog"}, Targets: []string{TargetVideos}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), results.Videos.Total)
		assert.Equal(t, []uint{videos[0].ID}, videoIDs(results.Videos))
	})

	t.Run("unknown AND name is unsatisfiable", func(t *testing.T) {
		results, err := fx.engine.Search(ctx, Query{AndTags: []string{"unknown-tag"}, Targets: []string{TargetVideos}})
		require.NoError(t, err)
		assert.Equal(t, int64(0), results.Videos.Total)
		assert.Empty(t, results.Videos.Items)
	})

	t.Run("all OR names unknown is unsatisfiable", func(t *testing.T) {
		results, err := fx.engine.Search(ctx, Query{OrTags: []string{"nope", "also-nope"}, Targets: []string{TargetVideos}})
		require.NoError(t, err)
		assert.Equal(t, int64(0), results.Videos.Total)
	})

	t.Run("unknown NOT name is a no-op", func(t *testing.T) {
		results, err := fx.engine.Search(ctx, Query{AndTags: []string{"cat"}, NotTags: []string{"nope"}, Targets: []string{TargetVideos}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), results.Videos.Total)
	})
}

func TestSearchEmptyQueryReturnsEverything(t *testing.T) {
	fx, _ := setupEngine(t)

	results, err := fx.engine.Search(context.Background(), Query{Targets: []string{TargetVideos}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), results.Videos.Total)
}

func TestSearchEmbedsTagNames(t *testing.T) {
	fx, videos := setupEngine(t)

	results, err := fx.engine.Search(context.Background(), Query{AndTags: []string{"cat", "dog"}, Targets: []string{TargetVideos}})
	require.NoError(t, err)
	require.Len(t, results.Videos.Items, 1)
	assert.Equal(t, videos[1].ID, results.Videos.Items[0].ID)
	assert.Equal(t, []string{"cat", "dog"}, results.Videos.Items[0].TagNames)
}

func TestSearchPagination(t *testing.T) {
	fx, _ := setupEngine(t)
	ctx := context.Background()

	first, err := fx.engine.Search(ctx, Query{OrTags: []string{"cat", "dog"}, Targets: []string{TargetVideos}, Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), first.Videos.Total, "total is pre-pagination")
	assert.Len(t, first.Videos.Items, 2)

	second, err := fx.engine.Search(ctx, Query{OrTags: []string{"cat", "dog"}, Targets: []string{TargetVideos}, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, second.Videos.Items, 1)

	assert.NotEqual(t, videoIDs(first.Videos)[0], videoIDs(second.Videos)[0])
}

func TestSearchAcrossKinds(t *testing.T) {
	fx, videos := setupEngine(t)
	ctx := context.Background()

	scene := models.Scene{VideoID: videos[0].ID, StartTime: 0, EndTime: 5}
	require.NoError(t, fx.db.Create(&scene).Error)
	_, err := fx.store.Attach(ctx, tags.KindScene, scene.ID, "cat", models.ProvenanceAI, nil)
	require.NoError(t, err)

	image := models.Image{Filename: "cat.jpg", FilePath: "/media/cat.jpg"}
	require.NoError(t, fx.db.Create(&image).Error)
	_, err = fx.store.Attach(ctx, tags.KindImage, image.ID, "cat", models.ProvenanceAI, nil)
	require.NoError(t, err)

	results, err := fx.engine.Search(ctx, Query{AndTags: []string{"cat"}})
	require.NoError(t, err)
	require.NotNil(t, results.Videos)
	require.NotNil(t, results.Scenes)
	require.NotNil(t, results.Images)
	assert.Equal(t, int64(2), results.Videos.Total)
	assert.Equal(t, int64(1), results.Scenes.Total)
	assert.Equal(t, int64(1), results.Images.Total)

	limited, err := fx.engine.Search(ctx, Query{AndTags: []string{"cat"}, Targets: []string{TargetScenes}})
	require.NoError(t, err)
	assert.Nil(t, limited.Videos)
	assert.NotNil(t, limited.Scenes)
}

func TestSearchUnknownTarget(t *testing.T) {
	fx, _ := setupEngine(t)

	_, err := fx.engine.Search(context.Background(), Query{Targets: []string{"podcasts"}})
	assert.Error(t, err)
}

func TestListTags(t *testing.T) {
	fx, _ := setupEngine(t)

	usage, err := fx.engine.ListTags(context.Background())
	require.NoError(t, err)
	require.Len(t, usage, 2)

	// cat and dog are both on two videos; ties fall back to name order
	assert.Equal(t, "cat", usage[0].Name)
	assert.Equal(t, int64(2), usage[0].Videos)
	assert.Equal(t, "dog", usage[1].Name)
	assert.Equal(t, int64(2), usage[1].Videos)
}
