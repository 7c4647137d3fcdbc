package images

import (
	"context"
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

	err = db.AutoMigrate(&models.Image{}, &models.Tag{}, &models.ImageTag{})
	require.NoError(t, err, "Failed to migrate test database")

	return NewService(NewRepository(db))
}

func TestRegister(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	image, err := svc.Register(ctx, "cat.jpg", "/media/cat.jpg", 1024)
	require.NoError(t, err)
	assert.NotZero(t, image.ID)
	assert.NotEmpty(t, image.UUID)
	assert.Equal(t, models.StatusUploaded, image.Status)

	_, err = svc.Register(ctx, "cat.jpg", "", 1024)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateDetails(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	image, err := svc.Register(ctx, "cat.jpg", "/media/cat.jpg", 1024)
	require.NoError(t, err)

	title := "Sleeping cat"
	updated, err := svc.UpdateDetails(ctx, image.ID, UpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Sleeping cat", updated.Title)
}

func TestDelete(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	image, err := svc.Register(ctx, "cat.jpg", "/media/cat.jpg", 1024)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, image.ID))
	_, err = svc.Get(ctx, image.ID)
	assert.True(t, IsNotFound(err))

	assert.True(t, IsNotFound(svc.Delete(ctx, image.ID)))
}

func TestDeleteWhileProcessing(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	image, err := svc.Register(ctx, "cat.jpg", "/media/cat.jpg", 1024)
	require.NoError(t, err)
	require.NoError(t, svc.SetStatus(ctx, image.ID, models.StatusProcessing))

	assert.ErrorIs(t, svc.Delete(ctx, image.ID), ErrImageBusy)
}

func TestSetDescriptionAndDimensions(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	image, err := svc.Register(ctx, "cat.jpg", "/media/cat.jpg", 1024)
	require.NoError(t, err)

	require.NoError(t, svc.SetDescription(ctx, image.ID, "a cat asleep on a sofa"))
	require.NoError(t, svc.SetDimensions(ctx, image.ID, 1920, 1080))

	got, err := svc.Get(ctx, image.ID)
	require.NoError(t, err)
	assert.Equal(t, "a cat asleep on a sofa", got.Description)
	require.NotNil(t, got.Width)
	assert.Equal(t, 1920, *got.Width)

	assert.ErrorIs(t, svc.SetDimensions(ctx, image.ID, 0, 1080), ErrInvalidInput)
}
