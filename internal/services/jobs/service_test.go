package jobs

import (
	"context"
	"errors"
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

	require.NoError(t, db.AutoMigrate(&models.Job{}))

	return NewService(NewRepository(db))
}

func TestEnqueueAndClaim(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, models.JobTypeVideoTagging, models.JobPayload{"video_id": 7})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)

	claimed, err := svc.ClaimNextJob(ctx, "worker-1", []models.JobType{models.JobTypeVideoTagging})
	require.NoError(t, err)
	assert.Equal(t, job.ID, claimed.ID)
	assert.Equal(t, models.JobStatusProcessing, claimed.Status)
	assert.Equal(t, "worker-1", claimed.WorkerID)
	assert.NotNil(t, claimed.StartedAt)

	videoID, ok := claimed.GetPayloadUint("video_id")
	require.True(t, ok)
	assert.Equal(t, uint(7), videoID)

	// the claimed job is no longer available
	_, err = svc.ClaimNextJob(ctx, "worker-2", nil)
	assert.ErrorIs(t, err, ErrNoJobsAvailable)
}

func TestClaimRespectsJobTypes(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.EnqueueJob(ctx, models.JobTypeVideoTagging, models.JobPayload{"video_id": 1})
	require.NoError(t, err)

	_, err = svc.ClaimNextJob(ctx, "worker-1", []models.JobType{models.JobTypeImageTagging})
	assert.ErrorIs(t, err, ErrNoJobsAvailable)
}

func TestClaimOldestFirst(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	first, err := svc.EnqueueJob(ctx, models.JobTypeVideoTagging, models.JobPayload{"video_id": 1})
	require.NoError(t, err)
	_, err = svc.EnqueueJob(ctx, models.JobTypeVideoTagging, models.JobPayload{"video_id": 2})
	require.NoError(t, err)

	claimed, err := svc.ClaimNextJob(ctx, "worker-1", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, claimed.ID)
}

func TestEnqueueUniqueJob(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	first, err := svc.EnqueueUniqueJob(ctx, models.JobTypeVideoTagging, models.JobPayload{"video_id": 7}, "video_id")
	require.NoError(t, err)

	second, err := svc.EnqueueUniqueJob(ctx, models.JobTypeVideoTagging, models.JobPayload{"video_id": 7}, "video_id")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "a pending job is reused")

	require.NoError(t, svc.CompleteJob(ctx, first.ID, models.JobResult{"status": "tagged"}))

	third, err := svc.EnqueueUniqueJob(ctx, models.JobTypeVideoTagging, models.JobPayload{"video_id": 7}, "video_id")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID, "a terminal job does not block a new one")
}

func TestCompleteAndFail(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, models.JobTypeImageTagging, models.JobPayload{"image_id": 3})
	require.NoError(t, err)
	_, err = svc.ClaimNextJob(ctx, "worker-1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.CompleteJob(ctx, job.ID, models.JobResult{"tags": []string{"cat"}}))

	got, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.True(t, got.IsTerminal())

	other, err := svc.EnqueueJob(ctx, models.JobTypeImageTagging, models.JobPayload{"image_id": 4})
	require.NoError(t, err)
	require.NoError(t, svc.FailJob(ctx, other.ID, errors.New("upstream unavailable")))

	failed, err := svc.GetJob(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, failed.Status)
	assert.Equal(t, "upstream unavailable", failed.Error)
}

func TestReleaseJob(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, models.JobTypeVideoTagging, models.JobPayload{"video_id": 1})
	require.NoError(t, err)
	_, err = svc.ClaimNextJob(ctx, "worker-1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.ReleaseJob(ctx, job.ID))

	reclaimed, err := svc.ClaimNextJob(ctx, "worker-2", nil)
	require.NoError(t, err)
	assert.Equal(t, job.ID, reclaimed.ID)

	// only processing jobs can be released
	assert.ErrorIs(t, svc.ReleaseJob(ctx, 999), ErrJobNotFound)
}
