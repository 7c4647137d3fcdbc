package workers

import (
	"context"
	"errors"
	"testing"

	"github.com/mediatag/tagger-api/internal/models"
	"github.com/mediatag/tagger-api/internal/services/jobs"
	"github.com/mediatag/tagger-api/internal/services/tagging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeVideoTagger struct {
	result *tagging.Result
	err    error
	calls  []uint
}

func (f *fakeVideoTagger) TagVideo(ctx context.Context, videoID uint) (*tagging.Result, error) {
	f.calls = append(f.calls, videoID)
	return f.result, f.err
}

type fakeImageTagger struct {
	result *tagging.Result
	err    error
}

func (f *fakeImageTagger) TagImage(ctx context.Context, imageID uint) (*tagging.Result, error) {
	return f.result, f.err
}

func setupJobService(t *testing.T) jobs.Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.AutoMigrate(&models.Job{}))
	return jobs.NewService(jobs.NewRepository(db))
}

func TestCanProcess(t *testing.T) {
	p := NewTaggingProcessor(&fakeVideoTagger{}, &fakeImageTagger{}, setupJobService(t))

	assert.True(t, p.CanProcess(models.JobTypeVideoTagging))
	assert.True(t, p.CanProcess(models.JobTypeImageTagging))
	assert.False(t, p.CanProcess(models.JobType("waveform_generation")))
}

func TestProcessJobCompletes(t *testing.T) {
	svc := setupJobService(t)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, models.JobTypeVideoTagging, models.JobPayload{"video_id": 7})
	require.NoError(t, err)
	claimed, err := svc.ClaimNextJob(ctx, "worker-1", nil)
	require.NoError(t, err)

	tagger := &fakeVideoTagger{result: &tagging.Result{
		EntityID: 7,
		Kind:     "video",
		Status:   models.StatusTagged,
		Tags:     []string{"beach"},
	}}
	p := NewTaggingProcessor(tagger, &fakeImageTagger{}, svc)

	require.NoError(t, p.ProcessJob(ctx, claimed))
	assert.Equal(t, []uint{7}, tagger.calls)

	got, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, "tagged", got.Result["status"])
}

func TestProcessJobPipelineError(t *testing.T) {
	svc := setupJobService(t)
	ctx := context.Background()

	job, err := svc.EnqueueJob(ctx, models.JobTypeVideoTagging, models.JobPayload{"video_id": 7})
	require.NoError(t, err)
	claimed, err := svc.ClaimNextJob(ctx, "worker-1", nil)
	require.NoError(t, err)

	tagger := &fakeVideoTagger{result: &tagging.Result{
		EntityID: 7,
		Kind:     "video",
		Status:   models.StatusError,
		Error:    "disk I/O error",
	}}
	p := NewTaggingProcessor(tagger, &fakeImageTagger{}, svc)

	require.NoError(t, p.ProcessJob(ctx, claimed))

	got, err := svc.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	assert.Equal(t, "disk I/O error", got.Error)
}

func TestProcessJobPreflightError(t *testing.T) {
	svc := setupJobService(t)
	ctx := context.Background()

	_, err := svc.EnqueueJob(ctx, models.JobTypeVideoTagging, models.JobPayload{"video_id": 404})
	require.NoError(t, err)
	claimed, err := svc.ClaimNextJob(ctx, "worker-1", nil)
	require.NoError(t, err)

	tagger := &fakeVideoTagger{err: errors.New("video not found")}
	p := NewTaggingProcessor(tagger, &fakeImageTagger{}, svc)

	assert.Error(t, p.ProcessJob(ctx, claimed))
}

func TestProcessJobMissingPayload(t *testing.T) {
	svc := setupJobService(t)
	ctx := context.Background()

	_, err := svc.EnqueueJob(ctx, models.JobTypeImageTagging, models.JobPayload{})
	require.NoError(t, err)
	claimed, err := svc.ClaimNextJob(ctx, "worker-1", nil)
	require.NoError(t, err)

	p := NewTaggingProcessor(&fakeVideoTagger{}, &fakeImageTagger{}, svc)
	assert.Error(t, p.ProcessJob(ctx, claimed))
}
