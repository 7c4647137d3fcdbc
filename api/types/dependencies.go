package types

import (
	"context"

	"github.com/mediatag/tagger-api/internal/database"
	"github.com/mediatag/tagger-api/internal/services/cache"
	"github.com/mediatag/tagger-api/internal/services/images"
	"github.com/mediatag/tagger-api/internal/services/jobs"
	"github.com/mediatag/tagger-api/internal/services/search"
	"github.com/mediatag/tagger-api/internal/services/tags"
	"github.com/mediatag/tagger-api/internal/services/videos"
	"github.com/mediatag/tagger-api/internal/services/workers"
)

// MediaExporter covers the clip operations the scene export endpoint uses
type MediaExporter interface {
	ExtractClip(ctx context.Context, inputPath, outputPath string, start, end float64) error
	ConcatClips(ctx context.Context, clipPaths []string, outputPath string) error
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB           *database.DB
	VideoService videos.Service
	ImageService images.Service
	TagStore     tags.Store
	SearchEngine *search.Engine
	JobService   jobs.Service
	WorkerPool   *workers.WorkerPool
	SearchCache  cache.Cache
	Media        MediaExporter
	ClipDir      string
	ExportDir    string
}
