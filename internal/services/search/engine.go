package search

import (
	"context"
	"fmt"

	"github.com/mediatag/tagger-api/internal/models"
	"github.com/mediatag/tagger-api/internal/services/tags"
	"gorm.io/gorm"
)

// Engine runs boolean tag-set queries against the tag association tables.
// It reads only; all writes go through the tag store and entity services.
type Engine struct {
	db    *gorm.DB
	store tags.Store
}

// NewEngine creates a search engine
func NewEngine(db *gorm.DB, store tags.Store) *Engine {
	return &Engine{db: db, store: store}
}

// Search evaluates a query per requested target kind. Results are ordered
// newest first and paginated independently per kind, with each kind's
// pre-pagination total included.
func (e *Engine) Search(ctx context.Context, q Query) (*Results, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	offset := (q.Page - 1) * q.Limit

	targets := q.Targets
	if len(targets) == 0 {
		targets = []string{TargetVideos, TargetScenes, TargetImages}
	}

	resolved, err := e.resolveTags(ctx, q)
	if err != nil {
		return nil, err
	}

	results := &Results{}
	for _, target := range targets {
		switch target {
		case TargetVideos:
			page, err := e.searchVideos(ctx, q, resolved, offset, q.Limit)
			if err != nil {
				return nil, err
			}
			results.Videos = page
		case TargetScenes:
			page, err := e.searchScenes(ctx, q, resolved, offset, q.Limit)
			if err != nil {
				return nil, err
			}
			results.Scenes = page
		case TargetImages:
			page, err := e.searchImages(ctx, q, resolved, offset, q.Limit)
			if err != nil {
				return nil, err
			}
			results.Images = page
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
		}
	}
	return results, nil
}

// ListTags returns every tag with its per-kind usage counts, most used first
func (e *Engine) ListTags(ctx context.Context) ([]tags.UsageCount, error) {
	return e.store.ListUsage(ctx)
}

// resolveTags maps every referenced tag name to its id. Names that do not
// exist are simply absent from the map; the filter logic decides whether
// that makes the query unsatisfiable.
func (e *Engine) resolveTags(ctx context.Context, q Query) (map[string]uint, error) {
	names := make([]string, 0, len(q.AndTags)+len(q.OrTags)+len(q.NotTags))
	names = append(names, q.AndTags...)
	names = append(names, q.OrTags...)
	names = append(names, q.NotTags...)
	if len(names) == 0 {
		return map[string]uint{}, nil
	}

	var rows []models.Tag
	if err := e.db.WithContext(ctx).Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("resolving tag names: %w", err)
	}

	resolved := make(map[string]uint, len(rows))
	for _, tag := range rows {
		resolved[tag.Name] = tag.ID
	}
	return resolved, nil
}

// tagFilter builds the boolean condition set for one association table.
// It returns unsatisfiable=true when an AND name does not exist, or when
// OR names were given and none of them exist.
func (e *Engine) tagFilter(ctx context.Context, assocTable, ownerCol string, q Query, resolved map[string]uint) (bool, func(*gorm.DB) *gorm.DB) {
	owners := func(tagIDs ...uint) *gorm.DB {
		return e.db.WithContext(ctx).Table(assocTable).Select(ownerCol).Where("tag_id IN ?", tagIDs)
	}

	andIDs := make([]uint, 0, len(q.AndTags))
	for _, name := range q.AndTags {
		id, ok := resolved[name]
		if !ok {
			return true, nil
		}
		andIDs = append(andIDs, id)
	}

	orIDs := make([]uint, 0, len(q.OrTags))
	for _, name := range q.OrTags {
		if id, ok := resolved[name]; ok {
			orIDs = append(orIDs, id)
		}
	}
	if len(q.OrTags) > 0 && len(orIDs) == 0 {
		return true, nil
	}

	notIDs := make([]uint, 0, len(q.NotTags))
	for _, name := range q.NotTags {
		// an unknown NOT name excludes nothing
		if id, ok := resolved[name]; ok {
			notIDs = append(notIDs, id)
		}
	}

	return false, func(db *gorm.DB) *gorm.DB {
		for _, id := range andIDs {
			db = db.Where("id IN (?)", owners(id))
		}
		if len(orIDs) > 0 {
			db = db.Where("id IN (?)", owners(orIDs...))
		}
		for _, id := range notIDs {
			db = db.Where("id NOT IN (?)", owners(id))
		}
		return db
	}
}

func (e *Engine) searchVideos(ctx context.Context, q Query, resolved map[string]uint, offset, limit int) (*VideoPage, error) {
	page := &VideoPage{Items: []VideoHit{}}

	unsat, scope := e.tagFilter(ctx, "video_tags", "video_id", q, resolved)
	if unsat {
		return page, nil
	}

	if err := scope(e.db.WithContext(ctx).Model(&models.Video{})).Count(&page.Total).Error; err != nil {
		return nil, fmt.Errorf("counting video matches: %w", err)
	}

	var rows []models.Video
	if err := scope(e.db.WithContext(ctx).Model(&models.Video{})).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("searching videos: %w", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	names, err := e.ownerTagNames(ctx, "video_tags", "video_id", ids)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		page.Items = append(page.Items, VideoHit{Video: row, TagNames: names[row.ID]})
	}
	return page, nil
}

func (e *Engine) searchScenes(ctx context.Context, q Query, resolved map[string]uint, offset, limit int) (*ScenePage, error) {
	page := &ScenePage{Items: []SceneHit{}}

	unsat, scope := e.tagFilter(ctx, "scene_tags", "scene_id", q, resolved)
	if unsat {
		return page, nil
	}

	if err := scope(e.db.WithContext(ctx).Model(&models.Scene{})).Count(&page.Total).Error; err != nil {
		return nil, fmt.Errorf("counting scene matches: %w", err)
	}

	var rows []models.Scene
	if err := scope(e.db.WithContext(ctx).Model(&models.Scene{})).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("searching scenes: %w", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	names, err := e.ownerTagNames(ctx, "scene_tags", "scene_id", ids)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		page.Items = append(page.Items, SceneHit{Scene: row, TagNames: names[row.ID]})
	}
	return page, nil
}

func (e *Engine) searchImages(ctx context.Context, q Query, resolved map[string]uint, offset, limit int) (*ImagePage, error) {
	page := &ImagePage{Items: []ImageHit{}}

	unsat, scope := e.tagFilter(ctx, "image_tags", "image_id", q, resolved)
	if unsat {
		return page, nil
	}

	if err := scope(e.db.WithContext(ctx).Model(&models.Image{})).Count(&page.Total).Error; err != nil {
		return nil, fmt.Errorf("counting image matches: %w", err)
	}

	var rows []models.Image
	if err := scope(e.db.WithContext(ctx).Model(&models.Image{})).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("searching images: %w", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	names, err := e.ownerTagNames(ctx, "image_tags", "image_id", ids)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		page.Items = append(page.Items, ImageHit{Image: row, TagNames: names[row.ID]})
	}
	return page, nil
}

// ownerTagNames loads the resolved tag name lists for a batch of owners
func (e *Engine) ownerTagNames(ctx context.Context, assocTable, ownerCol string, ownerIDs []uint) (map[uint][]string, error) {
	names := make(map[uint][]string, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return names, nil
	}

	var rows []struct {
		OwnerID uint
		Name    string
	}
	if err := e.db.WithContext(ctx).Table(assocTable).
		Select(assocTable+"."+ownerCol+" AS owner_id, tags.name").
		Joins("JOIN tags ON tags.id = "+assocTable+".tag_id").
		Where(assocTable+"."+ownerCol+" IN ?", ownerIDs).
		Order("tags.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading tag names: %w", err)
	}

	for _, row := range rows {
		names[row.OwnerID] = append(names[row.OwnerID], row.Name)
	}
	return names, nil
}
