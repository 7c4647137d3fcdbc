package tags

import (
	"context"

	"github.com/mediatag/tagger-api/internal/models"
)

// Kind selects which owner table a tag association belongs to
type Kind string

const (
	KindVideo Kind = "video"
	KindScene Kind = "scene"
	KindImage Kind = "image"
)

// Association is a tag attached to an owner, with its provenance and the
// resolved tag name.
type Association struct {
	TagID      uint     `json:"tag_id"`
	Name       string   `json:"name"`
	Provenance string   `json:"provenance"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// EffectiveConfidence reports user tags as 1.0 for API compatibility
func (a Association) EffectiveConfidence() float64 {
	if a.Provenance == models.ProvenanceUser {
		return 1.0
	}
	if a.Confidence == nil {
		return 0
	}
	return *a.Confidence
}

// UsageCount is a tag with per-kind association counts
type UsageCount struct {
	Name   string `json:"name"`
	Videos int64  `json:"videos"`
	Scenes int64  `json:"scenes"`
	Images int64  `json:"images"`
}

// Total returns the combined usage across all kinds
func (u UsageCount) Total() int64 {
	return u.Videos + u.Scenes + u.Images
}

// Store manages tags and their associations to videos, scenes and images
type Store interface {
	// FindOrCreateTag resolves a name to a tag row, creating it if needed
	FindOrCreateTag(ctx context.Context, name string) (*models.Tag, error)

	// Attach associates a tag name with an owner. Returns false when the
	// association already existed. A user association is never downgraded
	// to a generated one.
	Attach(ctx context.Context, kind Kind, ownerID uint, name, provenance string, confidence *float64) (bool, error)

	// Detach removes the association between an owner and a tag name
	Detach(ctx context.Context, kind Kind, ownerID uint, name string) error

	// ClearGenerated removes all non-user associations for an owner,
	// leaving user-defined tags in place
	ClearGenerated(ctx context.Context, kind Kind, ownerID uint) error

	// ListFor returns an owner's associations with resolved tag names
	ListFor(ctx context.Context, kind Kind, ownerID uint) ([]Association, error)

	// ListUsage returns all tags with per-kind usage counts, most used first
	ListUsage(ctx context.Context) ([]UsageCount, error)
}
