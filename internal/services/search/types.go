package search

import (
	"errors"

	"github.com/mediatag/tagger-api/internal/models"
)

// ErrUnknownTarget is returned for a target outside videos/scenes/images
var ErrUnknownTarget = errors.New("unknown search target")

// Target kinds accepted in a query
const (
	TargetVideos = "videos"
	TargetScenes = "scenes"
	TargetImages = "images"
)

// Query is a boolean tag-set search. AND names must all be present, OR
// names require at least one, NOT names exclude. Any list may be empty.
type Query struct {
	AndTags []string `json:"and_tags"`
	OrTags  []string `json:"or_tags"`
	NotTags []string `json:"not_tags"`
	Targets []string `json:"targets"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
}

// VideoHit is a matching video with its resolved tag names
type VideoHit struct {
	models.Video
	TagNames []string `json:"tag_names"`
}

// SceneHit is a matching scene with its resolved tag names
type SceneHit struct {
	models.Scene
	TagNames []string `json:"tag_names"`
}

// ImageHit is a matching image with its resolved tag names
type ImageHit struct {
	models.Image
	TagNames []string `json:"tag_names"`
}

// VideoPage is one kind's result page with its pre-pagination total
type VideoPage struct {
	Total int64      `json:"total"`
	Items []VideoHit `json:"items"`
}

// ScenePage is one kind's result page with its pre-pagination total
type ScenePage struct {
	Total int64      `json:"total"`
	Items []SceneHit `json:"items"`
}

// ImagePage is one kind's result page with its pre-pagination total
type ImagePage struct {
	Total int64      `json:"total"`
	Items []ImageHit `json:"items"`
}

// Results groups per-kind pages; only requested targets are present
type Results struct {
	Videos *VideoPage `json:"videos,omitempty"`
	Scenes *ScenePage `json:"scenes,omitempty"`
	Images *ImagePage `json:"images,omitempty"`
}
