package tagging

// SceneResult describes one scene produced by a video run
type SceneResult struct {
	ID        uint     `json:"id"`
	StartTime float64  `json:"start_time"`
	EndTime   float64  `json:"end_time"`
	Tags      []string `json:"tags"`
}

// Result is the outcome of a tagging run. Partial results completed
// before a failure are retained, so a Result with Status "error" may
// still carry a summary, scenes and tags.
type Result struct {
	EntityID    uint          `json:"entity_id"`
	Kind        string        `json:"kind"`
	Status      string        `json:"status"`
	Summary     string        `json:"summary,omitempty"`
	Description string        `json:"description,omitempty"`
	Tags        []string      `json:"tags"`
	Scenes      []SceneResult `json:"scenes,omitempty"`
	Error       string        `json:"error,omitempty"`
}
