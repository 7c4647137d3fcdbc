package generation

import "context"

// Client defines the contract for the text/vision generation service.
// Vision calls accept local image paths; files that do not exist are
// skipped rather than treated as failures.
type Client interface {
	// Generate performs a single-shot text completion
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateWithImages performs a completion with supporting images attached
	GenerateWithImages(ctx context.Context, prompt string, imagePaths []string) (string, error)

	// GenerateTags generates a cleaned tag list for a textual description
	GenerateTags(ctx context.Context, description string, max int) ([]string, error)

	// GenerateTagsWithImages generates a cleaned tag list from scene frames plus context
	GenerateTagsWithImages(ctx context.Context, imagePaths []string, sceneContext string, max int) ([]string, error)
}
