package generation

import "fmt"

// Prompt builders for the tagging pipeline. Each instructs the model to
// answer in a machine-friendly shape (short prose or one tag per line).

// SummaryPrompt asks for a short summary of a video, optionally grounded
// in extracted frames.
func SummaryPrompt(filename string, duration float64, hasFrames bool) string {
	durationText := "unknown"
	if duration > 0 {
		durationText = fmt.Sprintf("%.0f seconds", duration)
	}

	grounding := "Based on the filename and metadata above"
	if hasFrames {
		grounding = "The attached images are frames extracted at several points in the video. Based on the images and metadata"
	}

	return fmt.Sprintf(`Video filename: %s
Duration: %s

%s, briefly describe what this video is about.
Write 2-3 plain sentences. Do not add headings or commentary.`, filename, durationText, grounding)
}

// TagListPrompt asks for a tag list derived from a description or context block
func TagListPrompt(description string) string {
	return fmt.Sprintf(`Generate 1-10 relevant tags for the following video description.
Write one tag per line with no numbering or symbols.

Description: %s

Tags:`, description)
}

// SceneTagPrompt asks a vision model to tag a single scene from its frames
func SceneTagPrompt(sceneContext string) string {
	return fmt.Sprintf(`The attached images are frames extracted from one scene of a video.

%s

Analyze what is visible in this scene and generate 3-7 relevant tags.
- Tag the objects, people, actions, setting and mood you can see
- Write one tag per line with no numbering or symbols
- Only tag what is actually visible in the images

Tags:`, sceneContext)
}

// SceneFallbackPrompt asks for scene tags without frames, from timing and
// surrounding video context alone.
func SceneFallbackPrompt(sceneContext string) string {
	return fmt.Sprintf(`%s

Based on the scene timing and the video context, generate relevant tags for this specific scene.
Generate 2-5 tags. Write one tag per line with no numbering or symbols.

Tags:`, sceneContext)
}

// VideoTagPrompt asks for general video-level tags from metadata and summary
func VideoTagPrompt(filename, summary string, duration float64) string {
	if summary == "" {
		summary = "none"
	}
	durationText := "unknown"
	if duration > 0 {
		durationText = fmt.Sprintf("%.0f seconds", duration)
	}

	return fmt.Sprintf(`Video filename: %s
Summary: %s
Duration: %s

Based on the information above, generate 3-10 relevant tags for this video.
Write one tag per line with no numbering or symbols.

Tags:`, filename, summary, durationText)
}

// ImageDescriptionPrompt asks a vision model to describe a still image
func ImageDescriptionPrompt(filename string) string {
	return fmt.Sprintf(`Analyze this image and describe its content in 2-3 sentences.
Filename: %s

- Describe the main objects, people, setting and mood
- Write plain sentences without headings or commentary

Description:`, filename)
}

// ImageTagPrompt asks a vision model to tag a still image
func ImageTagPrompt(filename, description string) string {
	descriptionLine := ""
	if description != "" {
		descriptionLine = fmt.Sprintf("Description: %s\n", description)
	}

	return fmt.Sprintf(`Analyze this image and generate 5-15 relevant tags.
Filename: %s
%s
- Tag the objects, people, actions, setting, mood, colors and style you can see
- Write one tag per line with no numbering or symbols
- Only tag what is actually visible in the image

Tags:`, filename, descriptionLine)
}
