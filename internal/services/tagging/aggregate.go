package tagging

import (
	"fmt"
	"sort"
)

// promoteTags counts tag-name frequency across a video's scenes and picks
// the names worth promoting to the video level. The promotion threshold is
// 1 for videos with at most two scenes and 2 otherwise, so a tag must
// recur before it is treated as representative of the whole video. Ties
// are broken by first appearance across the scene loop.
func promoteTags(sceneTags [][]string, maxTags int) []string {
	if len(sceneTags) == 0 || maxTags <= 0 {
		return nil
	}

	threshold := 2
	if len(sceneTags) <= 2 {
		threshold = 1
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, tags := range sceneTags {
		for _, name := range tags {
			if counts[name] == 0 {
				order = append(order, name)
			}
			counts[name]++
		}
	}

	firstSeen := make(map[string]int, len(order))
	for i, name := range order {
		firstSeen[name] = i
	}

	candidates := make([]string, 0, len(order))
	for _, name := range order {
		if counts[name] >= threshold {
			candidates = append(candidates, name)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if counts[candidates[i]] != counts[candidates[j]] {
			return counts[candidates[i]] > counts[candidates[j]]
		}
		return firstSeen[candidates[i]] < firstSeen[candidates[j]]
	})

	if len(candidates) > maxTags {
		candidates = candidates[:maxTags]
	}
	return candidates
}

// positionLabel names where a scene sits inside its video. "early" covers
// the first ten seconds, "late" the final 30% of the runtime.
func positionLabel(startTime, duration float64) string {
	if startTime < 10 {
		return "early"
	}
	if duration > 0 && startTime >= 0.7*duration {
		return "late"
	}
	return "middle"
}

// sceneContext builds the textual context handed to the generation
// service when tagging a single scene
func sceneContext(filename, summary string, index, total int, start, end, duration float64) string {
	context := fmt.Sprintf("Video file: %s\nScene %d of %d, from %.1fs to %.1fs (%s part of the video).",
		filename, index, total, start, end, positionLabel(start, duration))
	if summary != "" {
		context += fmt.Sprintf("\nVideo summary: %s", summary)
	}
	return context
}
