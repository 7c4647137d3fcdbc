package tags

import "regexp"

// hashtag bodies may use letters of any script, digits and underscores
var hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ParseHashtags extracts the distinct #hashtag names from free text,
// in order of first appearance and without the leading '#'.
func ParseHashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}
