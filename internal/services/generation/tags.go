package generation

import (
	"regexp"
	"strings"
)

// maxTagLength is the ceiling on a cleaned tag, in runes. Longer lines are
// almost always prose the model produced around the list, not tags.
const maxTagLength = 30

// enumPrefixRe matches leading enumeration markers: digits, dots, dashes,
// asterisks, bullet glyphs and whitespace ("1. ", "- ", "• " and friends).
var enumPrefixRe = regexp.MustCompile(`^[\d.\-*•\s]+`)

// CleanTagList turns raw model output into a normalized tag list: one tag
// per line, enumeration markers stripped, empties and over-long lines
// dropped, duplicates removed, capped at max. The same cleaning applies to
// text-only and vision-augmented output.
func CleanTagList(raw string, max int) []string {
	if max <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0, max)

	for _, line := range strings.Split(raw, "\n") {
		tag := strings.TrimSpace(enumPrefixRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if tag == "" {
			continue
		}
		if len([]rune(tag)) >= maxTagLength {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == max {
			break
		}
	}

	return tags
}
