package accessibility

import (
	"regexp"
	"strings"
)

var leadingVerbs = regexp.MustCompile(`^(click|press|tap|open|launch|activate|select|choose)\s+`)
var leadingArticles = regexp.MustCompile(`^(the|a|an|on|in|of|to)(\s+|$)`)
var quoted = regexp.MustCompile(`["']([^"']+)["']`)
var trailingPunct = regexp.MustCompile(`[.,!?;:]+$`)

// ExtractTarget derives the label to search for from a natural-language
// command, per §4.4.2: lowercase and collapse whitespace, strip a
// leading action verb and article/preposition, prefer a quoted payload
// verbatim, and strip trailing punctuation. It returns the extracted
// target and a confidence score — 1.0 when the command carried a quoted
// payload, otherwise scaled by how much text remains after stripping.
func ExtractTarget(command string) (string, float64) {
	if m := quoted.FindStringSubmatch(command); m != nil {
		return m[1], 1.0
	}

	normalized := strings.Join(strings.Fields(strings.ToLower(command)), " ")
	stripped := leadingVerbs.ReplaceAllString(normalized, "")
	stripped = leadingArticles.ReplaceAllString(stripped, "")
	stripped = trailingPunct.ReplaceAllString(stripped, "")
	stripped = strings.TrimSpace(stripped)

	if stripped == "" {
		return "", 0
	}

	confidence := float64(len(stripped)) / float64(len(normalized))
	if confidence > 1.0 {
		confidence = 1.0
	}
	return stripped, confidence
}
