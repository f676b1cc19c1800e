package deferred

import (
	"sort"
	"strings"
)

const minSingleLineLength = 50

var pythonCues = []string{"def ", "if ", "elif ", "else:", "for ", "while ", "return ", "import "}

var jsCues = []string{"function ", "if (", "} else {", "for (", "return ", "};"}

// ReformatSingleLineCode re-introduces newlines and indentation into a
// code body the model returned as a single line, when the body exceeds
// minSingleLineLength and a supported language can be detected from its
// syntax cues (§4.3.2). It never invents tokens — content that already
// has newlines, is short, or whose language can't be detected is
// returned unchanged.
func ReformatSingleLineCode(content, language string) string {
	if strings.Contains(content, "\n") || len(content) <= minSingleLineLength {
		return content
	}

	switch strings.ToLower(language) {
	case "python", "py":
		return reformatPython(content)
	case "javascript", "js", "typescript", "ts":
		return reformatJS(content)
	default:
		return content
	}
}

func reformatPython(content string) string {
	segments := splitOnCues(content, pythonCues)
	if segments == nil {
		return content
	}
	var out []string
	indent := 0
	for _, seg := range segments {
		out = append(out, strings.Repeat("    ", indent)+seg)
		switch {
		case strings.HasSuffix(seg, ":"):
			indent++
		case strings.HasPrefix(seg, "return") && indent > 0:
			indent--
		}
	}
	return strings.Join(out, "\n")
}

func reformatJS(content string) string {
	segments := splitOnCues(content, jsCues)
	if segments == nil {
		return content
	}
	var out []string
	indent := 0
	for _, seg := range segments {
		if strings.HasPrefix(seg, "}") && indent > 0 {
			indent--
		}
		out = append(out, strings.Repeat("  ", indent)+seg)
		if strings.HasSuffix(seg, "{") {
			indent++
		}
	}
	return strings.Join(out, "\n")
}

// splitOnCues finds every occurrence of each cue that starts at a word
// boundary and splits content into trimmed segments at those points. It
// returns nil if no cue was found, signalling the caller to leave
// content untouched.
func splitOnCues(content string, cues []string) []string {
	var positions []int
	for _, cue := range cues {
		start := 0
		for {
			i := strings.Index(content[start:], cue)
			if i < 0 {
				break
			}
			pos := start + i
			if pos == 0 || content[pos-1] == ' ' || content[pos-1] == ';' || content[pos-1] == '{' {
				positions = append(positions, pos)
			}
			start = pos + len(cue)
		}
	}
	if len(positions) == 0 {
		return nil
	}
	sort.Ints(positions)

	var segments []string
	prev := 0
	for _, p := range positions {
		if p > prev {
			if seg := strings.TrimSpace(content[prev:p]); seg != "" {
				segments = append(segments, seg)
			}
		}
		prev = p
	}
	if tail := strings.TrimSpace(content[prev:]); tail != "" {
		segments = append(segments, tail)
	}
	return segments
}
