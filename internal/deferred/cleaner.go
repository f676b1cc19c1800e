package deferred

import (
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n?(.*?)\n?```")

var boilerplatePrefixes = []string{
	"here is", "here's", "sure,", "sure!", "certainly,", "certainly!",
	"of course,", "absolutely,", "okay, here is", "below is",
}

var boilerplateSuffixes = []string{
	"let me know if you need anything else.",
	"i hope this helps.",
	"hope that helps!",
}

// Clean strips Markdown code fences and leading/trailing boilerplate
// phrases from generated content. Interior newlines and indentation are
// preserved exactly — only whole leading/trailing lines are removed
// (§4.3.1).
func Clean(content string) string {
	if m := fencedBlock.FindStringSubmatch(content); m != nil {
		content = m[1]
	}
	content = stripBoilerplatePrefix(content)
	content = stripBoilerplateSuffix(content)
	return content
}

func stripBoilerplatePrefix(content string) string {
	lines := strings.SplitN(content, "\n", 2)
	first := strings.ToLower(strings.TrimSpace(lines[0]))
	for _, p := range boilerplatePrefixes {
		if strings.HasPrefix(first, p) {
			if len(lines) == 2 {
				return strings.TrimLeft(lines[1], "\n")
			}
			return ""
		}
	}
	return content
}

func stripBoilerplateSuffix(content string) string {
	trimmed := strings.TrimRight(content, "\n")
	idx := strings.LastIndex(trimmed, "\n")
	last := trimmed
	if idx >= 0 {
		last = trimmed[idx+1:]
	}
	lowerLast := strings.ToLower(strings.TrimSpace(last))
	for _, s := range boilerplateSuffixes {
		if lowerLast == s {
			if idx >= 0 {
				return trimmed[:idx]
			}
			return ""
		}
	}
	return content
}
