package intent

import (
	"regexp"
	"strings"

	"github.com/aura-agent/aura/pkg/types"
)

// confidence tiers the regex classifier assigns by pattern specificity.
const (
	tierWeak     = 0.3
	tierModerate = 0.6
	tierStrong   = 0.9
)

type pattern struct {
	regex      *regexp.Regexp
	intentType types.IntentType
	confidence float64
}

// RegexClassifier is the always-on, sub-millisecond first pass: a fixed
// set of ordered patterns mapping verb phrases to an IntentType. It never
// calls out to a network collaborator and always returns a result.
type RegexClassifier struct {
	patterns []pattern
}

// NewRegexClassifier builds a classifier with the fixed pattern set.
func NewRegexClassifier() *RegexClassifier {
	return &RegexClassifier{patterns: buildRegexPatterns()}
}

// Classify returns the best-matching IntentType and its confidence tier.
// When nothing matches it returns IntentUnknown at the weak tier.
func (c *RegexClassifier) Classify(command string) (types.IntentType, float64) {
	lower := strings.ToLower(command)

	best := types.IntentUnknown
	bestConfidence := tierWeak

	for _, p := range c.patterns {
		if !p.regex.MatchString(lower) {
			continue
		}
		if p.confidence > bestConfidence || (p.confidence == bestConfidence && best == types.IntentUnknown) {
			best = p.intentType
			bestConfidence = p.confidence
		}
	}

	return best, bestConfidence
}

// buildRegexPatterns encodes the ordered verb-phrase patterns from
// strongest (quoted payload, unambiguous verb) to weakest (bare verb).
func buildRegexPatterns() []pattern {
	return []pattern{
		// click / press / tap
		{regexp.MustCompile(`\b(click|press|tap)\s+(on\s+)?((the|a|an)\s+)?["'].+["']`), types.IntentClick, tierStrong},
		{regexp.MustCompile(`\b(click|press|tap)\s+(on\s+)?(the|a|an)\b`), types.IntentClick, tierModerate},
		{regexp.MustCompile(`\b(click|press|tap)\b`), types.IntentClick, tierWeak},

		// type / enter / input / write, with or without a quoted payload
		{regexp.MustCompile(`\b(type|enter|input|write)\s+["'].+["']`), types.IntentText, tierStrong},
		{regexp.MustCompile(`\b(fill|complete|submit)\s+(in|out)?\s*(the|a|an)?\s*(form|field)\b`), types.IntentText, tierStrong},
		{regexp.MustCompile(`\b(type|enter|input|write)\b`), types.IntentText, tierModerate},
		{regexp.MustCompile(`\b(fill|complete|submit)\b`), types.IntentText, tierModerate},

		// scroll
		{regexp.MustCompile(`\b(page\s+up|page\s+down)\b`), types.IntentScroll, tierStrong},
		{regexp.MustCompile(`\bscroll\s+(up|down|left|right)\b`), types.IntentScroll, tierStrong},
		{regexp.MustCompile(`\bscroll\b`), types.IntentScroll, tierModerate},

		// navigate
		{regexp.MustCompile(`\b(go\s+to|navigate\s+to|open)\s+(the\s+)?\S+`), types.IntentNavigate, tierModerate},

		// detailed question markers (checked before the general question
		// patterns so "explain X in detail" still lands on IntentQuestion
		// at the strong tier rather than the moderate one below).
		{regexp.MustCompile(`\b(in\s+detail)\b`), types.IntentQuestion, tierStrong},
		{regexp.MustCompile(`\b(what|where|how|why)\b.*\?`), types.IntentQuestion, tierStrong},
		{regexp.MustCompile(`\b(what|where|how|why|tell\s+me|describe|explain)\b`), types.IntentQuestion, tierModerate},
	}
}
