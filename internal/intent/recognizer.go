// Package intent implements AURA's two-tier command classification: an
// always-on regex classifier and an optional LLM-assisted recognizer,
// combined by a confidence-threshold routing rule.
package intent

import (
	"context"
	"time"

	"github.com/aura-agent/aura/internal/config"
	"github.com/aura-agent/aura/pkg/contracts"
	"github.com/aura-agent/aura/pkg/types"
)

const cacheTTL = 300 * time.Second

// Recognizer resolves a command's Intent by trying the LLM-assisted path
// first and falling back to the regex classifier whenever the LLM is
// unavailable, times out, or reports confidence below threshold.
type Recognizer struct {
	regex     *RegexClassifier
	llm       *LLMRecognizer
	threshold float64
}

// New builds a Recognizer from cfg. reasoning may be nil, in which case
// every command is classified by the regex path alone.
func New(cfg config.IntentConfig, reasoning contracts.Reasoning) *Recognizer {
	r := &Recognizer{
		regex:     NewRegexClassifier(),
		threshold: cfg.ConfidenceThreshold,
	}
	if reasoning != nil {
		budget := time.Duration(cfg.RecognitionTimeoutMS) * time.Millisecond
		r.llm = NewLLMRecognizer(reasoning, 10*time.Second, budget, cacheTTL)
	}
	return r
}

// Recognize applies the §4.5 routing rule: use the LLM's intent when its
// confidence meets threshold, otherwise use the regex classifier's
// result, which always succeeds (worst case IntentUnknown).
func (r *Recognizer) Recognize(ctx context.Context, command string) types.Intent {
	regexType, regexConfidence := r.regex.Classify(command)
	regexIntent := types.Intent{
		Type:       regexType,
		Target:     command,
		Confidence: regexConfidence,
		Path:       types.PathRegex,
	}

	if r.llm == nil {
		return regexIntent
	}

	llmIntent, ok := r.llm.Recognize(ctx, command)
	if !ok || llmIntent.Confidence < r.threshold {
		return regexIntent
	}
	return llmIntent
}
