package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aura-agent/aura/internal/cache"
	"github.com/aura-agent/aura/pkg/contracts"
	"github.com/aura-agent/aura/pkg/types"
)

// llmCategory is one of the four buckets the reasoning model is asked to
// choose between. It is intentionally coarser than types.IntentType —
// the regex classifier supplies the finer click/type/scroll/navigate
// split when the category is gui_interaction.
type llmCategory string

const (
	categoryGUIInteraction llmCategory = "gui_interaction"
	categoryConversational llmCategory = "conversational_chat"
	categoryDeferredAction llmCategory = "deferred_action"
	categoryQuestionAnswer llmCategory = "question_answering"
)

// classificationPrompt is the fixed template sent to the Reasoning
// collaborator. It asks for the bare JSON schema this package parses.
const classificationPrompt = `Classify the following command into exactly one category:
- gui_interaction: clicking, typing, scrolling, or navigating the screen
- conversational_chat: casual conversation with no screen action
- deferred_action: a request to generate content for later placement (e.g. write code, draft a reply)
- question_answering: a direct factual or explanatory question

Respond with ONLY a JSON object of the form:
{"intent": "<category>", "confidence": <0-1 float>, "parameters": {}, "reasoning": "<short reason>"}

Command: %s`

// llmResponse is the schema the Reasoning collaborator must return.
// Any decode failure or unrecognized intent field is a schema violation.
type llmResponse struct {
	Intent     string                 `json:"intent"`
	Confidence float64                `json:"confidence"`
	Parameters map[string]interface{} `json:"parameters"`
	Reasoning  string                 `json:"reasoning"`
}

func (r llmResponse) valid() bool {
	switch llmCategory(r.Intent) {
	case categoryGUIInteraction, categoryConversational, categoryDeferredAction, categoryQuestionAnswer:
		return true
	default:
		return false
	}
}

// LLMRecognizer asks a Reasoning collaborator to classify a command into
// one of four coarse categories, serializing calls through intent_lock so
// concurrent commands share the normalized-command cache and whatever
// rate budget the collaborator enforces.
type LLMRecognizer struct {
	reasoning   contracts.Reasoning
	lockTimeout time.Duration
	budget      time.Duration
	cache       *cache.TTLCache[string, llmResponse]
	cacheOn     bool

	lockCh chan struct{} // 1-buffered channel acting as a timeout-aware mutex
}

// NewLLMRecognizer builds a recognizer bounded by lockTimeout (time
// allowed to acquire intent_lock) and budget (overall call budget,
// including the lock wait). cacheTTL of zero disables result caching.
func NewLLMRecognizer(reasoning contracts.Reasoning, lockTimeout, budget, cacheTTL time.Duration) *LLMRecognizer {
	r := &LLMRecognizer{
		reasoning:   reasoning,
		lockTimeout: lockTimeout,
		budget:      budget,
		lockCh:      make(chan struct{}, 1),
	}
	r.lockCh <- struct{}{}
	if cacheTTL > 0 {
		r.cache = cache.New[string, llmResponse](256, cacheTTL)
		r.cacheOn = true
	}
	return r
}

// Recognize classifies command, returning (intent, true) on success. It
// returns (fallback, false) whenever the lock can't be acquired in time,
// the overall budget is exceeded, the collaborator errors, or the
// response fails schema validation — every one of those is a signal to
// the caller to fall back to the regex classifier.
func (r *LLMRecognizer) Recognize(ctx context.Context, command string) (types.Intent, bool) {
	deadline := time.Now().Add(r.budget)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	normalized := strings.ToLower(strings.TrimSpace(command))

	if r.cacheOn {
		if resp, ok := r.cache.Get(normalized); ok {
			return toIntent(resp, command), true
		}
	}

	select {
	case <-r.lockCh:
		defer func() { r.lockCh <- struct{}{} }()
	case <-time.After(r.lockTimeout):
		return types.Intent{}, false
	case <-ctx.Done():
		return types.Intent{}, false
	}

	raw, err := r.reasoning.Complete(ctx, fmt.Sprintf(classificationPrompt, command))
	if err != nil {
		return types.Intent{}, false
	}

	var resp llmResponse
	if jsonErr := json.Unmarshal([]byte(strings.TrimSpace(raw)), &resp); jsonErr != nil || !resp.valid() {
		return types.Intent{}, false
	}

	if r.cacheOn {
		r.cache.Set(normalized, resp)
	}

	return toIntent(resp, command), true
}

func toIntent(resp llmResponse, command string) types.Intent {
	return types.Intent{
		Type:       categoryToIntentType(llmCategory(resp.Intent), command),
		Target:     command,
		Confidence: resp.Confidence,
		Path:       types.PathLLM,
	}
}

// guiVerbClassifier backs categoryToIntentType's gui_interaction case.
// RegexClassifier holds nothing but compiled patterns, so one instance
// is shared across every LLMRecognizer rather than rebuilt per call.
var guiVerbClassifier = NewRegexClassifier()

// categoryToIntentType resolves the coarse LLM category into a concrete
// IntentType. gui_interaction defers to the regex classifier's verb
// detection since the LLM schema carries no finer action field.
func categoryToIntentType(c llmCategory, command string) types.IntentType {
	switch c {
	case categoryGUIInteraction:
		t, _ := guiVerbClassifier.Classify(command)
		if t == types.IntentUnknown {
			return types.IntentClick
		}
		return t
	case categoryConversational:
		return types.IntentQuestion
	case categoryDeferredAction:
		return types.IntentDeferred
	case categoryQuestionAnswer:
		return types.IntentQuestion
	default:
		return types.IntentUnknown
	}
}
