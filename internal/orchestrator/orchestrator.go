// Package orchestrator implements AURA's command pipeline and state
// machine (§4.1): the single entry point that owns execution_lock
// (deferred_lock and intent_lock live in internal/deferred and
// internal/intent), routes a recognized Intent to its handler, and
// reports system health.
package orchestrator

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aura-agent/aura/internal/bus"
	auraerrors "github.com/aura-agent/aura/internal/errors"
	"github.com/aura-agent/aura/internal/handlers"
	"github.com/aura-agent/aura/internal/intent"
	"github.com/aura-agent/aura/internal/logging"
	"github.com/aura-agent/aura/internal/metrics"
	"github.com/aura-agent/aura/pkg/contracts"
	"github.com/aura-agent/aura/pkg/types"
)

// ErrExecutionLockTimeout is returned when execution_lock can't be
// acquired within its configured budget (spec §4.1 step 1).
var ErrExecutionLockTimeout = errors.New("orchestrator: execution_lock timed out")

// Handlers bundles the per-intent dispatch targets the orchestrator
// routes to. Every field is required except Question, which may be nil
// to route every IntentQuestion command through Conversation.
type Handlers struct {
	GUI          *handlers.GUIHandler
	Conversation *handlers.ConversationHandler
	Question     *handlers.QuestionHandler
	Deferred     *handlers.DeferredHandler
}

// Orchestrator is the explicit struct owning its lock, handlers, and
// recognizer (spec §9's "explicit struct owning its locks, caches, and
// handler references" in place of global mutable state).
type Orchestrator struct {
	logger   *logging.Logger
	feedback contracts.Feedback

	recognizer *intent.Recognizer
	handlers   Handlers
	events     *bus.Bus

	executionLockCh      chan struct{}
	executionLockTimeout time.Duration

	reinit  *moduleGuards
	monitor *metrics.Monitor
}

// New builds an Orchestrator. feedback is used only for failures a
// handler didn't already announce itself (deferred-action failures are
// announced internally by internal/deferred). events may be nil, in
// which case command lifecycle events are simply not published —
// internal/metrics' rolling buffer then has nothing to subscribe to.
func New(executionLockTimeout time.Duration, logger *logging.Logger, feedback contracts.Feedback, recognizer *intent.Recognizer, events *bus.Bus, h Handlers) *Orchestrator {
	o := &Orchestrator{
		logger:               logger,
		feedback:             feedback,
		recognizer:           recognizer,
		handlers:             h,
		events:               events,
		executionLockCh:      make(chan struct{}, 1),
		executionLockTimeout: executionLockTimeout,
		reinit:               newModuleGuards(),
	}
	o.executionLockCh <- struct{}{}
	return o
}

// ExecuteCommand runs the full pipeline (§4.1 steps 0-5) for text.
func (o *Orchestrator) ExecuteCommand(ctx context.Context, text string) types.Result {
	start := time.Now()

	// Step 0: interruption check. Pre-empt any in-flight deferred action
	// before this command can start its own.
	o.preempt(ctx)

	// Step 1: execution_lock.
	if err := acquire(ctx, o.executionLockCh, o.executionLockTimeout); err != nil {
		o.logger.Warn("execution_lock timed out acquiring for command")
		return types.Result{Status: types.StatusFailed, Reason: "execution_lock_timeout", Duration: time.Since(start)}
	}
	executionID := uuid.NewString()
	released := false
	release := func() {
		if !released {
			released = true
			o.executionLockCh <- struct{}{}
		}
	}
	defer release()

	// Step 2: validation and preprocessing.
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return types.Result{ExecutionID: executionID, Status: types.StatusFailed, Reason: "empty_command", Duration: time.Since(start)}
	}

	o.publish(bus.CommandStarted(executionID))

	// Step 3: intent recognition (internal lock/fallback handled by
	// internal/intent.Recognizer itself).
	recognized := o.recognizer.Recognize(ctx, trimmed)

	// Step 4: routing.
	handler, chosenIntent, module := o.route(recognized, trimmed)

	status, pathUsed, reason, handlerErr := handler.Handle(ctx, chosenIntent, trimmed)

	// Step 5: finalization.
	if status == types.StatusWaitingForUser {
		release()
	}

	duration := time.Since(start)

	if handlerErr != nil {
		o.reinit.recordFailure(module, auraerrors.CategoryOf(handlerErr))
		o.reportFailure(executionID, chosenIntent, handlerErr, reason)
	} else {
		o.reinit.recordSuccess(module)
	}
	o.publish(bus.CommandCompleted(executionID, module, duration, handlerErr == nil, handlerErr))

	return types.Result{
		ExecutionID: executionID,
		Status:      status,
		PathUsed:    pathUsed,
		Reason:      reason,
		Duration:    duration,
	}
}

// publish sends event to the bus if one was configured. Publish hands
// delivery off to the bus's own goroutine (§9), so this never blocks on
// a subscriber (internal/metrics, the debug WebSocket observer).
func (o *Orchestrator) publish(event bus.Event) {
	if o.events == nil {
		return
	}
	_ = o.events.Publish(event)
}

// preempt cancels an in-flight deferred action within a bounded budget,
// matching spec §4.1 step 0's 5s deferred_lock acquisition timeout. It
// never blocks the pipeline beyond that budget.
func (o *Orchestrator) preempt(ctx context.Context) {
	preemptCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	o.handlers.Deferred.Interrupt(preemptCtx)
}

// questionMarker distinguishes a direct question (routed to the
// Question handler's concise-answer prompt) from casual chat folded
// into the same IntentQuestion category by the recognizer (routed to
// Conversation). This split has no analog in the recognizer's output —
// types.IntentQuestion covers both spec.md categories — so it is
// re-derived here from surface form.
var questionMarker = regexp.MustCompile(`(?i)\?\s*$|^(what|where|when|who|why|how)\b`)

// route resolves a recognized Intent to its handler and the module name
// used for health-scoring. Unknown or low-confidence intents fall
// through to the GUI handler per spec §4.1 step 4's safe-default rule.
func (o *Orchestrator) route(recognized types.Intent, command string) (handlers.Handler, types.Intent, string) {
	switch recognized.Type {
	case types.IntentDeferred:
		return o.handlers.Deferred, recognized, "deferred"
	case types.IntentQuestion:
		if o.handlers.Question != nil && questionMarker.MatchString(command) {
			return o.handlers.Question, recognized, "question"
		}
		return o.handlers.Conversation, recognized, "conversation"
	default:
		return o.handlers.GUI, recognized, "gui"
	}
}

// reportFailure classifies handlerErr and surfaces it via Feedback and a
// structured log record (spec §7's "user-visible behavior"). Deferred
// failures are announced internally by internal/deferred already, so
// they're logged but not spoken here to avoid double feedback.
func (o *Orchestrator) reportFailure(executionID string, failedIntent types.Intent, handlerErr error, reason string) {
	category := auraerrors.CategoryOf(handlerErr)
	action := auraerrors.ActionFor(category)

	o.logger.WithFields(map[string]interface{}{
		"execution_id": executionID,
		"category":     string(category),
		"action":       string(action),
		"reason":       reason,
	}).Error("command failed: %v", handlerErr)

	if failedIntent.Type == types.IntentDeferred {
		return
	}
	_ = o.feedback.Say(context.Background(), "Sorry, that didn't work.")
}

func acquire(ctx context.Context, lockCh chan struct{}, timeout time.Duration) error {
	select {
	case <-lockCh:
		return nil
	case <-time.After(timeout):
		return ErrExecutionLockTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
