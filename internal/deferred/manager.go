// Package deferred implements AURA's deferred-action subsystem (§4.3):
// content the user asked for is generated up front, announced, and then
// placed wherever they next click — all while staying interruptible by a
// new command.
package deferred

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aura-agent/aura/internal/bus"
	"github.com/aura-agent/aura/internal/config"
	"github.com/aura-agent/aura/pkg/contracts"
	"github.com/aura-agent/aura/pkg/types"
)

var (
	ErrLockTimeout   = errors.New("deferred: lock acquisition timed out")
	ErrAlreadyActive = errors.New("deferred: an action is already in flight")
)

const (
	typeBudgetFast = 15 * time.Second
	typeBudgetSlow = 30 * time.Second
)

// Manager owns the singleton deferred-action state machine
// (Idle → Generating → Announced → Waiting → Placing) and the click
// re-entry path that drives Waiting → Placing.
type Manager struct {
	reasoning  contracts.Reasoning
	automation contracts.Automation
	feedback   contracts.Feedback
	listener   contracts.MouseListener
	events     *bus.Bus

	// lockCh implements the deferred_lock named in spec §5: a
	// timeout-aware mutex guarding state and executing, acquired in
	// strict ordering after execution_lock and before intent_lock.
	lockCh      chan struct{}
	lockTimeout time.Duration

	actionTimeout time.Duration

	state     types.DeferredActionState
	executing bool

	// mu guards cancelTimeout only — it is not part of the deferred_lock
	// because the timeout goroutine must be able to cancel itself
	// without contending for state.
	mu            sync.Mutex
	cancelTimeout context.CancelFunc

	subID bus.SubscriptionID
}

// New builds a Manager and subscribes it to mouse-click events on the
// bus. listener is started only while a deferred action is Waiting.
func New(cfg *config.Config, reasoning contracts.Reasoning, automation contracts.Automation, feedback contracts.Feedback, listener contracts.MouseListener, events *bus.Bus) *Manager {
	m := &Manager{
		reasoning:     reasoning,
		automation:    automation,
		feedback:      feedback,
		listener:      listener,
		events:        events,
		lockCh:        make(chan struct{}, 1),
		lockTimeout:   cfg.DeferredLockTimeout(),
		actionTimeout: time.Duration(cfg.Deferred.ActionTimeoutMS) * time.Millisecond,
		state:         types.DeferredActionState{Phase: types.DeferredIdle},
	}
	m.lockCh <- struct{}{}
	if events != nil {
		m.subID = events.Subscribe(bus.EventMouseClickObserved, m.onMouseClick)
	}
	return m
}

// State returns a snapshot of the current deferred-action state.
func (m *Manager) State() types.DeferredActionState {
	if err := acquire(context.Background(), m.lockCh, m.lockTimeout); err != nil {
		return types.DeferredActionState{Phase: types.DeferredIdle}
	}
	defer release(m.lockCh)
	return m.state
}

// StartRequest generates content for command via Reasoning, cleans and
// (for single-line code) reformats it, announces readiness, and starts
// waiting for a placement click. language and contentType ("code" or
// "text") drive the single-line reformatter.
func (m *Manager) StartRequest(ctx context.Context, command, language, contentType string) error {
	if err := acquire(ctx, m.lockCh, m.lockTimeout); err != nil {
		return err
	}
	if m.state.Phase != types.DeferredIdle {
		release(m.lockCh)
		return ErrAlreadyActive
	}
	m.state = types.DeferredActionState{Phase: types.DeferredGenerating}
	release(m.lockCh)
	m.publish(types.DeferredGenerating)

	raw, err := m.reasoning.Complete(ctx, command)
	if err != nil {
		m.abandon("failure")
		return fmt.Errorf("deferred: generating content: %w", err)
	}

	cleaned := Clean(raw)
	if contentType == "code" {
		cleaned = ReformatSingleLineCode(cleaned, language)
	}

	if err := acquire(ctx, m.lockCh, m.lockTimeout); err != nil {
		return err
	}
	m.state.Phase = types.DeferredAnnounced
	m.state.Content = cleaned
	m.state.Language = language
	m.state.GeneratedAt = time.Now()
	release(m.lockCh)
	m.publish(types.DeferredAnnounced)

	if err := m.feedback.Say(ctx, "Ready. Click where you'd like this placed."); err != nil {
		m.abandon("failure")
		return fmt.Errorf("deferred: announcing: %w", err)
	}

	if err := m.listener.Start(ctx); err != nil {
		m.abandon("failure")
		return fmt.Errorf("deferred: starting mouse listener: %w", err)
	}

	if err := acquire(ctx, m.lockCh, m.lockTimeout); err != nil {
		return err
	}
	m.state.Phase = types.DeferredWaiting
	m.state.AnnouncedAt = time.Now()
	release(m.lockCh)
	m.publish(types.DeferredWaiting)

	m.startTimeout()
	return nil
}

// Interrupt cancels a Waiting deferred action, e.g. because a new
// command arrived. It is a no-op outside the Waiting phase.
func (m *Manager) Interrupt(ctx context.Context) {
	m.cancelWaiting(ctx, "cancelled")
}

func (m *Manager) startTimeout() {
	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.cancelTimeout = cancel
	m.mu.Unlock()

	go func() {
		select {
		case <-time.After(m.actionTimeout):
			m.cancelWaiting(context.Background(), "timed_out")
		case <-ctx.Done():
		}
	}()
}

func (m *Manager) stopTimeout() {
	m.mu.Lock()
	cancel := m.cancelTimeout
	m.cancelTimeout = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// cancelWaiting moves a Waiting action back to Idle, stopping the
// listener and timer and emitting feedback. Only Waiting is affected —
// calling this outside Waiting (a timeout firing after a click already
// claimed the action, for instance) is a safe no-op.
func (m *Manager) cancelWaiting(ctx context.Context, reason string) {
	if err := acquire(ctx, m.lockCh, m.lockTimeout); err != nil {
		return
	}
	if m.state.Phase != types.DeferredWaiting {
		release(m.lockCh)
		return
	}
	m.state = types.DeferredActionState{Phase: types.DeferredIdle}
	release(m.lockCh)

	m.stopTimeout()
	_ = m.listener.Stop(ctx)
	m.publish(types.DeferredIdle)
	_ = m.feedback.Say(ctx, feedbackMessage(reason))
}

// abandon resets Generating/Announced back to Idle on a hard failure
// before the Waiting phase (and therefore before the listener or timer
// have started).
func (m *Manager) abandon(reason string) {
	_ = acquire(context.Background(), m.lockCh, m.lockTimeout)
	m.state = types.DeferredActionState{Phase: types.DeferredIdle}
	release(m.lockCh)
	m.publish(types.DeferredIdle)
	_ = m.feedback.Say(context.Background(), feedbackMessage(reason))
}

// onMouseClick is the trigger path (§4.3, steps 1-8): acquire the
// deferred_lock, guard against duplicate click delivery, stop the
// listener before doing anything else so a second physical click can't
// re-enter mid-placement, then click and type at the observed point.
func (m *Manager) onMouseClick(event bus.Event) {
	ctx := context.Background()

	if err := acquire(ctx, m.lockCh, m.lockTimeout); err != nil {
		return
	}
	if m.executing || m.state.Phase != types.DeferredWaiting {
		release(m.lockCh)
		return
	}
	m.executing = true
	m.state.Phase = types.DeferredPlacing
	content := m.state.Content
	release(m.lockCh)
	m.publish(types.DeferredPlacing)

	defer func() {
		_ = acquire(context.Background(), m.lockCh, m.lockTimeout)
		m.state = types.DeferredActionState{Phase: types.DeferredIdle}
		m.executing = false
		release(m.lockCh)
		m.publish(types.DeferredIdle)
	}()

	m.stopTimeout()
	_ = m.listener.Stop(ctx)

	at := types.Point{X: event.PointX, Y: event.PointY}
	typeCtx, cancel := context.WithTimeout(ctx, typeBudgetSlow)
	defer cancel()

	err := m.automation.Click(typeCtx, at)
	if err == nil {
		err = m.automation.Type(typeCtx, content)
	}
	if err != nil {
		_ = m.feedback.Say(ctx, feedbackMessage("failure"))
		return
	}
	_ = m.feedback.Say(ctx, "Done.")
}

func (m *Manager) publish(phase types.DeferredPhase) {
	if m.events != nil {
		m.events.Publish(bus.DeferredStateChanged(string(phase)))
	}
}

func feedbackMessage(reason string) string {
	switch reason {
	case "timed_out":
		return "I didn't see a click in time, so I've dropped that."
	case "cancelled":
		return "Cancelled."
	default:
		return "That didn't go through."
	}
}

func acquire(ctx context.Context, lockCh chan struct{}, timeout time.Duration) error {
	select {
	case <-lockCh:
		return nil
	case <-time.After(timeout):
		return ErrLockTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func release(lockCh chan struct{}) {
	lockCh <- struct{}{}
}
