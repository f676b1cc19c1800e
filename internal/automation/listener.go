package automation

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"

	"github.com/aura-agent/aura/pkg/types"
)

// PositionFunc returns the current global cursor position.
type PositionFunc func(ctx context.Context) (types.Point, error)

const (
	defaultPollInterval = 20 * time.Millisecond
	defaultDebounce     = 50 * time.Millisecond
)

// MouseListener runs on its own background worker (per spec §5) and
// reports a click exactly once per physical click, de-duplicating
// bursts under the debounce window. Since System Events exposes no raw
// button-state event, a click is approximated as the cursor coming to
// rest after motion — the only signal a position-only poller can
// observe without a native event tap.
type MouseListener struct {
	position PositionFunc
	onClick  func(types.Point)
	interval time.Duration
	debounce time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMouseListener builds a listener backed by cliclick's position
// query. onClick is invoked from the listener's own goroutine — callers
// that need to re-enter the orchestrator must hand off onto the bus
// rather than block here.
func NewMouseListener(onClick func(types.Point)) *MouseListener {
	return &MouseListener{
		position: cliclickPosition,
		onClick:  onClick,
		interval: defaultPollInterval,
		debounce: defaultDebounce,
	}
}

// Start begins polling. It returns an error if the listener is already
// running.
func (l *MouseListener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return errors.New("mouse listener already started")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(loopCtx, l.done)
	return nil
}

// Stop halts the polling goroutine and waits for it to exit, or for ctx
// to expire. Stopping an already-stopped listener is a no-op — this
// matters for the deferred-action trigger path, which stops the
// listener before clearing state to prevent a late click from
// re-entering (§5 cancellation rule).
func (l *MouseListener) Stop(ctx context.Context) error {
	l.mu.Lock()
	cancel := l.cancel
	done := l.done
	l.cancel = nil
	l.done = nil
	l.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *MouseListener) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var last types.Point
	var movedAt time.Time
	var have, settled bool

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p, err := l.position(ctx)
			if err != nil {
				continue
			}

			if !have {
				last, movedAt, have = p, time.Now(), true
				continue
			}

			if p != last {
				last, movedAt, settled = p, time.Now(), false
				continue
			}

			if !settled && time.Since(movedAt) >= l.debounce {
				settled = true
				l.onClick(p)
			}
		}
	}
}

func cliclickPosition(ctx context.Context) (types.Point, error) {
	out, err := exec.CommandContext(ctx, "cliclick", "p").CombinedOutput()
	if err != nil {
		return types.Point{}, errors.New("cliclick position query failed: " + err.Error())
	}
	return parsePosition(string(out))
}
