package automation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aura-agent/aura/pkg/types"
)

func TestMouseListenerEmitsClickAfterSettle(t *testing.T) {
	var mu sync.Mutex
	positions := []types.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 2}}
	idx := 0

	var clicks []types.Point
	l := &MouseListener{
		position: func(ctx context.Context) (types.Point, error) {
			mu.Lock()
			defer mu.Unlock()
			p := positions[idx]
			if idx < len(positions)-1 {
				idx++
			}
			return p, nil
		},
		onClick: func(p types.Point) {
			mu.Lock()
			clicks = append(clicks, p)
			mu.Unlock()
		},
		interval: time.Millisecond,
		debounce: 5 * time.Millisecond,
	}

	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Stop(stopCtx); err != nil {
		t.Fatalf("unexpected error stopping: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(clicks) == 0 {
		t.Fatal("expected at least one debounced click")
	}
	if clicks[0] != (types.Point{X: 2, Y: 2}) {
		t.Errorf("expected click at settled position, got %+v", clicks[0])
	}
}

func TestMouseListenerDoubleStartRejected(t *testing.T) {
	l := NewMouseListener(func(types.Point) {})
	l.position = func(ctx context.Context) (types.Point, error) { return types.Point{}, nil }

	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer l.Stop(context.Background())

	if err := l.Start(context.Background()); err == nil {
		t.Error("expected an error starting an already-running listener")
	}
}

func TestMouseListenerStopIsIdempotent(t *testing.T) {
	l := NewMouseListener(func(types.Point) {})
	l.position = func(ctx context.Context) (types.Point, error) { return types.Point{}, nil }

	if err := l.Stop(context.Background()); err != nil {
		t.Errorf("expected stopping an unstarted listener to be a no-op, got %v", err)
	}
}
