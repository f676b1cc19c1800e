// Package contracts defines the narrow capability interfaces the
// orchestrator depends on for everything outside its own process:
// audio/vision perception, the remote reasoning model, OS-level
// automation, and user feedback. Concrete implementations live in
// internal/automation and internal/accessibility; tests inject fakes.
package contracts

import (
	"context"

	"github.com/aura-agent/aura/pkg/types"
)

// Audio captures and transcribes spoken commands. AURA's core treats it
// as an external collaborator — no concrete implementation ships here.
type Audio interface {
	Listen(ctx context.Context) (string, error)
}

// ScreenCapture grabs the current display contents for the vision
// fallback path.
type ScreenCapture interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Vision analyzes a screen capture to locate a described element when the
// accessibility fast path fails to resolve one.
type Vision interface {
	Locate(ctx context.Context, screenshot []byte, target string) (types.Point, float64, error)
}

// Reasoning is the remote language model used for intent recognition's
// LLM-assisted path and for deferred-content generation.
type Reasoning interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Automation executes primitive input-synthesis actions against the
// active desktop session.
type Automation interface {
	Click(ctx context.Context, at types.Point) error
	Type(ctx context.Context, text string) error
	Scroll(ctx context.Context, deltaX, deltaY int) error
	MoveMouse(ctx context.Context, at types.Point) error
}

// MouseListener observes real mouse clicks system-wide and re-enters the
// orchestrator through a bus event rather than a direct callback, since
// the listener runs on a foreign thread.
type MouseListener interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Feedback delivers a message back to the user (spoken, displayed, or
// both — the concrete channel is the caller's choice).
type Feedback interface {
	Say(ctx context.Context, message string) error
}
