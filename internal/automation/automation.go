// Package automation implements AURA's concrete macOS Automation and
// MouseListener collaborators: input synthesis via osascript/System
// Events and cliclick, and a polling-based global click observer.
package automation

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/aura-agent/aura/pkg/types"
)

// Key codes for the arrow keys, used to approximate scrolling — System
// Events has no scroll-wheel event synthesis reachable from osascript.
const (
	keyCodeUp     = 126
	keyCodeDown   = 125
	keyCodeLeft   = 123
	keyCodeRight  = 124
	keyCodeReturn = 36
)

// maxSpokenChars bounds how much text a single Say call will hand to the
// say binary.
const maxSpokenChars = 2000

// OSAAutomation drives System Events via osascript for keyboard input,
// cliclick for mouse positioning, and the say binary for speech,
// covering the input and feedback primitives AppleScript can't
// synthesize directly.
type OSAAutomation struct {
	runOsascript func(ctx context.Context, script string) (string, error)
	runCliclick  func(ctx context.Context, args ...string) (string, error)
	runSay       func(ctx context.Context, text string) error
}

// NewOSAAutomation builds an Automation backed by the real osascript and
// cliclick binaries.
func NewOSAAutomation() *OSAAutomation {
	return &OSAAutomation{runOsascript: runOsascript, runCliclick: runCliclick, runSay: runSay}
}

// Say speaks message through the system `say` binary, implementing
// contracts.Feedback for the conversation and question handlers.
func (a *OSAAutomation) Say(ctx context.Context, message string) error {
	if message == "" {
		return fmt.Errorf("say: text to speak is required")
	}
	if len(message) > maxSpokenChars {
		return fmt.Errorf("say: text too long for speech (max %d chars)", maxSpokenChars)
	}
	return a.runSay(ctx, message)
}

// Click synthesizes a mouse click at the given point via cliclick, since
// System Events has no bare "click at coordinates" AppleScript command.
func (a *OSAAutomation) Click(ctx context.Context, at types.Point) error {
	_, err := a.runCliclick(ctx, fmt.Sprintf("c:%d,%d", int(at.X), int(at.Y)))
	if err != nil {
		return fmt.Errorf("click at %v: %w", at, err)
	}
	return nil
}

// MoveMouse repositions the cursor without clicking, via cliclick.
func (a *OSAAutomation) MoveMouse(ctx context.Context, at types.Point) error {
	_, err := a.runCliclick(ctx, fmt.Sprintf("m:%d,%d", int(at.X), int(at.Y)))
	if err != nil {
		return fmt.Errorf("move mouse to %v: %w", at, err)
	}
	return nil
}

// Type implements the per-line typing transport of §4.3: it splits text
// on newlines, issues one keystroke per line plus a Return keystroke
// between lines, and aborts as soon as ctx's deadline — the caller's 15s
// (fast) / 30s (slow) budget — is exceeded.
func (a *OSAAutomation) Type(ctx context.Context, text string) error {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		select {
		case <-ctx.Done():
			return fmt.Errorf("typing budget exceeded after %d of %d lines: %w", i, len(lines), ctx.Err())
		default:
		}

		script := fmt.Sprintf(`tell application "System Events" to keystroke %s`, quoteAppleScript(line))
		if _, err := a.runOsascript(ctx, script); err != nil {
			return fmt.Errorf("type line %d: %w", i, err)
		}

		if i < len(lines)-1 {
			if _, err := a.runOsascript(ctx, fmt.Sprintf(`tell application "System Events" to key code %d`, keyCodeReturn)); err != nil {
				return fmt.Errorf("return keystroke after line %d: %w", i, err)
			}
		}
	}
	return nil
}

// Scroll approximates a scroll gesture with repeated arrow-key presses,
// since AppleScript cannot synthesize a scroll-wheel event. Diagonal
// requests scroll vertically only; the horizontal component is ignored.
func (a *OSAAutomation) Scroll(ctx context.Context, deltaX, deltaY int) error {
	keyCode, count := scrollKey(deltaX, deltaY)
	if count == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := a.runOsascript(ctx, fmt.Sprintf(`tell application "System Events" to key code %d`, keyCode)); err != nil {
			return fmt.Errorf("scroll step %d: %w", i, err)
		}
	}
	return nil
}

func scrollKey(deltaX, deltaY int) (int, int) {
	switch {
	case deltaY < 0:
		return keyCodeUp, -deltaY
	case deltaY > 0:
		return keyCodeDown, deltaY
	case deltaX < 0:
		return keyCodeLeft, -deltaX
	case deltaX > 0:
		return keyCodeRight, deltaX
	default:
		return 0, 0
	}
}

func quoteAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func runOsascript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("osascript: %w: %s", err, output)
	}
	return output, nil
}

func runCliclick(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "cliclick", args...).CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("cliclick: %w: %s", err, output)
	}
	return output, nil
}

func runSay(ctx context.Context, text string) error {
	out, err := exec.CommandContext(ctx, "say", text).CombinedOutput()
	if err != nil {
		return fmt.Errorf("say: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// parsePosition parses cliclick's "x,y" position output.
func parsePosition(out string) (types.Point, error) {
	parts := strings.SplitN(strings.TrimSpace(out), ",", 2)
	if len(parts) != 2 {
		return types.Point{}, fmt.Errorf("unexpected cliclick position output: %q", out)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("parse cliclick x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("parse cliclick y: %w", err)
	}
	return types.Point{X: x, Y: y}, nil
}
