// Package planner implements AURA's hybrid execution planner (§4.2): an
// accessibility-first fast path that resolves a command to on-screen
// coordinates without ever taking a screenshot, and a vision fallback for
// anything the accessibility tree can't resolve.
package planner

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aura-agent/aura/internal/accessibility"
	"github.com/aura-agent/aura/internal/config"
	"github.com/aura-agent/aura/pkg/contracts"
	"github.com/aura-agent/aura/pkg/types"
)

const (
	fastBudget     = 2 * time.Second
	fallbackBudget = 10 * time.Second

	scrollStep     = 3
	scrollPageStep = 10
)

// AppResolver returns the bundle identifier of the application a command
// should be resolved against (typically the frontmost app).
type AppResolver func(ctx context.Context) (string, error)

// Planner resolves a recognized Intent into an ExecutionPlan, trying the
// accessibility engine first and falling back to the vision pipeline on
// any of the typed failure reasons the engine defines.
type Planner struct {
	engine     *accessibility.Engine
	capture    contracts.ScreenCapture
	vision     contracts.Vision
	resolveApp AppResolver

	fastPathEnabled bool
}

// New builds a Planner. capture and vision may be nil if no vision
// fallback is configured, in which case a fast-path failure is returned
// to the caller unchanged.
func New(cfg config.PlannerConfig, engine *accessibility.Engine, capture contracts.ScreenCapture, vision contracts.Vision, resolveApp AppResolver) *Planner {
	return &Planner{
		engine:          engine,
		capture:         capture,
		vision:          vision,
		resolveApp:      resolveApp,
		fastPathEnabled: cfg.FastPathEnabled,
	}
}

// Plan resolves intent to an ExecutionPlan. It never executes the plan —
// callers (the orchestrator's GUI handler) own that via Execute.
func (p *Planner) Plan(ctx context.Context, intent types.Intent) (types.ExecutionPlan, error) {
	if !p.fastPathEnabled {
		return p.visionPlan(ctx, intent)
	}

	plan, err := p.fastPlan(ctx, intent)
	if err == nil {
		return plan, nil
	}
	if !eligibleForFallback(err) || p.capture == nil || p.vision == nil {
		return types.ExecutionPlan{}, err
	}
	return p.visionPlan(ctx, intent)
}

// Execute runs every action in plan against automation in order, stopping
// at the first error.
func (p *Planner) Execute(ctx context.Context, plan types.ExecutionPlan, automation contracts.Automation) error {
	for _, action := range plan.Actions {
		var err error
		switch action.Type {
		case types.ActionClick:
			err = automation.Click(ctx, action.Target)
		case types.ActionMoveMouse:
			err = automation.MoveMouse(ctx, action.Target)
		case types.ActionTypeText:
			err = automation.Type(ctx, action.Text)
		case types.ActionScroll:
			err = automation.Scroll(ctx, action.DeltaX, action.DeltaY)
		default:
			err = fmt.Errorf("planner: unknown action type %q", action.Type)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Planner) fastPlan(ctx context.Context, intent types.Intent) (types.ExecutionPlan, error) {
	ctx, cancel := context.WithTimeout(ctx, fastBudget)
	defer cancel()

	// A literal quoted payload needs no element at all — type it directly.
	if intent.Type == types.IntentText {
		if text, ok := literalPayload(intent.Target); ok {
			return types.ExecutionPlan{
				Actions: []types.PlannedAction{{Type: types.ActionTypeText, Text: text}},
				Source:  types.PlanSourceAccessibility,
			}, nil
		}
	}

	// Scroll direction comes from the command text, not an element — there
	// is nothing to search for.
	if intent.Type == types.IntentScroll {
		dx, dy := parseScrollDirection(intent.Target)
		if dx == 0 && dy == 0 {
			return types.ExecutionPlan{}, accessibility.ErrNoTargetInCommand
		}
		return types.ExecutionPlan{
			Actions: []types.PlannedAction{{Type: types.ActionScroll, DeltaX: dx, DeltaY: dy}},
			Source:  types.PlanSourceAccessibility,
		}, nil
	}

	target, _ := accessibility.ExtractTarget(intent.Target)
	if target == "" {
		return types.ExecutionPlan{}, accessibility.ErrNoTargetInCommand
	}

	app := ""
	if p.resolveApp != nil {
		var err error
		app, err = p.resolveApp(ctx)
		if err != nil {
			return types.ExecutionPlan{}, fmt.Errorf("planner: resolving frontmost app: %w", err)
		}
	}

	match, err := p.engine.FindElement(ctx, "", target, app)
	if err != nil {
		return types.ExecutionPlan{}, err
	}

	center := match.Element.Frame.Center()
	return types.ExecutionPlan{
		Actions: []types.PlannedAction{{Type: types.ActionClick, Target: center}},
		Source:  types.PlanSourceAccessibility,
	}, nil
}

func (p *Planner) visionPlan(ctx context.Context, intent types.Intent) (types.ExecutionPlan, error) {
	if p.capture == nil || p.vision == nil {
		return types.ExecutionPlan{}, errors.New("planner: no vision fallback configured")
	}

	ctx, cancel := context.WithTimeout(ctx, fallbackBudget)
	defer cancel()

	screenshot, err := p.capture.Capture(ctx)
	if err != nil {
		return types.ExecutionPlan{}, fmt.Errorf("planner: vision fallback capture: %w", err)
	}

	at, _, err := p.vision.Locate(ctx, screenshot, intent.Target)
	if err != nil {
		return types.ExecutionPlan{}, fmt.Errorf("planner: vision fallback locate: %w", err)
	}

	actions := []types.PlannedAction{{Type: types.ActionClick, Target: at}}
	if intent.Type == types.IntentText {
		if text, ok := literalPayload(intent.Target); ok {
			actions = append(actions, types.PlannedAction{Type: types.ActionTypeText, Text: text})
		}
	}

	return types.ExecutionPlan{Actions: actions, Source: types.PlanSourceVision}, nil
}

// eligibleForFallback reports whether err is one of the typed reasons the
// accessibility engine gives up with. Anything else (e.g. a canceled
// context) is treated as fatal and propagated without a vision attempt.
func eligibleForFallback(err error) bool {
	switch {
	case errors.Is(err, accessibility.ErrNotInitialized),
		errors.Is(err, accessibility.ErrPermissionDenied),
		errors.Is(err, accessibility.ErrNoTargetInCommand),
		errors.Is(err, accessibility.ErrElementNotFound),
		errors.Is(err, accessibility.ErrAmbiguousMatch),
		errors.Is(err, accessibility.ErrTimeout):
		return true
	default:
		return false
	}
}

var quotedPayload = regexp.MustCompile(`["']([^"']+)["']`)

func literalPayload(command string) (string, bool) {
	m := quotedPayload.FindStringSubmatch(command)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func parseScrollDirection(command string) (int, int) {
	lower := strings.ToLower(command)
	switch {
	case strings.Contains(lower, "page up"):
		return 0, -scrollPageStep
	case strings.Contains(lower, "page down"):
		return 0, scrollPageStep
	case strings.Contains(lower, "up"):
		return 0, -scrollStep
	case strings.Contains(lower, "down"):
		return 0, scrollStep
	case strings.Contains(lower, "left"):
		return -scrollStep, 0
	case strings.Contains(lower, "right"):
		return scrollStep, 0
	default:
		return 0, 0
	}
}
