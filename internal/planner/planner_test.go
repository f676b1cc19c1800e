package planner

import (
	"context"
	"testing"

	"github.com/aura-agent/aura/internal/accessibility"
	"github.com/aura-agent/aura/internal/config"
	"github.com/aura-agent/aura/pkg/types"
)

type fakeConnector struct {
	elements map[string][]types.AccessibilityElement
}

func (f *fakeConnector) Connect(ctx context.Context, appBundle string) (*accessibility.Connection, error) {
	return &accessibility.Connection{AppBundle: appBundle}, nil
}

func (f *fakeConnector) Snapshot(ctx context.Context, conn *accessibility.Connection) ([]types.AccessibilityElement, error) {
	return f.elements[conn.AppBundle], nil
}

func button(title string, frame types.Rect) types.AccessibilityElement {
	return types.AccessibilityElement{
		Role:       "AXButton",
		Attributes: map[string]string{"AXTitle": title},
		Frame:      frame,
		AppBundle:  "TestApp",
	}
}

func fixedApp(name string) AppResolver {
	return func(ctx context.Context) (string, error) { return name, nil }
}

type fakeCapture struct {
	data []byte
	err  error
}

func (f *fakeCapture) Capture(ctx context.Context) ([]byte, error) { return f.data, f.err }

type fakeVision struct {
	at   types.Point
	conf float64
	err  error
}

func (f *fakeVision) Locate(ctx context.Context, screenshot []byte, target string) (types.Point, float64, error) {
	return f.at, f.conf, f.err
}

type fakeAutomation struct {
	clicks []types.Point
	typed  []string
	scroll [][2]int
}

func (f *fakeAutomation) Click(ctx context.Context, at types.Point) error {
	f.clicks = append(f.clicks, at)
	return nil
}
func (f *fakeAutomation) MoveMouse(ctx context.Context, at types.Point) error { return nil }
func (f *fakeAutomation) Type(ctx context.Context, text string) error {
	f.typed = append(f.typed, text)
	return nil
}
func (f *fakeAutomation) Scroll(ctx context.Context, dx, dy int) error {
	f.scroll = append(f.scroll, [2]int{dx, dy})
	return nil
}

func cfg() config.PlannerConfig {
	return config.PlannerConfig{FastPathEnabled: true}
}

func TestPlanFastPathClick(t *testing.T) {
	connector := &fakeConnector{elements: map[string][]types.AccessibilityElement{
		"TestApp": {button("Submit", types.Rect{X: 100, Y: 100, Width: 20, Height: 10})},
	}}
	engine := accessibility.NewEngine(connector, types.CLICKABLE_ROLES, 70, 500)
	p := New(cfg(), engine, nil, nil, fixedApp("TestApp"))

	plan, err := p.Plan(context.Background(), types.Intent{Type: types.IntentClick, Target: "click the submit button"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Source != types.PlanSourceAccessibility {
		t.Errorf("expected accessibility source, got %v", plan.Source)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Type != types.ActionClick {
		t.Fatalf("unexpected actions: %+v", plan.Actions)
	}
	want := types.Rect{X: 100, Y: 100, Width: 20, Height: 10}.Center()
	if plan.Actions[0].Target != want {
		t.Errorf("expected target %+v, got %+v", want, plan.Actions[0].Target)
	}
}

func TestPlanFastPathLiteralType(t *testing.T) {
	engine := accessibility.NewEngine(&fakeConnector{}, types.CLICKABLE_ROLES, 70, 500)
	p := New(cfg(), engine, nil, nil, fixedApp("TestApp"))

	plan, err := p.Plan(context.Background(), types.Intent{Type: types.IntentText, Target: `type "hello world"`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Type != types.ActionTypeText || plan.Actions[0].Text != "hello world" {
		t.Fatalf("unexpected actions: %+v", plan.Actions)
	}
}

func TestPlanFastPathScroll(t *testing.T) {
	engine := accessibility.NewEngine(&fakeConnector{}, types.CLICKABLE_ROLES, 70, 500)
	p := New(cfg(), engine, nil, nil, fixedApp("TestApp"))

	plan, err := p.Plan(context.Background(), types.Intent{Type: types.IntentScroll, Target: "scroll down"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Type != types.ActionScroll || plan.Actions[0].DeltaY != scrollStep {
		t.Fatalf("unexpected actions: %+v", plan.Actions)
	}
}

func TestPlanFallsBackToVisionOnElementNotFound(t *testing.T) {
	engine := accessibility.NewEngine(&fakeConnector{elements: map[string][]types.AccessibilityElement{}}, types.CLICKABLE_ROLES, 70, 500)
	capture := &fakeCapture{data: []byte("png")}
	vision := &fakeVision{at: types.Point{X: 42, Y: 7}, conf: 0.9}
	p := New(cfg(), engine, capture, vision, fixedApp("TestApp"))

	plan, err := p.Plan(context.Background(), types.Intent{Type: types.IntentClick, Target: "click the submit button"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Source != types.PlanSourceVision {
		t.Errorf("expected vision source, got %v", plan.Source)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Target != (types.Point{X: 42, Y: 7}) {
		t.Fatalf("unexpected actions: %+v", plan.Actions)
	}
}

func TestPlanVisionFallbackAddsTypeAction(t *testing.T) {
	engine := accessibility.NewEngine(&fakeConnector{elements: map[string][]types.AccessibilityElement{}}, types.CLICKABLE_ROLES, 70, 500)
	capture := &fakeCapture{data: []byte("png")}
	vision := &fakeVision{at: types.Point{X: 1, Y: 1}}
	p := New(cfg(), engine, capture, vision, fixedApp("TestApp"))

	plan, err := p.Plan(context.Background(), types.Intent{Type: types.IntentText, Target: `type "a note" here`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Actions) != 2 || plan.Actions[1].Text != "a note" {
		t.Fatalf("unexpected actions: %+v", plan.Actions)
	}
}

func TestPlanNoVisionConfiguredPropagatesError(t *testing.T) {
	engine := accessibility.NewEngine(&fakeConnector{elements: map[string][]types.AccessibilityElement{}}, types.CLICKABLE_ROLES, 70, 500)
	p := New(cfg(), engine, nil, nil, fixedApp("TestApp"))

	_, err := p.Plan(context.Background(), types.Intent{Type: types.IntentClick, Target: "click the submit button"})
	if err == nil {
		t.Fatal("expected an error when no vision fallback is configured")
	}
}

func TestExecuteRunsActionsInOrder(t *testing.T) {
	p := New(cfg(), nil, nil, nil, nil)
	auto := &fakeAutomation{}

	plan := types.ExecutionPlan{Actions: []types.PlannedAction{
		{Type: types.ActionClick, Target: types.Point{X: 1, Y: 2}},
		{Type: types.ActionTypeText, Text: "hi"},
	}}
	if err := p.Execute(context.Background(), plan, auto); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(auto.clicks) != 1 || len(auto.typed) != 1 {
		t.Fatalf("unexpected automation calls: %+v", auto)
	}
}

func TestExecuteStopsOnError(t *testing.T) {
	p := New(cfg(), nil, nil, nil, nil)
	auto := &fakeAutomation{}

	plan := types.ExecutionPlan{Actions: []types.PlannedAction{
		{Type: types.ActionType("bogus")},
		{Type: types.ActionTypeText, Text: "should not run"},
	}}
	err := p.Execute(context.Background(), plan, auto)
	if err == nil {
		t.Fatal("expected an error for an unknown action type")
	}
	if len(auto.typed) != 0 {
		t.Errorf("expected execution to stop before the second action, got %+v", auto.typed)
	}
}
