package accessibility

import (
	"context"
	"testing"

	"github.com/aura-agent/aura/pkg/types"
)

type fakeConnector struct {
	elements map[string][]types.AccessibilityElement
	connErr  error
}

func (f *fakeConnector) Connect(ctx context.Context, appBundle string) (*Connection, error) {
	if f.connErr != nil {
		return nil, f.connErr
	}
	return &Connection{AppBundle: appBundle}, nil
}

func (f *fakeConnector) Snapshot(ctx context.Context, conn *Connection) ([]types.AccessibilityElement, error) {
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

func TestFindElementExactMatch(t *testing.T) {
	connector := &fakeConnector{elements: map[string][]types.AccessibilityElement{
		"TestApp": {
			button("Cancel", types.Rect{X: 0, Y: 0, Width: 10, Height: 10}),
			button("Submit", types.Rect{X: 100, Y: 100, Width: 10, Height: 10}),
		},
	}}
	e := NewEngine(connector, types.CLICKABLE_ROLES, 70, 500)

	match, err := e.FindElement(context.Background(), "", "submit", "TestApp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match.Element.Attributes["AXTitle"] != "Submit" {
		t.Errorf("expected Submit, got %+v", match.Element)
	}
	if match.MatchedAttr != "AXTitle" {
		t.Errorf("expected AXTitle to win, got %s", match.MatchedAttr)
	}
}

func TestFindElementNotFound(t *testing.T) {
	connector := &fakeConnector{elements: map[string][]types.AccessibilityElement{
		"TestApp": {button("Cancel", types.Rect{})},
	}}
	e := NewEngine(connector, types.CLICKABLE_ROLES, 70, 500)

	_, err := e.FindElement(context.Background(), "", "nonexistent thing", "TestApp")
	if err != ErrElementNotFound {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
}

func TestFindElementRanksByDistanceToCenter(t *testing.T) {
	connector := &fakeConnector{elements: map[string][]types.AccessibilityElement{
		"TestApp": {
			button("Submit", types.Rect{X: 900, Y: 900, Width: 10, Height: 10}),
			button("Submit", types.Rect{X: 100, Y: 100, Width: 10, Height: 10}),
		},
	}}
	e := NewEngine(connector, types.CLICKABLE_ROLES, 70, 500)
	e.SetScreenCenter(types.Point{X: 105, Y: 105})

	match, err := e.FindElement(context.Background(), "", "submit", "TestApp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match.Element.Frame.X != 100 {
		t.Errorf("expected the closer of two equally-scored matches to win, got frame %+v", match.Element.Frame)
	}
}

func TestFindElementDegradedMode(t *testing.T) {
	connector := &fakeConnector{}
	e := NewEngine(connector, types.CLICKABLE_ROLES, 70, 500)
	e.degraded = true

	_, err := e.FindElement(context.Background(), "", "submit", "TestApp")
	if err != ErrPermissionDenied {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestFindElementConnectFailure(t *testing.T) {
	connector := &fakeConnector{connErr: context.DeadlineExceeded}
	e := NewEngine(connector, types.CLICKABLE_ROLES, 70, 500)

	_, err := e.FindElement(context.Background(), "", "submit", "TestApp")
	if err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestExtractTargetQuoted(t *testing.T) {
	target, confidence := ExtractTarget(`click "Submit Order"`)
	if target != "Submit Order" || confidence != 1.0 {
		t.Errorf("expected quoted payload verbatim with confidence 1.0, got %q %v", target, confidence)
	}
}

func TestExtractTargetStripsVerbAndArticle(t *testing.T) {
	target, _ := ExtractTarget("click the submit button")
	if target != "submit button" {
		t.Errorf("expected %q, got %q", "submit button", target)
	}
}

func TestExtractTargetEmpty(t *testing.T) {
	target, confidence := ExtractTarget("click the")
	if target != "" || confidence != 0 {
		t.Errorf("expected empty target with zero confidence, got %q %v", target, confidence)
	}
}
