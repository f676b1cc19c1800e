package accessibility

import (
	"context"
	"fmt"
	"testing"
)

func TestFrontmostAppTrimsOutput(t *testing.T) {
	c := &OSAConnector{
		runOsascript: func(ctx context.Context, script string) (string, error) {
			return "Safari\n", nil
		},
	}

	app, err := c.FrontmostApp(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app != "Safari" {
		t.Errorf("expected %q, got %q", "Safari", app)
	}
}

func TestFrontmostAppWrapsError(t *testing.T) {
	c := &OSAConnector{
		runOsascript: func(ctx context.Context, script string) (string, error) {
			return "", fmt.Errorf("osascript failed")
		},
	}

	if _, err := c.FrontmostApp(context.Background()); err == nil {
		t.Error("expected an error when osascript fails")
	}
}

func TestParseSnapshot(t *testing.T) {
	raw := "AXButton\tSubmit\t\t\t10\t20\t30\t40\nAXLink\t\tHome page\t\t0\t0\t5\t5\n"

	elements := parseSnapshot("TestApp", raw)
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	if elements[0].Role != "AXButton" || elements[0].Attributes["AXTitle"] != "Submit" {
		t.Errorf("unexpected first element: %+v", elements[0])
	}
	if elements[0].Frame.Width != 30 || elements[0].Frame.Height != 40 {
		t.Errorf("unexpected frame: %+v", elements[0].Frame)
	}
	if elements[1].Attributes["AXDescription"] != "Home page" {
		t.Errorf("unexpected second element: %+v", elements[1])
	}
}

func TestParseSnapshotSkipsMalformedLines(t *testing.T) {
	raw := "AXButton\tSubmit\n\nAXLink\tHome\t\t\t0\t0\t5\t5\n"

	elements := parseSnapshot("TestApp", raw)
	if len(elements) != 1 {
		t.Fatalf("expected 1 well-formed element, got %d", len(elements))
	}
}
