package accessibility

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aura-agent/aura/pkg/types"
)

// Connection is a handle to a running application's accessibility tree,
// scoped to a single app bundle/process name.
type Connection struct {
	AppBundle   string
	ConnectedAt time.Time
}

// Connector resolves a connection for an application and walks its
// accessibility tree into a flat snapshot. The osascript-backed
// implementation below is the only one this package ships; tests and
// higher layers may substitute a fake.
type Connector interface {
	Connect(ctx context.Context, appBundle string) (*Connection, error)
	Snapshot(ctx context.Context, conn *Connection) ([]types.AccessibilityElement, error)
}

// OSAConnector drives System Events via osascript, generalized from
// "run one command" to "enumerate a UI element tree".
type OSAConnector struct {
	runOsascript func(ctx context.Context, script string) (string, error)
}

// NewOSAConnector builds a connector backed by the real osascript binary.
func NewOSAConnector() *OSAConnector {
	return &OSAConnector{runOsascript: runOsascript}
}

// FrontmostApp returns the name of the process System Events considers
// frontmost; cmd/aurad passes it to the planner as its AppResolver.
func (c *OSAConnector) FrontmostApp(ctx context.Context) (string, error) {
	out, err := c.runOsascript(ctx, `tell application "System Events" to get name of first process whose frontmost is true`)
	if err != nil {
		return "", fmt.Errorf("resolving frontmost app: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Connect verifies appBundle is a running process visible to System
// Events. It does not itself open the application.
func (c *OSAConnector) Connect(ctx context.Context, appBundle string) (*Connection, error) {
	script := fmt.Sprintf(`tell application "System Events" to (name of every process) contains %q`, appBundle)
	out, err := c.runOsascript(ctx, script)
	if err != nil {
		return nil, fmt.Errorf("accessibility connect %s: %w", appBundle, err)
	}
	if strings.TrimSpace(out) != "true" {
		return nil, fmt.Errorf("accessibility connect %s: process not running", appBundle)
	}
	return &Connection{AppBundle: appBundle, ConnectedAt: time.Now()}, nil
}

// snapshotScript enumerates every UI element of the app's frontmost
// window, emitting one tab-delimited line per element: role, AXTitle,
// AXDescription, AXValue, x, y, width, height.
const snapshotScript = `tell application "System Events"
	tell process %q
		set output to ""
		set elementList to entire contents of window 1
		repeat with e in elementList
			try
				set r to role of e
				set t to ""
				try
					set t to title of e
				end try
				set d to ""
				try
					set d to description of e
				end try
				set v to ""
				try
					set v to value of e as text
				end try
				set p to position of e
				set s to size of e
				set output to output & r & tab & t & tab & d & tab & v & tab & (item 1 of p) & tab & (item 2 of p) & tab & (item 1 of s) & tab & (item 2 of s) & linefeed
			end try
		end repeat
		return output
	end tell
end tell`

// Snapshot walks conn's accessibility tree and returns every element it
// could describe. Elements the platform refuses to describe (no role,
// or a transient AppleEvent failure) are skipped rather than aborting
// the whole traversal.
func (c *OSAConnector) Snapshot(ctx context.Context, conn *Connection) ([]types.AccessibilityElement, error) {
	out, err := c.runOsascript(ctx, fmt.Sprintf(snapshotScript, conn.AppBundle))
	if err != nil {
		return nil, fmt.Errorf("accessibility snapshot %s: %w", conn.AppBundle, err)
	}
	return parseSnapshot(conn.AppBundle, out), nil
}

func parseSnapshot(appBundle, raw string) []types.AccessibilityElement {
	var elements []types.AccessibilityElement
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 8 {
			continue
		}
		x, _ := strconv.ParseFloat(fields[4], 64)
		y, _ := strconv.ParseFloat(fields[5], 64)
		w, _ := strconv.ParseFloat(fields[6], 64)
		h, _ := strconv.ParseFloat(fields[7], 64)

		elements = append(elements, types.AccessibilityElement{
			Role: fields[0],
			Attributes: map[string]string{
				"AXTitle":       fields[1],
				"AXDescription": fields[2],
				"AXValue":       fields[3],
			},
			Frame:     types.Rect{X: x, Y: y, Width: w, Height: h},
			AppBundle: appBundle,
		})
	}
	return elements
}
