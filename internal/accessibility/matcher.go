// Package accessibility implements AURA's fast GUI-interaction path:
// discovering on-screen elements through the platform accessibility
// tree, extracting a search target from a natural-language command, and
// ranking candidate elements against it.
package accessibility

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/aura-agent/aura/internal/cache"
	"github.com/aura-agent/aura/internal/fuzzy"
	"github.com/aura-agent/aura/pkg/types"
)

// Failure reasons the hybrid execution planner matches on to decide
// whether to fall back to the vision pipeline (§4.2).
var (
	ErrNotInitialized    = errors.New("accessibility_not_initialized")
	ErrPermissionDenied  = errors.New("permission_denied")
	ErrNoTargetInCommand = errors.New("no_target_in_command")
	ErrElementNotFound   = errors.New("element_not_found")
	ErrAmbiguousMatch    = errors.New("ambiguous_match")
	ErrTimeout           = errors.New("timeout")
)

const (
	connCacheSize     = 10
	connCacheTTL      = 300 * time.Second
	snapshotCacheSize = 1000
	snapshotCacheTTL  = 30 * time.Second
)

// attributePriority is the fixed order §4.4.1/§4.4.4 check attributes in.
var attributePriority = []string{"AXTitle", "AXDescription", "AXValue"}

// Engine is the accessibility query surface the hybrid execution planner
// calls into. It owns the connection cache, the snapshot cache, and the
// permission probe, and implements the element-ranking rule of §4.2.
type Engine struct {
	connector    Connector
	probe        *PermissionProbe
	connCache    *cache.TTLCache[string, *Connection]
	snapshots    *cache.TTLCache[string, []types.AccessibilityElement]
	clickable    map[string]bool
	roleOrder    map[string]int
	threshold    float64
	fuzzyTimeout time.Duration
	screenCenter types.Point
	degraded     bool
}

// NewEngine builds an Engine from the accessibility configuration
// surface: the clickable-role allowlist, the fuzzy threshold/timeout,
// and the connection/snapshot cache sizes fixed by §4.4.5.
func NewEngine(connector Connector, clickableRoles []string, fuzzyThreshold int, fuzzyTimeoutMS int) *Engine {
	roleOrder := make(map[string]int, len(clickableRoles))
	clickable := make(map[string]bool, len(clickableRoles))
	for i, r := range clickableRoles {
		roleOrder[r] = i
		clickable[r] = true
	}

	return &Engine{
		connector:    connector,
		probe:        NewPermissionProbe(),
		connCache:    cache.New[string, *Connection](connCacheSize, connCacheTTL),
		snapshots:    cache.New[string, []types.AccessibilityElement](snapshotCacheSize, snapshotCacheTTL),
		clickable:    clickable,
		roleOrder:    roleOrder,
		threshold:    float64(fuzzyThreshold),
		fuzzyTimeout: time.Duration(fuzzyTimeoutMS) * time.Millisecond,
	}
}

// SetScreenCenter updates the reference point used for the
// distance-to-center tie-break. Callers refresh it whenever display
// geometry changes.
func (e *Engine) SetScreenCenter(p types.Point) {
	e.screenCenter = p
}

// CheckPermissions probes accessibility availability and disables the
// fast path per §4.4.6 when it isn't FULL.
func (e *Engine) CheckPermissions(ctx context.Context) (Level, *Guidance) {
	level, guidance := e.probe.Probe(ctx)
	e.degraded = level != LevelFull
	return level, guidance
}

// FindElement implements §4.4.1: build or reuse a snapshot of app's
// accessibility tree, evaluate every clickable element's attributes in
// priority order against label, and return the best ranked match.
func (e *Engine) FindElement(ctx context.Context, role, label, app string) (*types.ElementMatch, error) {
	if e.degraded {
		return nil, ErrPermissionDenied
	}

	elements, err := e.snapshotFor(ctx, app)
	if err != nil {
		return nil, err
	}

	var candidates []types.ElementMatch
	for _, el := range elements {
		if role != "" && el.Role != role {
			continue
		}
		if role == "" && !e.clickable[el.Role] {
			continue
		}

		match, ok := e.scoreElement(ctx, el, label)
		if !ok {
			continue
		}
		candidates = append(candidates, match)
	}

	if len(candidates) == 0 {
		e.snapshots.Remove(app)
		return nil, ErrElementNotFound
	}

	rankCandidates(candidates, e.roleOrder, e.screenCenter)
	best := candidates[0]
	return &best, nil
}

// scoreElement checks label against el's attributes in priority order,
// accepting the first non-empty attribute scoring at or above threshold.
func (e *Engine) scoreElement(ctx context.Context, el types.AccessibilityElement, label string) (types.ElementMatch, bool) {
	for _, attr := range attributePriority {
		value, ok := el.Attributes[attr]
		if !ok || value == "" {
			continue
		}

		deadline, cancel := context.WithTimeout(ctx, e.fuzzyTimeout)
		score, scored := fuzzy.ScoreWithTimeout(deadline, label, value)
		cancel()
		if !scored {
			continue
		}
		if score >= e.threshold {
			return types.ElementMatch{
				Element:         el,
				Score:           score,
				MatchedAttr:     attr,
				DistanceToFocus: distance(el.Frame.Center(), e.screenCenter),
			}, true
		}
	}
	return types.ElementMatch{}, false
}

// snapshotFor returns app's cached snapshot, rebuilding it through the
// connector on a cache miss.
func (e *Engine) snapshotFor(ctx context.Context, app string) ([]types.AccessibilityElement, error) {
	if cached, ok := e.snapshots.Get(app); ok {
		return cached, nil
	}

	conn, ok := e.connCache.Get(app)
	if !ok {
		connected, err := e.connector.Connect(ctx, app)
		if err != nil {
			return nil, ErrNotInitialized
		}
		conn = connected
		e.connCache.Set(app, conn)
	}

	elements, err := e.connector.Snapshot(ctx, conn)
	if err != nil {
		return nil, ErrNotInitialized
	}
	e.snapshots.Set(app, elements)
	return elements, nil
}

// InvalidateSnapshot forces the next FindElement for app to rebuild its
// snapshot, per §4.4.5's explicit cache-clear request.
func (e *Engine) InvalidateSnapshot(app string) {
	e.snapshots.Remove(app)
}

// rankCandidates sorts matches per §4.2: match_score desc, attribute
// priority asc, role priority asc, distance-to-center asc. Ties beyond
// that keep their original pre-order-traversal position (stable sort).
func rankCandidates(candidates []types.ElementMatch, roleOrder map[string]int, center types.Point) {
	attrRank := func(attr string) int {
		for i, a := range attributePriority {
			if a == attr {
				return i
			}
		}
		return len(attributePriority)
	}

	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && less(candidates[j], candidates[j-1], attrRank, roleOrder); j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
}

func less(a, b types.ElementMatch, attrRank func(string) int, roleOrder map[string]int) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if ra, rb := attrRank(a.MatchedAttr), attrRank(b.MatchedAttr); ra != rb {
		return ra < rb
	}
	if roa, rob := roleOrder[a.Element.Role], roleOrder[b.Element.Role]; roa != rob {
		return roa < rob
	}
	return a.DistanceToFocus < b.DistanceToFocus
}

func distance(a, b types.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
