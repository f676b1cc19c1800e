// Package types defines the shared data model used across every AURA
// module: commands entering the orchestrator, the accessibility elements
// it discovers, the intents it recognizes, and the metrics it records.
package types

import (
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════════
// COMMAND
// ═══════════════════════════════════════════════════════════════════════════════

// Command is a single natural-language instruction entering the
// orchestrator pipeline.
type Command struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewCommand builds a Command with a generated ID and the current time.
func NewCommand(text string) Command {
	return Command{
		ID:         uuid.NewString(),
		Text:       text,
		ReceivedAt: time.Now(),
	}
}

// ValidationResult is the outcome of validating a Command before
// execution begins.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Reason string   `json:"reason,omitempty"`
	Issues []string `json:"issues,omitempty"`
}

// ═══════════════════════════════════════════════════════════════════════════════
// INTENT
// ═══════════════════════════════════════════════════════════════════════════════

// IntentType categorizes what a command is asking the agent to do.
type IntentType string

const (
	IntentClick      IntentType = "click"
	IntentText  IntentType = "type"
	IntentScroll     IntentType = "scroll"
	IntentNavigate   IntentType = "navigate"
	IntentQuestion   IntentType = "question"
	IntentDeferred   IntentType = "deferred"
	IntentUnknown    IntentType = "unknown"
)

// AllIntentTypes returns every recognized intent type.
func AllIntentTypes() []IntentType {
	return []IntentType{
		IntentClick, IntentText, IntentScroll, IntentNavigate,
		IntentQuestion, IntentDeferred, IntentUnknown,
	}
}

// IsValid reports whether t is a recognized intent type.
func (t IntentType) IsValid() bool {
	for _, candidate := range AllIntentTypes() {
		if t == candidate {
			return true
		}
	}
	return false
}

// ClassificationPath records which recognizer produced an Intent.
type ClassificationPath string

const (
	PathRegex   ClassificationPath = "regex"
	PathLLM     ClassificationPath = "llm"
	PathContext ClassificationPath = "context"
)

// Intent is the structured result of recognizing a Command.
type Intent struct {
	Type       IntentType         `json:"type"`
	Target     string             `json:"target,omitempty"`
	Confidence float64            `json:"confidence"`
	Path       ClassificationPath `json:"path"`
}

// ═══════════════════════════════════════════════════════════════════════════════
// ACCESSIBILITY
// ═══════════════════════════════════════════════════════════════════════════════

// CLICKABLE_ROLES lists the accessibility roles AURA treats as actionable
// by default. Config may extend or override this list.
var CLICKABLE_ROLES = []string{
	"AXButton", "AXLink", "AXMenuItem", "AXCheckBox",
	"AXRadioButton", "AXTextField", "AXTextArea", "AXPopUpButton",
}

// ACCESSIBILITY_ATTRIBUTES lists the attributes read off each discovered
// element to build its matchable text.
var ACCESSIBILITY_ATTRIBUTES = []string{
	"AXTitle", "AXDescription", "AXValue",
}

// Point is a screen coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a screen rectangle, origin top-left.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// AccessibilityElement is a single UI element discovered through the
// platform accessibility tree.
type AccessibilityElement struct {
	Role       string            `json:"role"`
	Attributes map[string]string `json:"attributes"`
	Frame      Rect              `json:"frame"`
	AppBundle  string            `json:"app_bundle"`
}

// MatchableText concatenates the element's configured attributes for
// fuzzy matching against a target phrase.
func (e AccessibilityElement) MatchableText(attrs []string) string {
	var text string
	for _, a := range attrs {
		if v, ok := e.Attributes[a]; ok && v != "" {
			if text != "" {
				text += " "
			}
			text += v
		}
	}
	return text
}

// ElementMatch pairs a candidate element with its fuzzy match score and
// the attribute that produced it.
type ElementMatch struct {
	Element         AccessibilityElement `json:"element"`
	Score           float64              `json:"score"`
	MatchedAttr     string               `json:"matched_attr"`
	DistanceToFocus float64              `json:"distance_to_focus"`
}

// FuzzyConfig configures the deterministic fuzzy-matching algorithm.
type FuzzyConfig struct {
	Threshold  int           `json:"threshold"`
	TimeoutMS  int           `json:"timeout_ms"`
	Timeout    time.Duration `json:"-"`
}

// ═══════════════════════════════════════════════════════════════════════════════
// DEFERRED ACTION
// ═══════════════════════════════════════════════════════════════════════════════

// DeferredPhase is a state in the deferred-action state machine.
type DeferredPhase string

const (
	DeferredIdle       DeferredPhase = "idle"
	DeferredGenerating DeferredPhase = "generating"
	DeferredAnnounced  DeferredPhase = "announced"
	DeferredWaiting    DeferredPhase = "waiting"
	DeferredPlacing    DeferredPhase = "placing"
)

// DeferredActionState is the singleton state deferred.Manager tracks for
// content generated for later placement (e.g. "type this where I click").
type DeferredActionState struct {
	Phase        DeferredPhase `json:"phase"`
	Content      string        `json:"content,omitempty"`
	Language     string        `json:"language,omitempty"`
	GeneratedAt  time.Time     `json:"generated_at,omitempty"`
	AnnouncedAt  time.Time     `json:"announced_at,omitempty"`
}

// ═══════════════════════════════════════════════════════════════════════════════
// PERFORMANCE
// ═══════════════════════════════════════════════════════════════════════════════

// PerformanceMetric records the outcome of a single timed operation for
// the rolling metrics buffer.
type PerformanceMetric struct {
	Operation string                 `json:"operation"`
	Duration  time.Duration          `json:"duration"`
	Success   bool                   `json:"success"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// ═══════════════════════════════════════════════════════════════════════════════
// ACTION PLAN
// ═══════════════════════════════════════════════════════════════════════════════

// ActionType enumerates the primitive operations the Automation
// collaborator can execute.
type ActionType string

const (
	ActionClick     ActionType = "click"
	ActionTypeText ActionType = "type"
	ActionScroll    ActionType = "scroll"
	ActionMoveMouse ActionType = "move_mouse"
)

// PlannedAction is a single step of an execution plan produced by the
// hybrid execution planner.
type PlannedAction struct {
	Type   ActionType `json:"type"`
	Target Point      `json:"target,omitempty"`
	Text   string      `json:"text,omitempty"`
	DeltaX int         `json:"delta_x,omitempty"`
	DeltaY int         `json:"delta_y,omitempty"`
}

// PlanSource records which execution path produced a plan.
type PlanSource string

const (
	PlanSourceAccessibility PlanSource = "accessibility"
	PlanSourceVision        PlanSource = "vision"
)

// ExecutionPlan is the ordered set of actions resolved for a Command.
type ExecutionPlan struct {
	Actions []PlannedAction `json:"actions"`
	Source  PlanSource      `json:"source"`
}

// ═══════════════════════════════════════════════════════════════════════════════
// RESULT
// ═══════════════════════════════════════════════════════════════════════════════

// Status is the tagged terminal (or suspended) outcome of a command
// pipeline run, replacing exception-based control flow between the
// orchestrator's pipeline steps.
type Status string

const (
	StatusCompleted          Status = "completed"
	StatusFailed             Status = "failed"
	StatusInterrupted        Status = "interrupted"
	StatusWaitingForUser     Status = "waiting_for_user_action"
)

// ExitCode maps a Status to the embedder-facing exit code from spec §6.
func (s Status) ExitCode() int {
	switch s {
	case StatusCompleted:
		return 0
	case StatusInterrupted:
		return 2
	case StatusWaitingForUser:
		return 3
	default:
		return 1
	}
}

// Result is what ExecuteCommand returns: the terminal status of a
// command pipeline run plus enough detail to log and surface it.
type Result struct {
	ExecutionID string     `json:"execution_id"`
	Status      Status     `json:"status"`
	PathUsed    PlanSource `json:"path_used,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	Message     string     `json:"message,omitempty"`
	Duration    time.Duration `json:"duration"`
}
