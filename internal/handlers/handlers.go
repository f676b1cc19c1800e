// Package handlers implements AURA's per-intent dispatch targets (§4.1
// step 4): thin adapters that each take only the capability slice they
// need rather than reaching into a module-level singleton. The
// orchestrator owns one of each and routes a recognized Intent to the
// matching handler.
package handlers

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aura-agent/aura/internal/deferred"
	"github.com/aura-agent/aura/internal/planner"
	"github.com/aura-agent/aura/pkg/contracts"
	"github.com/aura-agent/aura/pkg/types"
)

// Handler resolves a recognized Intent to a terminal status. Handlers
// never acquire orchestrator locks themselves — the caller owns that.
type Handler interface {
	Handle(ctx context.Context, intent types.Intent, command string) (types.Status, types.PlanSource, string, error)
}

// GUIHandler drives the hybrid planner for click/type/scroll/navigate
// intents.
type GUIHandler struct {
	planner    *planner.Planner
	automation contracts.Automation
}

// NewGUIHandler builds a GUIHandler.
func NewGUIHandler(p *planner.Planner, automation contracts.Automation) *GUIHandler {
	return &GUIHandler{planner: p, automation: automation}
}

// Handle plans and immediately executes intent, reporting which path
// (accessibility or vision) ultimately produced the plan.
func (h *GUIHandler) Handle(ctx context.Context, intent types.Intent, command string) (types.Status, types.PlanSource, string, error) {
	plan, err := h.planner.Plan(ctx, intent)
	if err != nil {
		return types.StatusFailed, "", err.Error(), err
	}
	if err := h.planner.Execute(ctx, plan, h.automation); err != nil {
		return types.StatusFailed, plan.Source, err.Error(), err
	}
	return types.StatusCompleted, plan.Source, "", nil
}

// ConversationHandler answers casual conversational turns with the
// Reasoning collaborator and speaks the reply back.
type ConversationHandler struct {
	reasoning contracts.Reasoning
	feedback  contracts.Feedback
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(reasoning contracts.Reasoning, feedback contracts.Feedback) *ConversationHandler {
	return &ConversationHandler{reasoning: reasoning, feedback: feedback}
}

// Handle generates a conversational reply and speaks it.
func (h *ConversationHandler) Handle(ctx context.Context, intent types.Intent, command string) (types.Status, types.PlanSource, string, error) {
	reply, err := h.reasoning.Complete(ctx, command)
	if err != nil {
		return types.StatusFailed, "", err.Error(), err
	}
	if err := h.feedback.Say(ctx, reply); err != nil {
		return types.StatusFailed, "", err.Error(), err
	}
	return types.StatusCompleted, "", "", nil
}

// QuestionHandler answers direct factual questions. It shares
// ConversationHandler's shape (Reasoning + Feedback) but is its own type:
// it wraps the command in questionPrompt, while casual chat sends the
// command unchanged.
type QuestionHandler struct {
	reasoning contracts.Reasoning
	feedback  contracts.Feedback
}

// NewQuestionHandler builds a QuestionHandler.
func NewQuestionHandler(reasoning contracts.Reasoning, feedback contracts.Feedback) *QuestionHandler {
	return &QuestionHandler{reasoning: reasoning, feedback: feedback}
}

const questionPrompt = "Answer directly and concisely: %s"

// Handle answers command and speaks the answer.
func (h *QuestionHandler) Handle(ctx context.Context, intent types.Intent, command string) (types.Status, types.PlanSource, string, error) {
	reply, err := h.reasoning.Complete(ctx, fmt.Sprintf(questionPrompt, command))
	if err != nil {
		return types.StatusFailed, "", err.Error(), err
	}
	if err := h.feedback.Say(ctx, reply); err != nil {
		return types.StatusFailed, "", err.Error(), err
	}
	return types.StatusCompleted, "", "", nil
}

// DeferredHandler starts a deferred-action request and returns
// immediately once the subsystem reaches Waiting — placement happens
// later, off the calling goroutine, when the user clicks.
type DeferredHandler struct {
	manager *deferred.Manager
}

// NewDeferredHandler builds a DeferredHandler.
func NewDeferredHandler(manager *deferred.Manager) *DeferredHandler {
	return &DeferredHandler{manager: manager}
}

var codeWords = regexp.MustCompile(`(?i)\b(code|function|script|program|class|method|snippet)\b`)

var languageWords = map[string]*regexp.Regexp{
	"python":     regexp.MustCompile(`(?i)\bpython\b`),
	"javascript": regexp.MustCompile(`(?i)\b(javascript|js)\b`),
}

// Handle starts content generation for command and returns
// StatusWaitingForUser once the subsystem is armed and waiting for a
// placement click.
func (h *DeferredHandler) Handle(ctx context.Context, intent types.Intent, command string) (types.Status, types.PlanSource, string, error) {
	contentType := "text"
	if codeWords.MatchString(command) {
		contentType = "code"
	}

	language := ""
	for lang, re := range languageWords {
		if re.MatchString(command) {
			language = lang
			break
		}
	}

	if err := h.manager.StartRequest(ctx, command, language, contentType); err != nil {
		return types.StatusFailed, "", err.Error(), err
	}
	return types.StatusWaitingForUser, "", "", nil
}

// Interrupt cancels any in-flight deferred action, used by the
// orchestrator's step 0 pre-emption check. A no-op outside the Waiting
// phase.
func (h *DeferredHandler) Interrupt(ctx context.Context) {
	h.manager.Interrupt(ctx)
}
