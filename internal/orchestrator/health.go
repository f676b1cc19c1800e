package orchestrator

import (
	"context"
	"sync"
	"time"

	auraerrors "github.com/aura-agent/aura/internal/errors"
	"github.com/aura-agent/aura/internal/metrics"
)

// HealthLevel is the coarse system health bucket reported by
// GetSystemHealth.
type HealthLevel string

const (
	HealthHealthy  HealthLevel = "healthy"
	HealthDegraded HealthLevel = "degraded"
	HealthUnhealthy HealthLevel = "unhealthy"
	HealthCritical HealthLevel = "critical"
)

// ModuleStatus is a single module's health entry.
type ModuleStatus struct {
	Failures int `json:"failures"`
	Successes int `json:"successes"`
}

// HealthReport is the result of GetSystemHealth.
type HealthReport struct {
	Overall     HealthLevel             `json:"overall"`
	Score       int                     `json:"score"`
	Modules     map[string]ModuleStatus `json:"modules"`
	ErrorCounts map[string]int          `json:"error_counts"`
	ErrorRate   float64                 `json:"error_rate"`

	// AvgLatencyMs and RollingSuccessRate come from internal/metrics'
	// rolling buffer (§4.4.7) when a Monitor is attached. Zero value
	// (1.0 success rate, 0ms latency) when none is.
	AvgLatencyMs       int64   `json:"avg_latency_ms"`
	RollingSuccessRate float64 `json:"rolling_success_rate"`
}

// RecoveryResult is the result of AttemptSystemRecovery.
type RecoveryResult struct {
	Attempted bool `json:"attempted"`
	Succeeded bool `json:"succeeded"`
}

// moduleGuards tracks per-module success/failure counts for health
// scoring and bounds reinitialization attempts to 3 per module per
// process lifetime (spec §4.6).
type moduleGuards struct {
	mu       sync.Mutex
	status   map[string]ModuleStatus
	errCounts map[string]int
	guards   map[string]*auraerrors.ReinitGuard
	recoverers map[string]func(context.Context) error
}

func newModuleGuards() *moduleGuards {
	return &moduleGuards{
		status:     make(map[string]ModuleStatus),
		errCounts:  make(map[string]int),
		guards:     make(map[string]*auraerrors.ReinitGuard),
		recoverers: make(map[string]func(context.Context) error),
	}
}

func (g *moduleGuards) recordSuccess(module string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.status[module]
	s.Successes++
	g.status[module] = s
}

func (g *moduleGuards) recordFailure(module string, category auraerrors.Category) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.status[module]
	s.Failures++
	g.status[module] = s
	g.errCounts[string(category)]++
}

func (g *moduleGuards) guardFor(module string) *auraerrors.ReinitGuard {
	g.mu.Lock()
	defer g.mu.Unlock()
	guard, ok := g.guards[module]
	if !ok {
		guard = auraerrors.NewReinitGuard(3, time.Duration(1<<63-1))
		g.guards[module] = guard
	}
	return guard
}

func (g *moduleGuards) register(module string, fn func(context.Context) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recoverers[module] = fn
}

func (g *moduleGuards) recoverer(module string) (func(context.Context) error, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn, ok := g.recoverers[module]
	return fn, ok
}

func (g *moduleGuards) report() HealthReport {
	g.mu.Lock()
	defer g.mu.Unlock()

	modules := make(map[string]ModuleStatus, len(g.status))
	var totalFailures, totalRuns int
	for name, s := range g.status {
		modules[name] = s
		totalFailures += s.Failures
		totalRuns += s.Failures + s.Successes
	}

	errCounts := make(map[string]int, len(g.errCounts))
	for k, v := range g.errCounts {
		errCounts[k] = v
	}

	rate := 0.0
	if totalRuns > 0 {
		rate = float64(totalFailures) / float64(totalRuns)
	}

	score := 100 - int(rate*100)
	if score < 0 {
		score = 0
	}

	var overall HealthLevel
	switch {
	case score >= 90:
		overall = HealthHealthy
	case score >= 70:
		overall = HealthDegraded
	case score >= 40:
		overall = HealthUnhealthy
	default:
		overall = HealthCritical
	}

	return HealthReport{
		Overall:     overall,
		Score:       score,
		Modules:     modules,
		ErrorCounts: errCounts,
		ErrorRate:   rate,
	}
}

// RegisterRecoverable wires a reinitialization hook for module so
// AttemptSystemRecovery has something concrete to call. cmd/aurad
// registers one for the accessibility connector ("accessibility"), which
// re-checks permissions after a permissions or connection failure.
func (o *Orchestrator) RegisterRecoverable(module string, fn func(context.Context) error) {
	o.reinit.register(module, fn)
}

// AttachMonitor wires a rolling-latency Monitor so GetSystemHealth can
// report on recent command timing, not just success/failure counts.
func (o *Orchestrator) AttachMonitor(m *metrics.Monitor) {
	o.monitor = m
}

// GetSystemHealth reports a coarse health score derived from the
// success/failure counts recorded for every module a command has
// touched so far, enriched with recent latency and rolling success
// rate when a Monitor is attached.
func (o *Orchestrator) GetSystemHealth() HealthReport {
	report := o.reinit.report()
	if o.monitor != nil {
		snap := o.monitor.Snapshot()
		report.AvgLatencyMs = snap.AvgLatencyMs
		report.RollingSuccessRate = snap.SuccessRate
	} else {
		report.RollingSuccessRate = 1.0
	}
	return report
}

// AttemptSystemRecovery reinitializes module, bounded to 3 attempts per
// process lifetime. If module is empty, every module with a registered
// recovery hook is attempted.
func (o *Orchestrator) AttemptSystemRecovery(ctx context.Context, module string) RecoveryResult {
	if module == "" {
		attempted, succeeded := false, true
		o.reinit.mu.Lock()
		modules := make([]string, 0, len(o.reinit.recoverers))
		for name := range o.reinit.recoverers {
			modules = append(modules, name)
		}
		o.reinit.mu.Unlock()
		for _, name := range modules {
			result := o.AttemptSystemRecovery(ctx, name)
			attempted = attempted || result.Attempted
			succeeded = succeeded && result.Succeeded
		}
		return RecoveryResult{Attempted: attempted, Succeeded: succeeded}
	}

	guard := o.reinit.guardFor(module)
	if !guard.Allow() {
		o.logger.Warn("reinitialization budget exhausted for module %s", module)
		return RecoveryResult{Attempted: false, Succeeded: false}
	}

	fn, ok := o.reinit.recoverer(module)
	if !ok {
		return RecoveryResult{Attempted: true, Succeeded: false}
	}

	if err := fn(ctx); err != nil {
		o.logger.Error("reinitialization of %s failed: %v", module, err)
		return RecoveryResult{Attempted: true, Succeeded: false}
	}
	return RecoveryResult{Attempted: true, Succeeded: true}
}
