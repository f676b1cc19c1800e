// Package metrics implements AURA's performance monitoring (§4.4.7): a
// rolling buffer of per-operation timings, warn/critical latency
// thresholds, and rolling success-rate degradation alerting. Adapted
// from the teacher's bus-subscription aggregation pattern in
// collector.go, narrowed from LLM token/session stats to AURA's
// {operation, duration, success} records.
package metrics

import (
	"sync"
	"time"

	"github.com/aura-agent/aura/internal/bus"
	"github.com/aura-agent/aura/internal/config"
	"github.com/aura-agent/aura/internal/logging"
	"github.com/aura-agent/aura/pkg/types"
)

const (
	bufferSize        = 500
	successWindowSize = 100
	alertCooldown     = 60 * time.Second
)

// Monitor aggregates PerformanceMetric records fed by command-completion
// events and raises a degradation alert when the rolling success rate
// drops too low. One Monitor is shared by the whole process.
type Monitor struct {
	mu sync.Mutex

	logger *logging.Logger
	events *bus.Bus
	cfg    config.PerformanceConfig

	buffer []types.PerformanceMetric
	window []bool // rolling success/failure window, oldest first

	lastAlert time.Time
	sub       bus.SubscriptionID
}

// New builds a Monitor. It does not start listening until Start is
// called.
func New(cfg config.PerformanceConfig, logger *logging.Logger, events *bus.Bus) *Monitor {
	return &Monitor{
		logger: logger,
		events: events,
		cfg:    cfg,
		buffer: make([]types.PerformanceMetric, 0, bufferSize),
		window: make([]bool, 0, successWindowSize),
	}
}

// Start subscribes to command-completion events on the bus.
func (m *Monitor) Start() {
	if m.events == nil {
		return
	}
	m.sub = m.events.Subscribe(bus.EventCommandCompleted, m.handleCompleted)
}

// Stop unsubscribes from the bus.
func (m *Monitor) Stop() {
	if m.events == nil || m.sub == "" {
		return
	}
	_ = m.events.Unsubscribe(m.sub)
}

func (m *Monitor) handleCompleted(e bus.Event) {
	m.Record(types.PerformanceMetric{
		Operation: e.Operation,
		Duration:  e.Duration,
		Success:   e.Success,
		Timestamp: e.Timestamp,
	})
}

// Record appends metric to the rolling buffer, logs a warning or
// critical message if its duration crosses a threshold, and checks
// whether the rolling success rate has degraded far enough to alert.
func (m *Monitor) Record(metric types.PerformanceMetric) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buffer = append(m.buffer, metric)
	if len(m.buffer) > bufferSize {
		m.buffer = m.buffer[len(m.buffer)-bufferSize:]
	}

	m.window = append(m.window, metric.Success)
	if len(m.window) > successWindowSize {
		m.window = m.window[len(m.window)-successWindowSize:]
	}

	m.checkLatency(metric)
	m.checkDegradation()
}

func (m *Monitor) checkLatency(metric types.PerformanceMetric) {
	ms := metric.Duration.Milliseconds()
	switch {
	case m.cfg.CritMS > 0 && ms > int64(m.cfg.CritMS):
		m.logger.Error("performance: %s took %dms (critical threshold %dms)", metric.Operation, ms, m.cfg.CritMS)
	case m.cfg.WarnMS > 0 && ms > int64(m.cfg.WarnMS):
		m.logger.Warn("performance: %s took %dms (warn threshold %dms)", metric.Operation, ms, m.cfg.WarnMS)
	}
}

// checkDegradation raises an alert when the 100-sample rolling success
// rate falls below 50%, at most once per cooldown window. Caller holds
// m.mu.
func (m *Monitor) checkDegradation() {
	if len(m.window) < successWindowSize {
		return
	}
	if m.rollingSuccessRate() >= 0.5 {
		return
	}
	if !m.lastAlert.IsZero() && time.Since(m.lastAlert) < alertCooldown {
		return
	}
	m.lastAlert = time.Now()
	m.logger.Error("performance: rolling success rate degraded below 50%% over the last %d commands", successWindowSize)
	if m.events != nil {
		_ = m.events.Publish(bus.FeedbackRequested("I'm having trouble completing commands right now."))
	}
}

func (m *Monitor) rollingSuccessRate() float64 {
	if len(m.window) == 0 {
		return 1.0
	}
	successes := 0
	for _, ok := range m.window {
		if ok {
			successes++
		}
	}
	return float64(successes) / float64(len(m.window))
}

// Snapshot is a point-in-time summary of the rolling buffer, used to
// feed Orchestrator.GetSystemHealth() and for diagnostics.
type Snapshot struct {
	SampleCount  int     `json:"sample_count"`
	SuccessRate  float64 `json:"success_rate"`
	AvgLatencyMs int64   `json:"avg_latency_ms"`
}

// Snapshot returns the current rolling-window summary.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.buffer) == 0 {
		return Snapshot{SuccessRate: 1.0}
	}

	var totalMs int64
	for _, metric := range m.buffer {
		totalMs += metric.Duration.Milliseconds()
	}

	return Snapshot{
		SampleCount:  len(m.buffer),
		SuccessRate:  m.rollingSuccessRate(),
		AvgLatencyMs: totalMs / int64(len(m.buffer)),
	}
}

// Recent returns the n most recently recorded metrics, most recent last.
func (m *Monitor) Recent(n int) []types.PerformanceMetric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n > len(m.buffer) {
		n = len(m.buffer)
	}
	start := len(m.buffer) - n
	out := make([]types.PerformanceMetric, n)
	copy(out, m.buffer[start:])
	return out
}
