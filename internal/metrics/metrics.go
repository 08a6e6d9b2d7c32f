package metrics

import (
	"sync"
	"time"
)

// Package metrics provides a minimal instrumentation interface with a no-op
// default and an optional Prometheus-backed implementation.

// Recorder defines the metrics surface used across the codebase.
type Recorder interface {
	IncDBOpTotal(op string, success bool)
	ObserveDBOpSeconds(op string, success bool, seconds float64)
	IncToolTotal(tool string, success bool)
	ObserveToolSeconds(tool string, success bool, seconds float64)
	IncEngineTotal(engine string, success bool)
	ObserveEngineSeconds(engine string, success bool, seconds float64)
	IncAnswerSource(source string)
	IncStmtCache(hit bool)
	ObservePoolStats(inUse, idle int)
}

// noopRecorder implements Recorder with no-ops.
type noopRecorder struct{}

func (n *noopRecorder) IncDBOpTotal(string, bool)                  {}
func (n *noopRecorder) ObserveDBOpSeconds(string, bool, float64)   {}
func (n *noopRecorder) IncToolTotal(string, bool)                  {}
func (n *noopRecorder) ObserveToolSeconds(string, bool, float64)   {}
func (n *noopRecorder) IncEngineTotal(string, bool)                {}
func (n *noopRecorder) ObserveEngineSeconds(string, bool, float64) {}
func (n *noopRecorder) IncAnswerSource(string)                     {}
func (n *noopRecorder) IncStmtCache(bool)                          {}
func (n *noopRecorder) ObservePoolStats(int, int)                  {}

var (
	recMu    sync.RWMutex
	recorder Recorder = &noopRecorder{}
)

// Default returns the current recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the global recorder implementation.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	recorder = r
}

// TimeOp is a helper to time store operations.
func TimeOp(op string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncDBOpTotal(op, success)
		Default().ObserveDBOpSeconds(op, success, dur)
	}
}

// TimeTool is a helper to time MCP tool and REST handlers.
func TimeTool(tool string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncToolTotal(tool, success)
		Default().ObserveToolSeconds(tool, success, dur)
	}
}

// TimeEngine is a helper to time resolver, answer, consensus and recommend calls.
func TimeEngine(engine string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncEngineTotal(engine, success)
		Default().ObserveEngineSeconds(engine, success, dur)
	}
}

// Init installs the Prometheus recorder and serves /metrics and /healthz on
// addr. It does nothing when enabled is false.
func Init(enabled bool, addr string) error {
	if !enabled {
		return nil
	}
	if addr == "" {
		addr = ":9090"
	}
	return enablePrometheus(addr)
}

// enablePrometheus is provided by build-tagged files.
