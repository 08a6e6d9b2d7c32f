//go:build noprom

package metrics

import "github.com/YorHaaa/ATAI/internal/logging"

// When built with -tags noprom, metrics stay on the no-op recorder.
func enablePrometheus(addr string) error {
	logging.Warn().Str("addr", addr).Msg("Built without Prometheus support; metrics disabled")
	return nil
}
