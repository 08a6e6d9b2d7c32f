//go:build !noprom

package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YorHaaa/ATAI/internal/logging"
)

type promRecorder struct {
	dbTotal       *prom.CounterVec
	dbSeconds     *prom.HistogramVec
	toolTotal     *prom.CounterVec
	toolSeconds   *prom.HistogramVec
	engineTotal   *prom.CounterVec
	engineSeconds *prom.HistogramVec
	answerSource  *prom.CounterVec
	stmtCache     *prom.CounterVec
	poolInUse     prom.Gauge
	poolIdle      prom.Gauge
}

func (p *promRecorder) IncDBOpTotal(op string, success bool) {
	p.dbTotal.WithLabelValues(op, strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveDBOpSeconds(op string, success bool, seconds float64) {
	p.dbSeconds.WithLabelValues(op, strconv.FormatBool(success)).Observe(seconds)
}

func (p *promRecorder) IncToolTotal(tool string, success bool) {
	p.toolTotal.WithLabelValues(tool, strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveToolSeconds(tool string, success bool, seconds float64) {
	p.toolSeconds.WithLabelValues(tool, strconv.FormatBool(success)).Observe(seconds)
}

func (p *promRecorder) IncEngineTotal(engine string, success bool) {
	p.engineTotal.WithLabelValues(engine, strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveEngineSeconds(engine string, success bool, seconds float64) {
	p.engineSeconds.WithLabelValues(engine, strconv.FormatBool(success)).Observe(seconds)
}

func (p *promRecorder) IncAnswerSource(source string) {
	p.answerSource.WithLabelValues(source).Inc()
}

func (p *promRecorder) IncStmtCache(hit bool) {
	p.stmtCache.WithLabelValues(strconv.FormatBool(hit)).Inc()
}

func (p *promRecorder) ObservePoolStats(inUse, idle int) {
	p.poolInUse.Set(float64(inUse))
	p.poolIdle.Set(float64(idle))
}

func newPromRecorder() *promRecorder {
	return &promRecorder{
		dbTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "kgqa_db_ops_total",
			Help: "Total number of store operations",
		}, []string{"op", "success"}),
		dbSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "kgqa_db_op_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"op", "success"}),
		toolTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "kgqa_tool_calls_total",
			Help: "Total number of tool and REST handler calls",
		}, []string{"tool", "success"}),
		toolSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "kgqa_tool_call_seconds",
			Help:    "Tool handler duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"tool", "success"}),
		engineTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "kgqa_engine_calls_total",
			Help: "Total number of engine invocations",
		}, []string{"engine", "success"}),
		engineSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "kgqa_engine_call_seconds",
			Help:    "Engine invocation duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"engine", "success"}),
		answerSource: prom.NewCounterVec(prom.CounterOpts{
			Name: "kgqa_answers_total",
			Help: "Answers produced, by the path that produced them",
		}, []string{"source"}),
		stmtCache: prom.NewCounterVec(prom.CounterOpts{
			Name: "kgqa_stmt_cache_total",
			Help: "Prepared statement cache lookups",
		}, []string{"hit"}),
		poolInUse: prom.NewGauge(prom.GaugeOpts{
			Name: "kgqa_db_pool_in_use",
			Help: "Open connections currently in use",
		}),
		poolIdle: prom.NewGauge(prom.GaugeOpts{
			Name: "kgqa_db_pool_idle",
			Help: "Idle open connections",
		}),
	}
}

func (p *promRecorder) register(registry *prom.Registry) {
	registry.MustRegister(
		p.dbTotal, p.dbSeconds,
		p.toolTotal, p.toolSeconds,
		p.engineTotal, p.engineSeconds,
		p.answerSource, p.stmtCache,
		p.poolInUse, p.poolIdle,
	)
}

func enablePrometheus(addr string) error {
	registry := prom.NewRegistry()
	p := newPromRecorder()
	p.register(registry)
	SetRecorder(p)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logging.Warn().Err(err).Str("addr", addr).Msg("Metrics listener stopped")
		}
	}()
	logging.Info().Str("addr", addr).Msg("Prometheus metrics enabled")
	return nil
}
