//go:build !noprom

package metrics

import (
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromRecorderCounts(t *testing.T) {
	p := newPromRecorder()
	reg := prom.NewRegistry()
	p.register(reg)

	p.IncAnswerSource("factual")
	p.IncAnswerSource("factual")
	p.IncEngineTotal("consensus", true)
	p.ObservePoolStats(2, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.answerSource.WithLabelValues("factual")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.engineTotal.WithLabelValues("consensus", "true")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.poolIdle))

	n, err := testutil.GatherAndCount(reg, "kgqa_answers_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
