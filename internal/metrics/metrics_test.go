package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	noopRecorder
	mu      sync.Mutex
	db      map[string]int
	tools   map[string]int
	engines map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{db: map[string]int{}, tools: map[string]int{}, engines: map[string]int{}}
}

func (c *countingRecorder) IncDBOpTotal(op string, _ bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db[op]++
}

func (c *countingRecorder) IncToolTotal(tool string, _ bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tools[tool]++
}

func (c *countingRecorder) IncEngineTotal(engine string, _ bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engines[engine]++
}

func TestTimersReportToRecorder(t *testing.T) {
	rec := newCountingRecorder()
	SetRecorder(rec)
	t.Cleanup(func() { SetRecorder(&noopRecorder{}) })

	TimeOp("db_objects")(true)
	TimeTool("answer_question")(false)
	TimeEngine("recommend")(true)
	TimeEngine("recommend")(true)

	assert.Equal(t, 1, rec.db["db_objects"])
	assert.Equal(t, 1, rec.tools["answer_question"])
	assert.Equal(t, 2, rec.engines["recommend"])
}

func TestInitDisabledKeepsNoop(t *testing.T) {
	require.NoError(t, Init(false, ""))
	_, ok := Default().(*noopRecorder)
	assert.True(t, ok)
}
