// Package crowd aggregates crowd-sourced verification votes into a
// consensus answer with a chance-corrected agreement score.
package crowd

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/graph"
	"github.com/YorHaaa/ATAI/internal/logging"
)

// VoteSource serves crowd votes partitioned by subject and by HIT batch.
type VoteSource interface {
	VotesForSubject(ctx context.Context, subject string) ([]apptype.CrowdVote, error)
	VotesForBatch(ctx context.Context, batchID string) ([]apptype.CrowdVote, error)
}

// Column names of the crowd TSV export.
const (
	colQuestion  = "HITId"
	colBatch     = "HITTypeId"
	colWorker    = "WorkerId"
	colSubject   = "Input1ID"
	colPredicate = "Input2ID"
	colAnswer    = "Input3ID"
	colLabel     = "AnswerLabel"
)

var requiredColumns = []string{colQuestion, colBatch, colSubject, colPredicate, colAnswer, colLabel}

// LoadTSV reads a crowd export file.
func LoadTSV(path string) ([]apptype.CrowdVote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open crowd data %s: %w", path, err)
	}
	defer f.Close()
	votes, err := ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read crowd data %s: %w", path, err)
	}
	return votes, nil
}

// ReadTSV parses a tab-separated crowd export with a header row. Subject,
// predicate and answer CURIEs (wd:, wdt:) are expanded to full IRIs.
// Columns other than the ones used are ignored.
func ReadTSV(r io.Reader) ([]apptype.CrowdVote, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var votes []apptype.CrowdVote
	skipped := 0
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		question, subject := field(rec, colQuestion), field(rec, colSubject)
		if question == "" || subject == "" {
			skipped++
			continue
		}
		v := apptype.CrowdVote{
			QuestionID: question,
			BatchID:    field(rec, colBatch),
			WorkerID:   field(rec, colWorker),
			Subject:    graph.EntityIRI(subject),
			Answer:     graph.Expand(field(rec, colAnswer)),
			Label:      strings.ToUpper(field(rec, colLabel)),
		}
		if p := field(rec, colPredicate); p != "" {
			v.Predicate = graph.RelationIRI(p)
		}
		votes = append(votes, v)
	}
	if skipped > 0 {
		logging.Warn().Int("rows", skipped).Msg("Skipped crowd rows without question or subject")
	}
	return votes, nil
}

// Table is an immutable in-memory VoteSource.
type Table struct {
	votes     []apptype.CrowdVote
	bySubject map[string][]int
	byBatch   map[string][]int
}

var _ VoteSource = (*Table)(nil)

// NewTable indexes votes. The slice is kept and must not be modified afterwards.
func NewTable(votes []apptype.CrowdVote) *Table {
	t := &Table{
		votes:     votes,
		bySubject: make(map[string][]int),
		byBatch:   make(map[string][]int),
	}
	for i, v := range votes {
		t.bySubject[v.Subject] = append(t.bySubject[v.Subject], i)
		t.byBatch[v.BatchID] = append(t.byBatch[v.BatchID], i)
	}
	return t
}

// Len returns the number of votes.
func (t *Table) Len() int { return len(t.votes) }

// VotesForSubject implements VoteSource.
func (t *Table) VotesForSubject(_ context.Context, subject string) ([]apptype.CrowdVote, error) {
	return t.pick(t.bySubject[subject]), nil
}

// VotesForBatch implements VoteSource.
func (t *Table) VotesForBatch(_ context.Context, batchID string) ([]apptype.CrowdVote, error) {
	return t.pick(t.byBatch[batchID]), nil
}

func (t *Table) pick(idx []int) []apptype.CrowdVote {
	out := make([]apptype.CrowdVote, 0, len(idx))
	for _, i := range idx {
		out = append(out, t.votes[i])
	}
	return out
}
