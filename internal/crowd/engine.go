package crowd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/graph"
	"github.com/YorHaaa/ATAI/internal/logging"
	"github.com/YorHaaa/ATAI/internal/metrics"
)

// ErrNoVotes is returned when the entity has no crowd rows at all.
var ErrNoVotes = errors.New("no crowd votes")

// LabelFunc maps an entity identifier to its display label.
type LabelFunc func(id string) (string, bool)

// Engine computes crowd consensus for resolved questions.
type Engine struct {
	source VoteSource
	label  LabelFunc
}

// NewEngine builds an Engine. label may be nil, in which case entity
// answers are returned as identifiers.
func NewEngine(source VoteSource, label LabelFunc) *Engine {
	if label == nil {
		label = func(string) (string, bool) { return "", false }
	}
	return &Engine{source: source, label: label}
}

// Consensus aggregates the votes about (entityID, relationID). When no
// vote matches the pair, every vote about the entity is used and the result
// is flagged EntityOnly: the answer may then belong to a different question
// than the one asked.
func (e *Engine) Consensus(ctx context.Context, entityID, relationID string) (*apptype.ConsensusResult, error) {
	done := metrics.TimeEngine("consensus")
	success := false
	defer func() { done(success) }()

	rows, err := e.source.VotesForSubject(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes for %s: %w", entityID, err)
	}
	if len(rows) == 0 {
		success = true
		return nil, ErrNoVotes
	}

	selected := make([]apptype.CrowdVote, 0, len(rows))
	if relationID != "" {
		relationID = graph.NormalizeRelation(relationID)
		for _, v := range rows {
			if v.Predicate == relationID {
				selected = append(selected, v)
			}
		}
	}
	res := &apptype.ConsensusResult{}
	if len(selected) == 0 {
		selected = rows
		res.EntityOnly = true
	}

	for _, v := range selected {
		switch v.Label {
		case apptype.VoteCorrect:
			res.Support++
		case apptype.VoteIncorrect:
			res.Reject++
		}
	}
	res.Answer = e.displayAnswer(selected[0].Answer)
	res.BatchID = selected[0].BatchID

	batch, err := e.source.VotesForBatch(ctx, res.BatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch %s: %w", res.BatchID, err)
	}
	kappa, err := FleissKappa(batch)
	switch {
	case errors.Is(err, ErrAgreementUndefined):
		logging.Ctx(ctx).Debug().Str("batch", res.BatchID).Msg("Agreement not computable")
	case err != nil:
		return nil, err
	default:
		res.Agreement = &kappa
	}

	logging.Ctx(ctx).Debug().
		Str("entity", entityID).
		Str("relation", relationID).
		Bool("entity_only", res.EntityOnly).
		Int("support", res.Support).
		Int("reject", res.Reject).
		Msg("Crowd consensus")
	success = true
	return res, nil
}

func (e *Engine) displayAnswer(answer string) string {
	if !strings.HasPrefix(answer, graph.NSEntity) || !graph.IsEntity(answer) {
		return answer
	}
	if l, ok := e.label(answer); ok {
		return l
	}
	return answer
}
