// Package qa answers a question given its entity and relation mentions by
// consulting crowd votes, the graph and the embedding space in turn.
package qa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/YorHaaa/ATAI/internal/answer"
	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/crowd"
	"github.com/YorHaaa/ATAI/internal/labels"
	"github.com/YorHaaa/ATAI/internal/logging"
	"github.com/YorHaaa/ATAI/internal/metrics"
)

// Options adjusts a single Ask call.
type Options struct {
	// SkipCrowd ignores crowd votes even when some exist.
	SkipCrowd bool
	// FactualOnly disables the embedding fallback.
	FactualOnly bool
}

// Pipeline chains resolution, crowd consensus and the answer engine.
type Pipeline struct {
	resolver  *labels.Resolver
	answers   *answer.Engine
	consensus *crowd.Engine
}

// NewPipeline builds a Pipeline. consensus may be nil when no crowd data is loaded.
func NewPipeline(resolver *labels.Resolver, answers *answer.Engine, consensus *crowd.Engine) *Pipeline {
	return &Pipeline{resolver: resolver, answers: answers, consensus: consensus}
}

// Ask resolves the mentions and answers from crowd votes when the entity
// has any, from the graph otherwise, and from the embedding space when the
// graph has nothing. An empty relation mention asks about the entity itself
// and can only be answered by the crowd.
func (p *Pipeline) Ask(ctx context.Context, entityMention, relationMention string, opts Options) (apptype.Answer, error) {
	done := metrics.TimeEngine("qa")
	success := false
	defer func() { done(success) }()

	q := p.resolver.Resolve(entityMention, relationMention)
	entityOnly := strings.TrimSpace(relationMention) == ""
	if entityOnly {
		q.RelationID = ""
	}

	if p.consensus != nil && !opts.SkipCrowd && q.EntityID != "" {
		res, err := p.consensus.Consensus(ctx, q.EntityID, q.RelationID)
		switch {
		case err == nil:
			metrics.Default().IncAnswerSource(string(apptype.SourceCrowd))
			success = true
			return apptype.Answer{
				Query:     q,
				Source:    apptype.SourceCrowd,
				Values:    []string{res.Answer},
				Consensus: res,
			}, nil
		case !errors.Is(err, crowd.ErrNoVotes):
			return apptype.Answer{}, fmt.Errorf("failed to compute consensus: %w", err)
		}
	}

	if entityOnly {
		logging.Ctx(ctx).Debug().Str("entity", q.EntityID).Msg("No relation and no crowd votes")
		metrics.Default().IncAnswerSource(string(apptype.SourceNone))
		success = true
		return apptype.Answer{Query: q, Source: apptype.SourceNone, Values: []string{}}, nil
	}

	ans, err := p.answers.Answer(ctx, q, opts.FactualOnly)
	if err != nil {
		return apptype.Answer{}, err
	}
	success = true
	return ans, nil
}
