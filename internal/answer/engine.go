// Package answer answers resolved (entity, relation) questions from the
// graph and, when the graph has nothing, from the embedding space.
package answer

import (
	"context"
	"errors"
	"fmt"

	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/embeddings"
	"github.com/YorHaaa/ATAI/internal/graph"
	"github.com/YorHaaa/ATAI/internal/labels"
	"github.com/YorHaaa/ATAI/internal/logging"
	"github.com/YorHaaa/ATAI/internal/metrics"
)

// DefaultLanguage is the label language used for entity-valued answers.
const DefaultLanguage = "en"

// Engine holds read-only references to the graph store, the label index
// and an optional embedding space.
type Engine struct {
	store graph.Store
	index *labels.Index
	space embeddings.Provider
	lang  string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguage sets the label language of entity-valued answers.
func WithLanguage(lang string) Option {
	return func(e *Engine) {
		if lang != "" {
			e.lang = lang
		}
	}
}

// WithEmbeddings enables the embedding fallback.
func WithEmbeddings(p embeddings.Provider) Option {
	return func(e *Engine) { e.space = p }
}

// NewEngine builds an Engine. Without WithEmbeddings the fallback yields no answer.
func NewEngine(store graph.Store, index *labels.Index, opts ...Option) *Engine {
	e := &Engine{store: store, index: index, lang: DefaultLanguage}
	for _, o := range opts {
		o(e)
	}
	return e
}

// HasEmbeddings reports whether the fallback path is available.
func (e *Engine) HasEmbeddings() bool { return e.space != nil }

// AnswerFactual queries the graph. Literal relations return the object
// values; every other relation returns the labels of its objects in the
// configured language.
func (e *Engine) AnswerFactual(ctx context.Context, entityID, relationID string) ([]string, error) {
	if entityID == "" || relationID == "" {
		return nil, nil
	}
	var (
		out []string
		err error
	)
	kind := e.index.Kind(relationID)
	switch kind {
	case labels.Literal:
		out, err = e.store.Objects(ctx, entityID, relationID)
	default:
		out, err = e.store.ObjectLabels(ctx, entityID, relationID, e.lang)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s of %s: %w", relationID, entityID, err)
	}
	logging.Ctx(ctx).Debug().
		Str("entity", entityID).
		Str("relation", relationID).
		Stringer("kind", kind).
		Int("results", len(out)).
		Msg("Factual query")
	return out, nil
}

// AnswerEmbedding predicts the tail of (entity, relation) as the entity
// nearest to entity+relation and returns its label, or its identifier when
// it has none. ok is false when either identifier has no embedding.
func (e *Engine) AnswerEmbedding(entityID, relationID string) (string, bool) {
	if e.space == nil {
		return "", false
	}
	head, err := e.space.Entity(entityID)
	if err != nil {
		logEmbeddingMiss(err)
		return "", false
	}
	rel, err := e.space.Relation(relationID)
	if err != nil {
		logEmbeddingMiss(err)
		return "", false
	}
	id, dist, ok := e.space.Nearest(embeddings.Translate(head, rel))
	if !ok {
		return "", false
	}
	logging.Debug().Str("tail", id).Float64("distance", dist).Msg("Embedding prediction")
	if l, ok := e.index.EntityLabel(id); ok {
		return l, true
	}
	return id, true
}

func logEmbeddingMiss(err error) {
	if errors.Is(err, embeddings.ErrNotFound) {
		logging.Debug().Err(err).Msg("Skipping embedding answer")
		return
	}
	logging.Warn().Err(err).Msg("Embedding lookup failed")
}

// Answer runs the factual path and falls back to the embedding path when
// it returns nothing and factualOnly is false.
func (e *Engine) Answer(ctx context.Context, q apptype.ResolvedQuery, factualOnly bool) (apptype.Answer, error) {
	done := metrics.TimeEngine("answer")
	success := false
	defer func() { done(success) }()

	res := apptype.Answer{Query: q, Source: apptype.SourceNone, Values: []string{}}
	values, err := e.AnswerFactual(ctx, q.EntityID, q.RelationID)
	if err != nil {
		return res, err
	}
	if len(values) > 0 {
		res.Source, res.Values = apptype.SourceFactual, values
	} else if !factualOnly {
		if v, ok := e.AnswerEmbedding(q.EntityID, q.RelationID); ok {
			res.Source, res.Values = apptype.SourceEmbedding, []string{v}
		}
	}
	metrics.Default().IncAnswerSource(string(res.Source))
	success = true
	return res, nil
}
