package labels

import (
	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/logging"
)

// Resolver maps free-text mentions to graph identifiers. It never fails:
// a mention with no exact label falls back to the closest label.
type Resolver struct {
	index           *Index
	entityMatcher   Matcher
	relationMatcher Matcher
	synonyms        Synonyms
}

// NewResolver builds a Resolver that scans the index label maps linearly
// and rewrites relation mentions with DefaultRelationSynonyms.
func NewResolver(index *Index) *Resolver {
	return &Resolver{
		index:           index,
		entityMatcher:   index.Entities(),
		relationMatcher: index.Relations(),
		synonyms:        NewSynonyms(DefaultRelationSynonyms),
	}
}

// WithSynonyms replaces the relation synonym table. An empty table turns
// synonym rewriting off.
func (r *Resolver) WithSynonyms(table map[string][]string) *Resolver {
	out := *r
	out.synonyms = NewSynonyms(table)
	return &out
}

// WithMatchers replaces the nearest-label strategies. Nil keeps the current one.
func (r *Resolver) WithMatchers(entity, relation Matcher) *Resolver {
	out := *r
	if entity != nil {
		out.entityMatcher = entity
	}
	if relation != nil {
		out.relationMatcher = relation
	}
	return &out
}

// Index returns the underlying label index.
func (r *Resolver) Index() *Index { return r.index }

// ResolveEntity maps an entity mention to an identifier.
func (r *Resolver) ResolveEntity(mention string) string {
	return Lookup(r.index.Entities(), r.entityMatcher, mention)
}

// ResolveRelation maps a relation mention to an identifier. A synonym is
// rewritten to its label first, provided the graph carries that label.
func (r *Resolver) ResolveRelation(mention string) string {
	if label, ok := r.synonyms.Canonical(mention); ok {
		if id, ok := r.index.Relations().First(label); ok {
			return id
		}
	}
	return Lookup(r.index.Relations(), r.relationMatcher, mention)
}

// Resolve maps both mentions independently.
func (r *Resolver) Resolve(entityMention, relationMention string) apptype.ResolvedQuery {
	q := apptype.ResolvedQuery{
		EntityID:   r.ResolveEntity(entityMention),
		RelationID: r.ResolveRelation(relationMention),
	}
	logging.Debug().
		Str("entity_mention", entityMention).
		Str("relation_mention", relationMention).
		Str("entity", q.EntityID).
		Str("relation", q.RelationID).
		Msg("Resolved mentions")
	return q
}
