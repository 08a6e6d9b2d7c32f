package graph

import (
	"context"
	"strings"

	"github.com/YorHaaa/ATAI/internal/apptype"
)

// Store is the pattern-query boundary used by the answer engine. Both the
// in-memory Graph and the libsql-backed store satisfy it.
type Store interface {
	// Objects returns the object values of every (subject, predicate, ?o) triple.
	Objects(ctx context.Context, subject, predicate string) ([]string, error)
	// ObjectLabels returns the rdfs:label values in the given language of
	// every object ?o with (subject, predicate, ?o).
	ObjectLabels(ctx context.Context, subject, predicate, lang string) ([]string, error)
}

// Pattern selects triples. Empty fields match anything.
type Pattern struct {
	Subject   string
	Predicate string
	Object    string
}

// Graph is an in-memory triple set that keeps insertion order. It is built
// once with Add and then only read, so concurrent readers need no locking.
type Graph struct {
	triples     []apptype.Triple
	bySubject   map[string][]int
	byPredicate map[string][]int
	byObject    map[string][]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		bySubject:   make(map[string][]int),
		byPredicate: make(map[string][]int),
		byObject:    make(map[string][]int),
	}
}

// Add appends a triple.
func (g *Graph) Add(t apptype.Triple) {
	i := len(g.triples)
	g.triples = append(g.triples, t)
	g.bySubject[t.Subject.Value] = append(g.bySubject[t.Subject.Value], i)
	g.byPredicate[t.Predicate.Value] = append(g.byPredicate[t.Predicate.Value], i)
	if t.Object.IsIRI() {
		g.byObject[t.Object.Value] = append(g.byObject[t.Object.Value], i)
	}
}

// Len returns the number of triples.
func (g *Graph) Len() int { return len(g.triples) }

// Triples returns all triples in insertion order. The slice must not be modified.
func (g *Graph) Triples() []apptype.Triple { return g.triples }

// WithPredicate returns the triples using predicate, in insertion order.
func (g *Graph) WithPredicate(predicate string) []apptype.Triple {
	idx := g.byPredicate[predicate]
	out := make([]apptype.Triple, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.triples[i])
	}
	return out
}

// Match returns up to limit triples matching p in insertion order. A
// non-positive limit means no limit.
func (g *Graph) Match(p Pattern, limit int) []apptype.Triple {
	var candidates []int
	scanAll := true
	pick := func(idx []int, ok bool) {
		if !ok {
			return
		}
		if scanAll || len(idx) < len(candidates) {
			candidates = idx
			scanAll = false
		}
	}
	if p.Subject != "" {
		idx, ok := g.bySubject[p.Subject]
		if !ok {
			return nil
		}
		pick(idx, true)
	}
	if p.Predicate != "" {
		idx, ok := g.byPredicate[p.Predicate]
		if !ok {
			return nil
		}
		pick(idx, true)
	}
	if p.Object != "" {
		idx, ok := g.byObject[p.Object]
		pick(idx, ok)
	}

	var out []apptype.Triple
	visit := func(t apptype.Triple) bool {
		if p.Subject != "" && t.Subject.Value != p.Subject {
			return true
		}
		if p.Predicate != "" && t.Predicate.Value != p.Predicate {
			return true
		}
		if p.Object != "" && t.Object.Value != p.Object {
			return true
		}
		out = append(out, t)
		return limit <= 0 || len(out) < limit
	}
	if scanAll {
		for _, t := range g.triples {
			if !visit(t) {
				break
			}
		}
		return out
	}
	for _, i := range candidates {
		if !visit(g.triples[i]) {
			break
		}
	}
	return out
}

// Objects implements Store.
func (g *Graph) Objects(_ context.Context, subject, predicate string) ([]string, error) {
	var out []string
	for _, t := range g.Match(Pattern{Subject: subject, Predicate: predicate}, 0) {
		out = append(out, t.Object.Value)
	}
	return out, nil
}

// ObjectLabels implements Store.
func (g *Graph) ObjectLabels(_ context.Context, subject, predicate, lang string) ([]string, error) {
	var out []string
	for _, t := range g.Match(Pattern{Subject: subject, Predicate: predicate}, 0) {
		if !t.Object.IsIRI() {
			continue
		}
		out = append(out, g.Labels(t.Object.Value, lang)...)
	}
	return out, nil
}

// Labels returns the rdfs:label values of subject in lang. An empty lang
// returns every label.
func (g *Graph) Labels(subject, lang string) []string {
	var out []string
	for _, t := range g.Match(Pattern{Subject: subject, Predicate: RDFSLabel}, 0) {
		if !t.Object.IsLiteral() {
			continue
		}
		if lang != "" && !strings.EqualFold(t.Object.Lang, lang) {
			continue
		}
		out = append(out, t.Object.Value)
	}
	return out
}

// Subjects returns the distinct subjects s with (s, predicate, object), in
// insertion order.
func (g *Graph) Subjects(predicate, object string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range g.Match(Pattern{Predicate: predicate, Object: object}, 0) {
		if _, ok := seen[t.Subject.Value]; ok {
			continue
		}
		seen[t.Subject.Value] = struct{}{}
		out = append(out, t.Subject.Value)
	}
	return out
}

// Closure walks predicate edges backwards from root (every s with
// (s, predicate, x) where x is already in the set) and returns the reached
// nodes in breadth-first order, root first. Cycles are tolerated.
func (g *Graph) Closure(root, predicate string) []string {
	visited := map[string]struct{}{root: {}}
	order := []string{root}
	for head := 0; head < len(order); head++ {
		for _, child := range g.Subjects(predicate, order[head]) {
			if _, ok := visited[child]; ok {
				continue
			}
			visited[child] = struct{}{}
			order = append(order, child)
		}
	}
	return order
}
