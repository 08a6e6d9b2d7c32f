package labels

import (
	"github.com/YorHaaa/ATAI/internal/graph"
	"github.com/YorHaaa/ATAI/internal/logging"
)

// RelationKind tells the answer engine which query shape a relation needs.
type RelationKind int

const (
	// EntityRef relations point at other entities whose label is the answer.
	EntityRef RelationKind = iota
	// Literal relations carry the answer value directly.
	Literal
)

func (k RelationKind) String() string {
	if k == Literal {
		return "literal"
	}
	return "entity_ref"
}

// DefaultLiteralRelations lists the relation labels whose objects are terminal values.
var DefaultLiteralRelations = []string{
	"cost",
	"box office",
	"IMDb ID",
	"publication date",
	"node description",
	"description",
	"image",
}

// Index holds the label mappings for entities and relations.
type Index struct {
	entityLabels   map[string]string
	relationLabels map[string]string
	entities       *LabelMap
	relations      *LabelMap
	kinds          map[string]RelationKind
}

// BuildIndex walks every rdfs:label triple of g. An identifier with several
// labels keeps the last one seen but is ordered by its first appearance.
// literalRelations defaults to DefaultLiteralRelations when nil.
func BuildIndex(g *graph.Graph, literalRelations []string) *Index {
	if literalRelations == nil {
		literalRelations = DefaultLiteralRelations
	}

	var entityOrder, relationOrder []string
	idx := &Index{
		entityLabels:   make(map[string]string),
		relationLabels: make(map[string]string),
		entities:       NewLabelMap(),
		relations:      NewLabelMap(),
		kinds:          make(map[string]RelationKind),
	}

	for _, t := range g.WithPredicate(graph.RDFSLabel) {
		if !t.Subject.IsIRI() || !t.Object.IsLiteral() {
			continue
		}
		id := t.Subject.Value
		switch {
		case graph.IsEntity(id):
			if _, ok := idx.entityLabels[id]; !ok {
				entityOrder = append(entityOrder, id)
			}
			idx.entityLabels[id] = t.Object.Value
		case graph.IsRelation(id):
			id = graph.NormalizeRelation(id)
			if _, ok := idx.relationLabels[id]; !ok {
				relationOrder = append(relationOrder, id)
			}
			idx.relationLabels[id] = t.Object.Value
		}
	}

	for _, id := range entityOrder {
		idx.entities.Add(idx.entityLabels[id], id)
	}
	literal := make(map[string]struct{}, len(literalRelations))
	for _, l := range literalRelations {
		literal[l] = struct{}{}
	}
	for _, id := range relationOrder {
		label := idx.relationLabels[id]
		idx.relations.Add(label, id)
		if _, ok := literal[label]; ok {
			idx.kinds[id] = Literal
		}
	}

	logging.Info().
		Int("entities", len(entityOrder)).
		Int("relations", len(relationOrder)).
		Int("literal_relations", len(idx.kinds)).
		Msg("Label index built")
	return idx
}

// EntityLabel returns the canonical label of an entity identifier.
func (x *Index) EntityLabel(id string) (string, bool) {
	l, ok := x.entityLabels[id]
	return l, ok
}

// RelationLabel returns the canonical label of a relation identifier.
func (x *Index) RelationLabel(id string) (string, bool) {
	l, ok := x.relationLabels[graph.NormalizeRelation(id)]
	return l, ok
}

// Entities returns the label to entity mapping.
func (x *Index) Entities() *LabelMap { return x.entities }

// Relations returns the label to relation mapping.
func (x *Index) Relations() *LabelMap { return x.relations }

// Kind classifies a relation identifier. Unknown relations are EntityRef.
func (x *Index) Kind(relationID string) RelationKind {
	return x.kinds[graph.NormalizeRelation(relationID)]
}
