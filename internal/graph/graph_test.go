package graph

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/knakk/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YorHaaa/ATAI/internal/apptype"
)

const sampleNT = `<http://www.wikidata.org/entity/Q1> <http://www.w3.org/2000/01/rdf-schema#label> "Good Movie"@en .
<http://www.wikidata.org/entity/Q1> <http://www.wikidata.org/prop/direct/P57> <http://www.wikidata.org/entity/Q2> .
<http://www.wikidata.org/entity/Q1> <http://www.wikidata.org/prop/direct/P57> <http://www.wikidata.org/entity/Q3> .
<http://www.wikidata.org/entity/Q1> <http://www.wikidata.org/prop/direct/P2130> "1000000"^^<http://www.w3.org/2001/XMLSchema#decimal> .
<http://www.wikidata.org/entity/Q2> <http://www.w3.org/2000/01/rdf-schema#label> "Jane Director"@en .
<http://www.wikidata.org/entity/Q2> <http://www.w3.org/2000/01/rdf-schema#label> "Jeanne Réalisatrice"@fr .
<http://www.wikidata.org/entity/Q3> <http://www.w3.org/2000/01/rdf-schema#label> "Joe Director"@en .
`

func loadSample(t *testing.T) *Graph {
	t.Helper()
	g, err := Decode(strings.NewReader(sampleNT), rdf.NTriples)
	require.NoError(t, err)
	return g
}

func TestDecodeKeepsOrderAndTerms(t *testing.T) {
	g := loadSample(t)
	require.Equal(t, 7, g.Len())

	first := g.Triples()[0]
	assert.Equal(t, NSEntity+"Q1", first.Subject.Value)
	assert.Equal(t, RDFSLabel, first.Predicate.Value)
	assert.True(t, first.Object.IsLiteral())
	assert.Equal(t, "Good Movie", first.Object.Value)
	assert.Equal(t, "en", first.Object.Lang)

	cost := g.Triples()[3].Object
	assert.Equal(t, "1000000", cost.Value)
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#decimal", cost.Datatype)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.nt")
	require.NoError(t, os.WriteFile(path, []byte(sampleNT), 0o644))
	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, g.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.nt"))
	assert.Error(t, err)
}

func TestObjectsAndLabels(t *testing.T) {
	g := loadSample(t)
	ctx := context.Background()

	objs, err := g.Objects(ctx, NSEntity+"Q1", NSDirect+"P2130")
	require.NoError(t, err)
	assert.Equal(t, []string{"1000000"}, objs)

	labels, err := g.ObjectLabels(ctx, NSEntity+"Q1", PropDirector, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Director", "Joe Director"}, labels)

	fr, err := g.ObjectLabels(ctx, NSEntity+"Q1", PropDirector, "fr")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jeanne Réalisatrice"}, fr)

	none, err := g.Objects(ctx, NSEntity+"Q404", PropDirector)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMatch(t *testing.T) {
	g := loadSample(t)

	tests := []struct {
		name    string
		pattern Pattern
		limit   int
		want    int
	}{
		{"all", Pattern{}, 0, 7},
		{"limited", Pattern{}, 2, 2},
		{"by predicate", Pattern{Predicate: RDFSLabel}, 0, 4},
		{"by object iri", Pattern{Object: NSEntity + "Q2"}, 0, 1},
		{"by literal object", Pattern{Object: "Joe Director"}, 0, 1},
		{"subject and predicate", Pattern{Subject: NSEntity + "Q1", Predicate: PropDirector}, 0, 2},
		{"unknown subject", Pattern{Subject: NSEntity + "Q9"}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, g.Match(tt.pattern, tt.limit), tt.want)
		})
	}
}

func TestClosureHandlesCycles(t *testing.T) {
	g := New()
	sub := func(child, parent string) {
		g.Add(apptype.Triple{
			Subject:   apptype.IRI(NSEntity + child),
			Predicate: apptype.IRI(PropSubclassOf),
			Object:    apptype.IRI(NSEntity + parent),
		})
	}
	sub("Q2", "Q1")
	sub("Q3", "Q2")
	sub("Q4", "Q1")
	sub("Q1", "Q3") // cycle back to the root

	got := g.Closure(NSEntity+"Q1", PropSubclassOf)
	assert.Equal(t, []string{NSEntity + "Q1", NSEntity + "Q2", NSEntity + "Q4", NSEntity + "Q3"}, got)
}

func TestNamespaceHelpers(t *testing.T) {
	assert.Equal(t, "Q42", LocalName(NSEntity+"Q42"))
	assert.True(t, IsEntity(NSEntity+"Q42"))
	assert.False(t, IsEntity(NSDirect+"P57"))
	assert.True(t, IsRelation(NSDirect+"P57"))
	assert.True(t, IsRelation(NSEntity+"P57"))
	assert.Equal(t, NSDirect+"P57", NormalizeRelation(NSEntity+"P57"))
	assert.Equal(t, NSDDIS+"tag", NormalizeRelation(NSDDIS+"tag"))

	assert.Equal(t, NSEntity+"Q11424", Expand("wd:Q11424"))
	assert.Equal(t, NSDirect+"P31", Expand("<"+NSDirect+"P31>"))
	assert.Equal(t, "foo:bar", Expand("foo:bar"))
	assert.Equal(t, NSEntity+"Q5", EntityIRI("Q5"))
	assert.Equal(t, NSDirect+"P57", RelationIRI("P57"))
	assert.Equal(t, NSDirect+"P57", RelationIRI("wd:P57"))
}
