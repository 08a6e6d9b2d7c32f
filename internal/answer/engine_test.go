package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/embeddings"
	"github.com/YorHaaa/ATAI/internal/graph"
	"github.com/YorHaaa/ATAI/internal/labels"
)

const (
	movie    = graph.NSEntity + "Q100"
	director = graph.NSEntity + "Q200"
	other    = graph.NSEntity + "Q300"
	unlabel  = graph.NSEntity + "Q400"
	pDir     = graph.NSDirect + "P57"
	pCost    = graph.NSDirect + "P2130"
	pGenre   = graph.NSDirect + "P136"
)

func add(g *graph.Graph, s, p string, o apptype.Term) {
	g.Add(apptype.Triple{Subject: apptype.IRI(s), Predicate: apptype.IRI(p), Object: o})
}

func fixture(t *testing.T) (*graph.Graph, *labels.Index) {
	t.Helper()
	g := graph.New()
	add(g, movie, graph.RDFSLabel, apptype.Literal("Heat", "en"))
	add(g, director, graph.RDFSLabel, apptype.Literal("Michael Mann", "en"))
	add(g, director, graph.RDFSLabel, apptype.Literal("マイケル・マン", "ja"))
	add(g, other, graph.RDFSLabel, apptype.Literal("Crime Film", "en"))
	add(g, pDir, graph.RDFSLabel, apptype.Literal("director", "en"))
	add(g, pCost, graph.RDFSLabel, apptype.Literal("cost", "en"))
	add(g, pGenre, graph.RDFSLabel, apptype.Literal("genre", "en"))
	add(g, movie, pDir, apptype.IRI(director))
	add(g, movie, pCost, apptype.Term{Kind: apptype.TermLiteral, Value: "60000000"})
	return g, labels.BuildIndex(g, nil)
}

func toySpace(t *testing.T) *embeddings.Space {
	t.Helper()
	ents, err := embeddings.NewMatrix([][]float32{
		{0, 0}, // movie
		{3, 3}, // director
		{1, 0}, // other: movie + genre
		{9, 9}, // unlabeled
	})
	require.NoError(t, err)
	rels, err := embeddings.NewMatrix([][]float32{{1, 0}})
	require.NoError(t, err)
	s, err := embeddings.NewSpace(ents,
		map[int]string{0: movie, 1: director, 2: other, 3: unlabel},
		rels, map[int]string{0: pGenre})
	require.NoError(t, err)
	return s
}

func TestAnswerFactualLiteral(t *testing.T) {
	g, idx := fixture(t)
	e := NewEngine(g, idx)
	got, err := e.AnswerFactual(context.Background(), movie, pCost)
	require.NoError(t, err)
	assert.Equal(t, []string{"60000000"}, got)
}

func TestAnswerFactualEntityRefReturnsEnglishLabels(t *testing.T) {
	g, idx := fixture(t)
	e := NewEngine(g, idx)
	got, err := e.AnswerFactual(context.Background(), movie, pDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Michael Mann"}, got)

	ja, err := NewEngine(g, idx, WithLanguage("ja")).AnswerFactual(context.Background(), movie, pDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"マイケル・マン"}, ja)
}

func TestAnswerFallsBackToEmbedding(t *testing.T) {
	g, idx := fixture(t)
	e := NewEngine(g, idx, WithEmbeddings(toySpace(t)))
	require.True(t, e.HasEmbeddings())

	res, err := e.Answer(context.Background(), apptype.ResolvedQuery{EntityID: movie, RelationID: pGenre}, false)
	require.NoError(t, err)
	assert.Equal(t, apptype.SourceEmbedding, res.Source)
	assert.Equal(t, []string{"Crime Film"}, res.Values)

	factualOnly, err := e.Answer(context.Background(), apptype.ResolvedQuery{EntityID: movie, RelationID: pGenre}, true)
	require.NoError(t, err)
	assert.Equal(t, apptype.SourceNone, factualOnly.Source)
	assert.Empty(t, factualOnly.Values)
}

func TestAnswerPrefersFactual(t *testing.T) {
	g, idx := fixture(t)
	e := NewEngine(g, idx, WithEmbeddings(toySpace(t)))
	res, err := e.Answer(context.Background(), apptype.ResolvedQuery{EntityID: movie, RelationID: pDir}, false)
	require.NoError(t, err)
	assert.Equal(t, apptype.SourceFactual, res.Source)
	assert.Equal(t, []string{"Michael Mann"}, res.Values)
}

func TestAnswerEmbeddingMissingVectors(t *testing.T) {
	g, idx := fixture(t)
	e := NewEngine(g, idx, WithEmbeddings(toySpace(t)))

	_, ok := e.AnswerEmbedding(graph.NSEntity+"Q999", pGenre)
	assert.False(t, ok)
	_, ok = e.AnswerEmbedding(movie, pDir) // relation has no vector
	assert.False(t, ok)

	res, err := e.Answer(context.Background(), apptype.ResolvedQuery{EntityID: graph.NSEntity + "Q999", RelationID: pGenre}, false)
	require.NoError(t, err)
	assert.Equal(t, apptype.SourceNone, res.Source)

	_, ok = NewEngine(g, idx).AnswerEmbedding(movie, pGenre)
	assert.False(t, ok)
}

func TestAnswerEmbeddingUnlabeledTailReturnsIdentifier(t *testing.T) {
	g, idx := fixture(t)
	ents, _ := embeddings.NewMatrix([][]float32{{0, 0}, {1, 0}})
	rels, _ := embeddings.NewMatrix([][]float32{{1, 0}})
	space, err := embeddings.NewSpace(ents, map[int]string{0: movie, 1: unlabel}, rels, map[int]string{0: pGenre})
	require.NoError(t, err)

	got, ok := NewEngine(g, idx, WithEmbeddings(space)).AnswerEmbedding(movie, pGenre)
	require.True(t, ok)
	assert.Equal(t, unlabel, got)
}

func TestAnswerIsIdempotent(t *testing.T) {
	g, idx := fixture(t)
	e := NewEngine(g, idx, WithEmbeddings(toySpace(t)))
	q := apptype.ResolvedQuery{EntityID: movie, RelationID: pGenre}
	first, err := e.Answer(context.Background(), q, false)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := e.Answer(context.Background(), q, false)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

type failingStore struct{}

func (failingStore) Objects(context.Context, string, string) ([]string, error) {
	return nil, errors.New("store down")
}

func (failingStore) ObjectLabels(context.Context, string, string, string) ([]string, error) {
	return nil, errors.New("store down")
}

func TestAnswerPropagatesStoreErrors(t *testing.T) {
	_, idx := fixture(t)
	e := NewEngine(failingStore{}, idx)
	_, err := e.Answer(context.Background(), apptype.ResolvedQuery{EntityID: movie, RelationID: pDir}, false)
	assert.ErrorContains(t, err, "store down")

	// empty identifiers never reach the store
	res, err := e.Answer(context.Background(), apptype.ResolvedQuery{}, false)
	require.NoError(t, err)
	assert.Equal(t, apptype.SourceNone, res.Source)
}
