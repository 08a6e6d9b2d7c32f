package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/crowd"
	"github.com/YorHaaa/ATAI/internal/graph"
)

func setupTestDB(t *testing.T) (*DBManager, func()) {
	config := NewConfig()
	// Each test gets its own shared-cache in-memory database so that every
	// pooled connection sees the same data.
	config.URL = "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	config.BatchSize = 2
	db, err := NewDBManager(config)
	require.NoError(t, err)

	cleanup := func() {
		err := db.Close()
		assert.NoError(t, err)
	}
	return db, cleanup
}

const (
	heat  = graph.NSEntity + "Q1"
	mann  = graph.NSEntity + "Q2"
	crime = graph.NSEntity + "Q3"
)

func sampleTriples() []apptype.Triple {
	tr := func(s, p string, o apptype.Term) apptype.Triple {
		return apptype.Triple{Subject: apptype.IRI(s), Predicate: apptype.IRI(p), Object: o}
	}
	return []apptype.Triple{
		tr(heat, graph.RDFSLabel, apptype.Literal("Heat", "en")),
		tr(heat, graph.PropDirector, apptype.IRI(mann)),
		tr(heat, graph.PropGenre, apptype.IRI(crime)),
		tr(heat, graph.PropPubDate, apptype.Term{Kind: apptype.TermLiteral, Value: "1995-12-15", Datatype: "http://www.w3.org/2001/XMLSchema#date"}),
		tr(mann, graph.RDFSLabel, apptype.Literal("Michael Mann", "en")),
		tr(mann, graph.RDFSLabel, apptype.Literal("Michael Mann", "de")),
		tr(crime, graph.RDFSLabel, apptype.Literal("crime film", "EN")),
		{Subject: apptype.Term{Kind: apptype.TermBlank, Value: "b0"}, Predicate: apptype.IRI(graph.PropGenre), Object: apptype.IRI(crime)},
	}
}

func TestConnectionURL(t *testing.T) {
	assert.Equal(t, "file:./atai.db", connectionURL("file:./atai.db", "secret"))
	assert.Equal(t, "libsql://db.turso.io?authToken=secret", connectionURL("libsql://db.turso.io", "secret"))
	assert.Equal(t, "libsql://db.turso.io", connectionURL("libsql://db.turso.io", ""))
	assert.Equal(t, "libsql://db.turso.io?authToken=REDACTED", redactURL("libsql://db.turso.io?authToken=secret"))
}

func TestTripleStoreRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	n, err := db.Triples().Insert(ctx, sampleTriples())
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	count, err := db.Triples().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, count)

	g, err := db.Triples().LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleTriples(), g.Triples())
}

func TestTripleStoreQueries(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	_, err := db.Triples().Insert(ctx, sampleTriples())
	require.NoError(t, err)
	store := db.Triples()

	objs, err := store.Objects(ctx, heat, graph.PropPubDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"1995-12-15"}, objs)

	labels, err := store.ObjectLabels(ctx, heat, graph.PropDirector, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"Michael Mann"}, labels)

	labels, err = store.ObjectLabels(ctx, heat, graph.PropGenre, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"crime film"}, labels, "language tags compare case-insensitively")

	all, err := store.ObjectLabels(ctx, heat, graph.PropDirector, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := store.Objects(ctx, heat, graph.PropProducer)
	require.NoError(t, err)
	assert.Empty(t, none)

	matched, err := store.Match(ctx, graph.Pattern{Predicate: graph.PropGenre}, 0)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, apptype.TermBlank, matched[1].Subject.Kind)

	limited, err := store.Match(ctx, graph.Pattern{Subject: heat}, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestTripleStoreMatchesInMemoryGraph(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	_, err := db.Triples().Insert(ctx, sampleTriples())
	require.NoError(t, err)

	mem := graph.New()
	for _, tr := range sampleTriples() {
		mem.Add(tr)
	}
	for _, p := range []string{graph.PropDirector, graph.PropGenre, graph.PropPubDate} {
		want, _ := mem.ObjectLabels(ctx, heat, p, "en")
		got, err := db.Triples().ObjectLabels(ctx, heat, p, "en")
		require.NoError(t, err)
		assert.Equal(t, want, got, p)
	}
}

func TestInsertRejectsEmptyTriple(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	_, err := db.Triples().Insert(context.Background(), []apptype.Triple{{Predicate: apptype.IRI(graph.RDFSLabel)}})
	assert.Error(t, err)
}

func sampleVotes() []apptype.CrowdVote {
	v := func(q, subj, label string) apptype.CrowdVote {
		return apptype.CrowdVote{BatchID: "b1", QuestionID: q, WorkerID: "w", Subject: subj, Predicate: graph.PropDirector, Answer: mann, Label: label}
	}
	return []apptype.CrowdVote{
		v("q1", heat, apptype.VoteCorrect),
		v("q1", heat, apptype.VoteCorrect),
		v("q1", heat, apptype.VoteCorrect),
		v("q2", crime, apptype.VoteIncorrect),
		v("q2", crime, apptype.VoteIncorrect),
		v("q2", crime, apptype.VoteIncorrect),
	}
}

func TestVoteStore(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	n, err := db.Votes().Insert(ctx, sampleVotes())
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	forHeat, err := db.Votes().VotesForSubject(ctx, heat)
	require.NoError(t, err)
	assert.Equal(t, sampleVotes()[:3], forHeat)

	batch, err := db.Votes().VotesForBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Len(t, batch, 6)

	missing, err := db.Votes().VotesForSubject(ctx, mann)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestVoteStoreDrivesConsensus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	_, err := db.Votes().Insert(ctx, sampleVotes())
	require.NoError(t, err)

	fromDB, err := crowd.NewEngine(db.Votes(), nil).Consensus(ctx, heat, graph.PropDirector)
	require.NoError(t, err)
	inMemory, err := crowd.NewEngine(crowd.NewTable(sampleVotes()), nil).Consensus(ctx, heat, graph.PropDirector)
	require.NoError(t, err)
	assert.Equal(t, inMemory, fromDB)
	require.NotNil(t, fromDB.Agreement)
	assert.Equal(t, 1.0, *fromDB.Agreement)
}

func TestIngestReplacesData(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := db.Ingest(ctx, sampleTriples(), sampleVotes())
	require.NoError(t, err)
	stats, err := db.Ingest(ctx, sampleTriples()[:2], sampleVotes()[:1])
	require.NoError(t, err)
	assert.Equal(t, IngestStats{Triples: 2, Votes: 1}, stats)

	triples, err := db.Triples().Count(ctx)
	require.NoError(t, err)
	votes, err := db.Votes().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, triples)
	assert.Equal(t, 1, votes)

	inUse, idle := db.PoolStats()
	assert.GreaterOrEqual(t, inUse+idle, 0)
}

func TestFailedIngestKeepsPreviousContents(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := db.Ingest(ctx, sampleTriples(), sampleVotes())
	require.NoError(t, err)

	badVotes := sampleVotes()[:3]
	badVotes = append(badVotes, apptype.CrowdVote{BatchID: "b2", Subject: heat})
	stats, err := db.Ingest(ctx, sampleTriples()[:3], badVotes)
	require.ErrorContains(t, err, "failed to ingest votes")
	assert.Equal(t, IngestStats{}, stats)

	g, err := db.Triples().LoadGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleTriples(), g.Triples())
	votes, err := db.Votes().VotesForBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, sampleVotes(), votes)
}

func TestFailedIngestOfTriplesKeepsVotes(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := db.Ingest(ctx, sampleTriples()[:2], sampleVotes())
	require.NoError(t, err)

	bad := append(sampleTriples()[:1], apptype.Triple{Predicate: apptype.IRI(graph.RDFSLabel)})
	_, err = db.Ingest(ctx, bad, nil)
	require.ErrorContains(t, err, "failed to ingest triples")

	triples, err := db.Triples().Count(ctx)
	require.NoError(t, err)
	votes, err := db.Votes().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, triples)
	assert.Equal(t, 6, votes)
}
