package kgqa

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/graph"
)

const graphNT = `<http://www.wikidata.org/entity/Q1> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q11424> .
<http://www.wikidata.org/entity/Q1> <http://www.w3.org/2000/01/rdf-schema#label> "Heat"@en .
<http://www.wikidata.org/entity/Q1> <http://www.wikidata.org/prop/direct/P57> <http://www.wikidata.org/entity/Q50> .
<http://www.wikidata.org/entity/Q1> <http://www.wikidata.org/prop/direct/P2142> "187436818"^^<http://www.w3.org/2001/XMLSchema#decimal> .
<http://www.wikidata.org/entity/Q2> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q11424> .
<http://www.wikidata.org/entity/Q2> <http://www.w3.org/2000/01/rdf-schema#label> "Collateral"@en .
<http://www.wikidata.org/entity/Q2> <http://www.wikidata.org/prop/direct/P57> <http://www.wikidata.org/entity/Q50> .
<http://www.wikidata.org/entity/Q3> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q11424> .
<http://www.wikidata.org/entity/Q3> <http://www.w3.org/2000/01/rdf-schema#label> "Amelie"@en .
<http://www.wikidata.org/entity/Q3> <http://www.wikidata.org/prop/direct/P57> <http://www.wikidata.org/entity/Q51> .
<http://www.wikidata.org/entity/Q50> <http://www.w3.org/2000/01/rdf-schema#label> "Michael Mann"@en .
<http://www.wikidata.org/entity/Q51> <http://www.w3.org/2000/01/rdf-schema#label> "Jean-Pierre Jeunet"@en .
<http://www.wikidata.org/prop/direct/P57> <http://www.w3.org/2000/01/rdf-schema#label> "director"@en .
<http://www.wikidata.org/entity/P2142> <http://www.w3.org/2000/01/rdf-schema#label> "box office"@en .
`

func crowdTSV() string {
	header := "HITId\tHITTypeId\tWorkerId\tInput1ID\tInput2ID\tInput3ID\tAnswerLabel\n"
	rows := []string{
		"h1\tB1\tw1\twd:Q3\twdt:P57\twd:Q50\tINCORRECT",
		"h1\tB1\tw2\twd:Q3\twdt:P57\twd:Q50\tINCORRECT",
		"h1\tB1\tw3\twd:Q3\twdt:P57\twd:Q50\tCORRECT",
		"h2\tB1\tw1\twd:Q2\twdt:P2142\t100\tCORRECT",
		"h2\tB1\tw2\twd:Q2\twdt:P2142\t100\tCORRECT",
		"h2\tB1\tw3\twd:Q2\twdt:P2142\t100\tINCORRECT",
	}
	return header + strings.Join(rows, "\n") + "\n"
}

func writeData(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.nt")
	crowdPath := filepath.Join(dir, "crowd.tsv")
	require.NoError(t, os.WriteFile(graphPath, []byte(graphNT), 0o644))
	require.NoError(t, os.WriteFile(crowdPath, []byte(crowdTSV()), 0o644))
	return &Config{
		GraphPath: graphPath,
		CrowdPath: crowdPath,
		Backend:   BackendMemory,
		URL:       "file:" + filepath.Join(dir, "atai.db"),
		Language:  "en",
		TopK:      5,
	}
}

func exercise(t *testing.T, svc *Service) {
	ctx := context.Background()

	ans, err := svc.Ask(ctx, "Heat", "director", AskOptions{})
	require.NoError(t, err)
	assert.Equal(t, apptype.SourceFactual, ans.Source)
	assert.Equal(t, []string{"Michael Mann"}, ans.Values)

	lit, err := svc.Ask(ctx, "Heat", "box office", AskOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"187436818"}, lit.Values)

	crowdAns, err := svc.Ask(ctx, "Amelie", "director", AskOptions{})
	require.NoError(t, err)
	assert.Equal(t, apptype.SourceCrowd, crowdAns.Source)
	assert.Equal(t, []string{"Michael Mann"}, crowdAns.Values)
	assert.Equal(t, 2, crowdAns.Consensus.Reject)

	byID, err := svc.Consensus(ctx, "Q2", "P2142")
	require.NoError(t, err)
	assert.Equal(t, 2, byID.Support)
	assert.False(t, byID.EntityOnly)
	byMention, err := svc.Consensus(ctx, "Collateral", "box office")
	require.NoError(t, err)
	assert.Equal(t, byID, byMention)

	_, err = svc.Consensus(ctx, "Heat", "director")
	assert.True(t, IsNoVotes(err))

	recs, err := svc.Recommend([]string{"Heat"}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, "Collateral", recs[0])

	triples, err := svc.Match(ctx, graph.Pattern{Subject: "wd:Q1", Predicate: "wdt:P57"}, 10)
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, graph.NSEntity+"Q50", triples[0].Object.Value)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 14, stats.Triples)
	assert.Equal(t, 3, stats.Movies)
	assert.Equal(t, 6, stats.Votes)
	assert.False(t, stats.Embedding)
}

func TestServiceMemoryBackend(t *testing.T) {
	svc, err := NewService(context.Background(), writeData(t))
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, BackendMemory, svc.Backend())
	exercise(t, svc)
}

func TestServiceLibSQLBackend(t *testing.T) {
	cfg := writeData(t)
	stats, err := IngestFiles(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 14, stats.Triples)
	assert.Equal(t, 6, stats.Votes)

	cfg.Backend = BackendLibSQL
	svc, err := NewService(context.Background(), cfg)
	require.NoError(t, err)
	defer svc.Close()
	exercise(t, svc)
}

func TestServiceRejectsUnknownBackend(t *testing.T) {
	cfg := writeData(t)
	cfg.Backend = "postgres"
	_, err := NewService(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown backend")
}

func TestServiceWithoutCrowdData(t *testing.T) {
	cfg := writeData(t)
	cfg.CrowdPath = ""
	svc, err := NewService(context.Background(), cfg)
	require.NoError(t, err)

	_, err = svc.Consensus(context.Background(), "Q2", "P2142")
	assert.ErrorIs(t, err, ErrNoVotes)
}

func TestServiceResolveReportsLabels(t *testing.T) {
	cfg := writeData(t)
	cfg.Synonyms = map[string][]string{"box office": {"takings"}}
	svc, err := NewService(context.Background(), cfg)
	require.NoError(t, err)
	defer svc.Close()

	res := svc.Resolve("Colateral", "takings")
	assert.Equal(t, apptype.ResolveResult{
		EntityID:      graph.NSEntity + "Q2",
		EntityLabel:   "Collateral",
		RelationID:    graph.NSDirect + "P2142",
		RelationLabel: "box office",
		RelationKind:  "literal",
	}, res)

	empty := svc.Resolve("", "")
	assert.Equal(t, graph.NSEntity+"Q1", empty.EntityID)
	assert.Equal(t, "director", empty.RelationLabel)
}
