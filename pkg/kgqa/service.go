// Package kgqa is the library entry point: it loads the graph, crowd votes
// and embeddings once and exposes question answering, crowd consensus and
// recommendations without any transport.
package kgqa

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/YorHaaa/ATAI/internal/answer"
	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/crowd"
	"github.com/YorHaaa/ATAI/internal/database"
	"github.com/YorHaaa/ATAI/internal/embeddings"
	"github.com/YorHaaa/ATAI/internal/graph"
	"github.com/YorHaaa/ATAI/internal/labels"
	"github.com/YorHaaa/ATAI/internal/logging"
	"github.com/YorHaaa/ATAI/internal/qa"
	"github.com/YorHaaa/ATAI/internal/recommend"
)

// Re-exported sentinel errors.
var (
	ErrNoVotes      = crowd.ErrNoVotes
	ErrEmptyCatalog = recommend.ErrEmptyCatalog
)

// AskOptions adjusts a single Ask call.
type AskOptions = qa.Options

// Stats describes what the service has loaded.
type Stats struct {
	Backend   string
	Triples   int
	Entities  int
	Relations int
	Movies    int
	Votes     int
	Embedding bool
}

// Service provides a library-first API over the QA engines.
type Service struct {
	backend   string
	graph     *graph.Graph
	db        *database.DBManager
	index     *labels.Index
	resolver  *labels.Resolver
	answers   *answer.Engine
	consensus *crowd.Engine
	votes     int
	recommend *recommend.Engine
	pipeline  *qa.Pipeline
	topK      int
}

// NewService loads every data source named by cfg and builds the engines.
func NewService(ctx context.Context, cfg *Config) (*Service, error) {
	s := &Service{backend: cfg.Backend, topK: cfg.TopK}
	if s.backend == "" {
		s.backend = BackendMemory
	}

	var (
		store  graph.Store
		source crowd.VoteSource
	)
	switch s.backend {
	case BackendMemory:
		g, err := graph.Load(cfg.GraphPath)
		if err != nil {
			return nil, err
		}
		s.graph, store = g, g
		if cfg.CrowdPath != "" {
			votes, err := crowd.LoadTSV(cfg.CrowdPath)
			if err != nil {
				return nil, err
			}
			table := crowd.NewTable(votes)
			source, s.votes = table, table.Len()
		}
	case BackendLibSQL:
		dm, err := database.NewDBManager(cfg.toDatabase())
		if err != nil {
			return nil, err
		}
		s.db = dm
		g, err := dm.Triples().LoadGraph(ctx)
		if err != nil {
			dm.Close()
			return nil, err
		}
		n, err := dm.Votes().Count(ctx)
		if err != nil {
			dm.Close()
			return nil, err
		}
		s.graph, store = g, dm.Triples()
		if n > 0 {
			source, s.votes = dm.Votes(), n
		}
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	logging.Info().Str("backend", s.backend).Int("triples", s.graph.Len()).Msg("Graph loaded")

	s.index = labels.BuildIndex(s.graph, cfg.LiteralRelations)
	s.resolver = labels.NewResolver(s.index)
	if cfg.Synonyms != nil {
		s.resolver = s.resolver.WithSynonyms(cfg.Synonyms)
	}

	opts := []answer.Option{}
	if cfg.Language != "" {
		opts = append(opts, answer.WithLanguage(cfg.Language))
	}
	if paths := cfg.embeddingPaths(); paths.Enabled() {
		space, err := embeddings.Load(paths)
		if err != nil {
			s.Close()
			return nil, err
		}
		opts = append(opts, answer.WithEmbeddings(space))
	}
	s.answers = answer.NewEngine(store, s.index, opts...)

	if source != nil {
		s.consensus = crowd.NewEngine(source, s.index.EntityLabel)
	}
	s.recommend = recommend.NewEngine(recommend.BuildFeatureIndex(s.graph, nil))
	s.pipeline = qa.NewPipeline(s.resolver, s.answers, s.consensus)
	return s, nil
}

// Close releases resources.
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Backend names the store factual and crowd queries are served from.
func (s *Service) Backend() string { return s.backend }

// PoolStats reports database pool usage. It is zero for the memory backend.
func (s *Service) PoolStats() (inUse, idle int) {
	if s.db == nil {
		return 0, 0
	}
	return s.db.PoolStats()
}

// Resolve maps free-text mentions to graph identifiers and reports the
// canonical labels they resolved to. Empty mentions are resolved best
// effort like any other.
func (s *Service) Resolve(entity, relation string) apptype.ResolveResult {
	q := s.resolver.Resolve(entity, relation)
	res := apptype.ResolveResult{EntityID: q.EntityID, RelationID: q.RelationID}
	res.EntityLabel, _ = s.index.EntityLabel(q.EntityID)
	if q.RelationID != "" {
		res.RelationLabel, _ = s.index.RelationLabel(q.RelationID)
		res.RelationKind = s.index.Kind(q.RelationID).String()
	}
	return res
}

// Ask answers a question from its entity and relation mentions.
func (s *Service) Ask(ctx context.Context, entity, relation string, opts AskOptions) (apptype.Answer, error) {
	return s.pipeline.Ask(ctx, entity, relation, opts)
}

var (
	entityIDPattern   = regexp.MustCompile(`^Q[0-9]+$`)
	relationIDPattern = regexp.MustCompile(`^P[0-9]+$`)
)

// entityRef accepts a bare Q-id, a CURIE, a full IRI or a label mention.
func (s *Service) entityRef(v string) string {
	v = strings.TrimSpace(v)
	if entityIDPattern.MatchString(v) || strings.HasPrefix(v, "wd:") || strings.Contains(v, "://") {
		return graph.EntityIRI(v)
	}
	return s.resolver.ResolveEntity(v)
}

// relationRef accepts a bare P-id, a CURIE, a full IRI or a label mention.
func (s *Service) relationRef(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return ""
	case relationIDPattern.MatchString(v) || strings.HasPrefix(v, "wdt:") || strings.HasPrefix(v, "wd:") || strings.Contains(v, "://"):
		return graph.RelationIRI(v)
	}
	return s.resolver.ResolveRelation(v)
}

// Consensus aggregates crowd votes about an entity and relation given as
// identifiers or mentions. It returns ErrNoVotes when nothing was voted on
// or no crowd data is loaded.
func (s *Service) Consensus(ctx context.Context, entity, relation string) (*apptype.ConsensusResult, error) {
	if s.consensus == nil {
		return nil, ErrNoVotes
	}
	return s.consensus.Consensus(ctx, s.entityRef(entity), s.relationRef(relation))
}

// Recommend returns up to topK movie names similar to the named movies.
// A non-positive topK uses the configured default.
func (s *Service) Recommend(movies []string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = s.topK
	}
	return s.recommend.Recommend(movies, topK)
}

// Match runs a raw triple pattern query. Positions may be CURIEs.
func (s *Service) Match(ctx context.Context, p graph.Pattern, limit int) ([]apptype.Triple, error) {
	p = graph.Pattern{Subject: graph.Expand(p.Subject), Predicate: graph.Expand(p.Predicate), Object: graph.Expand(p.Object)}
	if s.db != nil {
		return s.db.Triples().Match(ctx, p, limit)
	}
	return s.graph.Match(p, limit), nil
}

// Stats reports the loaded data sizes.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	st := Stats{
		Backend:   s.backend,
		Triples:   s.graph.Len(),
		Entities:  s.index.Entities().Len(),
		Relations: s.index.Relations().Len(),
		Movies:    s.recommend.Index().Len(),
		Votes:     s.votes,
		Embedding: s.answers.HasEmbeddings(),
	}
	if s.db != nil {
		n, err := s.db.Triples().Count(ctx)
		if err != nil {
			return st, err
		}
		st.Triples = n
	}
	return st, nil
}

// IngestFiles loads the graph and crowd files named by cfg and replaces the
// contents of the libsql database with them.
func IngestFiles(ctx context.Context, cfg *Config) (database.IngestStats, error) {
	g, err := graph.Load(cfg.GraphPath)
	if err != nil {
		return database.IngestStats{}, err
	}
	var votes []apptype.CrowdVote
	if cfg.CrowdPath != "" {
		if votes, err = crowd.LoadTSV(cfg.CrowdPath); err != nil {
			return database.IngestStats{}, err
		}
	}
	dm, err := database.NewDBManager(cfg.toDatabase())
	if err != nil {
		return database.IngestStats{}, err
	}
	defer dm.Close()
	return dm.Ingest(ctx, g.Triples(), votes)
}

// IsNoVotes reports whether err means no crowd votes were found.
func IsNoVotes(err error) bool { return errors.Is(err, ErrNoVotes) }
