package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/YorHaaa/ATAI/internal/apptype"
	"github.com/YorHaaa/ATAI/internal/buildinfo"
	"github.com/YorHaaa/ATAI/internal/graph"
	"github.com/YorHaaa/ATAI/internal/logging"
	"github.com/YorHaaa/ATAI/internal/metrics"
	"github.com/YorHaaa/ATAI/pkg/kgqa"
)

const (
	defaultMatchLimit = 50
	poolStatsInterval = 5 * time.Second
)

// MCPServer handles MCP protocol communication
type MCPServer struct {
	server *mcp.Server
	svc    *kgqa.Service
}

// NewMCPServer creates a new MCP server exposing svc as tools
func NewMCPServer(svc *kgqa.Service) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    buildinfo.Name,
		Version: buildinfo.Version,
	}, nil)

	s := &MCPServer{server: server, svc: svc}
	s.setupToolHandlers()
	return s
}

func schemaFor[T any]() *jsonschema.Schema {
	schema, err := jsonschema.For[T]()
	if err != nil {
		var zero T
		panic(fmt.Sprintf("failed to create schema for %T: %v", zero, err))
	}
	return schema
}

func readOnly(title string) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{Title: title, ReadOnlyHint: true}
}

// setupToolHandlers registers all MCP tools
func (s *MCPServer) setupToolHandlers() {
	mcp.AddTool(s.server, &mcp.Tool{
		Annotations:  readOnly("Resolve Mentions"),
		Name:         "resolve",
		Title:        "Resolve Mentions",
		Description:  "Map free-text entity and relation mentions to graph identifiers, using exact labels first and edit distance otherwise.",
		InputSchema:  schemaFor[apptype.ResolveArgs](),
		OutputSchema: schemaFor[apptype.ResolveResult](),
	}, s.handleResolve)

	mcp.AddTool(s.server, &mcp.Tool{
		Annotations:  readOnly("Answer Question"),
		Name:         "answer_question",
		Title:        "Answer Question",
		Description:  "Answer a question about a movie entity and relation from crowd votes, the knowledge graph or the embedding space. Mentions are matched best effort: an empty entity resolves to the closest (shortest) label.",
		InputSchema:  schemaFor[apptype.AnswerQuestionArgs](),
		OutputSchema: schemaFor[apptype.Answer](),
	}, s.handleAnswerQuestion)

	mcp.AddTool(s.server, &mcp.Tool{
		Annotations:  readOnly("Crowd Consensus"),
		Name:         "crowd_consensus",
		Title:        "Crowd Consensus",
		Description:  "Aggregate crowd votes about an entity and relation and report inter-rater agreement (Fleiss' kappa).",
		InputSchema:  schemaFor[apptype.ConsensusArgs](),
		OutputSchema: schemaFor[apptype.ConsensusToolResult](),
	}, s.handleConsensus)

	mcp.AddTool(s.server, &mcp.Tool{
		Annotations:  readOnly("Recommend Movies"),
		Name:         "recommend_movies",
		Title:        "Recommend Movies",
		Description:  "Recommend movies similar to the given titles by director, producer, genre, language and release decade.",
		InputSchema:  schemaFor[apptype.RecommendArgs](),
		OutputSchema: schemaFor[apptype.RecommendResult](),
	}, s.handleRecommend)

	mcp.AddTool(s.server, &mcp.Tool{
		Annotations:  readOnly("Match Triples"),
		Name:         "match_triples",
		Title:        "Match Triples",
		Description:  "Return graph triples matching a subject/predicate/object pattern. Empty positions match anything.",
		InputSchema:  schemaFor[apptype.MatchTriplesArgs](),
		OutputSchema: schemaFor[apptype.MatchTriplesResult](),
	}, s.handleMatchTriples)

	mcp.AddTool(s.server, &mcp.Tool{
		Annotations:  readOnly("Health Check"),
		Name:         "health",
		Title:        "Health Check",
		Description:  "Report server version and the size of the loaded data.",
		InputSchema:  schemaFor[apptype.HealthArgs](),
		OutputSchema: schemaFor[apptype.HealthResult](),
	}, s.handleHealth)
}

func textContent(text string) []mcp.Content {
	return []mcp.Content{&mcp.TextContent{Text: text}}
}

// handleResolve handles the resolve tool call
func (s *MCPServer) handleResolve(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.ResolveArgs],
) (*mcp.CallToolResultFor[apptype.ResolveResult], error) {
	done := metrics.TimeTool("resolve")
	defer func() { done(true) }()
	ctx = logging.ContextWithNewRequestID(ctx)

	res := s.svc.Resolve(params.Arguments.Entity, params.Arguments.Relation)
	logging.Ctx(ctx).Debug().Str("entity", res.EntityID).Str("relation", res.RelationID).Msg("Resolved mentions")

	return &mcp.CallToolResultFor[apptype.ResolveResult]{
		Content:           textContent(fmt.Sprintf("%s %s", res.EntityID, res.RelationID)),
		StructuredContent: res,
	}, nil
}

// handleAnswerQuestion handles the answer_question tool call
func (s *MCPServer) handleAnswerQuestion(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.AnswerQuestionArgs],
) (*mcp.CallToolResultFor[apptype.Answer], error) {
	done := metrics.TimeTool("answer_question")
	var success bool
	defer func() { done(success) }()
	ctx = logging.ContextWithNewRequestID(ctx)

	args := params.Arguments
	ans, err := s.svc.Ask(ctx, args.Entity, args.Relation, kgqa.AskOptions{
		SkipCrowd:   args.SkipCrowd,
		FactualOnly: args.FactualOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to answer question: %w", err)
	}
	success = true

	text := "No answer found"
	if len(ans.Values) > 0 {
		text = strings.Join(ans.Values, ", ")
	}
	return &mcp.CallToolResultFor[apptype.Answer]{
		Content:           textContent(text),
		StructuredContent: ans,
	}, nil
}

// handleConsensus handles the crowd_consensus tool call
func (s *MCPServer) handleConsensus(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.ConsensusArgs],
) (*mcp.CallToolResultFor[apptype.ConsensusToolResult], error) {
	done := metrics.TimeTool("crowd_consensus")
	var success bool
	defer func() { done(success) }()
	ctx = logging.ContextWithNewRequestID(ctx)

	res, err := s.svc.Consensus(ctx, params.Arguments.Entity, params.Arguments.Relation)
	switch {
	case kgqa.IsNoVotes(err):
		success = true
		return &mcp.CallToolResultFor[apptype.ConsensusToolResult]{
			Content:           textContent("No crowd votes found"),
			StructuredContent: apptype.ConsensusToolResult{Found: false},
		}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to compute consensus: %w", err)
	}
	success = true

	agreement := "undefined"
	if res.Agreement != nil {
		agreement = fmt.Sprintf("%.3f", *res.Agreement)
	}
	return &mcp.CallToolResultFor[apptype.ConsensusToolResult]{
		Content: textContent(fmt.Sprintf("%s (support %d, reject %d, kappa %s)",
			res.Answer, res.Support, res.Reject, agreement)),
		StructuredContent: apptype.ConsensusToolResult{Found: true, Consensus: res},
	}, nil
}

// handleRecommend handles the recommend_movies tool call
func (s *MCPServer) handleRecommend(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.RecommendArgs],
) (*mcp.CallToolResultFor[apptype.RecommendResult], error) {
	done := metrics.TimeTool("recommend_movies")
	var success bool
	defer func() { done(success) }()

	if len(params.Arguments.Movies) == 0 {
		return nil, errors.New("at least one movie is required")
	}
	movies, err := s.svc.Recommend(params.Arguments.Movies, params.Arguments.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to recommend movies: %w", err)
	}
	success = true
	return &mcp.CallToolResultFor[apptype.RecommendResult]{
		Content:           textContent(strings.Join(movies, ", ")),
		StructuredContent: apptype.RecommendResult{Movies: movies},
	}, nil
}

// handleMatchTriples handles the match_triples tool call
func (s *MCPServer) handleMatchTriples(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.MatchTriplesArgs],
) (*mcp.CallToolResultFor[apptype.MatchTriplesResult], error) {
	done := metrics.TimeTool("match_triples")
	var success bool
	defer func() { done(success) }()

	args := params.Arguments
	limit := args.Limit
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	triples, err := s.svc.Match(ctx, graph.Pattern{
		Subject:   args.Subject,
		Predicate: args.Predicate,
		Object:    args.Object,
	}, limit)
	if err != nil {
		return nil, fmt.Errorf("match failed: %w", err)
	}
	if triples == nil {
		triples = []apptype.Triple{}
	}
	success = true
	return &mcp.CallToolResultFor[apptype.MatchTriplesResult]{
		Content:           textContent(fmt.Sprintf("Matched %d triples", len(triples))),
		StructuredContent: apptype.MatchTriplesResult{Triples: triples},
	}, nil
}

// handleHealth returns basic server health information
func (s *MCPServer) handleHealth(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.HealthArgs],
) (*mcp.CallToolResultFor[apptype.HealthResult], error) {
	done := metrics.TimeTool("health")
	var success bool
	defer func() { done(success) }()

	res, err := Health(ctx, s.svc)
	if err != nil {
		return nil, err
	}
	success = true
	return &mcp.CallToolResultFor[apptype.HealthResult]{
		Content:           textContent("ok"),
		StructuredContent: res,
	}, nil
}

// Health collects version and data statistics for svc.
func Health(ctx context.Context, svc *kgqa.Service) (apptype.HealthResult, error) {
	st, err := svc.Stats(ctx)
	if err != nil {
		return apptype.HealthResult{}, fmt.Errorf("failed to collect stats: %w", err)
	}
	return apptype.HealthResult{
		Name:      buildinfo.Name,
		Version:   buildinfo.Version,
		Revision:  buildinfo.Revision,
		BuildDate: buildinfo.BuildDate,
		Backend:   st.Backend,
		Triples:   st.Triples,
		Entities:  st.Entities,
		Relations: st.Relations,
		Movies:    st.Movies,
		Votes:     st.Votes,
		Embedding: st.Embedding,
	}, nil
}

// reportPoolStats publishes pool gauges until ctx is done.
func (s *MCPServer) reportPoolStats(ctx context.Context) {
	if s.svc.Backend() != kgqa.BackendLibSQL {
		return
	}
	ticker := time.NewTicker(poolStatsInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.svc.PoolStats()
			}
		}
	}()
}

// Run starts the MCP server with stdio transport
func (s *MCPServer) Run(ctx context.Context) error {
	s.reportPoolStats(ctx)
	transport := mcp.NewStdioTransport()
	return s.server.Run(ctx, transport)
}

// SSEHandler returns the HTTP handler serving MCP over SSE.
func (s *MCPServer) SSEHandler() http.Handler {
	return mcp.NewSSEHandler(func(r *http.Request) *mcp.Server { return s.server })
}

// RunSSE starts the MCP server over SSE at the given address and endpoint
func (s *MCPServer) RunSSE(ctx context.Context, addr string, endpoint string) error {
	s.reportPoolStats(ctx)
	mux := http.NewServeMux()
	mux.Handle(endpoint, s.SSEHandler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info().Str("addr", addr).Str("endpoint", endpoint).Msg("SSE MCP server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
