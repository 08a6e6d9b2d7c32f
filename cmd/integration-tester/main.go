// Command integration-tester drives a running atai SSE server through every
// MCP tool and prints a JSON report. It exits non-zero when a step fails.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/YorHaaa/ATAI/internal/apptype"
)

type StepResult struct {
	Name      string `json:"name"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Output    string `json:"output,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type Report struct {
	SSEURL     string       `json:"sse_url"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMs int64        `json:"duration_ms"`
	Steps      []StepResult `json:"steps"`
	Passed     bool         `json:"passed"`
}

type step struct {
	name string
	tool string
	args any
}

func main() {
	sseURL := flag.String("sse-url", "http://localhost:8080/sse", "SSE endpoint URL")
	entity := flag.String("entity", "The Godfather", "Entity mention used by the question steps")
	relation := flag.String("relation", "director", "Relation mention used by the question steps")
	movie := flag.String("movie", "The Godfather", "Movie title used by the recommendation step")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{Name: "integration-tester", Version: "dev"}, nil)
	transport := mcp.NewSSEClientTransport(*sseURL, nil)

	start := time.Now()
	report := Report{SSEURL: *sseURL, StartedAt: start}

	tConn := time.Now()
	session, err := client.Connect(ctx, transport)
	connRes := StepResult{Name: "connect", Success: err == nil, ElapsedMs: elapsedMsSince(tConn)}
	if err != nil {
		connRes.Error = err.Error()
		report.Steps = []StepResult{connRes}
		finish(&report, start)
		os.Exit(1)
	}
	report.Steps = append(report.Steps, connRes, runListTools(ctx, session))

	steps := []step{
		{"health", "health", apptype.HealthArgs{}},
		{"resolve", "resolve", apptype.ResolveArgs{Entity: *entity, Relation: *relation}},
		{"answer_question", "answer_question", apptype.AnswerQuestionArgs{Entity: *entity, Relation: *relation}},
		{"answer_question_factual", "answer_question", apptype.AnswerQuestionArgs{Entity: *entity, Relation: *relation, SkipCrowd: true, FactualOnly: true}},
		{"crowd_consensus", "crowd_consensus", apptype.ConsensusArgs{Entity: *entity, Relation: *relation}},
		{"recommend_movies", "recommend_movies", apptype.RecommendArgs{Movies: []string{*movie}, TopK: 5}},
		{"match_triples", "match_triples", apptype.MatchTriplesArgs{Predicate: "wdt:P57", Limit: 5}},
	}
	for _, s := range steps {
		report.Steps = append(report.Steps, runTool(ctx, session, s))
	}
	_ = session.Close()
	if !finish(&report, start) {
		os.Exit(1)
	}
}

// finish prints the report and reports whether every step passed.
func finish(report *Report, start time.Time) bool {
	report.DurationMs = elapsedMsSince(start)
	report.Passed = true
	for _, s := range report.Steps {
		if !s.Success {
			report.Passed = false
			break
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
	return report.Passed
}

func runListTools(ctx context.Context, session *mcp.ClientSession) StepResult {
	t0 := time.Now()
	res := StepResult{Name: "list_tools"}
	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Success = true
		res.Output = fmt.Sprintf("%d tools", len(tools.Tools))
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

func runTool(ctx context.Context, session *mcp.ClientSession, s step) StepResult {
	t0 := time.Now()
	res := StepResult{Name: s.name}
	err := func() error {
		raw, err := json.Marshal(s.args)
		if err != nil {
			return err
		}
		out, err := session.CallTool(ctx, &mcp.CallToolParams{Name: s.tool, Arguments: json.RawMessage(raw)})
		if err != nil {
			return err
		}
		if out.IsError {
			return errors.New("tool reported an error")
		}
		for _, c := range out.Content {
			if text, ok := c.(*mcp.TextContent); ok {
				res.Output = text.Text
				break
			}
		}
		return nil
	}()
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Success = true
	}
	res.ElapsedMs = elapsedMsSince(t0)
	return res
}

// elapsedMsSince returns max(1ms, elapsed) to avoid zero durations on fast steps
func elapsedMsSince(t0 time.Time) int64 {
	d := time.Since(t0) / time.Millisecond
	if d <= 0 {
		return 1
	}
	return int64(d)
}
