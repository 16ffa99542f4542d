// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the parley negotiation simulator as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/parley/internal/core"
	"github.com/valter-silva-au/parley/internal/observability"
	"github.com/valter-silva-au/parley/internal/storage"
	"github.com/valter-silva-au/parley/pkg/models"
)

// RunFunc executes one negotiation session and returns its result. The CLI
// wires this to an orchestrator with the offline collaborator so MCP clients
// never need a credential.
type RunFunc func(ctx context.Context, cfg core.Config, eventProbability float64, seed int64) (*core.Result, error)

// Server wraps parley services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	run         RunFunc
	store       storage.NegotiationStoreManager
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates an MCP server with the given service dependencies.
// store, metricsCalc, and alertEngine may be nil if the corresponding
// feature is disabled.
func NewServer(run RunFunc, store storage.NegotiationStoreManager, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		run:         run,
		store:       store,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "parley", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type runNegotiationInput struct {
	InitialFunding   float64 `json:"initial_funding,omitempty" jsonschema:"opening corporate offer in dollars. Defaults to 100000."`
	RequestedFunding float64 `json:"requested_funding,omitempty" jsonschema:"nonprofit's opening ask in dollars; must exceed initial_funding. Defaults to 150000."`
	MaxRounds        int     `json:"max_rounds,omitempty" jsonschema:"maximum number of turns before the session terminates. Defaults to 10."`
	EventProbability float64 `json:"event_probability,omitempty" jsonschema:"per-turn-boundary probability of a random event, between 0 and 1. Defaults to 0."`
	Seed             int64   `json:"seed,omitempty" jsonschema:"random seed for reproducible sessions. 0 means time-based."`
}

type turnOutput struct {
	Round   int     `json:"round"`
	Speaker string  `json:"speaker"`
	Tactic  string  `json:"tactic"`
	Message string  `json:"message"`
	Amount  float64 `json:"amount"`
}

type runNegotiationOutput struct {
	Outcome      string       `json:"outcome"`
	Rounds       int          `json:"rounds"`
	FinalOffered float64      `json:"final_offered"`
	FinalAsk     float64      `json:"final_ask"`
	Turns        []turnOutput `json:"turns"`
	Events       []string     `json:"events,omitempty"`
}

type listNegotiationsInput struct {
	Outcome string `json:"outcome,omitempty" jsonschema:"filter by outcome (agreed, walked_away, round_limit, event_terminated)"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of records to return, newest first. Defaults to 20."`
}

type negotiationOutput struct {
	ID           string  `json:"id"`
	Outcome      string  `json:"outcome"`
	Rounds       int     `json:"rounds"`
	FinalOffered float64 `json:"final_offered"`
	FinalAsk     float64 `json:"final_ask"`
	EndedAt      string  `json:"ended_at"`
}

type listNegotiationsOutput struct {
	Negotiations []negotiationOutput `json:"negotiations"`
	Count        int                 `json:"count"`
}

type getNegotiationInput struct {
	ID string `json:"id" jsonschema:"required,the negotiation identifier (e.g. N-00042)"`
}

type getNegotiationOutput struct {
	Negotiation negotiationOutput `json:"negotiation"`
	Turns       []turnOutput      `json:"turns"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	NegotiationsRun int            `json:"negotiations_run"`
	Outcomes        map[string]int `json:"outcomes"`
	TurnsRecorded   int            `json:"turns_recorded"`
	TacticsUsed     map[string]int `json:"tactics_used"`
	EventsInjected  map[string]int `json:"events_injected"`
	AverageRounds   float64        `json:"average_rounds"`
	EventCount      int            `json:"event_count"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "run_negotiation",
		Description: "Run one scripted negotiation session between the corporate and nonprofit personas and return the transcript and outcome.",
	}, s.handleRunNegotiation)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_negotiations",
		Description: "List recorded negotiations, newest first, with an optional outcome filter.",
	}, s.handleListNegotiations)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_negotiation",
		Description: "Get a recorded negotiation by ID, including its full transcript.",
	}, s.handleGetNegotiation)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log: sessions run, outcomes, tactic and event histograms.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (walkaway rate, round limit rate, unfinished sessions, log recency).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleRunNegotiation(ctx context.Context, _ *gomcp.CallToolRequest, input runNegotiationInput) (*gomcp.CallToolResult, runNegotiationOutput, error) {
	cfg := core.Config{
		InitialFunding:   input.InitialFunding,
		RequestedFunding: input.RequestedFunding,
		MaxRounds:        input.MaxRounds,
	}
	if cfg.InitialFunding == 0 {
		cfg.InitialFunding = 100000
	}
	if cfg.RequestedFunding == 0 {
		cfg.RequestedFunding = 150000
	}
	if cfg.MaxRounds == 0 {
		cfg.MaxRounds = 10
	}

	res, err := s.run(ctx, cfg, input.EventProbability, input.Seed)
	if err != nil {
		return errorResult(fmt.Sprintf("running negotiation: %s", err)), runNegotiationOutput{}, nil
	}

	out := runNegotiationOutput{
		Outcome:      string(res.Outcome),
		Rounds:       res.RoundsCompleted,
		FinalOffered: res.FinalOffered,
		FinalAsk:     res.FinalAsk,
		Turns:        make([]turnOutput, len(res.Turns)),
	}
	for i, t := range res.Turns {
		out.Turns[i] = turnToOutput(t)
	}
	for _, ev := range res.Events {
		out.Events = append(out.Events, fmt.Sprintf("round %d: %s", ev.Round, ev.Kind))
	}

	return nil, out, nil
}

func (s *Server) handleListNegotiations(_ context.Context, _ *gomcp.CallToolRequest, input listNegotiationsInput) (*gomcp.CallToolResult, listNegotiationsOutput, error) {
	if s.store == nil {
		return errorResult("negotiation store not available"), listNegotiationsOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	recs, err := s.store.GetRecent(0)
	if err != nil {
		return errorResult(fmt.Sprintf("listing negotiations: %s", err)), listNegotiationsOutput{}, nil
	}

	out := listNegotiationsOutput{}
	for _, rec := range recs {
		if input.Outcome != "" && rec.Outcome != models.Outcome(input.Outcome) {
			continue
		}
		out.Negotiations = append(out.Negotiations, recordToOutput(rec))
		if len(out.Negotiations) >= limit {
			break
		}
	}
	out.Count = len(out.Negotiations)

	return nil, out, nil
}

func (s *Server) handleGetNegotiation(_ context.Context, _ *gomcp.CallToolRequest, input getNegotiationInput) (*gomcp.CallToolResult, getNegotiationOutput, error) {
	if s.store == nil {
		return errorResult("negotiation store not available"), getNegotiationOutput{}, nil
	}
	if input.ID == "" {
		return errorResult("id is required"), getNegotiationOutput{}, nil
	}

	rec, err := s.store.Get(input.ID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting negotiation %s: %s", input.ID, err)), getNegotiationOutput{}, nil
	}

	turns, err := s.store.GetTurns(input.ID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting turns for %s: %s", input.ID, err)), getNegotiationOutput{}, nil
	}

	out := getNegotiationOutput{
		Negotiation: recordToOutput(*rec),
		Turns:       make([]turnOutput, len(turns)),
	}
	for i, t := range turns {
		out.Turns[i] = turnToOutput(t)
	}

	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		NegotiationsRun: metrics.NegotiationsRun,
		Outcomes:        metrics.Outcomes,
		TurnsRecorded:   metrics.TurnsRecorded,
		TacticsUsed:     metrics.TacticsUsed,
		EventsInjected:  metrics.EventsInjected,
		AverageRounds:   metrics.AverageRounds,
		EventCount:      metrics.EventCount,
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available (observability may be disabled)"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func turnToOutput(t models.Turn) turnOutput {
	return turnOutput{
		Round:   t.Round,
		Speaker: string(t.Speaker),
		Tactic:  string(t.Tactic),
		Message: t.Message,
		Amount:  t.Amount,
	}
}

func recordToOutput(rec models.RecordedNegotiation) negotiationOutput {
	return negotiationOutput{
		ID:           rec.ID,
		Outcome:      string(rec.Outcome),
		Rounds:       rec.Rounds,
		FinalOffered: rec.FinalOffered,
		FinalAsk:     rec.FinalAsk,
		EndedAt:      rec.EndedAt.Format(time.RFC3339),
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		Outcomes:       make(map[string]int),
		TacticsUsed:    make(map[string]int),
		EventsInjected: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
