// ABOUTME: MCP tool implementations for daily health records.
// ABOUTME: Provides ask, get_latest, get_history, list_records, and get_advice.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/healthcoach/internal/advice"
	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/query"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultListLimit   = 20
	defaultHistoryDays = 7
)

func (s *Server) registerTools() {
	// ask
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a natural-language question about the stored health metrics",
	}, s.handleAsk)

	// get_latest
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_latest",
		Description: "Get the most recent daily record, optionally limited to some metrics",
	}, s.handleGetLatest)

	// get_history
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_history",
		Description: "Get one metric's daily values and summary over a date range",
	}, s.handleGetHistory)

	// list_records
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_records",
		Description: "List recent daily records, newest first",
	}, s.handleListRecords)

	// get_advice
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_advice",
		Description: "Rule-based workout and diet suggestions from the latest recovery score",
	}, s.handleGetAdvice)
}

// Tool input/output types

type askInput struct {
	Question string `json:"question" jsonschema:"The question, e.g. 'average steps last week'"`
	Intent   string `json:"intent,omitempty" jsonschema:"One of get_current, get_history, compare, advice; classified from the question when empty"`
	Today    string `json:"today,omitempty" jsonschema:"Reference date (YYYY-MM-DD), defaults to today"`
}

type askOutput struct {
	Response   string  `json:"response"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence,omitempty"`
	Metric     string  `json:"metric,omitempty"`
	Start      string  `json:"start,omitempty"`
	End        string  `json:"end,omitempty"`
	Outcome    string  `json:"outcome,omitempty"`
}

type getLatestInput struct {
	Metrics []string `json:"metrics,omitempty" jsonschema:"Metric names or synonyms to include; all when empty"`
}

type recordOutput struct {
	Date      string             `json:"date"`
	Values    map[string]float64 `json:"values"`
	Formatted map[string]string  `json:"formatted,omitempty"`
}

type getHistoryInput struct {
	Metric string `json:"metric" jsonschema:"Metric name or synonym"`
	Start  string `json:"start,omitempty" jsonschema:"Start date (YYYY-MM-DD)"`
	End    string `json:"end,omitempty" jsonschema:"End date (YYYY-MM-DD)"`
	Days   int    `json:"days,omitempty" jsonschema:"Trailing days ending yesterday when no dates are given (default 7)"`
}

type historyPoint struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type summaryOutput struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

type historyOutput struct {
	Metric  string         `json:"metric"`
	Start   string         `json:"start"`
	End     string         `json:"end"`
	Points  []historyPoint `json:"points"`
	Summary *summaryOutput `json:"summary,omitempty"`
}

type listRecordsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listRecordsOutput struct {
	Records []recordOutput `json:"records"`
	Message string         `json:"message,omitempty"`
}

type adviceInput struct{}

type adviceOutput struct {
	Date     string   `json:"date,omitempty"`
	Category string   `json:"category"`
	Score    *float64 `json:"recovery_score,omitempty"`
	Workout  string   `json:"workout"`
	Diet     string   `json:"diet"`
}

// Tool handlers

func (s *Server) handleAsk(ctx context.Context, req *mcp.CallToolRequest, input askInput) (*mcp.CallToolResult, askOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, askOutput{}, fmt.Errorf("question is required")
	}

	today := s.now()
	if input.Today != "" {
		d, err := models.ParseDate(input.Today)
		if err != nil {
			return nil, askOutput{}, err
		}
		today = d
	}

	out := askOutput{Intent: input.Intent}
	if out.Intent == "" {
		res := s.classifier.Classify(question)
		out.Intent, out.Confidence = string(res.Intent), res.Confidence
	} else if !models.IsValidIntent(out.Intent) {
		return nil, askOutput{}, fmt.Errorf("unknown intent: %s", out.Intent)
	}

	if models.Intent(out.Intent) == models.IntentAdvice {
		latest, err := s.repo.Latest()
		if err != nil {
			return nil, askOutput{}, fmt.Errorf("failed to load latest record: %w", err)
		}
		out.Response = advice.For(latest).String()
		return nil, out, nil
	}

	a := s.engine.Answer(models.Intent(out.Intent), question, today)
	out.Response = a.Response
	out.Outcome = string(a.Outcome)
	if a.HasMetric {
		out.Metric = string(a.Metric)
	}
	if a.HasRange {
		out.Start = models.FormatDate(a.Range.Start)
		out.End = models.FormatDate(a.Range.End)
	}
	return nil, out, nil
}

func (s *Server) handleGetLatest(ctx context.Context, req *mcp.CallToolRequest, input getLatestInput) (*mcp.CallToolResult, any, error) {
	ids, err := resolveMetrics(input.Metrics)
	if err != nil {
		return nil, nil, err
	}

	latest, err := s.repo.Latest()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load latest record: %w", err)
	}
	if latest == nil {
		return nil, map[string]interface{}{"message": "No records found."}, nil
	}

	return nil, toRecordOutput(latest, ids), nil
}

func (s *Server) handleGetHistory(ctx context.Context, req *mcp.CallToolRequest, input getHistoryInput) (*mcp.CallToolResult, historyOutput, error) {
	metric, err := resolveMetric(input.Metric)
	if err != nil {
		return nil, historyOutput{}, err
	}

	rng, err := s.historyRange(input)
	if err != nil {
		return nil, historyOutput{}, err
	}

	records, err := s.repo.Fetch(rng.Start, rng.End)
	if err != nil {
		return nil, historyOutput{}, fmt.Errorf("failed to fetch records: %w", err)
	}

	out := historyOutput{
		Metric: string(metric),
		Start:  models.FormatDate(rng.Start),
		End:    models.FormatDate(rng.End),
		Points: make([]historyPoint, 0, len(records)),
	}
	for _, r := range records {
		out.Points = append(out.Points, historyPoint{Date: r.DateString(), Value: r.Value(metric)})
	}
	if sum, ok := query.Summarize(records, metric); ok {
		out.Summary = &summaryOutput{Count: sum.Count, Mean: sum.Mean, Min: sum.Min, Max: sum.Max}
	}
	return nil, out, nil
}

func (s *Server) historyRange(input getHistoryInput) (query.Range, error) {
	if input.Start == "" && input.End == "" {
		days := input.Days
		if days <= 0 {
			days = defaultHistoryDays
		}
		return query.Resolve(query.LastNDays(days), s.now())
	}

	today := models.DateOf(s.now())
	start, end := today, today
	var err error
	if input.Start != "" {
		if start, err = models.ParseDate(input.Start); err != nil {
			return query.Range{}, err
		}
	}
	if input.End != "" {
		if end, err = models.ParseDate(input.End); err != nil {
			return query.Range{}, err
		}
	}
	return query.NewRange(start, end)
}

func (s *Server) handleListRecords(ctx context.Context, req *mcp.CallToolRequest, input listRecordsInput) (*mcp.CallToolResult, listRecordsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}

	records, err := s.repo.List(input.Limit)
	if err != nil {
		return nil, listRecordsOutput{}, fmt.Errorf("failed to list records: %w", err)
	}
	if len(records) == 0 {
		return nil, listRecordsOutput{Records: []recordOutput{}, Message: "No records found."}, nil
	}

	out := listRecordsOutput{Records: make([]recordOutput, 0, len(records))}
	for _, r := range records {
		ro := toRecordOutput(r, nil)
		ro.Formatted = nil
		out.Records = append(out.Records, ro)
	}
	return nil, out, nil
}

func (s *Server) handleGetAdvice(ctx context.Context, req *mcp.CallToolRequest, input adviceInput) (*mcp.CallToolResult, adviceOutput, error) {
	latest, err := s.repo.Latest()
	if err != nil {
		return nil, adviceOutput{}, fmt.Errorf("failed to load latest record: %w", err)
	}

	a := advice.For(latest)
	out := adviceOutput{
		Category: string(a.Category),
		Score:    a.Score,
		Workout:  a.Workout,
		Diet:     a.Diet,
	}
	if latest != nil {
		out.Date = latest.DateString()
	}
	return nil, out, nil
}

// resolveMetric accepts a canonical metric ID or any known synonym.
func resolveMetric(name string) (models.MetricID, error) {
	name = strings.TrimSpace(name)
	if models.IsValidMetricID(name) {
		return models.MetricID(name), nil
	}
	if id, ok := query.ResolveMetric(name); ok && name != "" {
		return id, nil
	}
	return "", fmt.Errorf("unknown metric: %s", name)
}

// resolveMetrics resolves names; an empty list means every metric.
func resolveMetrics(names []string) ([]models.MetricID, error) {
	if len(names) == 0 {
		return models.AllMetricIDs, nil
	}
	ids := make([]models.MetricID, 0, len(names))
	for _, n := range names {
		id, err := resolveMetric(n)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toRecordOutput(r *models.DailyRecord, ids []models.MetricID) recordOutput {
	if ids == nil {
		ids = models.AllMetricIDs
	}
	out := recordOutput{
		Date:      r.DateString(),
		Values:    make(map[string]float64),
		Formatted: make(map[string]string),
	}
	for _, id := range ids {
		if v := r.Value(id); v != nil {
			out.Values[string(id)] = *v
			out.Formatted[string(id)] = query.FormatValue(id, v)
		}
	}
	return out
}

// recentWindow is the trailing range used by the summary resource.
func recentWindow(now time.Time) (query.Range, error) {
	return query.Resolve(query.LastNDays(defaultHistoryDays), now)
}
