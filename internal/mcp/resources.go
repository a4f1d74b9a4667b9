// ABOUTME: MCP resource implementations for daily health records.
// ABOUTME: Provides health://latest and health://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/query"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	latestURI  = "health://latest"
	summaryURI = "health://summary"
)

func (s *Server) registerResources() {
	// health://latest - Most recent daily record
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         latestURI,
		Name:        "Latest Daily Record",
		Description: "All metrics from the most recent day on record",
		MIMEType:    "application/json",
	}, s.handleLatestResource)

	// health://summary - Per-metric aggregates over the last 7 days
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Weekly Summary",
		Description: "Mean, min and max of each metric over the last 7 days",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleLatestResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	latest, err := s.repo.Latest()
	if err != nil {
		return nil, fmt.Errorf("failed to load latest record: %w", err)
	}

	var result any = map[string]string{"message": "No records found."}
	if latest != nil {
		result = toRecordOutput(latest, nil)
	}
	return jsonResource(latestURI, result)
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	rng, err := recentWindow(s.now())
	if err != nil {
		return nil, err
	}
	records, err := s.repo.Fetch(rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	metrics := make(map[string]summaryOutput)
	for _, id := range models.AllMetricIDs {
		if sum, ok := query.Summarize(records, id); ok {
			metrics[string(id)] = summaryOutput{Count: sum.Count, Mean: sum.Mean, Min: sum.Min, Max: sum.Max}
		}
	}

	result := map[string]interface{}{
		"start":   models.FormatDate(rng.Start),
		"end":     models.FormatDate(rng.End),
		"days":    len(records),
		"metrics": metrics,
	}
	return jsonResource(summaryURI, result)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
