// ABOUTME: Shared constructors and formatting helpers for CLI commands.
// ABOUTME: Wires config values into the engine, classifier, assistant, and fetcher.
package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/healthcoach/internal/assistant"
	"github.com/harperreed/healthcoach/internal/classifier"
	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/query"
	"github.com/harperreed/healthcoach/internal/ultrahuman"
	"go.uber.org/zap"
)

// now is the CLI clock; tests replace it.
var now = time.Now

func newEngine() *query.Engine {
	var popts []query.ParserOption
	if cfg.NaturalDates {
		popts = append(popts, query.WithNaturalDates())
	}
	return query.NewEngine(repo,
		query.WithParser(query.NewParser(popts...)),
		query.WithLogger(logger.Named("query")))
}

func newClassifier() *classifier.Classifier {
	return classifier.New(
		classifier.WithThreshold(cfg.ConfidenceThreshold),
		classifier.WithLogger(logger.Named("classifier")))
}

func newAssistant() *assistant.Client {
	return assistant.NewClient(cfg.OllamaURL,
		assistant.WithModel(cfg.OllamaModel),
		assistant.WithLogger(logger.Named("assistant")))
}

// newFetcher builds a fetcher from the configured credentials. delay < 0
// uses the configured delay.
func newFetcher(delay time.Duration) (*ultrahuman.Fetcher, error) {
	token, email := cfg.Credentials()
	client, err := ultrahuman.NewClient(token,
		ultrahuman.WithBaseURL(cfg.UltrahumanURL),
		ultrahuman.WithEmail(email),
		ultrahuman.WithClientLogger(logger.Named("ultrahuman")))
	if err != nil {
		return nil, err
	}
	if delay < 0 {
		delay = cfg.FetchDelay()
	}
	return ultrahuman.NewFetcher(client, repo,
		ultrahuman.WithDelay(delay),
		ultrahuman.WithWorkers(cfg.FetchWorkers),
		ultrahuman.WithClock(now),
		ultrahuman.WithFetcherLogger(logger.Named("fetch"))), nil
}

// recordReport adds a fetch report to the metrics recorder.
func recordReport(r ultrahuman.Report) {
	recorder.FetchDays(string(ultrahuman.StatusStored), r.Stored)
	recorder.FetchDays(string(ultrahuman.StatusSkipped), r.Skipped)
	recorder.FetchDays(string(ultrahuman.StatusFailed), r.Failed)
}

// printReport writes a one-line summary plus any failed days.
func printReport(out io.Writer, r ultrahuman.Report) {
	line := fmt.Sprintf("Fetched %d day(s): %d stored, %d skipped, %d failed",
		len(r.Results), r.Stored, r.Skipped, r.Failed)
	if r.Failed > 0 {
		color.New(color.FgYellow).Fprintln(out, "⚠ "+line)
	} else {
		color.New(color.FgGreen).Fprintln(out, "✓ "+line)
	}
	for _, res := range r.Results {
		if res.Status == ultrahuman.StatusFailed {
			fmt.Fprintf(out, "  %s: %v\n", models.FormatDate(res.Date), res.Err)
		}
	}
	logger.Debug("fetch report", zap.Int("stored", r.Stored), zap.Int("failed", r.Failed))
}

// parseDateFlag parses an optional YYYY-MM-DD flag value.
func parseDateFlag(name, value string) (time.Time, bool, error) {
	if value == "" {
		return time.Time{}, false, nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid --%s: %s (use YYYY-MM-DD)", name, value)
	}
	return d, true, nil
}

// resolveMetricArg accepts a canonical metric ID or a synonym.
func resolveMetricArg(name string) (models.MetricID, error) {
	if models.IsValidMetricID(name) {
		return models.MetricID(name), nil
	}
	if id, ok := query.ResolveMetric(name); ok && name != "" {
		return id, nil
	}
	return "", fmt.Errorf("unknown metric: %s", name)
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
