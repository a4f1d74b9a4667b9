// ABOUTME: ResponseSynthesizer turns intent, metric, and records into a narrative.
// ABOUTME: Handles current value, historical summary, and two-day comparison.
package query

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
)

// RecordSource is the read side of the daily record store.
type RecordSource interface {
	// Latest returns the most recent record, or nil when the store is empty.
	Latest() (*models.DailyRecord, error)
	// Fetch returns existing records in [start, end], ascending by date.
	Fetch(start, end time.Time) ([]*models.DailyRecord, error)
	// Exists reports whether a record exists for date.
	Exists(date time.Time) (bool, error)
}

// Outcome classifies how a query was answered.
type Outcome string

const (
	OutcomeAnswered      Outcome = "answered"
	OutcomeNoData        Outcome = "no_data"
	OutcomeNoMetric      Outcome = "no_metric"
	OutcomeRangeError    Outcome = "range_error"
	OutcomeStoreError    Outcome = "store_error"
	OutcomeUnknownIntent Outcome = "unknown_intent"
)

// DefaultWindow is applied when history or compare queries name no time.
var DefaultWindow = LastNDays(7)

// Request is the fully extracted input to synthesis.
type Request struct {
	Intent    models.Intent
	Metric    models.MetricID
	HasMetric bool
	Expr      TimeExpression
	HasExpr   bool
	Today     time.Time
}

// Answer is the synthesized response plus the intermediate values behind it.
type Answer struct {
	Response  string
	Intent    models.Intent
	Metric    models.MetricID
	HasMetric bool
	Expr      TimeExpression
	HasExpr   bool
	Range     Range
	HasRange  bool
	Outcome   Outcome
	Err       error
}

// Summary is the aggregate of one metric over a set of records.
type Summary struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
}

// Summarize aggregates the records that carry metric. Records missing the
// metric are skipped, never counted as zero. ok is false when none carry it.
func Summarize(records []*models.DailyRecord, metric models.MetricID) (Summary, bool) {
	var s Summary
	var total float64
	for _, r := range records {
		v := r.Value(metric)
		if v == nil {
			continue
		}
		if s.Count == 0 || *v < s.Min {
			s.Min = *v
		}
		if s.Count == 0 || *v > s.Max {
			s.Max = *v
		}
		total += *v
		s.Count++
	}
	if s.Count == 0 {
		return Summary{}, false
	}
	s.Mean = math.Round(total/float64(s.Count)*10) / 10
	return s, true
}

// Synthesizer builds responses from a record source.
type Synthesizer struct {
	source RecordSource
}

// NewSynthesizer creates a Synthesizer reading from source.
func NewSynthesizer(source RecordSource) *Synthesizer {
	return &Synthesizer{source: source}
}

// Synthesize answers a request. It never returns an error; failures are
// reported as text with Outcome and Err set.
func (s *Synthesizer) Synthesize(req Request) Answer {
	a := Answer{
		Intent:    req.Intent,
		Metric:    req.Metric,
		HasMetric: req.HasMetric,
		Expr:      req.Expr,
		HasExpr:   req.HasExpr,
	}

	switch req.Intent {
	case models.IntentGetCurrent:
		s.current(&a)
	case models.IntentGetHistory, models.IntentCompare:
		s.windowed(&a, req.Today)
	default:
		a.Response = "I don't know how to handle that intent."
		a.Outcome = OutcomeUnknownIntent
	}
	return a
}

func (s *Synthesizer) current(a *Answer) {
	if !a.HasMetric {
		noMetric(a)
		return
	}

	latest, err := s.source.Latest()
	if err != nil {
		storeError(a, err)
		return
	}
	if latest == nil {
		a.Response = "I don't have any data yet. Please fetch some historical data first."
		a.Outcome = OutcomeNoData
		return
	}

	v := latest.Value(a.Metric)
	if v == nil {
		a.Response = fmt.Sprintf("I don't have %s data for the latest date (%s).", a.Metric, latest.DateString())
		a.Outcome = OutcomeNoData
		return
	}

	a.Response = fmt.Sprintf("Your latest %s on %s is %s.", a.Metric, latest.DateString(), FormatValue(a.Metric, v))
	a.Outcome = OutcomeAnswered
}

func (s *Synthesizer) windowed(a *Answer, today time.Time) {
	expr := DefaultWindow
	if a.HasExpr {
		expr = a.Expr
	}

	rng, err := Resolve(expr, today)
	if err != nil {
		a.Response = fmt.Sprintf("Could not understand the time range: %v", err)
		a.Outcome = OutcomeRangeError
		a.Err = err
		return
	}
	a.Range, a.HasRange = rng, true

	if !a.HasMetric {
		noMetric(a)
		return
	}

	records, err := s.source.Fetch(rng.Start, rng.End)
	if err != nil {
		storeError(a, err)
		return
	}

	if a.Intent == models.IntentCompare {
		compare(a, records)
		return
	}
	history(a, records)
}

func history(a *Answer, records []*models.DailyRecord) {
	start, end := models.FormatDate(a.Range.Start), models.FormatDate(a.Range.End)
	if len(records) == 0 {
		a.Response = fmt.Sprintf("No data available from %s to %s.", start, end)
		a.Outcome = OutcomeNoData
		return
	}

	sum, ok := Summarize(records, a.Metric)
	if !ok {
		a.Response = fmt.Sprintf("I don't have %s data in the selected period (%s to %s).", a.Metric, start, end)
		a.Outcome = OutcomeNoData
		return
	}

	a.Response = fmt.Sprintf("Over %d days from %s to %s, your %s averaged %s (min: %s, max: %s).",
		sum.Count, start, end, a.Metric,
		FormatFloat(a.Metric, sum.Mean),
		FormatFloat(a.Metric, sum.Min),
		FormatFloat(a.Metric, sum.Max))
	a.Outcome = OutcomeAnswered
}

func compare(a *Answer, records []*models.DailyRecord) {
	if len(records) < 2 {
		a.Response = fmt.Sprintf("Not enough data to compare %s. I need at least two days of data.", a.Metric)
		a.Outcome = OutcomeNoData
		return
	}

	sorted := make([]*models.DailyRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	latest, previous := sorted[0], sorted[1]

	vLatest, vPrevious := latest.Value(a.Metric), previous.Value(a.Metric)
	if vLatest == nil || vPrevious == nil {
		var missing []string
		if vLatest == nil {
			missing = append(missing, latest.DateString())
		}
		if vPrevious == nil {
			missing = append(missing, previous.DateString())
		}
		a.Response = fmt.Sprintf("Missing %s data for %s.", a.Metric, strings.Join(missing, ", "))
		a.Outcome = OutcomeNoData
		return
	}

	diff := *vLatest - *vPrevious
	latestFmt := FormatValue(a.Metric, vLatest)
	a.Outcome = OutcomeAnswered

	if diff == 0 {
		a.Response = fmt.Sprintf("Your %s stayed the same at %s on %s compared to %s.",
			a.Metric, latestFmt, latest.DateString(), previous.DateString())
		return
	}

	direction := "increased"
	if diff < 0 {
		direction = "decreased"
	}
	a.Response = fmt.Sprintf("Your %s %s from %s on %s to %s on %s (a change of %s).",
		a.Metric, direction,
		FormatValue(a.Metric, vPrevious), previous.DateString(),
		latestFmt, latest.DateString(),
		FormatFloat(a.Metric, math.Abs(diff)))
}

func noMetric(a *Answer) {
	a.Response = "I'm not sure which metric you're asking about. Try recovery, sleep, steps, HRV, or resting heart rate."
	a.Outcome = OutcomeNoMetric
}

func storeError(a *Answer, err error) {
	a.Response = fmt.Sprintf("I couldn't read your data: %v", err)
	a.Outcome = OutcomeStoreError
	a.Err = err
}
