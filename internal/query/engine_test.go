package query

import (
	"errors"
	"testing"

	"github.com/harperreed/healthcoach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func stepsSource() *memSource {
	steps := []float64{7000, 7500, 8000, 8000, 8500, 9000, 8000}
	src := newMemSource(
		record("2025-03-02", map[models.MetricID]float64{models.MetricTotalSteps: 50000}),
		record("2025-03-10", map[models.MetricID]float64{models.MetricTotalSteps: 100}),
	)
	for i, v := range steps {
		r := models.NewDailyRecord(models.AddDays(day("2025-03-03"), i)).WithValue(models.MetricTotalSteps, v)
		src.records[r.DateString()] = r
	}
	return src
}

func TestEngineCurrentRecovery(t *testing.T) {
	src := newMemSource(record("2025-03-01", map[models.MetricID]float64{models.MetricRecoveryScore: 72}))
	a := NewEngine(src).Answer(models.IntentGetCurrent, "What is my recovery today?", day("2025-03-10"))

	assert.Equal(t, "Your latest recovery_score on 2025-03-01 is 72.", a.Response)
	assert.Equal(t, models.MetricRecoveryScore, a.Metric)
	assert.True(t, a.HasExpr)
	assert.False(t, a.HasRange)
}

func TestEngineStepsLastSevenDays(t *testing.T) {
	a := NewEngine(stepsSource()).Answer(models.IntentGetHistory, "steps last 7 days", day("2025-03-10"))

	assert.Equal(t, "Over 7 days from 2025-03-03 to 2025-03-09, your total_steps averaged 8000 (min: 7000, max: 9000).", a.Response)
	assert.Equal(t, LastNDays(7), a.Expr)
	assert.Equal(t, OutcomeAnswered, a.Outcome)
}

func TestEngineReversedRange(t *testing.T) {
	src := newMemSource()
	a := NewEngine(src).Answer(models.IntentGetHistory, "recovery from 2025-01-10 to 2025-01-05", day("2025-03-10"))

	assert.Equal(t, OutcomeRangeError, a.Outcome)
	assert.Equal(t, "Could not understand the time range: start date is after end date (2025-01-10 > 2025-01-05)", a.Response)
	assert.Zero(t, src.fetches)

	var rangeErr *RangeError
	require.True(t, errors.As(a.Err, &rangeErr))
	assert.Equal(t, day("2025-01-10"), rangeErr.Start)
}

func TestEngineImpossibleDates(t *testing.T) {
	for _, text := range []string{
		"steps from 2025-02-30 to 2025-03-05",
		"steps since 2025-13-01",
		"steps on 2025-02-30",
	} {
		t.Run(text, func(t *testing.T) {
			src := stepsSource()
			a := NewEngine(src).Answer(models.IntentGetHistory, text, day("2025-03-10"))

			assert.Equal(t, OutcomeRangeError, a.Outcome)
			assert.True(t, a.HasExpr)
			assert.False(t, a.HasRange)
			assert.Contains(t, a.Response, "Could not understand the time range")
			assert.Contains(t, a.Response, "is not a valid date")
			assert.Zero(t, src.fetches)

			var rangeErr *RangeError
			assert.True(t, errors.As(a.Err, &rangeErr))
		})
	}

	a := NewEngine(stepsSource()).Answer(models.IntentCompare, "compare steps from 2025-02-29 to 2025-03-05", day("2025-03-10"))
	assert.Equal(t, OutcomeRangeError, a.Outcome)
}

func TestEngineNoMetric(t *testing.T) {
	a := NewEngine(newMemSource()).Answer(models.IntentGetHistory, "how was I last week", day("2025-03-10"))
	assert.Equal(t, OutcomeNoMetric, a.Outcome)
	assert.False(t, a.HasMetric)
}

func TestEngineExtract(t *testing.T) {
	req := NewEngine(newMemSource()).Extract(models.IntentCompare, "compare my hrv this week", day("2025-03-13"))

	assert.Equal(t, models.MetricHRVAvg, req.Metric)
	assert.True(t, req.HasMetric)
	assert.Equal(t, ExplicitRange(day("2025-03-10"), day("2025-03-13")), req.Expr)
	assert.Equal(t, day("2025-03-13"), req.Today)
}

func TestEngineOptions(t *testing.T) {
	resolver := NewMetricResolver([]SynonymGroup{{models.MetricVO2Max, []string{"lungs"}}})
	e := NewEngine(newMemSource(), WithMetricResolver(resolver), WithParser(NewParser(WithNaturalDates())))

	req := e.Extract(models.IntentGetHistory, "how are my lungs 2 days ago", day("2025-03-13"))
	assert.Equal(t, models.MetricVO2Max, req.Metric)
	assert.Equal(t, SingleDate(day("2025-03-11")), req.Expr)
}

func TestEngineLogsOutcome(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := NewEngine(stepsSource(), WithLogger(zap.New(core)))

	e.Answer(models.IntentGetHistory, "steps last 7 days", day("2025-03-10"))

	entries := logs.FilterMessage("synthesized answer").All()
	require.Len(t, entries, 1)
	assert.Equal(t, string(OutcomeAnswered), entries[0].ContextMap()["outcome"])
	assert.Equal(t, "2025-03-03 to 2025-03-09", entries[0].ContextMap()["range"])

	extracted := logs.FilterMessage("extracted query entities").All()
	require.Len(t, extracted, 1)
	assert.Equal(t, "last_n_days", extracted[0].ContextMap()["rule"])
}
