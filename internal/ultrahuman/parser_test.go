package ultrahuman

import (
	"testing"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "data": {
    "metrics": {
      "2025-02-20": [
        {"type": "recovery_index", "object": {"value": 65}},
        {"type": "movement_index", "object": {"value": 64}},
        {"type": "sleep", "object": {
          "sleep_score": {"score": 81},
          "total_sleep": {"minutes": 432},
          "sleep_efficiency": {"percentage": 91.5},
          "deep_sleep": {"minutes": 88},
          "rem_sleep": {"minutes": 97},
          "light_sleep": {"minutes": 247},
          "average_body_temperature": {"celsius": 36.4}
        }},
        {"type": "steps", "object": {"total": 3087}},
        {"type": "avg_sleep_hrv", "object": {"value": 61}},
        {"type": "night_rhr", "object": {"avg": 48}},
        {"type": "active_minutes", "object": {"value": 0}},
        {"type": "vo2_max", "object": {"value": "55"}},
        {"type": "spo2", "object": {"value": 97}}
      ]
    }
  }
}`

func TestParseDailyMetrics(t *testing.T) {
	date := time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)
	r, err := ParseDailyMetrics([]byte(samplePayload), date)
	require.NoError(t, err)

	want := map[models.MetricID]float64{
		models.MetricRecoveryScore:   65,
		models.MetricMovementScore:   64,
		models.MetricSleepScore:      81,
		models.MetricTotalSleepMin:   432,
		models.MetricSleepEfficiency: 91.5,
		models.MetricDeepSleepMin:    88,
		models.MetricRemSleepMin:     97,
		models.MetricLightSleepMin:   247,
		models.MetricAvgTemperature:  36.4,
		models.MetricTotalSteps:      3087,
		models.MetricHRVAvg:          61,
		models.MetricRHRAvg:          48,
		models.MetricActiveMinutes:   0,
		models.MetricVO2Max:          55,
	}
	for id, v := range want {
		got := r.Value(id)
		if assert.NotNil(t, got, string(id)) {
			assert.Equal(t, v, *got, string(id))
		}
	}
	assert.Equal(t, "2025-02-20", r.DateString())
	assert.JSONEq(t, samplePayload, string(r.RawJSON))
}

func TestParseDailyMetricsPartial(t *testing.T) {
	raw := `{"data":{"metrics":{"2025-02-21":[
		{"type":"recovery_index","object":{"value":null}},
		{"type":"steps","object":{"total":"n/a"}},
		{"type":"sleep","object":{"total_sleep":{"minutes":400}}},
		"garbage",
		{"type":"night_rhr","object":"garbage"}
	]}}}`

	r, err := ParseDailyMetrics([]byte(raw), time.Date(2025, 2, 21, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, []models.MetricID{models.MetricTotalSleepMin}, r.Present())
}

func TestParseDailyMetricsEmpty(t *testing.T) {
	for _, raw := range []string{`{}`, `{"data":{}}`, `{"data":{"metrics":{}}}`} {
		r, err := ParseDailyMetrics([]byte(raw), time.Now())
		require.NoError(t, err, raw)
		assert.Empty(t, r.Present(), raw)
	}
}

func TestParseDailyMetricsFallsBackToFirstDate(t *testing.T) {
	raw := `{"data":{"metrics":{"2025-02-19":[{"type":"steps","object":{"total":100}}]}}}`
	r, err := ParseDailyMetrics([]byte(raw), time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	v := r.Value(models.MetricTotalSteps)
	require.NotNil(t, v)
	assert.Equal(t, 100.0, *v)
}

func TestParseDailyMetricsMalformed(t *testing.T) {
	_, err := ParseDailyMetrics([]byte(`{"data":`), time.Now())
	assert.Error(t, err)
}
