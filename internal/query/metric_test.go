package query

import (
	"testing"

	"github.com/harperreed/healthcoach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMetric(t *testing.T) {
	tests := []struct {
		text string
		want models.MetricID
	}{
		{"What is my recovery today?", models.MetricRecoveryScore},
		{"steps last 7 days", models.MetricTotalSteps},
		{"How many STEPS did I take?", models.MetricTotalSteps},
		{"my sleep efficiency this week", models.MetricSleepEfficiency},
		{"how was my deep sleep", models.MetricDeepSleepMin},
		{"total sleep yesterday", models.MetricTotalSleepMin},
		{"how did I sleep", models.MetricSleepScore},
		{"resting heart rate trend", models.MetricRHRAvg},
		{"heart rate variability", models.MetricHRVAvg},
		{"cardio fitness level", models.MetricVO2Max},
		{"body temp last night", models.MetricAvgTemperature},
		{"hours of sleep", models.MetricTotalSleepMin},
		// Substring matching is not word-boundary aware.
		{"footsteps", models.MetricTotalSteps},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ResolveMetric(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMetricNoMatch(t *testing.T) {
	got, ok := ResolveMetric("how am I doing overall?")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestMetricResolverLastRegistrationWins(t *testing.T) {
	r := NewMetricResolver([]SynonymGroup{
		{models.MetricSleepScore, []string{"Zzz"}},
		{models.MetricTotalSleepMin, []string{"zzz"}},
	})

	got, ok := r.Lookup("zzz")
	require.True(t, ok)
	assert.Equal(t, models.MetricTotalSleepMin, got)
	assert.Equal(t, 1, r.Len())
}

func TestMetricResolverLongestFirst(t *testing.T) {
	r := NewMetricResolver([]SynonymGroup{
		{models.MetricSleepScore, []string{"sleep"}},
		{models.MetricDeepSleepMin, []string{"deep sleep"}},
	})

	got, ok := r.Resolve("my deep sleep and sleep")
	require.True(t, ok)
	assert.Equal(t, models.MetricDeepSleepMin, got)
}

func TestDefaultSynonymsCoverEveryMetric(t *testing.T) {
	covered := make(map[models.MetricID]bool)
	for _, g := range DefaultSynonyms() {
		covered[g.Metric] = true
	}
	for _, id := range models.AllMetricIDs {
		assert.True(t, covered[id], "no synonyms for %s", id)
	}

	// Extra registrations override primary ones for the same phrase.
	got, ok := defaultResolver.Lookup("hrv")
	require.True(t, ok)
	assert.Equal(t, models.MetricHRVAvg, got)
}
