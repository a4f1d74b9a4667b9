// ABOUTME: MetricResolver maps free text to a canonical metric via synonyms.
// ABOUTME: Matching is substring containment, longest phrase first.
package query

import (
	"sort"
	"strings"

	"github.com/harperreed/healthcoach/internal/models"
)

// SynonymGroup registers phrases for one metric.
type SynonymGroup struct {
	Metric  models.MetricID
	Phrases []string
}

// synonymGroups are the primary phrases for each metric.
var synonymGroups = []SynonymGroup{
	{models.MetricRecoveryScore, []string{"recovery", "recovery score", "recovery index", "recovery level", "readiness", "recovery rating"}},
	{models.MetricMovementScore, []string{"movement", "movement score", "movement index", "activity score", "daily movement"}},
	{models.MetricSleepScore, []string{"sleep", "sleep score", "sleep quality", "sleep rating", "sleep performance"}},
	{models.MetricTotalSleepMin, []string{"total sleep", "sleep time", "sleep duration", "hours slept", "sleep length", "time asleep"}},
	{models.MetricSleepEfficiency, []string{"sleep efficiency", "efficiency", "sleep quality percentage"}},
	{models.MetricDeepSleepMin, []string{"deep sleep", "deep sleep minutes", "deep sleep duration"}},
	{models.MetricRemSleepMin, []string{"rem sleep", "rem", "rem duration"}},
	{models.MetricLightSleepMin, []string{"light sleep", "light sleep minutes"}},
	{models.MetricAvgTemperature, []string{"temperature", "skin temperature", "body temperature", "avg temp"}},
	{models.MetricTotalSteps, []string{"steps", "step count", "steps taken", "daily steps", "how many steps"}},
	{models.MetricHRVAvg, []string{"hrv", "heart rate variability", "hrv average"}},
	{models.MetricRHRAvg, []string{"resting heart rate", "rhr", "resting hr", "night rhr"}},
	{models.MetricActiveMinutes, []string{"active minutes", "activity minutes", "active time", "exercise time"}},
	{models.MetricVO2Max, []string{"vo2 max", "vo2", "cardio fitness", "fitness level"}},
}

// extraSynonymGroups are registered after the primary phrases and win on conflict.
var extraSynonymGroups = []SynonymGroup{
	{models.MetricRecoveryScore, []string{"recovery level", "readiness"}},
	{models.MetricMovementScore, []string{"activity score", "movement level"}},
	{models.MetricSleepScore, []string{"sleep quality", "sleep rating"}},
	{models.MetricTotalSleepMin, []string{"sleep duration", "time asleep", "hours of sleep"}},
	{models.MetricSleepEfficiency, []string{"sleep efficiency percentage"}},
	{models.MetricDeepSleepMin, []string{"deep sleep duration"}},
	{models.MetricRemSleepMin, []string{"rem duration"}},
	{models.MetricLightSleepMin, []string{"light sleep duration"}},
	{models.MetricAvgTemperature, []string{"skin temp", "body temp"}},
	{models.MetricTotalSteps, []string{"step count"}},
	{models.MetricHRVAvg, []string{"heart rate variability", "hrv"}},
	{models.MetricRHRAvg, []string{"resting heart rate", "night rhr"}},
	{models.MetricActiveMinutes, []string{"active time"}},
	{models.MetricVO2Max, []string{"vo2", "cardio fitness"}},
}

// DefaultSynonyms returns the built-in synonym registrations in order.
func DefaultSynonyms() []SynonymGroup {
	groups := make([]SynonymGroup, 0, len(synonymGroups)+len(extraSynonymGroups))
	groups = append(groups, synonymGroups...)
	return append(groups, extraSynonymGroups...)
}

type synonym struct {
	phrase string
	metric models.MetricID
}

// MetricResolver finds the metric a piece of text refers to.
// It is immutable after construction and safe for concurrent use.
type MetricResolver struct {
	table   map[string]models.MetricID
	ordered []synonym
}

// NewMetricResolver builds a resolver from synonym groups. A phrase registered
// more than once maps to the metric of its last registration.
func NewMetricResolver(groups []SynonymGroup) *MetricResolver {
	table := make(map[string]models.MetricID)
	for _, g := range groups {
		for _, p := range g.Phrases {
			table[strings.ToLower(p)] = g.Metric
		}
	}

	ordered := make([]synonym, 0, len(table))
	for p, m := range table {
		ordered = append(ordered, synonym{phrase: p, metric: m})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i].phrase) != len(ordered[j].phrase) {
			return len(ordered[i].phrase) > len(ordered[j].phrase)
		}
		return ordered[i].phrase < ordered[j].phrase
	})

	return &MetricResolver{table: table, ordered: ordered}
}

// Resolve returns the metric whose longest synonym occurs in text.
// The check is plain substring containment on the lower-cased text.
func (r *MetricResolver) Resolve(text string) (models.MetricID, bool) {
	lower := strings.ToLower(text)
	for _, s := range r.ordered {
		if strings.Contains(lower, s.phrase) {
			return s.metric, true
		}
	}
	return "", false
}

// Lookup returns the metric registered for an exact phrase.
func (r *MetricResolver) Lookup(phrase string) (models.MetricID, bool) {
	m, ok := r.table[strings.ToLower(phrase)]
	return m, ok
}

// Len returns the number of distinct phrases.
func (r *MetricResolver) Len() int {
	return len(r.ordered)
}

var defaultResolver = NewMetricResolver(DefaultSynonyms())

// ResolveMetric resolves text against the built-in synonym table.
func ResolveMetric(text string) (models.MetricID, bool) {
	return defaultResolver.Resolve(text)
}
