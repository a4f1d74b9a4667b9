// ABOUTME: MetricID enum for daily ring metrics.
// ABOUTME: Defines the 14 tracked metrics, their units, and their value kinds.
package models

// MetricID identifies one canonical daily health measurement.
type MetricID string

const (
	// Scores
	MetricRecoveryScore MetricID = "recovery_score"
	MetricMovementScore MetricID = "movement_score"
	MetricSleepScore    MetricID = "sleep_score"

	// Sleep
	MetricTotalSleepMin   MetricID = "total_sleep_min"
	MetricSleepEfficiency MetricID = "sleep_efficiency"
	MetricDeepSleepMin    MetricID = "deep_sleep_min"
	MetricRemSleepMin     MetricID = "rem_sleep_min"
	MetricLightSleepMin   MetricID = "light_sleep_min"
	MetricAvgTemperature  MetricID = "avg_temperature"

	// Activity
	MetricTotalSteps    MetricID = "total_steps"
	MetricActiveMinutes MetricID = "active_minutes"

	// Heart
	MetricHRVAvg MetricID = "hrv_avg"
	MetricRHRAvg MetricID = "rhr_avg"
	MetricVO2Max MetricID = "vo2_max"
)

// AllMetricIDs lists every metric in storage column order.
var AllMetricIDs = []MetricID{
	MetricRecoveryScore, MetricMovementScore, MetricSleepScore,
	MetricTotalSleepMin, MetricSleepEfficiency, MetricDeepSleepMin,
	MetricRemSleepMin, MetricLightSleepMin, MetricAvgTemperature,
	MetricTotalSteps, MetricHRVAvg, MetricRHRAvg,
	MetricActiveMinutes, MetricVO2Max,
}

// ValueKind describes how a metric value should be rendered.
type ValueKind int

const (
	KindOther ValueKind = iota
	KindPercent
	KindTemperature
	KindCount
	KindMinutes
	KindScore
)

// MetricKinds maps each metric to its value kind.
var MetricKinds = map[MetricID]ValueKind{
	MetricRecoveryScore:   KindScore,
	MetricMovementScore:   KindScore,
	MetricSleepScore:      KindScore,
	MetricTotalSleepMin:   KindMinutes,
	MetricSleepEfficiency: KindPercent,
	MetricDeepSleepMin:    KindMinutes,
	MetricRemSleepMin:     KindMinutes,
	MetricLightSleepMin:   KindMinutes,
	MetricAvgTemperature:  KindTemperature,
	MetricTotalSteps:      KindCount,
	MetricHRVAvg:          KindScore,
	MetricRHRAvg:          KindScore,
	MetricActiveMinutes:   KindMinutes,
	MetricVO2Max:          KindScore,
}

// MetricUnits maps metrics to their display units.
var MetricUnits = map[MetricID]string{
	MetricRecoveryScore:   "score",
	MetricMovementScore:   "score",
	MetricSleepScore:      "score",
	MetricTotalSleepMin:   "min",
	MetricSleepEfficiency: "%",
	MetricDeepSleepMin:    "min",
	MetricRemSleepMin:     "min",
	MetricLightSleepMin:   "min",
	MetricAvgTemperature:  "°C",
	MetricTotalSteps:      "steps",
	MetricHRVAvg:          "ms",
	MetricRHRAvg:          "bpm",
	MetricActiveMinutes:   "min",
	MetricVO2Max:          "ml/kg/min",
}

// IsValidMetricID checks if a string is a known metric.
func IsValidMetricID(s string) bool {
	for _, id := range AllMetricIDs {
		if string(id) == s {
			return true
		}
	}
	return false
}
