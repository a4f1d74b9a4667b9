// ABOUTME: DailyRecord model holding one day's optional metric values.
// ABOUTME: Also provides calendar-date helpers shared by storage and query code.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used for record keys.
const DateLayout = "2006-01-02"

// DailyRecord is one day of metrics. A nil field means the metric was not
// available for that date, which is distinct from a zero value.
type DailyRecord struct {
	Date            time.Time       `json:"date" yaml:"date"`
	RecoveryScore   *float64        `json:"recovery_score,omitempty" yaml:"recovery_score,omitempty"`
	MovementScore   *float64        `json:"movement_score,omitempty" yaml:"movement_score,omitempty"`
	SleepScore      *float64        `json:"sleep_score,omitempty" yaml:"sleep_score,omitempty"`
	TotalSleepMin   *float64        `json:"total_sleep_min,omitempty" yaml:"total_sleep_min,omitempty"`
	SleepEfficiency *float64        `json:"sleep_efficiency,omitempty" yaml:"sleep_efficiency,omitempty"`
	DeepSleepMin    *float64        `json:"deep_sleep_min,omitempty" yaml:"deep_sleep_min,omitempty"`
	RemSleepMin     *float64        `json:"rem_sleep_min,omitempty" yaml:"rem_sleep_min,omitempty"`
	LightSleepMin   *float64        `json:"light_sleep_min,omitempty" yaml:"light_sleep_min,omitempty"`
	AvgTemperature  *float64        `json:"avg_temperature,omitempty" yaml:"avg_temperature,omitempty"`
	TotalSteps      *float64        `json:"total_steps,omitempty" yaml:"total_steps,omitempty"`
	HRVAvg          *float64        `json:"hrv_avg,omitempty" yaml:"hrv_avg,omitempty"`
	RHRAvg          *float64        `json:"rhr_avg,omitempty" yaml:"rhr_avg,omitempty"`
	ActiveMinutes   *float64        `json:"active_minutes,omitempty" yaml:"active_minutes,omitempty"`
	VO2Max          *float64        `json:"vo2_max,omitempty" yaml:"vo2_max,omitempty"`
	RawJSON         json.RawMessage `json:"raw_json,omitempty" yaml:"-"`
	UpdatedAt       time.Time       `json:"updated_at" yaml:"updated_at"`
}

// NewDailyRecord creates an empty record for the given calendar date.
func NewDailyRecord(date time.Time) *DailyRecord {
	return &DailyRecord{
		Date:      DateOf(date),
		UpdatedAt: time.Now(),
	}
}

// field returns the address of the struct field backing a metric.
func (r *DailyRecord) field(id MetricID) **float64 {
	switch id {
	case MetricRecoveryScore:
		return &r.RecoveryScore
	case MetricMovementScore:
		return &r.MovementScore
	case MetricSleepScore:
		return &r.SleepScore
	case MetricTotalSleepMin:
		return &r.TotalSleepMin
	case MetricSleepEfficiency:
		return &r.SleepEfficiency
	case MetricDeepSleepMin:
		return &r.DeepSleepMin
	case MetricRemSleepMin:
		return &r.RemSleepMin
	case MetricLightSleepMin:
		return &r.LightSleepMin
	case MetricAvgTemperature:
		return &r.AvgTemperature
	case MetricTotalSteps:
		return &r.TotalSteps
	case MetricHRVAvg:
		return &r.HRVAvg
	case MetricRHRAvg:
		return &r.RHRAvg
	case MetricActiveMinutes:
		return &r.ActiveMinutes
	case MetricVO2Max:
		return &r.VO2Max
	}
	return nil
}

// Value returns the value recorded for a metric, or nil if absent or unknown.
func (r *DailyRecord) Value(id MetricID) *float64 {
	f := r.field(id)
	if f == nil {
		return nil
	}
	return *f
}

// SetValue sets (or clears, with nil) the value for a metric.
func (r *DailyRecord) SetValue(id MetricID, v *float64) error {
	f := r.field(id)
	if f == nil {
		return fmt.Errorf("unknown metric: %s", id)
	}
	*f = v
	return nil
}

// WithValue sets a metric value and returns the record for chaining.
func (r *DailyRecord) WithValue(id MetricID, v float64) *DailyRecord {
	_ = r.SetValue(id, &v)
	return r
}

// Present returns the metrics that have a value on this record.
func (r *DailyRecord) Present() []MetricID {
	var ids []MetricID
	for _, id := range AllMetricIDs {
		if r.Value(id) != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// DateString returns the record's key as YYYY-MM-DD.
func (r *DailyRecord) DateString() string {
	return FormatDate(r.Date)
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a strict YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return DateOf(t).AddDate(0, 0, n)
}

// DaysBetween returns the whole number of days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
