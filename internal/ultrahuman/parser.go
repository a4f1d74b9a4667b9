// ABOUTME: Parser mapping a daily_metrics payload onto a DailyRecord.
// ABOUTME: Missing or non-numeric values stay absent instead of becoming zero.
package ultrahuman

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
)

type payload struct {
	Data struct {
		Metrics map[string][]any `json:"metrics"`
	} `json:"data"`
}

// sleepFields maps nested sleep objects to (field, metric).
var sleepFields = []struct {
	object string
	field  string
	metric models.MetricID
}{
	{"sleep_score", "score", models.MetricSleepScore},
	{"total_sleep", "minutes", models.MetricTotalSleepMin},
	{"sleep_efficiency", "percentage", models.MetricSleepEfficiency},
	{"deep_sleep", "minutes", models.MetricDeepSleepMin},
	{"rem_sleep", "minutes", models.MetricRemSleepMin},
	{"light_sleep", "minutes", models.MetricLightSleepMin},
	{"average_body_temperature", "celsius", models.MetricAvgTemperature},
}

// flatFields maps top-level metric types to (field, metric).
var flatFields = map[string]struct {
	field  string
	metric models.MetricID
}{
	"recovery_index": {"value", models.MetricRecoveryScore},
	"movement_index": {"value", models.MetricMovementScore},
	"steps":          {"total", models.MetricTotalSteps},
	"avg_sleep_hrv":  {"value", models.MetricHRVAvg},
	"night_rhr":      {"avg", models.MetricRHRAvg},
	"active_minutes": {"value", models.MetricActiveMinutes},
	"vo2_max":        {"value", models.MetricVO2Max},
}

// ParseDailyMetrics builds a record for date from a raw response. Only
// malformed JSON is an error; an empty payload yields a record with no values.
// The raw payload is kept on the record.
func ParseDailyMetrics(raw []byte, date time.Time) (*models.DailyRecord, error) {
	var p payload
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse daily metrics: %w", err)
	}

	r := models.NewDailyRecord(date)
	r.RawJSON = json.RawMessage(raw)

	for _, entry := range itemsFor(p.Data.Metrics, models.FormatDate(date)) {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		kind, _ := item["type"].(string)
		obj, _ := item["object"].(map[string]any)

		if kind == "sleep" {
			for _, sf := range sleepFields {
				nested, _ := obj[sf.object].(map[string]any)
				setIfNumber(r, sf.metric, nested[sf.field])
			}
			continue
		}
		if ff, ok := flatFields[kind]; ok {
			setIfNumber(r, ff.metric, obj[ff.field])
		}
	}
	return r, nil
}

// itemsFor prefers the entry keyed by the requested date and otherwise takes
// the earliest key, since the endpoint returns a single day.
func itemsFor(byDate map[string][]any, date string) []any {
	if items, ok := byDate[date]; ok {
		return items
	}
	keys := make([]string, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return byDate[keys[0]]
}

func setIfNumber(r *models.DailyRecord, id models.MetricID, v any) {
	if f, ok := toFloat(v); ok {
		r.WithValue(id, f)
	}
}

// toFloat converts JSON numbers and numeric strings.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}
