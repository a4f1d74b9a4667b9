// ABOUTME: ValueFormatter renders metric values with metric-specific units.
// ABOUTME: Dispatch is a table keyed by value kind, with a two-decimal fallback.
package query

import (
	"fmt"

	"github.com/harperreed/healthcoach/internal/models"
)

// NoDataText is rendered for absent values regardless of metric.
const NoDataText = "no data available"

type formatFunc func(v float64) string

var formatters = map[models.ValueKind]formatFunc{
	models.KindPercent:     func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	models.KindTemperature: func(v float64) string { return fmt.Sprintf("%.1f°C", v) },
	models.KindCount:       func(v float64) string { return fmt.Sprintf("%d", int64(v)) },
	models.KindMinutes:     formatMinutes,
	models.KindScore:       func(v float64) string { return fmt.Sprintf("%d", int64(v)) },
	models.KindOther:       formatOther,
}

func formatMinutes(v float64) string {
	total := int64(v)
	hours, minutes := total/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func formatOther(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatValue renders a value for display. Unknown metrics fall back to two decimals.
func FormatValue(metric models.MetricID, value *float64) string {
	if value == nil {
		return NoDataText
	}
	kind, ok := models.MetricKinds[metric]
	if !ok {
		return formatOther(*value)
	}
	return formatters[kind](*value)
}

// FormatFloat is FormatValue for a known-present value.
func FormatFloat(metric models.MetricID, value float64) string {
	return FormatValue(metric, &value)
}
