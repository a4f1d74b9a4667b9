// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: One daily_metrics row per calendar date with a nullable column per metric.
package storage

import (
	"strings"

	"github.com/harperreed/healthcoach/internal/models"
)

// metricColumns lists the metric columns in table order.
var metricColumns = func() []string {
	cols := make([]string, len(models.AllMetricIDs))
	for i, id := range models.AllMetricIDs {
		cols[i] = string(id)
	}
	return cols
}()

// recordColumns is the full select list for a daily record.
var recordColumns = "date, " + strings.Join(metricColumns, ", ") + ", raw_json, updated_at"

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS daily_metrics (\n\t\tdate TEXT PRIMARY KEY,\n")
	for _, col := range metricColumns {
		sb.WriteString("\t\t" + col + " REAL,\n")
	}
	sb.WriteString("\t\traw_json TEXT,\n")
	sb.WriteString("\t\tupdated_at TEXT NOT NULL\n\t);")

	_, err := d.db.Exec(sb.String())
	return err
}
