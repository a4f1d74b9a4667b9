// ABOUTME: Export and import functionality for daily health records.
// ABOUTME: Supports JSON, YAML, and Markdown export formats for any Repository.
package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/query"
	"gopkg.in/yaml.v3"
)

const (
	exportVersion = "1.0"
	exportTool    = "healthcoach"
)

// ExportData represents the full export format for daily records.
type ExportData struct {
	Version    string                `json:"version" yaml:"version"`
	ExportedAt time.Time             `json:"exported_at" yaml:"exported_at"`
	Tool       string                `json:"tool" yaml:"tool"`
	Records    []*models.DailyRecord `json:"records" yaml:"records"`
}

// NewExportData wraps records, sorted ascending by date, in an export envelope.
func NewExportData(records []*models.DailyRecord) *ExportData {
	sorted := make([]*models.DailyRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	return &ExportData{
		Version:    exportVersion,
		ExportedAt: time.Now(),
		Tool:       exportTool,
		Records:    sorted,
	}
}

// GetAllData retrieves all records for export.
func (d *DB) GetAllData() (*ExportData, error) {
	records, err := d.List(0)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return NewExportData(records), nil
}

// ImportData upserts every record in an export.
func (d *DB) ImportData(data *ExportData) error {
	return importRecords(d, data)
}

// importRecords writes records through repo, one upsert per date.
func importRecords(repo Repository, data *ExportData) error {
	for _, r := range data.Records {
		if r == nil {
			continue
		}
		r.Date = models.DateOf(r.Date)
		if err := repo.Upsert(r); err != nil {
			return fmt.Errorf("import record %s: %w", r.DateString(), err)
		}
	}
	return nil
}

// ExportJSON exports all data as JSON.
func ExportJSON(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(repo Repository, data []byte) (int, error) {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return 0, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if err := repo.ImportData(&exportData); err != nil {
		return 0, err
	}
	return len(exportData.Records), nil
}

type yamlExport struct {
	Version    string       `yaml:"version"`
	ExportedAt string       `yaml:"exported_at"`
	Tool       string       `yaml:"tool"`
	Records    []yamlRecord `yaml:"records"`
}

type yamlRecord struct {
	Date   string             `yaml:"date"`
	Values map[string]float64 `yaml:"values"`
}

// ExportYAML exports all data as YAML, one date per entry with its present values.
func ExportYAML(repo Repository) ([]byte, error) {
	data, err := repo.GetAllData()
	if err != nil {
		return nil, err
	}

	out := yamlExport{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Records:    make([]yamlRecord, 0, len(data.Records)),
	}
	for _, r := range data.Records {
		yr := yamlRecord{Date: r.DateString(), Values: make(map[string]float64)}
		for _, id := range r.Present() {
			yr.Values[string(id)] = *r.Value(id)
		}
		out.Records = append(out.Records, yr)
	}

	return yaml.Marshal(out)
}

// ImportYAML imports data produced by ExportYAML.
func ImportYAML(repo Repository, data []byte) (int, error) {
	var in yamlExport
	if err := yaml.Unmarshal(data, &in); err != nil {
		return 0, fmt.Errorf("unmarshal YAML: %w", err)
	}

	records := make([]*models.DailyRecord, 0, len(in.Records))
	for _, yr := range in.Records {
		date, err := models.ParseDate(yr.Date)
		if err != nil {
			return 0, err
		}
		r := models.NewDailyRecord(date)
		for name, v := range yr.Values {
			if !models.IsValidMetricID(name) {
				return 0, fmt.Errorf("record %s: unknown metric %q", yr.Date, name)
			}
			r.WithValue(models.MetricID(name), v)
		}
		records = append(records, r)
	}

	if err := repo.ImportData(&ExportData{Records: records}); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ExportMarkdown renders records as a Markdown table, newest first.
// A nil metric renders every metric column; a nil since renders every date.
func ExportMarkdown(repo Repository, metric *models.MetricID, since *time.Time) (string, error) {
	records, err := repo.List(0)
	if err != nil {
		return "", err
	}

	if since != nil {
		cutoff := models.DateOf(*since)
		var filtered []*models.DailyRecord
		for _, r := range records {
			if !r.Date.Before(cutoff) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	columns := models.AllMetricIDs
	if metric != nil {
		columns = []models.MetricID{*metric}
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Health Export - %s\n\n", now.Format(models.DateLayout)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	header := []string{"Date"}
	divider := []string{"------"}
	for _, id := range columns {
		header = append(header, string(id))
		divider = append(divider, strings.Repeat("-", len(id)))
	}
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("|" + strings.Join(divider, "|") + "|\n")

	for _, r := range records {
		cells := []string{r.DateString()}
		for _, id := range columns {
			v := r.Value(id)
			if v == nil {
				cells = append(cells, "-")
				continue
			}
			cells = append(cells, query.FormatValue(id, v))
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return sb.String(), nil
}
