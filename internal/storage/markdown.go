// ABOUTME: MarkdownStore keeps one markdown file per day with YAML frontmatter.
// ABOUTME: Files live under records/YYYY/MM/YYYY-MM-DD.md and are written atomically.

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/query"
	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// MarkdownStore provides file-based storage for daily records.
type MarkdownStore struct {
	dataDir string
	mu      sync.RWMutex
}

// Compile-time check that MarkdownStore implements Repository.
var _ Repository = (*MarkdownStore)(nil)

// NewMarkdownStore creates a new markdown-backed store rooted at dataDir.
func NewMarkdownStore(dataDir string) (*MarkdownStore, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &MarkdownStore{dataDir: dataDir}, nil
}

// Close releases resources. For MarkdownStore this is a no-op.
func (s *MarkdownStore) Close() error {
	return nil
}

func (s *MarkdownStore) recordsDir() string {
	return filepath.Join(s.dataDir, "records")
}

// recordFilePath returns records/YYYY/MM/YYYY-MM-DD.md for date.
func (s *MarkdownStore) recordFilePath(date time.Time) string {
	return filepath.Join(s.recordsDir(), date.Format("2006"), date.Format("01"),
		models.FormatDate(date)+".md")
}

// recordFrontmatter holds the YAML frontmatter of a record file.
type recordFrontmatter struct {
	Date      string             `yaml:"date"`
	UpdatedAt string             `yaml:"updated_at,omitempty"`
	Metrics   map[string]float64 `yaml:"metrics,omitempty"`
	RawJSON   string             `yaml:"raw_json,omitempty"`
}

func recordToFrontmatter(r *models.DailyRecord) recordFrontmatter {
	fm := recordFrontmatter{Date: r.DateString()}
	if !r.UpdatedAt.IsZero() {
		fm.UpdatedAt = r.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if present := r.Present(); len(present) > 0 {
		fm.Metrics = make(map[string]float64, len(present))
		for _, id := range present {
			fm.Metrics[string(id)] = *r.Value(id)
		}
	}
	if len(r.RawJSON) > 0 {
		fm.RawJSON = string(r.RawJSON)
	}
	return fm
}

func recordFromFrontmatter(fm *recordFrontmatter) (*models.DailyRecord, error) {
	date, err := models.ParseDate(fm.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", fm.Date, err)
	}
	r := models.NewDailyRecord(date)
	if fm.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339, fm.UpdatedAt); err == nil {
			r.UpdatedAt = t
		}
	}
	for name, v := range fm.Metrics {
		if !models.IsValidMetricID(name) {
			continue
		}
		r.WithValue(models.MetricID(name), v)
	}
	if fm.RawJSON != "" {
		r.RawJSON = json.RawMessage(fm.RawJSON)
	}
	return r, nil
}

// renderBody is a readable table of the record's values.
func renderBody(r *models.DailyRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n# %s\n\n", r.DateString())
	present := r.Present()
	if len(present) == 0 {
		sb.WriteString("No metrics recorded.\n")
		return sb.String()
	}
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	for _, id := range present {
		fmt.Fprintf(&sb, "| %s | %s |\n", id, query.FormatValue(id, r.Value(id)))
	}
	return sb.String()
}

// renderFrontmatter joins YAML frontmatter and a markdown body.
func renderFrontmatter(fm any, body string) (string, error) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}
	return frontmatterDelim + "\n" + string(data) + frontmatterDelim + "\n" + body, nil
}

// parseFrontmatter splits a file into its YAML frontmatter and body. The
// YAML is empty when the file does not start with a delimiter line.
func parseFrontmatter(content string) (yamlStr, body string) {
	if !strings.HasPrefix(content, frontmatterDelim+"\n") {
		return "", content
	}
	rest := content[len(frontmatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelim+"\n")
	if end < 0 {
		return "", content
	}
	return rest[:end+1], rest[end+len(frontmatterDelim)+2:]
}

// atomicWrite writes data to a temp file in the target directory and renames it.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readRecordFile(path string) (*models.DailyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	yamlStr, _ := parseFrontmatter(string(data))
	if yamlStr == "" {
		return nil, fmt.Errorf("no frontmatter in %s", path)
	}

	var fm recordFrontmatter
	if err := yaml.Unmarshal([]byte(yamlStr), &fm); err != nil {
		return nil, fmt.Errorf("parse frontmatter in %s: %w", path, err)
	}
	return recordFromFrontmatter(&fm)
}

func (s *MarkdownStore) writeRecordFile(r *models.DailyRecord) error {
	fm := recordToFrontmatter(r)
	content, err := renderFrontmatter(&fm, renderBody(r))
	if err != nil {
		return fmt.Errorf("render record file: %w", err)
	}
	return atomicWrite(s.recordFilePath(r.Date), []byte(content))
}

// recordPaths returns every record file path, ascending by date.
func (s *MarkdownStore) recordPaths() ([]string, error) {
	dir := s.recordsDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		if _, err := models.ParseDate(strings.TrimSuffix(filepath.Base(path), ".md")); err != nil {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk records: %w", err)
	}
	// File names are YYYY-MM-DD, so base names sort chronologically.
	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})
	return paths, nil
}

func readRecordFiles(paths []string) ([]*models.DailyRecord, error) {
	records := make([]*models.DailyRecord, 0, len(paths))
	for _, p := range paths {
		r, err := readRecordFile(p)
		if err != nil {
			return nil, fmt.Errorf("read record file %s: %w", p, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// Upsert stores a record, replacing any existing record for the same date.
func (s *MarkdownStore) Upsert(r *models.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	return s.writeRecordFile(r)
}

// Get retrieves the record for a date.
func (s *MarkdownStore) Get(date time.Time) (*models.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := readRecordFile(s.recordFilePath(date))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, models.FormatDate(date))
	}
	return r, err
}

// Exists reports whether a record exists for a date.
func (s *MarkdownStore) Exists(date time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.recordFilePath(date))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check record: %w", err)
	}
	return true, nil
}

// Latest returns the most recent record, or nil when the store is empty.
func (s *MarkdownStore) Latest() (*models.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths, err := s.recordPaths()
	if err != nil || len(paths) == 0 {
		return nil, err
	}
	return readRecordFile(paths[len(paths)-1])
}

// Fetch returns the records in [start, end], ascending by date.
func (s *MarkdownStore) Fetch(start, end time.Time) ([]*models.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths, err := s.recordPaths()
	if err != nil {
		return nil, err
	}
	lo, hi := models.FormatDate(start), models.FormatDate(end)
	var selected []string
	for _, p := range paths {
		d := strings.TrimSuffix(filepath.Base(p), ".md")
		if d >= lo && d <= hi {
			selected = append(selected, p)
		}
	}
	return readRecordFiles(selected)
}

// List returns records newest first. A limit of zero or less returns all.
func (s *MarkdownStore) List(limit int) ([]*models.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths, err := s.recordPaths()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(paths)-1; i < j; i, j = i+1, j-1 {
		paths[i], paths[j] = paths[j], paths[i]
	}
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}
	return readRecordFiles(paths)
}

// Delete removes the record for a date.
func (s *MarkdownStore) Delete(date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.recordFilePath(date))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, models.FormatDate(date))
	}
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// GetAllData retrieves all records for export.
func (s *MarkdownStore) GetAllData() (*ExportData, error) {
	records, err := s.List(0)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return NewExportData(records), nil
}

// ImportData upserts every record in an export.
func (s *MarkdownStore) ImportData(data *ExportData) error {
	return importRecords(s, data)
}
