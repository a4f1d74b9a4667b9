// ABOUTME: Daily record operations for Charm KV storage.
// ABOUTME: Keys are "day:YYYY-MM-DD" so lexical key order is date order.
package charm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/storage"
)

// RecordPrefix prefixes every daily record key.
const RecordPrefix = "day:"

var _ storage.Repository = (*Client)(nil)

// recordKey builds the KV key for a date.
func recordKey(date time.Time) string {
	return RecordPrefix + models.FormatDate(date)
}

// dateFromKey parses a record key. ok is false for foreign or malformed keys.
func dateFromKey(key string) (time.Time, bool) {
	if !strings.HasPrefix(key, RecordPrefix) {
		return time.Time{}, false
	}
	d, err := models.ParseDate(strings.TrimPrefix(key, RecordPrefix))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// recordKeysBetween returns the record keys whose date lies in [start, end],
// ascending. A zero start or end leaves that side open.
func recordKeysBetween(keys [][]byte, start, end time.Time) []string {
	var out []string
	for _, k := range keys {
		d, ok := dateFromKey(string(k))
		if !ok {
			continue
		}
		if !start.IsZero() && d.Before(models.DateOf(start)) {
			continue
		}
		if !end.IsZero() && d.After(models.DateOf(end)) {
			continue
		}
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// Upsert stores a record, replacing any existing record for the date.
func (c *Client) Upsert(r *models.DailyRecord) error {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := c.set(recordKey(r.Date), data); err != nil {
		return fmt.Errorf("upsert record %s: %w", r.DateString(), err)
	}
	return nil
}

// Get retrieves the record for a date.
func (c *Client) Get(date time.Time) (*models.DailyRecord, error) {
	data, found, err := c.get(recordKey(date))
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, models.FormatDate(date))
	}
	return decodeRecord(data)
}

// Exists reports whether a record exists for a date.
func (c *Client) Exists(date time.Time) (bool, error) {
	_, found, err := c.get(recordKey(date))
	if err != nil {
		return false, fmt.Errorf("check record: %w", err)
	}
	return found, nil
}

// Latest returns the most recent record, or nil when the store is empty.
func (c *Client) Latest() (*models.DailyRecord, error) {
	records, err := c.List(1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// Fetch returns the records in [start, end], ascending by date.
func (c *Client) Fetch(start, end time.Time) ([]*models.DailyRecord, error) {
	keys, err := c.keys()
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	return c.load(recordKeysBetween(keys, start, end))
}

// List returns records newest first. A limit of zero or less returns all.
func (c *Client) List(limit int) ([]*models.DailyRecord, error) {
	keys, err := c.keys()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	selected := recordKeysBetween(keys, time.Time{}, time.Time{})
	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return c.load(selected)
}

// Delete removes the record for a date.
func (c *Client) Delete(date time.Time) error {
	found, err := c.Exists(date)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, models.FormatDate(date))
	}
	if err := c.delete(recordKey(date)); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// GetAllData retrieves all records for export.
func (c *Client) GetAllData() (*storage.ExportData, error) {
	records, err := c.List(0)
	if err != nil {
		return nil, err
	}
	return storage.NewExportData(records), nil
}

// ImportData upserts every record in an export. Auto sync is suspended for
// the batch and a single sync runs at the end.
func (c *Client) ImportData(data *storage.ExportData) error {
	c.mu.Lock()
	prev := c.autoSync
	c.autoSync = false
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.autoSync = prev
		c.mu.Unlock()
		if prev {
			_ = c.Sync()
		}
	}()

	for _, r := range data.Records {
		if r == nil {
			continue
		}
		r.Date = models.DateOf(r.Date)
		if err := c.Upsert(r); err != nil {
			return fmt.Errorf("import record %s: %w", r.DateString(), err)
		}
	}
	return nil
}

func (c *Client) load(keys []string) ([]*models.DailyRecord, error) {
	records := make([]*models.DailyRecord, 0, len(keys))
	for _, k := range keys {
		data, found, err := c.get(k)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		r, err := decodeRecord(data)
		if err != nil {
			continue // Skip invalid entries
		}
		records = append(records, r)
	}
	return records, nil
}

func decodeRecord(data []byte) (*models.DailyRecord, error) {
	var r models.DailyRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	r.Date = models.DateOf(r.Date)
	return &r, nil
}
