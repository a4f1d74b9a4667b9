// ABOUTME: Daily record CRUD operations for SQLite storage.
// ABOUTME: Implements Repository interface methods for the daily_metrics table.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

var upsertQuery = func() string {
	placeholders := strings.Repeat("?, ", len(metricColumns)+2) + "?"
	updates := make([]string, 0, len(metricColumns)+2)
	for _, col := range metricColumns {
		updates = append(updates, col+" = excluded."+col)
	}
	updates = append(updates, "raw_json = excluded.raw_json", "updated_at = excluded.updated_at")

	return fmt.Sprintf(`INSERT INTO daily_metrics (%s) VALUES (%s)
		ON CONFLICT(date) DO UPDATE SET %s`,
		recordColumns, placeholders, strings.Join(updates, ", "))
}()

// Upsert stores a record, replacing any existing record for the same date.
// Metrics that are nil on r are stored as NULL.
func (d *DB) Upsert(r *models.DailyRecord) error {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}

	args := make([]any, 0, len(metricColumns)+3)
	args = append(args, r.DateString())
	for _, id := range models.AllMetricIDs {
		if v := r.Value(id); v != nil {
			args = append(args, *v)
		} else {
			args = append(args, nil)
		}
	}
	var raw any
	if len(r.RawJSON) > 0 {
		raw = string(r.RawJSON)
	}
	args = append(args, raw, r.UpdatedAt.UTC().Format(time.RFC3339))

	if _, err := d.db.Exec(upsertQuery, args...); err != nil {
		return fmt.Errorf("upsert record %s: %w", r.DateString(), err)
	}
	return nil
}

// Get retrieves the record for a date.
func (d *DB) Get(date time.Time) (*models.DailyRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM daily_metrics WHERE date = ?`
	r, err := scanRecord(d.db.QueryRow(query, models.FormatDate(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, models.FormatDate(date))
		}
		return nil, err
	}
	return r, nil
}

// Exists reports whether a record exists for a date.
func (d *DB) Exists(date time.Time) (bool, error) {
	var one int
	err := d.db.QueryRow(`SELECT 1 FROM daily_metrics WHERE date = ?`, models.FormatDate(date)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check record: %w", err)
	}
	return true, nil
}

// Latest returns the most recent record, or nil when the table is empty.
func (d *DB) Latest() (*models.DailyRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM daily_metrics ORDER BY date DESC LIMIT 1`
	r, err := scanRecord(d.db.QueryRow(query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

// Fetch returns the records in [start, end], ascending by date.
func (d *DB) Fetch(start, end time.Time) ([]*models.DailyRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM daily_metrics
		WHERE date BETWEEN ? AND ?
		ORDER BY date ASC`

	rows, err := d.db.Query(query, models.FormatDate(start), models.FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// List returns records newest first. A limit of zero or less returns all.
func (d *DB) List(limit int) ([]*models.DailyRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM daily_metrics ORDER BY date DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Delete removes the record for a date.
func (d *DB) Delete(date time.Time) error {
	result, err := d.db.Exec("DELETE FROM daily_metrics WHERE date = ?", models.FormatDate(date))
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, models.FormatDate(date))
	}
	return nil
}

func scanRecord(row rowScanner) (*models.DailyRecord, error) {
	var dateStr, updatedAt string
	var raw sql.NullString
	values := make([]sql.NullFloat64, len(models.AllMetricIDs))

	dest := make([]any, 0, len(values)+3)
	dest = append(dest, &dateStr)
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &raw, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}

	date, err := models.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}

	r := &models.DailyRecord{Date: date}
	for i, id := range models.AllMetricIDs {
		if values[i].Valid {
			r.WithValue(id, values[i].Float64)
		}
	}
	if raw.Valid && raw.String != "" {
		r.RawJSON = json.RawMessage(raw.String)
	}
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return r, nil
}

func scanRecords(rows *sql.Rows) ([]*models.DailyRecord, error) {
	var records []*models.DailyRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
