// ABOUTME: Tests for the SQLite Repository implementation.
// ABOUTME: Verifies upsert, lookup, range fetch, and delete of daily records.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
)

var _ Repository = (*DB)(nil)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) failed: %v", s, err)
	}
	return d
}

func TestUpsertAndGet(t *testing.T) {
	db := setupTestDB(t)

	r := models.NewDailyRecord(mustDate(t, "2025-03-01")).
		WithValue(models.MetricRecoveryScore, 72).
		WithValue(models.MetricActiveMinutes, 0)
	r.RawJSON = json.RawMessage(`{"source":"test"}`)

	if err := db.Upsert(r); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := db.Get(mustDate(t, "2025-03-01"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.DateString() != "2025-03-01" {
		t.Errorf("Date mismatch: got %s", got.DateString())
	}
	if v := got.Value(models.MetricRecoveryScore); v == nil || *v != 72 {
		t.Errorf("recovery_score mismatch: got %v, want 72", v)
	}
	if v := got.Value(models.MetricActiveMinutes); v == nil || *v != 0 {
		t.Errorf("active_minutes should be present as zero, got %v", v)
	}
	if v := got.Value(models.MetricTotalSteps); v != nil {
		t.Errorf("total_steps should be absent, got %v", *v)
	}
	if string(got.RawJSON) != `{"source":"test"}` {
		t.Errorf("RawJSON mismatch: got %s", got.RawJSON)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestUpsertReplaces(t *testing.T) {
	db := setupTestDB(t)
	date := mustDate(t, "2025-03-01")

	first := models.NewDailyRecord(date).
		WithValue(models.MetricRecoveryScore, 50).
		WithValue(models.MetricTotalSteps, 4000)
	if err := db.Upsert(first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	second := models.NewDailyRecord(date).WithValue(models.MetricRecoveryScore, 80)
	if err := db.Upsert(second); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := db.Get(date)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v := got.Value(models.MetricRecoveryScore); v == nil || *v != 80 {
		t.Errorf("recovery_score = %v, want 80", v)
	}
	if v := got.Value(models.MetricTotalSteps); v != nil {
		t.Errorf("total_steps should be cleared, got %v", *v)
	}

	all, err := db.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 record, got %d", len(all))
	}
}

func TestGetNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Get(mustDate(t, "2025-03-01"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestExists(t *testing.T) {
	db := setupTestDB(t)
	seedRecords(t, db, "2025-03-01")

	ok, err := db.Exists(mustDate(t, "2025-03-01"))
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !ok {
		t.Error("Expected record to exist")
	}

	ok, err = db.Exists(mustDate(t, "2025-03-02"))
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("Expected record not to exist")
	}
}

func TestLatest(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.Latest()
	if err != nil {
		t.Fatalf("Latest on empty db failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil on empty db, got %s", got.DateString())
	}

	seedRecords(t, db, "2025-03-05", "2025-02-01", "2025-03-09", "2025-03-07")

	got, err = db.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got == nil || got.DateString() != "2025-03-09" {
		t.Errorf("Expected latest 2025-03-09, got %v", got)
	}
}

func TestFetchInclusiveAscending(t *testing.T) {
	db := setupTestDB(t)
	seedRecords(t, db, "2025-03-02", "2025-03-09", "2025-03-03", "2025-03-10", "2025-03-05")

	records, err := db.Fetch(mustDate(t, "2025-03-03"), mustDate(t, "2025-03-09"))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	want := []string{"2025-03-03", "2025-03-05", "2025-03-09"}
	if len(records) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(records))
	}
	for i, r := range records {
		if r.DateString() != want[i] {
			t.Errorf("records[%d] = %s, want %s", i, r.DateString(), want[i])
		}
	}
}

func TestFetchEmptyRange(t *testing.T) {
	db := setupTestDB(t)
	seedRecords(t, db, "2025-03-01")

	records, err := db.Fetch(mustDate(t, "2025-04-01"), mustDate(t, "2025-04-30"))
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	db := setupTestDB(t)
	seedRecords(t, db, "2025-03-01", "2025-03-03", "2025-03-02")

	records, err := db.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].DateString() != "2025-03-03" || records[1].DateString() != "2025-03-02" {
		t.Errorf("Unexpected order: %s, %s", records[0].DateString(), records[1].DateString())
	}
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	seedRecords(t, db, "2025-03-01")

	if err := db.Delete(mustDate(t, "2025-03-01")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	ok, _ := db.Exists(mustDate(t, "2025-03-01"))
	if ok {
		t.Error("Record should be gone after delete")
	}

	err := db.Delete(mustDate(t, "2025-03-01"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "dir", DBFileName)

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	info, err := os.Stat(dbPath)
	if err != nil {
		t.Fatalf("Database file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected permissions 0600, got %o", perm)
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}
}

func TestDataDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	if got := DataDir(); got != "/tmp/xdg-data/healthcoach" {
		t.Errorf("DataDir() = %q", got)
	}
	if got := DefaultDBPath(); got != "/tmp/xdg-data/healthcoach/healthcoach.db" {
		t.Errorf("DefaultDBPath() = %q", got)
	}
}

// seedRecords stores one record per date with a recovery score of 70.
func seedRecords(t *testing.T, repo Repository, dates ...string) {
	t.Helper()
	for _, d := range dates {
		r := models.NewDailyRecord(mustDate(t, d)).WithValue(models.MetricRecoveryScore, 70)
		if err := repo.Upsert(r); err != nil {
			t.Fatalf("Upsert %s failed: %v", d, err)
		}
	}
}

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "healthcoach-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := Open(filepath.Join(tmpDir, DBFileName))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}
