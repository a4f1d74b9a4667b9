// ABOUTME: Repository interface for daily health record storage.
// ABOUTME: Defines the contract shared by the SQLite and Charm KV backends.
package storage

import (
	"errors"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
)

// ErrNotFound is returned when no record exists for a date.
var ErrNotFound = errors.New("not found")

// Repository defines the storage interface for daily records.
// Dates are calendar dates; implementations ignore the time of day.
type Repository interface {
	// Read side
	Latest() (*models.DailyRecord, error)
	Fetch(start, end time.Time) ([]*models.DailyRecord, error)
	Exists(date time.Time) (bool, error)
	Get(date time.Time) (*models.DailyRecord, error)
	List(limit int) ([]*models.DailyRecord, error)

	// Write side
	Upsert(r *models.DailyRecord) error
	Delete(date time.Time) error

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	// Lifecycle
	Close() error
}
