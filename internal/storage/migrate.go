// ABOUTME: Data migration between healthcoach storage backends.
// ABOUTME: Copies every daily record from source to destination.

package storage

import (
	"fmt"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Records int
}

// MigrateData copies all records from src to dst storage. Records already in
// dst for the same date are replaced.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	records, err := src.List(0)
	if err != nil {
		return nil, fmt.Errorf("list source records: %w", err)
	}

	for _, r := range records {
		if err := dst.Upsert(r); err != nil {
			return nil, fmt.Errorf("copy record %s: %w", r.DateString(), err)
		}
		summary.Records++
	}

	return summary, nil
}
