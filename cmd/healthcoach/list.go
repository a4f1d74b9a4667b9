// ABOUTME: CLI command for listing stored daily records.
// ABOUTME: Supports date ranges, metric columns, and limiting results.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/query"
	"github.com/spf13/cobra"
)

var (
	listMetrics []string
	listLimit   int
	listStart   string
	listEnd     string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List daily records",
	Long: `List stored daily records, newest first.

OUTPUT FORMAT:

  Each line shows: DATE  METRIC=VALUE ...

  Values use metric units (e.g. 7h 12m for sleep, 91.5% for efficiency).
  Metrics missing for a day are left out.

FILTERING:

  Use --metric (repeatable) to show only some metrics. Names may be canonical
  IDs or synonyms such as "steps", "hrv", or "deep sleep".

EXAMPLES:

  healthcoach list                               # Last 20 days
  healthcoach list -n 7 -m recovery -m steps     # Last week, two columns
  healthcoach list --start 2025-03-01 --end 2025-03-14`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		ids := models.AllMetricIDs
		if len(listMetrics) > 0 {
			ids = nil
			for _, name := range listMetrics {
				id, err := resolveMetricArg(name)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
		}

		records, err := loadListRecords()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(out, "No records found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, r := range records {
			var cols []string
			for _, id := range ids {
				if v := r.Value(id); v != nil {
					cols = append(cols, padRight(fmt.Sprintf("%s=%s", id, query.FormatValue(id, v)), 24))
				}
			}
			fmt.Fprintf(out, "%s %s\n", faint.Sprint(r.DateString()), strings.TrimRight(strings.Join(cols, " "), " "))
		}
		return nil
	},
}

// loadListRecords returns records newest first, honoring --start/--end/--limit.
func loadListRecords() ([]*models.DailyRecord, error) {
	start, hasStart, err := parseDateFlag("start", listStart)
	if err != nil {
		return nil, err
	}
	end, hasEnd, err := parseDateFlag("end", listEnd)
	if err != nil {
		return nil, err
	}

	if !hasStart && !hasEnd {
		records, err := repo.List(listLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to list records: %w", err)
		}
		return records, nil
	}

	if !hasStart {
		start = time.Time{}
	}
	if !hasEnd {
		end = models.DateOf(now())
	}
	rng, err := query.NewRange(start, end)
	if err != nil {
		return nil, err
	}
	records, err := repo.Fetch(rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	// Fetch is ascending; list newest first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if listLimit > 0 && len(records) > listLimit {
		records = records[:listLimit]
	}
	return records, nil
}

func init() {
	listCmd.Flags().StringSliceVarP(&listMetrics, "metric", "m", nil, "only show these metrics")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results (0 for all)")
	listCmd.Flags().StringVar(&listStart, "start", "", "first date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listEnd, "end", "", "last date (YYYY-MM-DD), defaults to today")
	rootCmd.AddCommand(listCmd)
}
