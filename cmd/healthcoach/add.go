// ABOUTME: CLI command for recording a metric value by hand.
// ABOUTME: Merges the value into the day's record, creating it if needed.
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/query"
	"github.com/harperreed/healthcoach/internal/storage"
	"github.com/spf13/cobra"
)

var addDate string

var addCmd = &cobra.Command{
	Use:     "add <metric> <value>",
	Aliases: []string{"a", "set"},
	Short:   "Record a metric value",
	Long: `Record a single metric value for a day, e.g. to fill a gap the ring missed.

Other metrics already stored for that day are kept.

METRICS:

  recovery_score, movement_score, sleep_score, total_sleep_min,
  sleep_efficiency, deep_sleep_min, rem_sleep_min, light_sleep_min,
  avg_temperature, total_steps, hrv_avg, rhr_avg, active_minutes, vo2_max

  Synonyms such as "steps", "hrv", or "recovery" also work.

EXAMPLES:

  healthcoach add steps 10432                    # Today
  healthcoach add hrv 61 --date 2025-03-01       # A specific day`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		metric, err := resolveMetricArg(args[0])
		if err != nil {
			return err
		}
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value: %s", args[1])
		}

		date := models.DateOf(now())
		if d, ok, err := parseDateFlag("date", addDate); err != nil {
			return err
		} else if ok {
			date = d
		}

		r, err := repo.Get(date)
		if errors.Is(err, storage.ErrNotFound) {
			r = models.NewDailyRecord(date)
		} else if err != nil {
			return fmt.Errorf("failed to load record: %w", err)
		}

		r.WithValue(metric, value)
		if err := repo.Upsert(r); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ %s %s = %s\n",
			r.DateString(), metric, query.FormatFloat(metric, value))
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addDate, "date", "", "date of the value (YYYY-MM-DD), defaults to today")
	rootCmd.AddCommand(addCmd)
}
