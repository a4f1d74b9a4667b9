// ABOUTME: CLI command for pulling daily metrics from the Ultrahuman API.
// ABOUTME: Supports trailing windows, explicit ranges, and forced refetches.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/ultrahuman"
	"github.com/spf13/cobra"
)

var (
	fetchDays      int
	fetchStartDate string
	fetchEndDate   string
	fetchForce     bool
	fetchDelayMS   int
)

var fetchCmd = &cobra.Command{
	Use:     "fetch",
	Aliases: []string{"f"},
	Short:   "Fetch daily metrics from Ultrahuman",
	Long: `Fetch daily metrics from the Ultrahuman partner API into the local store.

Days already stored are skipped unless --force is given. Requests are paced
by --delay (default from fetch_delay_ms in the config).

CREDENTIALS:

  ULTRAHUMAN_TOKEN   API token (or ultrahuman_token in the config)
  ULTRAHUMAN_EMAIL   Account email (or ultrahuman_email in the config)

EXAMPLES:

  healthcoach fetch                                   # Last 7 days, excluding today
  healthcoach fetch --days 30                         # Last 30 days
  healthcoach fetch --start-date 2025-01-01           # From a date through yesterday
  healthcoach fetch --start-date 2025-01-01 --end-date 2025-01-31
  healthcoach fetch --days 3 --force                  # Refetch existing days`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		start, hasStart, err := parseDateFlag("start-date", fetchStartDate)
		if err != nil {
			return err
		}
		end, hasEnd, err := parseDateFlag("end-date", fetchEndDate)
		if err != nil {
			return err
		}
		if hasEnd && !hasStart {
			return fmt.Errorf("--end-date requires --start-date")
		}
		if !hasStart && fetchDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}

		delay := time.Duration(-1)
		if fetchDelayMS >= 0 {
			delay = time.Duration(fetchDelayMS) * time.Millisecond
		}
		fetcher, err := newFetcher(delay)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var report ultrahuman.Report
		if hasStart {
			if !hasEnd {
				end = models.AddDays(now(), -1)
			}
			if start.After(end) {
				return fmt.Errorf("start date %s is after end date %s", models.FormatDate(start), models.FormatDate(end))
			}
			report, err = fetcher.FetchRange(ctx, start, end, fetchForce)
		} else {
			report, err = fetcher.FetchRecent(ctx, fetchDays, fetchForce)
		}
		recordReport(report)
		if err != nil {
			return fmt.Errorf("fetch interrupted: %w", err)
		}

		printReport(out, report)
		if report.Failed > 0 && report.Succeeded() == 0 {
			return fmt.Errorf("all %d day(s) failed", report.Failed)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().IntVar(&fetchDays, "days", 7, "number of days to fetch, ending yesterday")
	fetchCmd.Flags().StringVar(&fetchStartDate, "start-date", "", "first date to fetch (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchEndDate, "end-date", "", "last date to fetch (YYYY-MM-DD), defaults to yesterday")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "refetch days that are already stored")
	fetchCmd.Flags().IntVar(&fetchDelayMS, "delay", -1, "milliseconds between requests (default from config)")
	rootCmd.AddCommand(fetchCmd)
}
