// ABOUTME: CLI command for one-shot classified queries.
// ABOUTME: Prints the response plus the resolved metric and date range.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/healthcoach/internal/advice"
	"github.com/harperreed/healthcoach/internal/models"
	"github.com/spf13/cobra"
)

var askToday string

var askCmd = &cobra.Command{
	Use:   "ask <intent> <question...>",
	Short: "Answer one question with a given intent",
	Long: `Answer a single question without the chat loop.

INTENTS:

  get_current   Latest value of a metric
  get_history   Average, min and max over a period
  compare       First half of a period against the second half
  advice        Rule-based workout and diet suggestions

EXAMPLES:

  healthcoach ask get_current "recovery"
  healthcoach ask get_history average steps last 7 days
  healthcoach ask compare sleep score from 2025-03-01 to 2025-03-14
  healthcoach ask get_history hrv last week --today 2025-03-10`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		intent := args[0]
		if !models.IsValidIntent(intent) {
			return fmt.Errorf("unknown intent: %s (use get_current, get_history, compare, or advice)", intent)
		}
		text := strings.Join(args[1:], " ")

		today := now()
		if d, ok, err := parseDateFlag("today", askToday); err != nil {
			return err
		} else if ok {
			today = d
		}

		if models.Intent(intent) == models.IntentAdvice {
			latest, err := repo.Latest()
			if err != nil {
				return fmt.Errorf("failed to load latest record: %w", err)
			}
			fmt.Fprintln(out, advice.For(latest).String())
			return nil
		}

		start := time.Now()
		a := newEngine().Answer(models.Intent(intent), text, today)
		recorder.ObserveQuery(intent, a.Err, time.Since(start))

		fmt.Fprintln(out, a.Response)

		faint := color.New(color.Faint)
		if a.HasMetric {
			faint.Fprintf(out, "metric: %s\n", a.Metric)
		}
		if a.HasRange {
			faint.Fprintf(out, "range:  %s\n", a.Range)
		}
		faint.Fprintf(out, "outcome: %s\n", a.Outcome)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askToday, "today", "", "reference date (YYYY-MM-DD), defaults to today")
	rootCmd.AddCommand(askCmd)
}
