// ABOUTME: CLI command for deleting a day's record.
// ABOUTME: Removes every metric stored for the date.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/storage"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <date>",
	Aliases: []string{"rm", "del"},
	Short:   "Delete a day's record",
	Long: `Delete the stored record for a date (YYYY-MM-DD).

Run 'healthcoach fetch --start-date <date> --end-date <date>' to pull it again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := models.ParseDate(args[0])
		if err != nil {
			return fmt.Errorf("invalid date: %s (use YYYY-MM-DD)", args[0])
		}

		if err := repo.Delete(date); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no record for %s", args[0])
			}
			return fmt.Errorf("failed to delete record: %w", err)
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Deleted record for %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
