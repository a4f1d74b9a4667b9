// ABOUTME: CLI command for copying records between storage backends.
// ABOUTME: Moves data from the configured backend to sqlite or charm.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/healthcoach/internal/config"
	"github.com/harperreed/healthcoach/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo     string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy records to another storage backend",
	Long: `Copy every daily record from the configured backend to another one.

BACKENDS:

  sqlite   Local database at ~/.local/share/healthcoach/healthcoach.db
  charm    Charm KV, E2E encrypted and synced across devices
  markdown One file per day under ~/.local/share/healthcoach/markdown

IMPORTANT:

  - The destination must be empty unless --force is given
  - Records for the same date in the destination are replaced
  - Run with --dry-run first to see what would be copied
  - Switch backends afterwards with 'backend: <name>' in the config

USAGE:

  healthcoach migrate --to charm --dry-run   # Preview
  healthcoach migrate --to charm             # Copy sqlite -> charm
  HEALTHCOACH_BACKEND=charm healthcoach migrate --to sqlite`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		from := cfg.GetBackend()
		if migrateTo == "" {
			return fmt.Errorf("--to is required (sqlite, charm, or markdown)")
		}
		if migrateTo == from {
			return fmt.Errorf("source and destination are both %s", from)
		}

		if migrateDryRun {
			records, err := repo.List(0)
			if err != nil {
				return fmt.Errorf("failed to list records: %w", err)
			}
			color.New(color.FgYellow).Fprintln(out, "Dry run mode - no changes will be made")
			fmt.Fprintf(out, "Would copy %d record(s) from %s to %s\n", len(records), from, migrateTo)
			return nil
		}

		dstCfg := *cfg
		dstCfg.Backend = migrateTo
		if err := dstCfg.Validate(); err != nil {
			return err
		}
		dst, err := dstCfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", migrateTo, err)
		}
		defer dst.Close()

		if !migrateForce {
			existing, err := dst.Latest()
			if err != nil {
				return fmt.Errorf("failed to inspect destination: %w", err)
			}
			if existing != nil {
				return fmt.Errorf("%s storage already has data; use --force to merge into it", migrateTo)
			}
		}

		summary, err := storage.MigrateData(repo, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.New(color.FgGreen).Fprintf(out, "✓ Copied %d record(s) from %s to %s\n", summary.Records, from, migrateTo)
		fmt.Fprintf(out, "Set 'backend: %s' in %s to use it.\n", migrateTo, config.GetConfigPath())
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend (sqlite, charm, or markdown)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "copy even if the destination has data")
	rootCmd.AddCommand(migrateCmd)
}
