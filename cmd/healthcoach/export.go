// ABOUTME: CLI commands for exporting and importing daily records.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/healthcoach/internal/models"
	"github.com/harperreed/healthcoach/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportMetric string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export health data",
	Long: `Export daily records in various formats.

FORMATS:

  json       Full JSON export including raw API payloads (backup/restore)
  yaml       YAML export (human-readable)
  markdown   Markdown table (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --metric, -m   Only one metric column (markdown only)
  --since        Only include data since this date (markdown only)

EXAMPLES:

  healthcoach export json                        # Export all data as JSON
  healthcoach export json -o backup.json         # Save to file
  healthcoach export yaml                        # Export as YAML
  healthcoach export markdown -m hrv             # HRV as a Markdown table
  healthcoach export markdown --since 2025-01-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = storage.ExportJSON(repo)
		case "yaml":
			data, err = storage.ExportYAML(repo)
		case "markdown":
			var metric *models.MetricID
			if exportMetric != "" {
				id, err := resolveMetricArg(exportMetric)
				if err != nil {
					return err
				}
				metric = &id
			}
			var since *time.Time
			if exportSince != "" {
				t, err := models.ParseDate(exportSince)
				if err != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			md, err := storage.ExportMarkdown(repo, metric, since)
			if err != nil {
				return err
			}
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", exportOutput)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import health data from JSON or YAML",
	Long: `Import daily records from a previously exported JSON or YAML file.

Files ending in .yaml or .yml are read as YAML, everything else as JSON.
Records for dates already stored are replaced.

EXAMPLES:

  healthcoach import backup.json
  healthcoach import records.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var n int
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".yaml", ".yml":
			n, err = storage.ImportYAML(repo, data)
		default:
			n, err = storage.ImportJSON(repo, data)
		}
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Imported %d record(s) from %s\n", n, filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportMetric, "metric", "m", "", "only this metric (markdown only)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
