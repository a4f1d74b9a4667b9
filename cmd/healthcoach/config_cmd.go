// ABOUTME: CLI commands for inspecting and creating the config file.
// ABOUTME: Secrets are masked when the effective config is shown.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/healthcoach/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the config file",
	Long: `Inspect or create the healthcoach config file.

Settings are layered: built-in defaults, then the YAML file, then
HEALTHCOACH_* environment variables. A .env file in the working directory
is loaded first.

EXAMPLES:

  healthcoach config path     # Where the file lives
  healthcoach config show     # Effective settings, secrets masked
  healthcoach config init     # Write the defaults to the file`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigPath())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		token, email := shown.Credentials()
		shown.UltrahumanToken = mask(token)
		shown.UltrahumanEmail = email

		data, err := yaml.Marshal(&shown)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetConfigPath()
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists; use --force to overwrite", path)
		}
		if err := config.Default().Save(); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
		return nil
	},
}

// mask keeps the last four characters of a secret.
func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
