// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/healthcoach/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants to query your health data through a standardized
protocol. The server communicates via stdin/stdout.

CONFIGURATION:

  {
    "mcpServers": {
      "healthcoach": {
        "command": "healthcoach",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  ask           Answer a natural-language question
  get_latest    Most recent daily record
  get_history   One metric over a date range, with summary
  list_records  Recent daily records
  get_advice    Rule-based workout and diet suggestions

AVAILABLE RESOURCES:

  health://latest    Most recent daily record
  health://summary   Per-metric summary of the last 7 days`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo,
			mcp.WithEngine(newEngine()),
			mcp.WithClassifier(newClassifier()),
			mcp.WithLogger(logger.Named("mcp")))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
