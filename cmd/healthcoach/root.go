// ABOUTME: Root Cobra command for healthcoach CLI.
// ABOUTME: Builds the logger, loads config, and opens storage via PersistentPre/PostRunE.
package main

import (
	"context"
	"fmt"

	"github.com/harperreed/healthcoach/internal/config"
	"github.com/harperreed/healthcoach/internal/storage"
	"github.com/harperreed/healthcoach/internal/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg      *config.Config
	repo     storage.Repository
	logger   = zap.NewNop()
	recorder *telemetry.Recorder

	verbose     bool
	metricsAddr string
	stopMetrics context.CancelFunc
)

// noStorage lists commands that run without opening the record store.
var noStorage = map[string]bool{
	"help":       true,
	"completion": true,
	"config":     true,
	"path":       true,
	"show":       true,
	"init":       true,
	"link":       true,
	"unlink":     true,
	"wipe":       true,
	"reset":      true,
	"repair":     true,
}

var rootCmd = &cobra.Command{
	Use:   "healthcoach",
	Short: "Ask questions about your daily ring metrics",
	Long: `healthcoach answers natural-language questions about daily health
metrics collected from an Ultrahuman ring.

WHAT IT TRACKS:

  Scores     recovery_score, movement_score, sleep_score
  Sleep      total_sleep_min, sleep_efficiency, deep/rem/light_sleep_min, avg_temperature
  Activity   total_steps, active_minutes
  Heart      hrv_avg, rhr_avg, vo2_max

QUICK START:

  $ healthcoach fetch --days 14                  # Pull the last two weeks
  $ healthcoach                                  # Start the chat
  You: How was my sleep last week?
  You: Compare my steps today vs yesterday
  You: @ai What trends do you see in my recovery?

ONE-SHOT QUERIES:

  $ healthcoach ask get_history "average steps last 7 days"
  $ healthcoach ask get_current "recovery"

MCP INTEGRATION:

  Run 'healthcoach mcp' to start the Model Context Protocol server.

  {
    "mcpServers": {
      "healthcoach": { "command": "healthcoach", "args": ["mcp"] }
    }
  }

CONFIGURATION:

  Settings live in ~/.config/healthcoach/config.yaml and can be overridden
  with HEALTHCOACH_* environment variables (e.g. HEALTHCOACH_BACKEND=charm).
  ULTRAHUMAN_TOKEN and ULTRAHUMAN_EMAIL supply API credentials.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lc := zap.NewProductionConfig()
		if verbose {
			lc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := lc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l

		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		recorder = telemetry.New()
		if metricsAddr != "" {
			startMetrics(metricsAddr)
		}

		if noStorage[cmd.Name()] {
			return nil
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		logger.Debug("storage opened", zap.String("backend", cfg.GetBackend()))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdown()
	},
	RunE: runChat,
}

func startMetrics(addr string) {
	ctx, cancel := context.WithCancel(context.Background())
	stopMetrics = cancel
	go func() {
		if err := recorder.Serve(ctx, addr, logger); err != nil {
			logger.Warn("metrics listener stopped", zap.Error(err))
		}
	}()
}

// shutdown releases everything PersistentPreRunE acquired.
func shutdown() error {
	if stopMetrics != nil {
		stopMetrics()
		stopMetrics = nil
	}
	var err error
	if repo != nil {
		err = repo.Close()
		repo = nil
	}
	_ = logger.Sync()
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
}
