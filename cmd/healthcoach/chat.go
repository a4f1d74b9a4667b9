// ABOUTME: Interactive chat loop, the default command.
// ABOUTME: Reads lines from stdin and prints each reply as a titled panel.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/harperreed/healthcoach/internal/coach"
	"github.com/harperreed/healthcoach/internal/ultrahuman"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chatNoFetch bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat about your health data (default)",
	Long: `Start an interactive chat about your health data.

Questions are classified as get_current, get_history, compare or advice and
answered from the local store. Questions that cannot be classified, and lines
starting with @ai, go to the local Ollama assistant with your latest metrics
as context. Unclassified questions are also appended to the fallback log.

When the store is empty and Ultrahuman credentials are configured, the last
7 days are fetched first.

EXAMPLES:

  You: How was my sleep last week?
  You: What is my recovery today?
  You: Compare my steps this week vs last week
  You: Should I train today?
  You: @ai What trends do you see in my recovery?
  You: quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !chatNoFetch {
		ensureData(ctx, out)
	}

	session := coach.NewSession(repo,
		coach.WithEngine(newEngine()),
		coach.WithClassifier(newClassifier()),
		coach.WithAssistant(newAssistant()),
		coach.WithFallbackLog(cfg.GetFallbackLog()),
		coach.WithRecorder(recorder),
		coach.WithLogger(logger.Named("coach")))
	logger.Debug("chat started", zap.String("session", session.ID()))

	printBanner(out)

	bold := color.New(color.FgYellow, color.Bold)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		bold.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			color.New(color.FgRed, color.Bold).Fprintln(out, "Goodbye!")
			return scanner.Err()
		}
		line := scanner.Text()
		if coach.IsExit(line) {
			color.New(color.FgRed, color.Bold).Fprintln(out, "Goodbye!")
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		printReply(out, session.Handle(ctx, line))
		if ctx.Err() != nil {
			return nil
		}
	}
}

// ensureData fetches recent history into an empty store when credentials exist.
func ensureData(ctx context.Context, out io.Writer) {
	fetcher, err := newFetcher(-1)
	if errors.Is(err, ultrahuman.ErrMissingToken) {
		return
	}
	if err != nil {
		logger.Warn("fetcher unavailable", zap.Error(err))
		return
	}
	fetched, report, err := fetcher.EnsureData(ctx)
	if err != nil {
		color.New(color.FgYellow).Fprintf(out, "⚠ Could not fetch recent data: %v\n", err)
		return
	}
	if fetched {
		recordReport(report)
		printReport(out, report)
	}
}

func printBanner(out io.Writer) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintln(out, "AI Health Coach")
	fmt.Fprintln(out, "Ask me about your Ultrahuman data!")
	fmt.Fprintln(out, "• Normal questions: 'How was my sleep yesterday?'")
	fmt.Fprintln(out, "• @ai prefix: ask anything using AI, e.g. '@ai What trends do you see in my recovery?'")
	fmt.Fprintln(out, "• Type 'quit' or 'exit' to stop.")
	fmt.Fprintln(out)
}

func printReply(out io.Writer, r coach.Reply) {
	faint := color.New(color.Faint)
	title := color.New(color.FgBlue, color.Bold)
	if r.Title == coach.TitleAssistant {
		title = color.New(color.FgMagenta, color.Bold)
	}

	if r.Intent != "" && r.Title != coach.TitleAssistant {
		faint.Fprintf(out, "Predicted: %s with confidence %.2f\n", r.Intent, r.Confidence)
	}
	title.Fprintf(out, "── %s ──\n", r.Title)
	fmt.Fprintln(out, r.Text)
	if r.Answer != nil && r.Answer.HasRange {
		faint.Fprintf(out, "(%s, %s)\n", r.Answer.Metric, r.Answer.Range)
	}
	fmt.Fprintln(out)
}

func init() {
	chatCmd.Flags().BoolVar(&chatNoFetch, "no-fetch", false, "skip fetching recent data into an empty store")
	rootCmd.Flags().BoolVar(&chatNoFetch, "no-fetch", false, "skip fetching recent data into an empty store")
	rootCmd.AddCommand(chatCmd)
}
