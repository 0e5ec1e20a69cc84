package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bpkit/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate the corpus on every change",
	Long: `Run an initial validation, then watch the corpus for markdown changes and
re-run the analysis after each debounced batch of edits. Stops on Ctrl-C.`,
	Run: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond,
		"Quiet period before a change triggers a re-run")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	logger := newLogger()

	root, err := resolveCorpusRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving corpus root: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOnce := func(ctx context.Context) {
		r, err := analyzeCorpus(ctx, root, logger, true)
		if err != nil {
			logger.Error("analysis failed", "error", err)
			return
		}
		if err := printReport(r, "human"); err != nil {
			logger.Error("output failed", "error", err)
		}
	}

	runOnce(ctx)

	if err := watcher.Watch(ctx, root, watcher.Options{Debounce: watchDebounce}, logger, runOnce); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
