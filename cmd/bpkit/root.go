package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bpkit/internal/slogutil"
	"bpkit/internal/version"
)

var (
	corpusFlag string
	verbosity  int
	quietFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "bpkit",
	Short: "bpkit - business plan traceability toolkit",
	Long: `bpkit validates a layered business plan corpus: a source pitch deck,
strategic documents derived from it, and feature documents derived from those.
It checks that every traceability link resolves, that the deck is covered,
that versions are consistent and that feature dependencies stay acyclic.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("bpkit version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVarP(&corpusFlag, "corpus", "C", ".",
		"Corpus root directory")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false,
		"Suppress all log output")
}

// newLogger builds the CLI logger. Logs go to stderr so json report output
// on stdout stays machine-readable.
func newLogger() *slog.Logger {
	return slogutil.NewLogger(os.Stderr, slogutil.LevelFromVerbosity(verbosity, quietFlag))
}

// resolveCorpusRoot turns the --corpus flag into an absolute path.
func resolveCorpusRoot() (string, error) {
	return filepath.Abs(corpusFlag)
}
