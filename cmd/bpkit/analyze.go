package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bpkit/internal/analyze"
	"bpkit/internal/config"
	"bpkit/internal/history"
	"bpkit/internal/report"
)

var (
	analyzeFormat string
	analyzeNoSave bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Validate the corpus and report findings",
	Long: `Scan the corpus, resolve every traceability link and run all detectors:
broken links, contradictory strategy, deck coverage, version staleness,
dependency cycles and orphaned principles.

Exits non-zero when any error-severity finding is present.`,
	Run: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "human", "Output format (json, human)")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Skip the changelog and history archive")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	logger := newLogger()

	root, err := resolveCorpusRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving corpus root: %v\n", err)
		os.Exit(1)
	}

	r, err := analyzeCorpus(cmd.Context(), root, logger, !analyzeNoSave)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := printReport(r, analyzeFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	if !r.IsPassing() {
		os.Exit(1)
	}
}

// analyzeCorpus runs one full analysis pass: engine, history comparison and
// changelog archive. Shared by analyze and watch.
func analyzeCorpus(ctx context.Context, root string, logger *slog.Logger, save bool) (*report.Report, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := analyze.New(analyze.Options{
		RequiredSections: cfg.Analysis.RequiredSections,
		IgnorePatterns:   cfg.Analysis.IgnorePatterns,
		Workers:          cfg.Analysis.Workers,
	}, logger)

	r, err := engine.Run(ctx, root)
	if err != nil {
		return nil, err
	}

	if save && cfg.History.Enabled {
		if err := archiveRun(root, r, cfg, logger); err != nil {
			// Archival problems never mask the analysis result.
			logger.Warn("could not archive run", "error", err)
		}
	}

	return r, nil
}

// archiveRun compares versions against the history database, stores the run
// and writes the changelog file.
func archiveRun(root string, r *report.Report, cfg *config.Config, logger *slog.Logger) error {
	store, err := history.Open(root, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	regressions, err := store.CheckVersions(r)
	if err != nil {
		return err
	}
	r.Append(regressions...)

	if err := store.SaveRun(r); err != nil {
		return err
	}
	if err := store.Prune(cfg.History.KeepRuns); err != nil {
		return err
	}

	path, err := writeChangelog(root, r)
	if err != nil {
		return err
	}
	logger.Info("run archived", "id", r.ID, "changelog", path)
	return nil
}

// writeChangelog renders the report as markdown under .bpkit/changelog/.
func writeChangelog(root string, r *report.Report) (string, error) {
	dir := filepath.Join(root, ".bpkit", "changelog")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	name := "validation-" + r.GeneratedAt.UTC().Format("20060102-150405") + ".md"
	path := filepath.Join(dir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "# Validation Report\n\n")
	fmt.Fprintf(&b, "- Run: %s\n", r.ID)
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Documents: %d, links: %d\n", r.DocumentCount, r.LinkCount)
	fmt.Fprintf(&b, "- Result: %s (%d errors, %d warnings, %d info)\n\n",
		passFailWord(r), r.ErrorCount, r.WarningCount, r.InfoCount)

	if len(r.Findings) > 0 {
		b.WriteString("## Findings\n\n")
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "- %s\n", f.Format())
			if f.Suggestion != "" {
				fmt.Fprintf(&b, "  - %s\n", f.Suggestion)
			}
		}
	}

	return path, os.WriteFile(path, []byte(b.String()), 0644)
}

func passFailWord(r *report.Report) string {
	if r.IsPassing() {
		return "PASS"
	}
	return "FAIL"
}

// printReport writes the report to stdout in the requested format.
func printReport(r *report.Report, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "human":
		for _, f := range r.Findings {
			fmt.Println(f.Format())
			if f.Suggestion != "" {
				fmt.Println("  " + f.Suggestion)
			}
		}
		if len(r.Findings) > 0 {
			fmt.Println()
		}
		fmt.Printf("%s: %d documents, %d links, %d errors, %d warnings, %d info\n",
			passFailWord(r), r.DocumentCount, r.LinkCount,
			r.ErrorCount, r.WarningCount, r.InfoCount)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}
