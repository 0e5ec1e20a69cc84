package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bpkit/internal/history"
)

var (
	historyFormat string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect archived validation runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	Run:   runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one archived run in full",
	Args:  cobra.ExactArgs(1),
	Run:   runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyFormat, "format", "human", "Output format (json, human)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list (0 for all)")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() *history.Store {
	root, err := resolveCorpusRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving corpus root: %v\n", err)
		os.Exit(1)
	}
	store, err := history.Open(root, newLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		os.Exit(1)
	}
	return store
}

func runHistoryList(cmd *cobra.Command, args []string) {
	store := openHistory()
	defer store.Close()

	runs, err := store.ListRuns(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if historyFormat == "json" {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	if len(runs) == 0 {
		fmt.Println("no archived runs")
		return
	}
	for _, r := range runs {
		result := "FAIL"
		if r.Passing {
			result = "PASS"
		}
		fmt.Printf("%s  %s  %s  %d docs, %d links, %d/%d/%d\n",
			r.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
			r.ID, result, r.DocumentCount, r.LinkCount,
			r.ErrorCount, r.WarningCount, r.InfoCount)
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) {
	store := openHistory()
	defer store.Close()

	r, err := store.GetRun(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := printReport(r, historyFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
