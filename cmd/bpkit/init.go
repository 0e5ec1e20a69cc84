package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bpkit/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .bpkit/config.json",
	Run:   runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	root, err := resolveCorpusRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving corpus root: %v\n", err)
		os.Exit(1)
	}

	path := filepath.Join(root, ".bpkit", "config.json")
	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", path)
		os.Exit(1)
	}

	if err := config.DefaultConfig().Save(root); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", path)
}
