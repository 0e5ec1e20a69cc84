package analyze

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bpkit/internal/graph"
	"bpkit/internal/report"
	"bpkit/internal/slogutil"
)

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func buildGraph(t *testing.T, files map[string]string) *graph.Graph {
	t.Helper()
	root := writeCorpus(t, files)
	g, err := graph.NewBuilder(root, graph.BuildOptions{}, slogutil.NewDiscardLogger()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func countKind(findings []report.Finding, kind report.Kind) int {
	n := 0
	for _, f := range findings {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// A small but complete corpus: a deck with an uncovered pricing section, a
// strategic document tracing two deck sections, and a feature document whose
// link targets a section that does not exist.
func TestEngineEndToEnd(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"deck/pitch-deck.md": `---
version: 1.0.0
---
# Pitch Deck

## Problem

People lose track of their plans.

## Solution

A tool that keeps plans traceable.

## Pricing

Usage-based.
`,
		"memory/product.md": `---
type: strategic
source_version: 1.0.0
---
# Product Strategy

Derived from the [problem](../deck/pitch-deck.md#problem) and the
[solution](../deck/pitch-deck.md#solution).
`,
		"features/001-auth.md": `---
type: feature
---
# Auth

Traces to [a principle](../memory/product.md#principle-9).
`,
	})

	r, err := New(Options{}, slogutil.NewDiscardLogger()).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if r.DocumentCount != 3 {
		t.Errorf("DocumentCount = %d, want 3", r.DocumentCount)
	}
	if r.IsPassing() {
		t.Error("IsPassing() = true, want false (broken section link)")
	}
	if n := countKind(r.Findings, report.KindBrokenLink); n != 1 {
		t.Errorf("broken-link findings = %d, want 1", n)
	}
	if n := countKind(r.Findings, report.KindCoverageGap); n != 1 {
		t.Errorf("coverage-gap findings = %d, want 1 (pricing)", n)
	}

	// Errors sort before everything else.
	if len(r.Findings) == 0 || r.Findings[0].Severity != report.SeverityError {
		t.Errorf("first finding severity = %v, want error", r.Findings[0].Severity)
	}
	for _, f := range r.Findings {
		if f.Kind == report.KindBrokenLink && f.Suggestion == "" {
			t.Error("broken-link finding has no remediation suggestion")
		}
	}
}

func TestEngineCleanCorpusPasses(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"deck/pitch-deck.md": "---\nversion: 1.0.0\n---\n# Deck\n\n## Problem\n\n## Solution\n",
		"memory/product.md": `---
type: strategic
source_version: 1.0.0
---
# Product

[p](../deck/pitch-deck.md#problem) [s](../deck/pitch-deck.md#solution)
`,
	})

	r, err := New(Options{}, slogutil.NewDiscardLogger()).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !r.IsPassing() {
		for _, f := range r.Findings {
			t.Logf("finding: %s", f.Format())
		}
		t.Error("IsPassing() = false, want true")
	}
}

func TestEngineReportsParseFailures(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"memory/bad.md": "---\nversion: [oops\n---\n# Bad\n\n[x](other.md)\n",
	})

	r, err := New(Options{}, slogutil.NewDiscardLogger()).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := countKind(r.Findings, report.KindParseFailure); n != 1 {
		t.Errorf("parse-failure findings = %d, want 1", n)
	}
	// The salvaged link surfaces as a warning, not an error.
	var salvaged bool
	for _, f := range r.Findings {
		if f.Kind == report.KindBrokenLink {
			salvaged = true
			if f.Severity != report.SeverityWarning {
				t.Errorf("salvaged link severity = %v, want warning", f.Severity)
			}
		}
	}
	if !salvaged {
		t.Error("no finding for the salvaged link")
	}
}

func TestEngineCancelledContext(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"deck/pitch-deck.md": "# Deck\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(Options{}, nil).Run(ctx, root); err == nil {
		t.Fatal("Run with cancelled context succeeded, want error")
	}
}

func TestEngineMissingRoot(t *testing.T) {
	if _, err := New(Options{}, nil).Run(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("Run on missing root succeeded, want error")
	}
}
