package analyze

import (
	"strings"
	"testing"

	"bpkit/internal/report"
)

func TestCoverageAnalyzer(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"deck/pitch-deck.md": `---
version: 1.0.0
---
# Deck

## Problem

## Solution

## Market

## Pricing
`,
		"memory/product.md": `---
type: strategic
---
# Product

[p](../deck/pitch-deck.md#problem)
[s](../deck/pitch-deck.md#solution)
`,
	})

	findings := NewCoverageAnalyzer(nil).Detect(g)

	bySlug := map[string]report.Finding{}
	for _, f := range findings {
		for _, slug := range []string{"market", "pricing", "problem", "solution"} {
			if strings.Contains(f.Message, "#"+slug+")") {
				bySlug[slug] = f
			}
		}
	}

	if len(findings) != 2 {
		t.Fatalf("findings = %d, want 2 (market, pricing)", len(findings))
	}
	if f, ok := bySlug["market"]; !ok || f.Severity != report.SeverityWarning {
		t.Errorf("market gap = %+v, want required-section warning", f)
	}
	if f, ok := bySlug["pricing"]; !ok || f.Severity != report.SeverityInfo {
		t.Errorf("pricing gap = %+v, want info", f)
	}
	if _, ok := bySlug["problem"]; ok {
		t.Error("covered section #problem reported as a gap")
	}
}

func TestCoverageIgnoresBrokenLinks(t *testing.T) {
	// A broken-section link almost matching a slug must not count as coverage.
	g := buildGraph(t, map[string]string{
		"deck/pitch-deck.md": "# Deck\n\n## Problem\n",
		"memory/a.md":        "---\ntype: strategic\n---\n# A\n\n[p](../deck/pitch-deck.md#problems)\n",
	})

	findings := NewCoverageAnalyzer([]string{"problem"}).Detect(g)
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Severity != report.SeverityWarning {
		t.Errorf("severity = %v, want warning", findings[0].Severity)
	}
}

func TestCoverageNoSourceDocument(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"memory/a.md": "---\ntype: strategic\n---\n# A\n",
	})

	if findings := NewCoverageAnalyzer(nil).Detect(g); findings != nil {
		t.Errorf("findings = %v, want none without a source document", findings)
	}
}
