package analyze

import (
	"fmt"

	"bpkit/internal/corpus"
	"bpkit/internal/graph"
	"bpkit/internal/report"
)

// DefaultRequiredSections are the source-document sections a downstream
// corpus is expected to trace. Gaps in these are warnings; gaps elsewhere
// are informational.
var DefaultRequiredSections = []string{"problem", "solution", "market", "business-model"}

// CoverageAnalyzer finds source-document sections no valid link points at.
type CoverageAnalyzer struct {
	required map[string]struct{}
}

// NewCoverageAnalyzer creates an analyzer. nil required uses the default set.
func NewCoverageAnalyzer(required []string) *CoverageAnalyzer {
	if required == nil {
		required = DefaultRequiredSections
	}
	set := make(map[string]struct{}, len(required))
	for _, slug := range required {
		set[slug] = struct{}{}
	}
	return &CoverageAnalyzer{required: set}
}

// Detect reports every section of the source document that is never the
// target of a valid link. A whole-document link (no fragment) covers nothing
// on its own; coverage means a section was referenced by slug.
func (a *CoverageAnalyzer) Detect(g *graph.Graph) []report.Finding {
	source := g.Source()
	if source == nil {
		return nil
	}

	referenced := make(map[string]struct{})
	for _, l := range g.Links {
		if l.State == corpus.LinkValid && l.TargetPath == source.Path && l.TargetFragment != "" {
			referenced[l.TargetFragment] = struct{}{}
		}
	}

	var findings []report.Finding
	for _, s := range source.Sections {
		if s.Level == 1 {
			continue // the document title heading is not a coverage target
		}
		if _, ok := referenced[s.Slug]; ok {
			continue
		}
		severity := report.SeverityInfo
		suggestion := ""
		if _, req := a.required[s.Slug]; req {
			severity = report.SeverityWarning
			suggestion = fmt.Sprintf("add a strategic document section tracing back to #%s", s.Slug)
		}
		findings = append(findings, report.Finding{
			Severity:   severity,
			Kind:       report.KindCoverageGap,
			File:       source.Path,
			Line:       s.Line,
			Message:    fmt.Sprintf("section %q (#%s) is not referenced by any document", s.Title, s.Slug),
			Suggestion: suggestion,
		})
	}
	return findings
}
