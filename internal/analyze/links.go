package analyze

import (
	"fmt"
	"strings"

	"bpkit/internal/corpus"
	"bpkit/internal/graph"
	"bpkit/internal/report"
)

// linkFindings converts resolved link edges into findings. Valid and
// skipped-external links produce nothing.
func linkFindings(g *graph.Graph) []report.Finding {
	var findings []report.Finding
	for _, l := range g.Links {
		switch l.State {
		case corpus.LinkBrokenFile:
			findings = append(findings, report.Finding{
				Severity:   report.SeverityError,
				Kind:       report.KindBrokenLink,
				File:       l.SourcePath,
				Line:       l.Line,
				Message:    fmt.Sprintf("broken link: target %q does not exist", l.RawTarget),
				Suggestion: slugSuggestion(l.AvailableSlugs),
			})
		case corpus.LinkBrokenSection:
			findings = append(findings, report.Finding{
				Severity: report.SeverityError,
				Kind:     report.KindBrokenLink,
				File:     l.SourcePath,
				Line:     l.Line,
				Message: fmt.Sprintf("broken link: section #%s not found in %s",
					l.TargetFragment, l.TargetPath),
				Suggestion: slugSuggestion(l.AvailableSlugs),
			})
		case corpus.LinkMissingSource:
			findings = append(findings, report.Finding{
				Severity:   report.SeverityWarning,
				Kind:       report.KindBrokenLink,
				File:       l.SourcePath,
				Line:       l.Line,
				Message:    fmt.Sprintf("link %q could not be validated: its document failed to parse", l.RawTarget),
				Suggestion: "fix the document's front matter first",
			})
		}
	}
	return findings
}

func slugSuggestion(slugs []string) string {
	if len(slugs) == 0 {
		return "no sections available in the target"
	}
	return "available sections: #" + strings.Join(slugs, ", #")
}

// parseFindings reports every document excluded from the graph by a parse
// failure, in sorted path order.
func parseFindings(g *graph.Graph) []report.Finding {
	var findings []report.Finding
	for _, path := range g.FailedPaths() {
		pe := g.Failed()[path]
		findings = append(findings, report.Finding{
			Severity:   report.SeverityError,
			Kind:       report.KindParseFailure,
			File:       path,
			Message:    pe.Cause.Error(),
			Suggestion: "fix the document so it parses; its links are unvalidated until then",
		})
	}
	return findings
}
