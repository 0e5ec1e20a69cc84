package analyze

import (
	"fmt"
	"strings"

	"bpkit/internal/corpus"
	"bpkit/internal/graph"
	"bpkit/internal/report"
)

// OrphanDetector finds strategic principles no feature document traces back
// to. Orphans are informational: a principle may legitimately predate the
// features that will implement it.
type OrphanDetector struct{}

// NewOrphanDetector creates a detector.
func NewOrphanDetector() *OrphanDetector {
	return &OrphanDetector{}
}

// isPrincipleSlug reports whether a section slug names a principle. The
// conventions recognized are an explicit "principle" in the slug and the
// fp-/sp- numbering prefixes (founding/strategic principle).
func isPrincipleSlug(slug string) bool {
	if strings.Contains(slug, "principle") {
		return true
	}
	return strings.HasPrefix(slug, "fp-") || strings.HasPrefix(slug, "sp-")
}

// Detect reports every principle section of a strategic document that no
// valid inbound link targets.
func (d *OrphanDetector) Detect(g *graph.Graph) []report.Finding {
	inbound := make(map[string]map[string]struct{}) // target path -> fragment set
	for _, l := range g.Links {
		if l.State != corpus.LinkValid || l.TargetFragment == "" {
			continue
		}
		if inbound[l.TargetPath] == nil {
			inbound[l.TargetPath] = make(map[string]struct{})
		}
		inbound[l.TargetPath][l.TargetFragment] = struct{}{}
	}

	var findings []report.Finding
	for _, doc := range g.ByTier(corpus.TierStrategic) {
		for _, s := range doc.Sections {
			if !isPrincipleSlug(s.Slug) {
				continue
			}
			if _, ok := inbound[doc.Path][s.Slug]; ok {
				continue
			}
			findings = append(findings, report.Finding{
				Severity:   report.SeverityInfo,
				Kind:       report.KindOrphanedPrinciple,
				File:       doc.Path,
				Line:       s.Line,
				Message:    fmt.Sprintf("principle %q (#%s) has no feature tracing to it", s.Title, s.Slug),
				Suggestion: "link a feature document to this principle or retire it",
			})
		}
	}
	return findings
}
