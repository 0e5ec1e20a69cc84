package analyze

import (
	"fmt"

	"bpkit/internal/corpus"
	"bpkit/internal/graph"
	"bpkit/internal/report"
)

// VersionChecker compares each derived document's recorded source_version
// against the current version of its upstream document.
type VersionChecker struct{}

// NewVersionChecker creates a checker.
func NewVersionChecker() *VersionChecker {
	return &VersionChecker{}
}

// Detect walks the tier hierarchy: strategic documents are checked against
// the source document, feature documents against every strategic document
// they hold a valid link into. A document without a recorded source_version
// is skipped; staleness can only be judged against a declared baseline.
func (c *VersionChecker) Detect(g *graph.Graph) []report.Finding {
	var findings []report.Finding

	source := g.Source()
	for _, doc := range g.ByTier(corpus.TierStrategic) {
		if doc.SourceVersion == nil || source == nil {
			continue
		}
		if f, stale := staleness(doc, source); stale {
			findings = append(findings, f)
		}
	}

	upstreams := strategicTargets(g)
	for _, doc := range g.ByTier(corpus.TierFeature) {
		if doc.SourceVersion == nil {
			continue
		}
		for _, upstream := range upstreams[doc.Path] {
			if f, stale := staleness(doc, upstream); stale {
				findings = append(findings, f)
			}
		}
	}

	return findings
}

// strategicTargets maps each document path to the strategic documents it
// links into with valid edges, deduplicated, in graph link order.
func strategicTargets(g *graph.Graph) map[string][]*corpus.Document {
	targets := make(map[string][]*corpus.Document)
	seen := make(map[string]map[string]struct{})

	for _, l := range g.Links {
		if l.State != corpus.LinkValid {
			continue
		}
		target, ok := g.ByPath(l.TargetPath)
		if !ok || target.Tier != corpus.TierStrategic {
			continue
		}
		if seen[l.SourcePath] == nil {
			seen[l.SourcePath] = make(map[string]struct{})
		}
		if _, dup := seen[l.SourcePath][target.Path]; dup {
			continue
		}
		seen[l.SourcePath][target.Path] = struct{}{}
		targets[l.SourcePath] = append(targets[l.SourcePath], target)
	}
	return targets
}

func staleness(doc, upstream *corpus.Document) (report.Finding, bool) {
	if !doc.SourceVersion.Less(upstream.Version) {
		return report.Finding{}, false
	}
	return report.Finding{
		Severity: report.SeverityWarning,
		Kind:     report.KindVersionMismatch,
		File:     doc.Path,
		Message: fmt.Sprintf("derived from %s v%s but it is now v%s",
			upstream.Path, doc.SourceVersion, upstream.Version),
		Suggestion: fmt.Sprintf("review %s for changes and update source_version", upstream.Path),
	}, true
}
