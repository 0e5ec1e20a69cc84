package analyze

import (
	"fmt"
	"sort"
	"strings"

	"bpkit/internal/corpus"
	"bpkit/internal/graph"
	"bpkit/internal/report"
)

// KeywordGroupPair is one row of the conflict table: two groups of keywords
// whose co-occurrence across strategic documents suggests contradictory
// positioning. Matching is case-insensitive substring search.
type KeywordGroupPair struct {
	Name string   `json:"name"`
	A    []string `json:"a"`
	B    []string `json:"b"`
}

// DefaultConflictTable is the built-in contradiction heuristic. Each pair
// names two positions a business plan rarely holds at once.
func DefaultConflictTable() []KeywordGroupPair {
	return []KeywordGroupPair{
		{
			Name: "platform-focus",
			A:    []string{"mobile-first", "mobile first", "smartphone", "mobile app"},
			B:    []string{"desktop", "workstation"},
		},
		{
			Name: "customer-segment",
			A:    []string{"b2b", "enterprise customers", "enterprise users"},
			B:    []string{"b2c", "consumer", "individual users"},
		},
		{
			Name: "pricing-model",
			A:    []string{"free forever", "freemium", "ad-supported"},
			B:    []string{"premium pricing", "paid-only", "high-touch sales"},
		},
		{
			Name: "go-to-market",
			A:    []string{"self-service", "product-led"},
			B:    []string{"sales-led", "outbound sales"},
		},
		{
			Name: "product-scope",
			A:    []string{"minimal", "single-purpose", "do one thing"},
			B:    []string{"all-in-one", "feature-rich", "full suite"},
		},
	}
}

// ConflictDetector scans strategic-tier principle text for contradictory
// keyword pairs.
type ConflictDetector struct {
	table []KeywordGroupPair
}

// NewConflictDetector creates a detector. nil table uses the default.
func NewConflictDetector(table []KeywordGroupPair) *ConflictDetector {
	if table == nil {
		table = DefaultConflictTable()
	}
	return &ConflictDetector{table: table}
}

// docText is one document's scannable text: title plus every section title
// and body, lowercased once up front.
type docText struct {
	doc  *corpus.Document
	text string
}

func lowerText(doc *corpus.Document) docText {
	var b strings.Builder
	b.WriteString(doc.Title)
	for _, s := range doc.Sections {
		b.WriteByte('\n')
		b.WriteString(s.Title)
		b.WriteByte('\n')
		b.WriteString(s.Text)
	}
	return docText{doc: doc, text: strings.ToLower(b.String())}
}

func matchAny(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

// Detect compares every unordered pair of strategic documents against the
// conflict table. At most one finding is emitted per document pair per table
// row, regardless of how many keywords from each group match.
func (d *ConflictDetector) Detect(g *graph.Graph) []report.Finding {
	strategic := g.ByTier(corpus.TierStrategic)
	texts := make([]docText, len(strategic))
	for i, doc := range strategic {
		texts[i] = lowerText(doc)
	}

	var findings []report.Finding
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			for _, pair := range d.table {
				kwA, kwB := conflictMatch(texts[i].text, texts[j].text, pair)
				if kwA == "" {
					continue
				}
				findings = append(findings, report.Finding{
					Severity: report.SeverityWarning,
					Kind:     report.KindConflict,
					File:     texts[i].doc.Path,
					Message: fmt.Sprintf("potential conflict with %s: %q vs %q (%s)",
						texts[j].doc.Path, kwA, kwB, pair.Name),
					Suggestion: "review both documents and align their positioning",
				})
			}
		}
	}

	sort.SliceStable(findings, func(a, b int) bool { return findings[a].Message < findings[b].Message })
	return findings
}

// conflictMatch reports the first keywords that put the two texts on opposite
// sides of the pair, in either direction. Empty strings mean no conflict.
func conflictMatch(textA, textB string, pair KeywordGroupPair) (string, string) {
	if a, b := matchAny(textA, pair.A), matchAny(textB, pair.B); a != "" && b != "" {
		return a, b
	}
	if a, b := matchAny(textA, pair.B), matchAny(textB, pair.A); a != "" && b != "" {
		return a, b
	}
	return "", ""
}
