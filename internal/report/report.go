// Package report defines the findings produced by corpus analysis and the
// report that collects them. Findings are immutable values; the assembler
// orders them deterministically so repeated runs over an unchanged corpus
// produce identical reports.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity is the closed set of finding severities. The order of severityRank
// drives report ordering and the CLI exit code, so new severities must be
// added there as well.
type Severity string

const (
	SeverityError   Severity = "error"   // blocks progression, must fix
	SeverityWarning Severity = "warning" // non-blocking, should fix
	SeverityInfo    Severity = "info"    // informational, no action needed
)

var severityRank = map[Severity]int{
	SeverityError:   0,
	SeverityWarning: 1,
	SeverityInfo:    2,
}

// Kind identifies the class of issue a finding reports.
type Kind string

const (
	KindBrokenLink        Kind = "broken-link"
	KindConflict          Kind = "conflict"
	KindCoverageGap       Kind = "coverage-gap"
	KindVersionMismatch   Kind = "version-mismatch"
	KindCycle             Kind = "cycle"
	KindOrphanedPrinciple Kind = "orphaned-principle"
	KindParseFailure      Kind = "parse-failure"
)

// Finding is one reportable issue.
type Finding struct {
	Severity   Severity `json:"severity"`
	Kind       Kind     `json:"kind"`
	Message    string   `json:"message"`
	File       string   `json:"file,omitempty"` // corpus-relative path
	Line       int      `json:"line,omitempty"` // 1-based, 0 when not applicable
	Suggestion string   `json:"suggestion,omitempty"`
}

// Format renders the finding for console output:
// [SEVERITY] file:line: message
func (f Finding) Format() string {
	location := ""
	if f.File != "" {
		location = " " + f.File
		if f.Line > 0 {
			location = fmt.Sprintf("%s:%d", location, f.Line)
		}
	}
	return fmt.Sprintf("[%s]%s: %s", strings.ToUpper(string(f.Severity)), location, f.Message)
}

// DocumentRef is a per-document summary carried in the report, enough for
// history queries without reparsing the corpus.
type DocumentRef struct {
	Path    string `json:"path"`
	Tier    string `json:"tier"`
	Version string `json:"version"`
}

// Report is the merged, ordered output of one analysis run.
type Report struct {
	ID            string        `json:"id"`
	GeneratedAt   time.Time     `json:"generated_at"`
	CorpusRoot    string        `json:"corpus_root"`
	DocumentCount int           `json:"document_count"`
	LinkCount     int           `json:"link_count"`
	Documents     []DocumentRef `json:"documents,omitempty"`
	Findings      []Finding     `json:"findings"`
	ErrorCount    int           `json:"error_count"`
	WarningCount  int           `json:"warning_count"`
	InfoCount     int           `json:"info_count"`
}

// Assemble merges finding sets into a single report: concatenated, sorted by
// severity (error before warning before info), then file path, then line,
// with summary counts computed.
func Assemble(findingSets ...[]Finding) *Report {
	var findings []Finding
	for _, set := range findingSets {
		findings = append(findings, set...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if severityRank[a.Severity] != severityRank[b.Severity] {
			return severityRank[a.Severity] < severityRank[b.Severity]
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Message < b.Message
	})

	r := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Findings:    findings,
	}
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			r.ErrorCount++
		case SeverityWarning:
			r.WarningCount++
		case SeverityInfo:
			r.InfoCount++
		}
	}
	return r
}

// Append merges late findings into the report, restoring order and counts.
// Used for checks that run after assembly, like history comparisons.
func (r *Report) Append(findings ...Finding) {
	if len(findings) == 0 {
		return
	}
	merged := Assemble(r.Findings, findings)
	r.Findings = merged.Findings
	r.ErrorCount = merged.ErrorCount
	r.WarningCount = merged.WarningCount
	r.InfoCount = merged.InfoCount
}

// IsPassing reports whether the run produced zero error-severity findings.
// The CLI maps this to its process exit code.
func (r *Report) IsPassing() bool {
	return r.ErrorCount == 0
}
