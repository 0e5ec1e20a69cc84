// Package corpus defines the document model for a bpkit corpus and parses
// individual markdown documents into it. A corpus is a layered hierarchy:
// one source document (the pitch deck), strategic documents derived from it,
// and feature documents derived from those.
package corpus

import (
	"strings"
	"time"

	"bpkit/internal/semver"
)

// Tier classifies a document's position in the hierarchy.
type Tier string

const (
	TierSource    Tier = "source"
	TierStrategic Tier = "strategic"
	TierFeature   Tier = "feature"
)

// LinkState is the validation state of an outbound link.
type LinkState string

const (
	LinkUnvalidated     LinkState = "unvalidated"
	LinkValid           LinkState = "valid"
	LinkBrokenFile      LinkState = "broken_file"      // target file does not exist
	LinkBrokenSection   LinkState = "broken_section"   // file exists but fragment does not
	LinkMissingSource   LinkState = "missing_source"   // the link's own source failed to parse
	LinkSkippedExternal LinkState = "skipped_external" // scheme-prefixed target, not followed
)

// Section is a heading within a document.
type Section struct {
	Slug  string `json:"slug"`  // unique within the document
	Title string `json:"title"` // heading text as written
	Level int    `json:"level"` // 1 for #, 2 for ##, ...
	Line  int    `json:"line"`  // 1-based line where the heading starts
	Text  string `json:"-"`     // body text until the next heading, for principle scanning
}

// Link is an outbound reference found in a document body.
type Link struct {
	SourcePath     string    `json:"source_path"` // canonical corpus-relative path
	Line           int       `json:"line"`        // 1-based
	Text           string    `json:"text"`        // display text as written
	RawTarget      string    `json:"raw_target"`  // target exactly as written
	TargetPath     string    `json:"target_path,omitempty"`     // canonical, set during resolution
	TargetFragment string    `json:"target_fragment,omitempty"` // empty means whole document
	State          LinkState `json:"state"`
}

// FrontMatter is the optional YAML block at the top of a document.
type FrontMatter struct {
	Version       string   `yaml:"version"`
	Type          string   `yaml:"type"`
	SourceVersion string   `yaml:"source_version"`
	DependsOn     []string `yaml:"depends_on"`
}

// Document is one parsed markdown file.
type Document struct {
	Path          string          `json:"path"` // canonical corpus-relative path, unique
	AbsPath       string          `json:"-"`
	Tier          Tier            `json:"tier"`
	Title         string          `json:"title,omitempty"` // first H1, or empty
	Version       semver.Version  `json:"version"`
	SourceVersion *semver.Version `json:"source_version,omitempty"` // absent for the source document
	DependsOn     []string        `json:"depends_on,omitempty"`     // feature identifiers, cycle detection only
	Sections      []Section       `json:"sections"`
	Links         []Link          `json:"links"`
	ParsedAt      time.Time       `json:"parsed_at"`

	slugSet map[string]struct{}
}

// ID returns the document's identifier: the file stem, used by feature
// depends_on declarations (e.g. "001-user-management").
func (d *Document) ID() string {
	base := d.Path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

// HasSlug reports whether the document contains a section with the slug.
func (d *Document) HasSlug(slug string) bool {
	if d.slugSet == nil {
		d.slugSet = make(map[string]struct{}, len(d.Sections))
		for _, s := range d.Sections {
			d.slugSet[s.Slug] = struct{}{}
		}
	}
	_, ok := d.slugSet[slug]
	return ok
}

// Slugs returns the document's section slugs in order of appearance.
func (d *Document) Slugs() []string {
	slugs := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		slugs[i] = s.Slug
	}
	return slugs
}

// ParseError reports that a document could not be fully parsed. The document
// is excluded from the graph as a node, but any links extracted from a
// readable body are preserved so they can be reported as MissingSource.
type ParseError struct {
	Path  string // canonical corpus-relative path
	Cause error
	Links []Link // body links salvaged despite the failure, state MissingSource
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return "parse " + e.Path + ": " + e.Cause.Error()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
