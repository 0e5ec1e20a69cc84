package corpus

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"bpkit/internal/paths"
	"bpkit/internal/semver"
)

// TierFunc infers a document's tier from its canonical corpus-relative path
// when the front matter does not declare one.
type TierFunc func(canonicalPath string) Tier

var featureStemPattern = regexp.MustCompile(`^\d{3}-`)

// DefaultTierFunc infers tier from the conventional corpus layout:
// deck/ holds the source document, memory/ the strategic documents and
// features/ the feature documents. Outside those, a NNN- file stem marks a
// feature document and everything else is treated as strategic.
func DefaultTierFunc(canonicalPath string) Tier {
	switch {
	case strings.Contains(canonicalPath, "deck/"), strings.HasSuffix(canonicalPath, "pitch-deck.md"):
		return TierSource
	case strings.Contains(canonicalPath, "memory/"):
		return TierStrategic
	case strings.Contains(canonicalPath, "features/"):
		return TierFeature
	}

	base := canonicalPath
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if featureStemPattern.MatchString(base) {
		return TierFeature
	}
	return TierStrategic
}

// Parser parses markdown documents into the corpus model.
// Parse is a pure read: it never mutates files and holds no state between
// calls, so one Parser may be shared across goroutines.
type Parser struct {
	corpusRoot string
	tierOf     TierFunc
}

// NewParser creates a Parser rooted at corpusRoot.
func NewParser(corpusRoot string, tierOf TierFunc) *Parser {
	if tierOf == nil {
		tierOf = DefaultTierFunc
	}
	return &Parser{corpusRoot: corpusRoot, tierOf: tierOf}
}

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)

	// Inline links [text](target), optionally with a quoted title.
	inlineLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^()\s]+)(?:\s+"[^"]*")?\)`)

	// Fence start/end - allow leading whitespace, support ``` and ~~~
	fenceStartPattern = regexp.MustCompile(`^\s*(` + "```" + `|~~~)(\w*)\s*$`)
	fenceEndPattern   = regexp.MustCompile(`^\s*(` + "```" + `|~~~)\s*$`)
)

// Parse reads and parses one markdown document. On failure it returns a
// *ParseError; when the body was still readable the error carries the links
// found in it, already marked MissingSource, so the caller can report them.
func (p *Parser) Parse(absPath string) (*Document, error) {
	canonical, err := paths.Canonicalize(absPath, p.corpusRoot)
	if err != nil {
		canonical = paths.Normalize(absPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, &ParseError{Path: canonical, Cause: err}
	}

	lines := strings.Split(string(data), "\n")
	fm, bodyStart, fmErr := splitFrontMatter(lines)

	scanStart := bodyStart
	if fmErr != nil {
		// Unterminated or malformed front matter: salvage links from the
		// whole file so they can be reported as MissingSource.
		scanStart = 0
	}
	sections, links, title := scanBody(canonical, lines, scanStart)

	if fmErr != nil {
		return nil, &ParseError{Path: canonical, Cause: fmErr, Links: markMissingSource(links)}
	}

	doc := &Document{
		Path:     canonical,
		AbsPath:  absPath,
		Title:    title,
		Version:  semver.Initial,
		Sections: sections,
		Links:    links,
		ParsedAt: time.Now(),
	}

	if fm.Version != "" {
		v, err := semver.Parse(fm.Version)
		if err != nil {
			return nil, &ParseError{Path: canonical, Cause: err, Links: markMissingSource(links)}
		}
		doc.Version = v
	}

	if fm.SourceVersion != "" {
		sv, err := semver.Parse(fm.SourceVersion)
		if err != nil {
			return nil, &ParseError{Path: canonical, Cause: err, Links: markMissingSource(links)}
		}
		doc.SourceVersion = &sv
	}

	switch fm.Type {
	case "":
		doc.Tier = p.tierOf(canonical)
	case "strategic":
		doc.Tier = TierStrategic
	case "feature":
		doc.Tier = TierFeature
	case "source":
		doc.Tier = TierSource
	default:
		err := fmt.Errorf("unknown document type %q", fm.Type)
		return nil, &ParseError{Path: canonical, Cause: err, Links: markMissingSource(links)}
	}

	doc.DependsOn = fm.DependsOn

	return doc, nil
}

// splitFrontMatter detects an optional YAML front matter block delimited by
// "---" lines at the top of the file. It returns the decoded block and the
// index of the first body line. A missing block is not an error; a present
// but malformed one is.
func splitFrontMatter(lines []string) (FrontMatter, int, error) {
	var fm FrontMatter

	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != "---" {
		return fm, 0, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return fm, 0, fmt.Errorf("unterminated front matter block")
	}

	raw := strings.Join(lines[1:end], "\n")
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return fm, 0, fmt.Errorf("invalid front matter: %w", err)
	}

	return fm, end + 1, nil
}

// scanBody walks the body once, emitting sections for headings and links for
// inline references. Fenced code blocks are skipped entirely.
func scanBody(sourcePath string, lines []string, start int) ([]Section, []Link, string) {
	var (
		sections []Section
		links    []Link
		title    string
	)

	slugger := NewSlugger()
	inFence := false
	fenceDelimiter := ""
	var body []string // accumulates the current section's text

	flushBody := func() {
		if len(sections) > 0 && len(body) > 0 {
			sections[len(sections)-1].Text = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = body[:0]
	}

	for i := start; i < len(lines); i++ {
		line := lines[i]
		lineNum := i + 1

		if !inFence {
			if m := fenceStartPattern.FindStringSubmatch(line); m != nil {
				inFence = true
				fenceDelimiter = m[1]
				continue
			}
		} else {
			if m := fenceEndPattern.FindStringSubmatch(line); m != nil && m[1] == fenceDelimiter {
				inFence = false
				fenceDelimiter = ""
			}
			continue
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			flushBody()
			level := len(m[1])
			text := m[2]
			if title == "" && level == 1 {
				title = text
			}
			sections = append(sections, Section{
				Slug:  slugger.Slug(text),
				Title: text,
				Level: level,
				Line:  lineNum,
			})
			continue
		}

		body = append(body, line)
		links = append(links, scanLinks(sourcePath, line, lineNum)...)
	}
	flushBody()

	return sections, links, title
}

// scanLinks extracts inline links from one line, skipping image embeds.
func scanLinks(sourcePath, line string, lineNum int) []Link {
	var links []Link

	for _, m := range inlineLinkPattern.FindAllStringSubmatchIndex(line, -1) {
		start := m[0]
		if start > 0 && line[start-1] == '!' {
			continue // image, not a reference
		}
		text := line[m[2]:m[3]]
		target := line[m[4]:m[5]]
		links = append(links, Link{
			SourcePath: sourcePath,
			Line:       lineNum,
			Text:       text,
			RawTarget:  target,
			State:      LinkUnvalidated,
		})
	}

	return links
}

func markMissingSource(links []Link) []Link {
	for i := range links {
		links[i].State = LinkMissingSource
	}
	return links
}
