package graph

import (
	"os"
	"path"
	"regexp"
	"strings"

	"bpkit/internal/corpus"
	"bpkit/internal/paths"
)

// schemePattern matches targets that begin with a URI scheme (http://,
// https://, mailto:, ...). Such links are skipped without filesystem access.
var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// ResolveLink resolves one outbound link against the graph.
//
// State machine: a link already marked MissingSource is propagated untouched
// (its source document failed to parse, so validity cannot be assessed).
// Scheme-prefixed targets become SkippedExternal. Otherwise the target path
// is resolved relative to the source document, canonicalized against the
// corpus root (escapes are BrokenFile and never followed), then checked for
// existence and, when a fragment is present, for the fragment's slug.
func (g *Graph) ResolveLink(link corpus.Link) ResolvedLink {
	if link.State == corpus.LinkMissingSource {
		return ResolvedLink{Link: link}
	}

	if schemePattern.MatchString(link.RawTarget) {
		link.State = corpus.LinkSkippedExternal
		return ResolvedLink{Link: link}
	}

	rawPath, fragment := splitFragment(link.RawTarget)
	link.TargetFragment = fragment

	if rawPath == "" {
		// Fragment-only link: resolves against its own source document.
		link.TargetPath = link.SourcePath
	} else {
		sourceDir := path.Dir(link.SourcePath)
		abs := paths.JoinCorpusPath(g.CorpusRoot, path.Join(sourceDir, rawPath))
		if !paths.IsWithinCorpus(abs, g.CorpusRoot) {
			link.State = corpus.LinkBrokenFile
			return ResolvedLink{Link: link}
		}
		canonical, err := paths.Canonicalize(abs, g.CorpusRoot)
		if err != nil {
			link.State = corpus.LinkBrokenFile
			return ResolvedLink{Link: link}
		}
		link.TargetPath = canonical
	}

	target, isNode := g.ByPath(link.TargetPath)

	if !isNode {
		if _, parseFailed := g.failed[link.TargetPath]; parseFailed {
			// Target exists but could not be parsed: no slug set to consult,
			// so any reference to it is broken-file equivalent.
			link.State = corpus.LinkBrokenFile
			return ResolvedLink{Link: link}
		}
		if !fileExists(paths.JoinCorpusPath(g.CorpusRoot, link.TargetPath)) {
			link.State = corpus.LinkBrokenFile
			return ResolvedLink{Link: link}
		}
		// Non-document file inside the corpus (asset, data file).
		if fragment != "" {
			link.State = corpus.LinkBrokenSection
			return ResolvedLink{Link: link}
		}
		link.State = corpus.LinkValid
		return ResolvedLink{Link: link}
	}

	if fragment != "" && !target.HasSlug(fragment) {
		link.State = corpus.LinkBrokenSection
		return ResolvedLink{Link: link, AvailableSlugs: target.Slugs()}
	}

	link.State = corpus.LinkValid
	return ResolvedLink{Link: link}
}

// splitFragment splits a raw link target into path and fragment components.
func splitFragment(raw string) (string, string) {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[:i], raw[i+1:]
	}
	return raw, ""
}

func fileExists(abs string) bool {
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}
