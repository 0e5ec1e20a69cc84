package graph

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"bpkit/internal/corpus"
	"bpkit/internal/paths"
)

// skipDirs are directory names never scanned for documents.
var skipDirs = map[string]struct{}{
	".git":         {},
	".bpkit":       {},
	"node_modules": {},
	"vendor":       {},
}

// BuildOptions configures a corpus scan.
type BuildOptions struct {
	// IgnorePatterns are doublestar globs matched against canonical
	// corpus-relative paths; matching files are excluded from the scan.
	IgnorePatterns []string

	// Workers bounds the parallel parse fan-out. 0 means GOMAXPROCS.
	Workers int

	// TierOf overrides tier inference for documents without a front matter
	// type. nil uses corpus.DefaultTierFunc.
	TierOf corpus.TierFunc
}

// Builder scans a corpus directory and builds its document graph.
type Builder struct {
	root   string
	opts   BuildOptions
	logger *slog.Logger
}

// NewBuilder creates a Builder for the corpus rooted at corpusRoot.
func NewBuilder(corpusRoot string, opts BuildOptions, logger *slog.Logger) *Builder {
	return &Builder{root: corpusRoot, opts: opts, logger: logger}
}

// Build scans the corpus, parses every markdown file (concurrently, one task
// per file), then resolves all links once the graph is fully populated. Parse
// failures never abort the build; they are recorded on the graph so the
// engine can report them. Build only fails when the corpus root itself cannot
// be scanned or the context is cancelled before the parse barrier.
func (b *Builder) Build(ctx context.Context) (*Graph, error) {
	files, err := b.collectFiles()
	if err != nil {
		return nil, fmt.Errorf("scan corpus %s: %w", b.root, err)
	}

	// Deterministic node IDs: parse results keep file order, and files are
	// sorted by canonical path.
	parser := corpus.NewParser(b.root, b.opts.TierOf)
	docs := make([]*corpus.Document, len(files))
	failures := make([]*corpus.ParseError, len(files))

	workers := b.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, file := range files {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			doc, err := parser.Parse(file)
			if err != nil {
				if pe, ok := err.(*corpus.ParseError); ok {
					failures[i] = pe
					return nil
				}
				return err
			}
			docs[i] = doc
			return nil
		})
	}

	// Synchronization barrier: detectors assume a fully populated graph.
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g := newGraph(b.root)
	for _, doc := range docs {
		if doc != nil {
			g.addNode(doc)
		}
	}
	for _, pe := range failures {
		if pe != nil {
			g.failed[pe.Path] = pe
		}
	}

	b.resolveAll(g, failures)

	if b.logger != nil {
		b.logger.Info("corpus graph built",
			"documents", len(g.nodes),
			"failed", len(g.failed),
			"links", len(g.Links))
	}

	return g, nil
}

// resolveAll resolves every outbound link against the populated graph,
// including links salvaged from unparseable documents (kept MissingSource).
func (b *Builder) resolveAll(g *Graph, failures []*corpus.ParseError) {
	for _, doc := range g.nodes {
		for _, link := range doc.Links {
			g.Links = append(g.Links, g.ResolveLink(link))
		}
	}
	for _, pe := range failures {
		if pe == nil {
			continue
		}
		for _, link := range pe.Links {
			g.Links = append(g.Links, g.ResolveLink(link))
		}
	}
}

// collectFiles walks the corpus root and returns all markdown files not
// excluded by ignore patterns, as absolute paths sorted by canonical path.
func (b *Builder) collectFiles() ([]string, error) {
	type entry struct {
		abs       string
		canonical string
	}
	var entries []entry

	err := filepath.WalkDir(b.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip && p != b.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}

		canonical, err := paths.Canonicalize(p, b.root)
		if err != nil {
			return err
		}
		for _, pattern := range b.opts.IgnorePatterns {
			if ok, _ := doublestar.Match(pattern, canonical); ok {
				return nil
			}
		}
		entries = append(entries, entry{abs: p, canonical: canonical})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].canonical < entries[j].canonical })

	files := make([]string, len(entries))
	for i, e := range entries {
		files[i] = e.abs
	}
	return files, nil
}
