// Package analyze runs the corpus detectors and assembles their findings
// into a single report. The engine is stateless: every Run builds a fresh
// graph, fans the detectors out over it and merges what they found.
package analyze

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bpkit/internal/corpus"
	"bpkit/internal/graph"
	"bpkit/internal/report"
)

// Options configures an analysis run.
type Options struct {
	// RequiredSections are the source-document slugs whose coverage gaps are
	// warnings instead of info. nil uses DefaultRequiredSections.
	RequiredSections []string

	// ConflictTable overrides the built-in contradiction heuristic.
	ConflictTable []KeywordGroupPair

	// IgnorePatterns are doublestar globs excluded from the corpus scan.
	IgnorePatterns []string

	// Workers bounds the parse fan-out. 0 means GOMAXPROCS.
	Workers int

	// TierOf overrides tier inference. nil uses corpus.DefaultTierFunc.
	TierOf corpus.TierFunc
}

// Engine runs the full analysis pipeline over one corpus.
type Engine struct {
	opts   Options
	logger *slog.Logger

	conflicts *ConflictDetector
	coverage  *CoverageAnalyzer
	versions  *VersionChecker
	cycles    *CycleDetector
	orphans   *OrphanDetector
}

// New creates an Engine. A nil logger disables engine logging.
func New(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		opts:      opts,
		logger:    logger,
		conflicts: NewConflictDetector(opts.ConflictTable),
		coverage:  NewCoverageAnalyzer(opts.RequiredSections),
		versions:  NewVersionChecker(),
		cycles:    NewCycleDetector(),
		orphans:   NewOrphanDetector(),
	}
}

// Run scans the corpus at corpusRoot, resolves the graph and executes every
// detector. The context is honored during the parse fan-out; once the graph
// barrier is passed it is checked a final time, and the detectors themselves
// run to completion. Detectors only read the immutable graph, so they run
// concurrently without locks.
func (e *Engine) Run(ctx context.Context, corpusRoot string) (*report.Report, error) {
	started := time.Now()

	g, err := graph.NewBuilder(corpusRoot, graph.BuildOptions{
		IgnorePatterns: e.opts.IgnorePatterns,
		Workers:        e.opts.Workers,
		TierOf:         e.opts.TierOf,
	}, e.logger).Build(ctx)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if g.Source() == nil {
		e.logger.Warn("corpus has no source-tier document; coverage and version checks skipped")
	}

	sets := make([][]report.Finding, 7)
	detectors := []func(*graph.Graph) []report.Finding{
		parseFindings,
		linkFindings,
		e.conflicts.Detect,
		e.coverage.Detect,
		e.versions.Detect,
		e.cycles.Detect,
		e.orphans.Detect,
	}

	var eg errgroup.Group
	for i, detect := range detectors {
		eg.Go(func() error {
			sets[i] = detect(g)
			return nil
		})
	}
	_ = eg.Wait() // detectors never return errors

	r := report.Assemble(sets...)
	r.CorpusRoot = g.CorpusRoot
	r.DocumentCount = len(g.Documents())
	r.LinkCount = len(g.Links)
	for _, doc := range g.Documents() {
		r.Documents = append(r.Documents, report.DocumentRef{
			Path:    doc.Path,
			Tier:    string(doc.Tier),
			Version: doc.Version.String(),
		})
	}

	e.logger.Info("analysis complete",
		"documents", r.DocumentCount,
		"links", r.LinkCount,
		"errors", r.ErrorCount,
		"warnings", r.WarningCount,
		"info", r.InfoCount,
		"duration", time.Since(started).Round(time.Millisecond))

	return r, nil
}
