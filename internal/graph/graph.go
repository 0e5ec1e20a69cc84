// Package graph builds the in-memory document graph for one corpus: nodes
// are parsed documents, edges are resolved traceability links. The graph is
// built once per run and never mutated afterwards, so detectors may read it
// concurrently without locking.
package graph

import (
	"sort"

	"bpkit/internal/corpus"
)

// ResolvedLink is a link edge after resolution, carrying the target's actual
// slug list for broken-link remediation (empty when the target file itself is
// missing).
type ResolvedLink struct {
	corpus.Link
	AvailableSlugs []string
}

// Graph owns all document nodes and link edges for one corpus scan.
// Node IDs are dense small integers assigned in path order at build time;
// detectors use them for cheap set membership and canonical cycle rotation.
type Graph struct {
	CorpusRoot string

	nodes    []*corpus.Document
	idByPath map[string]int

	// failed holds documents that could not be parsed, keyed by canonical
	// path. They are not nodes; links pointing at them resolve BrokenFile.
	failed map[string]*corpus.ParseError

	// Links are all resolved edges, in node order then document order.
	Links []ResolvedLink
}

func newGraph(corpusRoot string) *Graph {
	return &Graph{
		CorpusRoot: corpusRoot,
		idByPath:   make(map[string]int),
		failed:     make(map[string]*corpus.ParseError),
	}
}

// addNode inserts a parsed document and assigns its node ID. Callers must
// add nodes in sorted path order for deterministic IDs.
func (g *Graph) addNode(doc *corpus.Document) int {
	id := len(g.nodes)
	g.nodes = append(g.nodes, doc)
	g.idByPath[doc.Path] = id
	return id
}

// Documents returns all nodes in ID order.
func (g *Graph) Documents() []*corpus.Document {
	return g.nodes
}

// ByPath looks up a document node by canonical corpus-relative path.
func (g *Graph) ByPath(path string) (*corpus.Document, bool) {
	id, ok := g.idByPath[path]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

// NodeID returns the dense integer ID for a document path.
func (g *Graph) NodeID(path string) (int, bool) {
	id, ok := g.idByPath[path]
	return id, ok
}

// Doc returns the document for a node ID.
func (g *Graph) Doc(id int) *corpus.Document {
	return g.nodes[id]
}

// ByTier returns all nodes of one tier, in ID (path) order.
func (g *Graph) ByTier(tier corpus.Tier) []*corpus.Document {
	var docs []*corpus.Document
	for _, d := range g.nodes {
		if d.Tier == tier {
			docs = append(docs, d)
		}
	}
	return docs
}

// Source returns the corpus root document, or nil when the corpus has none.
// If several documents claim the source tier the lexicographically first path
// wins; the engine reports the others.
func (g *Graph) Source() *corpus.Document {
	sources := g.ByTier(corpus.TierSource)
	if len(sources) == 0 {
		return nil
	}
	return sources[0]
}

// Failed returns the parse failures encountered during the scan, keyed by
// canonical path.
func (g *Graph) Failed() map[string]*corpus.ParseError {
	return g.failed
}

// FailedPaths returns the failed document paths in sorted order.
func (g *Graph) FailedPaths() []string {
	paths := make([]string, 0, len(g.failed))
	for p := range g.failed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FeatureByID returns the feature-tier document with the given identifier
// (file stem), used to resolve depends_on declarations.
func (g *Graph) FeatureByID(id string) (*corpus.Document, bool) {
	for _, d := range g.nodes {
		if d.Tier == corpus.TierFeature && d.ID() == id {
			return d, true
		}
	}
	return nil, false
}
