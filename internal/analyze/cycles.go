package analyze

import (
	"fmt"
	"sort"
	"strings"

	"bpkit/internal/corpus"
	"bpkit/internal/graph"
	"bpkit/internal/report"
)

// CycleDetector finds dependency cycles among feature documents declared via
// depends_on front matter.
type CycleDetector struct{}

// NewCycleDetector creates a detector.
func NewCycleDetector() *CycleDetector {
	return &CycleDetector{}
}

// DFS colors.
const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // fully explored
)

// Detect builds the depends_on sub-graph over feature documents and runs an
// iterative three-color DFS from every unvisited node. Each distinct cycle is
// reported once: the path is canonicalized by rotating it so the smallest
// node ID comes first, then deduplicated. A depends_on entry naming an
// unknown feature is a warning of its own, not an edge.
func (d *CycleDetector) Detect(g *graph.Graph) []report.Finding {
	features := g.ByTier(corpus.TierFeature)
	if len(features) == 0 {
		return nil
	}

	// Dense feature-local IDs, in graph node (path) order.
	idByFeature := make(map[string]int, len(features))
	for i, doc := range features {
		idByFeature[doc.ID()] = i
	}

	var findings []report.Finding
	adj := make([][]int, len(features))
	for i, doc := range features {
		for _, dep := range doc.DependsOn {
			j, ok := idByFeature[dep]
			if !ok {
				findings = append(findings, report.Finding{
					Severity:   report.SeverityWarning,
					Kind:       report.KindCycle,
					File:       doc.Path,
					Message:    fmt.Sprintf("depends_on references unknown feature %q", dep),
					Suggestion: "remove the entry or fix the feature identifier",
				})
				continue
			}
			adj[i] = append(adj[i], j)
		}
	}

	color := make([]int, len(features))
	seen := make(map[string]struct{})

	// One frame per node on the DFS path; next is the adjacency cursor.
	type frame struct {
		node int
		next int
	}

	for start := range features {
		if color[start] != white {
			continue
		}
		stack := []frame{{node: start}}
		color[start] = gray
		path := []int{start}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(adj[top.node]) {
				next := adj[top.node][top.next]
				top.next++
				switch color[next] {
				case white:
					color[next] = gray
					stack = append(stack, frame{node: next})
					path = append(path, next)
				case gray:
					// Back edge: the cycle is the path suffix from next.
					for i, n := range path {
						if n == next {
							cycle := canonicalize(path[i:])
							key := cycleKey(cycle)
							if _, dup := seen[key]; !dup {
								seen[key] = struct{}{}
								findings = append(findings, cycleFinding(features, cycle))
							}
							break
						}
					}
				}
				continue
			}
			color[top.node] = black
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
		}
	}

	sort.SliceStable(findings, func(a, b int) bool { return findings[a].Message < findings[b].Message })
	return findings
}

// canonicalize rotates the cycle so its smallest node ID comes first, making
// equal cycles found from different entry points compare identical.
func canonicalize(cycle []int) []int {
	min := 0
	for i, n := range cycle {
		if n < cycle[min] {
			min = i
		}
	}
	out := make([]int, 0, len(cycle))
	out = append(out, cycle[min:]...)
	out = append(out, cycle[:min]...)
	return out
}

func cycleKey(cycle []int) string {
	parts := make([]string, len(cycle))
	for i, n := range cycle {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}

func cycleFinding(features []*corpus.Document, cycle []int) report.Finding {
	names := make([]string, 0, len(cycle)+1)
	for _, n := range cycle {
		names = append(names, features[n].ID())
	}
	names = append(names, features[cycle[0]].ID())
	return report.Finding{
		Severity:   report.SeverityWarning,
		Kind:       report.KindCycle,
		File:       features[cycle[0]].Path,
		Message:    "dependency cycle: " + strings.Join(names, " -> "),
		Suggestion: "break the cycle by removing one depends_on entry",
	}
}
