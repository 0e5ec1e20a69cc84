package analyze

import (
	"strings"
	"testing"

	"bpkit/internal/report"
)

func TestVersionChecker(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  int
	}{
		{
			name: "strategic behind source",
			files: map[string]string{
				"deck/pitch-deck.md": "---\nversion: 1.2.0\n---\n# Deck\n",
				"memory/a.md":        "---\ntype: strategic\nsource_version: 1.0.0\n---\n# A\n",
			},
			want: 1,
		},
		{
			name: "strategic current",
			files: map[string]string{
				"deck/pitch-deck.md": "---\nversion: 1.2.0\n---\n# Deck\n",
				"memory/a.md":        "---\ntype: strategic\nsource_version: 1.2.0\n---\n# A\n",
			},
			want: 0,
		},
		{
			name: "no recorded baseline is skipped",
			files: map[string]string{
				"deck/pitch-deck.md": "---\nversion: 9.0.0\n---\n# Deck\n",
				"memory/a.md":        "---\ntype: strategic\n---\n# A\n",
			},
			want: 0,
		},
		{
			name: "feature behind linked strategic",
			files: map[string]string{
				"memory/a.md": "---\ntype: strategic\nversion: 2.0.0\n---\n# A\n\n## Goal\n",
				"features/001-x.md": `---
type: feature
source_version: 1.0.0
---
# X

[goal](../memory/a.md#goal)
`,
			},
			want: 1,
		},
		{
			name: "feature without links to strategic",
			files: map[string]string{
				"memory/a.md":       "---\ntype: strategic\nversion: 2.0.0\n---\n# A\n",
				"features/001-x.md": "---\ntype: feature\nsource_version: 1.0.0\n---\n# X\n",
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, tt.files)
			findings := NewVersionChecker().Detect(g)
			if len(findings) != tt.want {
				for _, f := range findings {
					t.Logf("finding: %s", f.Message)
				}
				t.Errorf("findings = %d, want %d", len(findings), tt.want)
			}
			for _, f := range findings {
				if f.Kind != report.KindVersionMismatch || f.Severity != report.SeverityWarning {
					t.Errorf("finding = %+v, want warning/version-mismatch", f)
				}
				if !strings.Contains(f.Message, "now v") {
					t.Errorf("message %q does not state the current version", f.Message)
				}
			}
		})
	}
}
