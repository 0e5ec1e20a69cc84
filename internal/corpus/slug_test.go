package corpus

import "testing"

func TestSlugNormalization(t *testing.T) {
	tests := []struct {
		heading string
		want    string
	}{
		{"Company Purpose", "company-purpose"},
		{"What's the Problem?", "what-s-the-problem"},
		{"Problem", "problem"},
		{"  Spaced  Out  ", "spaced-out"},
		{"Go-To-Market", "go-to-market"},
		{"Revenue (ARR) 2025", "revenue-arr-2025"},
		{"__init__", "init"},
		{"!!!", "section"},
	}

	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			got := NewSlugger().Slug(tt.heading)
			if got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.heading, got, tt.want)
			}
		})
	}
}

func TestSlugCollisions(t *testing.T) {
	s := NewSlugger()

	headings := []string{"Pricing", "Pricing", "Pricing", "pricing!"}
	want := []string{"pricing", "pricing-2", "pricing-3", "pricing-4"}

	for i, h := range headings {
		got := s.Slug(h)
		if got != want[i] {
			t.Errorf("occurrence %d: Slug(%q) = %q, want %q", i+1, h, got, want[i])
		}
	}
}

func TestSlugCollisionWithLiteralSuffix(t *testing.T) {
	s := NewSlugger()

	// A literal "Pricing 2" heading occupies pricing-2, so the duplicate
	// "Pricing" must skip ahead.
	if got := s.Slug("Pricing"); got != "pricing" {
		t.Fatalf("first = %q", got)
	}
	if got := s.Slug("Pricing 2"); got != "pricing-2" {
		t.Fatalf("literal = %q", got)
	}
	if got := s.Slug("Pricing"); got != "pricing-3" {
		t.Errorf("duplicate = %q, want pricing-3", got)
	}
}
