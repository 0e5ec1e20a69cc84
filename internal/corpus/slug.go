package corpus

import (
	"strconv"
	"strings"
	"unicode"
)

// Slugger generates unique-within-document slugs from heading text.
// Algorithm: lower-case; collapse every run of non-alphanumeric characters
// to a single hyphen; trim leading/trailing hyphens; on collision append
// "-2", "-3", ... in first-seen order. Link resolution depends on this
// matching the slugs the documents were authored against, so the algorithm
// must not change.
type Slugger struct {
	used map[string]struct{}
}

// NewSlugger creates a Slugger scoped to one document.
func NewSlugger() *Slugger {
	return &Slugger{used: make(map[string]struct{})}
}

// Slug returns the unique slug for the next occurrence of heading text.
func (s *Slugger) Slug(heading string) string {
	base := normalizeSlug(heading)
	if base == "" {
		base = "section"
	}

	slug := base
	for n := 2; ; n++ {
		if _, taken := s.used[slug]; !taken {
			break
		}
		slug = base + "-" + strconv.Itoa(n)
	}
	s.used[slug] = struct{}{}
	return slug
}

// normalizeSlug applies the deterministic slug transform without collision
// handling.
func normalizeSlug(heading string) string {
	var b strings.Builder
	b.Grow(len(heading))

	pendingHyphen := false
	for _, r := range strings.ToLower(heading) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
