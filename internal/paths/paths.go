// Package paths normalizes document paths against the corpus root.
// All graph node identities are corpus-relative forward-slash paths, so the
// same document referenced from different directories resolves to one node.
package paths

import (
	"path/filepath"
	"strings"
)

// Canonicalize converts an absolute path to a corpus-relative canonical path:
// relative to corpusRoot, cleaned, with forward slashes. Returns an error if
// the path cannot be made relative.
func Canonicalize(absolutePath string, corpusRoot string) (string, error) {
	rel, err := filepath.Rel(corpusRoot, absolutePath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithinCorpus reports whether a path stays inside the corpus root after
// cleaning. Link targets that escape the root must not be followed.
func IsWithinCorpus(path string, corpusRoot string) bool {
	canonical, err := Canonicalize(path, corpusRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// Normalize converts a path to forward slashes without resolving it.
func Normalize(path string) string {
	return filepath.ToSlash(path)
}

// JoinCorpusPath joins the corpus root with a canonical forward-slash path,
// converting to OS separators.
func JoinCorpusPath(corpusRoot string, canonicalPath string) string {
	parts := strings.Split(strings.ReplaceAll(canonicalPath, "\\", "/"), "/")
	return filepath.Join(append([]string{corpusRoot}, parts...)...)
}
