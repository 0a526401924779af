// Package pathguard validates that every derived storage path stays within
// its declared root, and sanitizes untrusted path components such as
// project names.
package pathguard

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/endlessblink/memstore/internal/storeerr"
)

// MaxProjectNameLength caps a sanitized project name.
const MaxProjectNameLength = 50

var disallowedRunes = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SanitizeProject strips any character outside [A-Za-z0-9_-], caps the
// result at MaxProjectNameLength, and rejects an empty result.
func SanitizeProject(name string) (string, error) {
	cleaned := disallowedRunes.ReplaceAllString(name, "")
	if len(cleaned) > MaxProjectNameLength {
		cleaned = cleaned[:MaxProjectNameLength]
	}
	if cleaned == "" {
		return "", storeerr.New(storeerr.InvalidInput, "project name %q has no valid characters", name)
	}
	return cleaned, nil
}

// Resolve builds root/parts... and confirms the normalized absolute result
// has the normalized absolute root as a strict prefix. parts are taken as
// already-sanitized path segments (e.g. a project name, a filename); Resolve
// itself only guards against traversal, it does not sanitize characters.
func Resolve(root string, parts ...string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", storeerr.Wrap(storeerr.Forbidden, err, "resolving root: %v", err)
	}
	absRoot = filepath.Clean(absRoot)

	joined := append([]string{absRoot}, parts...)
	candidate := filepath.Join(joined...)
	candidate = filepath.Clean(candidate)

	if !isWithin(absRoot, candidate) {
		return "", storeerr.New(storeerr.Forbidden, "path %q escapes root %q", candidate, absRoot)
	}
	return candidate, nil
}

// isWithin reports whether candidate is root itself, or a strict descendant of it.
func isWithin(root, candidate string) bool {
	if candidate == root {
		return true
	}
	sep := string(filepath.Separator)
	prefix := root
	if !strings.HasSuffix(prefix, sep) {
		prefix += sep
	}
	return strings.HasPrefix(candidate, prefix)
}

// ResolveProject sanitizes name and resolves root/name in one step — the
// common case for every store-facing operation that takes a project tag.
// A name with a ".." path element (e.g. "../etc") is rejected as
// InvalidInput before sanitizing.
func ResolveProject(root, name string) (string, error) {
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return "", storeerr.New(storeerr.InvalidInput, "project name %q contains a parent-directory reference", name)
		}
	}
	safe, err := SanitizeProject(name)
	if err != nil {
		return "", err
	}
	return Resolve(root, safe)
}
