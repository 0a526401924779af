// Package safeguard implements cross-cutting write protections: the
// mock-data filter, startup integrity checks, the one-shot JSON-to-markdown
// migration, and opportunistic backup snapshots. Both the tool surface and
// the HTTP surface route writes through these checks so neither can bypass
// them.
package safeguard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/endlessblink/memstore/internal/storeerr"
)

// mockDataPatterns are the heuristic, intentionally strict patterns that
// flag placeholder content.
var mockDataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)mock-\d+`),
	regexp.MustCompile(`(?i)test.*data`),
	regexp.MustCompile(`(?i)sample.*content`),
	regexp.MustCompile(`(?i)lorem ipsum`),
	regexp.MustCompile(`(?i)fake.*data`),
	regexp.MustCompile(`(?i)placeholder`),
}

// MinContentLength is the minimum trimmed content length accepted by add.
const MinContentLength = 10

// CheckMockData rejects content whose project, content, or any tag matches a
// mock-data pattern, regardless of casing or surrounding whitespace. It is
// applied identically by the tool surface and the HTTP surface.
func CheckMockData(content, project string, tags []string) error {
	fields := append([]string{content, project}, tags...)
	for _, f := range fields {
		for _, pat := range mockDataPatterns {
			if pat.MatchString(f) {
				return storeerr.New(storeerr.InvalidInput,
					"content rejected: matches mock-data pattern %q", pat.String()).
					WithSuggestions("remove placeholder or test-fixture wording before saving")
			}
		}
	}
	return nil
}

// CheckContentLength enforces the minimum trimmed content length.
func CheckContentLength(content string) error {
	if len(strings.TrimSpace(content)) < MinContentLength {
		return storeerr.New(storeerr.InvalidInput,
			"content must be at least %d characters after trimming whitespace", MinContentLength)
	}
	return nil
}

// Validate runs both the length and mock-data checks, the combination every
// add operation performs.
func Validate(content, project string, tags []string) error {
	if err := CheckContentLength(content); err != nil {
		return err
	}
	if err := CheckMockData(content, project, tags); err != nil {
		return err
	}
	return nil
}

// ValidationSummary renders a short diagnostic for batch operations that
// collect per-item errors rather than failing outright.
func ValidationSummary(index int, err error) string {
	return fmt.Sprintf("item %d: %v", index, err)
}
