// Package enhance derives metadata for a memory beyond what the caller
// supplied: category, tags, and complexity. RuleBased is deterministic and
// always available; Remote defers to a configurable local inference
// endpoint and is used only when one is configured.
package enhance

import (
	"context"
	"regexp"
	"strings"

	"github.com/endlessblink/memstore/internal/model"
)

// Suggestion is the metadata an Enhancer proposes for a memory. Callers
// decide whether and how to merge it into the stored record.
type Suggestion struct {
	Category   string
	Tags       []string
	Complexity int
	// Title and Summary are display metadata, capped at MaxTitleLen and
	// MaxSummaryLen respectively and stored as the memory's reserved
	// "title:" and "summary:" tags.
	Title   string
	Summary string
}

// MaxTitleLen and MaxSummaryLen bound the generated display metadata
// stored in a memory's "title:"/"summary:" tags.
const (
	MaxTitleLen   = 60
	MaxSummaryLen = 150
)

const (
	titleTagPrefix   = "title:"
	summaryTagPrefix = "summary:"
)

// HasDisplayTags reports whether tags already carries both a "title:" and
// a "summary:" entry, the condition batch enhancement skips on unless
// force_update is set.
func HasDisplayTags(tags []string) bool {
	var hasTitle, hasSummary bool
	for _, t := range tags {
		switch {
		case strings.HasPrefix(t, titleTagPrefix):
			hasTitle = true
		case strings.HasPrefix(t, summaryTagPrefix):
			hasSummary = true
		}
	}
	return hasTitle && hasSummary
}

// MergeDisplayTags replaces any existing "title:"/"summary:" tags in tags
// with freshly generated ones, truncated to the documented length caps.
// Callers check HasDisplayTags themselves to decide whether force_update
// is required before calling this.
func MergeDisplayTags(tags []string, title, summary string) []string {
	out := make([]string, 0, len(tags)+2)
	for _, t := range tags {
		if strings.HasPrefix(t, titleTagPrefix) || strings.HasPrefix(t, summaryTagPrefix) {
			continue
		}
		out = append(out, t)
	}
	if title != "" {
		out = append(out, titleTagPrefix+truncate(title, MaxTitleLen))
	}
	if summary != "" {
		out = append(out, summaryTagPrefix+truncate(summary, MaxSummaryLen))
	}
	return out
}

// truncate cuts s to at most n runes, replacing the tail with "..." when it
// does, so the result never exceeds n.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// deriveTitle extracts a display title from content: the first markdown
// heading if present, otherwise the first sentence, capitalized and capped
// at MaxTitleLen.
func deriveTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if h := strings.TrimLeft(line, "#"); h != line {
			return truncate(strings.TrimSpace(h), MaxTitleLen)
		}
		return truncate(capitalize(firstSentence(line)), MaxTitleLen)
	}
	return ""
}

// deriveSummary extracts a sentence-bounded abstract capped at
// MaxSummaryLen: as many leading sentences as fit, truncated on a sentence
// boundary where possible.
func deriveSummary(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ""
	}
	sentences := sentenceSplit.FindAllString(trimmed, -1)
	if len(sentences) == 0 {
		return truncate(trimmed, MaxSummaryLen)
	}
	var b strings.Builder
	for _, sent := range sentences {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		candidate := sent
		if b.Len() > 0 {
			candidate = " " + sent
		}
		if b.Len()+len(candidate) > MaxSummaryLen {
			break
		}
		b.WriteString(candidate)
	}
	if b.Len() == 0 {
		return truncate(sentences[0], MaxSummaryLen)
	}
	return b.String()
}

var sentenceSplit = regexp.MustCompile(`[^.!?]+[.!?]*`)

func firstSentence(s string) string {
	if m := sentenceSplit.FindString(s); m != "" {
		return strings.TrimSpace(m)
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

// Enhancer derives a Suggestion from a memory's content.
type Enhancer interface {
	Enhance(ctx context.Context, m *model.Memory) (Suggestion, error)
}

// categoryKeywords maps keyword patterns to the category they suggest.
// Checked in order; the first match wins.
var categoryKeywords = []struct {
	re       *regexp.Regexp
	category string
}{
	{regexp.MustCompile(`(?i)\b(func|package|import|class|interface|endpoint|api|bug|deploy)\b`), model.CategoryCode},
	{regexp.MustCompile(`(?i)\b(research|paper|study|hypothesis|experiment)\b`), model.CategoryResearch},
	{regexp.MustCompile(`(?i)\b(meeting|standup|1:1|said|asked|replied)\b`), model.CategoryConversations},
	{regexp.MustCompile(`(?i)\b(prefer|always|never|style guide|convention)\b`), model.CategoryPreferences},
	{regexp.MustCompile(`(?i)\b(deadline|project|client|budget|roadmap)\b`), model.CategoryWork},
}

var tagWords = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_-]{3,}`)

// stopWords are common words excluded from tag candidates; this is not an
// exhaustive list, only enough to keep obvious noise out.
var stopWords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "have": true,
	"been": true, "were": true, "will": true, "there": true, "their": true,
	"about": true, "which": true, "should": true, "would": true, "could": true,
}

// RuleBased derives category, tags, and complexity from content shape alone.
// It never makes a network call and is always available as a fallback.
type RuleBased struct{}

// NewRuleBased creates a RuleBased enhancer.
func NewRuleBased() *RuleBased { return &RuleBased{} }

func (r *RuleBased) Enhance(ctx context.Context, m *model.Memory) (Suggestion, error) {
	s := Suggestion{Category: m.Category}
	if s.Category == "" {
		s.Category = model.CategoryPersonal
		for _, ck := range categoryKeywords {
			if ck.re.MatchString(m.Content) {
				s.Category = ck.category
				break
			}
		}
	}

	s.Tags = append([]string{}, m.Tags...)
	existing := map[string]bool{}
	for _, t := range s.Tags {
		existing[strings.ToLower(t)] = true
	}
	counts := map[string]int{}
	for _, w := range tagWords.FindAllString(m.Content, -1) {
		lw := strings.ToLower(w)
		if stopWords[lw] || existing[lw] {
			continue
		}
		counts[lw]++
	}
	for w, n := range counts {
		if n >= 2 && len(s.Tags) < 8 {
			s.Tags = append(s.Tags, w)
		}
	}

	switch {
	case strings.Contains(m.Content, "```") && len(m.Content) > 500:
		s.Complexity = 4
	case strings.Contains(m.Content, "```"):
		s.Complexity = 3
	case len(m.Content) > 300:
		s.Complexity = 2
	default:
		s.Complexity = 1
	}

	s.Title = deriveTitle(m.Content)
	s.Summary = deriveSummary(m.Content)

	return s, nil
}
