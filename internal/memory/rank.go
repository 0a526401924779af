package memory

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/endlessblink/memstore/internal/model"
)

// Rank scores a memory against a query for external callers that want
// relevance ordering. It is deterministic given its inputs and is
// not used by Store.Search itself, which only filters.
func Rank(m *model.Memory, query string, now time.Time) float64 {
	content := contentScore(m, query)
	decay := timeDecay(now.Sub(m.Timestamp))
	score := math.Round(content*decay*10) / 10
	return score
}

var (
	codeFenceRe = regexp.MustCompile("```")
	filePathRe  = regexp.MustCompile(`[\w./-]+\.(go|js|ts|py|md|json|yaml|yml|txt)\b`)
	toolNameRe  = regexp.MustCompile(`(?i)\b(curl|grep|git|npm|docker|kubectl|go|python)\b`)
	errorMarkRe = regexp.MustCompile(`(?i)\b(error|exception|panic|traceback|stack trace|fail(ed|ure)?)\b`)
	errorQueryRe = regexp.MustCompile(`(?i)\b(error|bug|debug|crash|fail)\b`)
)

func contentScore(m *model.Memory, query string) float64 {
	lowerContent := strings.ToLower(m.Content)
	lowerQuery := strings.ToLower(query)

	var score float64
	if lowerQuery != "" && strings.Contains(lowerContent, lowerQuery) {
		score += 10
	}

	for _, word := range strings.Fields(lowerQuery) {
		if word != "" && strings.Contains(lowerContent, word) {
			score += 2
		}
	}

	if codeFenceRe.MatchString(m.Content) {
		score += 3
	}
	if filePathRe.MatchString(m.Content) {
		score += 2
	}
	if toolNameRe.MatchString(m.Content) {
		score += 2
	}
	if errorQueryRe.MatchString(lowerQuery) && errorMarkRe.MatchString(m.Content) {
		score += 4
	}

	switch m.Priority {
	case model.PriorityHigh:
		score += 3
	case model.PriorityMedium:
		score += 1
	}

	if strings.EqualFold(m.Category, query) {
		score += 2
	}

	for _, tag := range m.Tags {
		if strings.Contains(lowerQuery, strings.ToLower(tag)) {
			score += 1
		}
	}

	return score
}

// timeDecay maps record age to one of four discrete bands.
func timeDecay(age time.Duration) float64 {
	switch {
	case age <= 24*time.Hour:
		return 5
	case age <= 7*24*time.Hour:
		return 3
	case age <= 30*24*time.Hour:
		return 2
	default:
		return 1
	}
}
