package workflow

import (
	"regexp"
	"strings"

	"github.com/endlessblink/memstore/internal/model"
)

// phrasePattern pairs a regexp with how specific a match is; more specific
// phrases contribute more to confidence than generic single-word hits.
type phrasePattern struct {
	re         *regexp.Regexp
	specificity float64
}

// statusOrder fixes the tie-break priority used when a phrase scores equally
// well against two statuses (e.g. a single ambiguous word matching two
// categories at the same specificity): earlier entries win. Ranging over
// statusPatterns directly would iterate in Go's randomized map order and
// make ties non-deterministic across calls.
var statusOrder = []string{
	model.TaskStatusDone,
	model.TaskStatusBlocked,
	model.TaskStatusInProgress,
	model.TaskStatusTodo,
}

var statusPatterns = map[string][]phrasePattern{
	model.TaskStatusDone: {
		{regexp.MustCompile(`(?i)\bdone with\b`), 1.0},
		{regexp.MustCompile(`(?i)\bwrapped up\b`), 1.0},
		{regexp.MustCompile(`(?i)\bshipped\b`), 0.9},
		{regexp.MustCompile(`(?i)\bfinish(ed)?\b`), 0.8},
		{regexp.MustCompile(`(?i)\bcomplete(d)?\b`), 0.8},
	},
	model.TaskStatusInProgress: {
		{regexp.MustCompile(`(?i)\bworking on\b`), 1.0},
		{regexp.MustCompile(`(?i)\bin progress\b`), 1.0},
		{regexp.MustCompile(`(?i)\bstarted\b`), 0.8},
		{regexp.MustCompile(`(?i)\bbegan\b`), 0.7},
	},
	model.TaskStatusBlocked: {
		{regexp.MustCompile(`(?i)\bwaiting on\b`), 1.0},
		{regexp.MustCompile(`(?i)\bcan'?t proceed\b`), 1.0},
		{regexp.MustCompile(`(?i)\bblocked\b`), 0.9},
		{regexp.MustCompile(`(?i)\bstuck\b`), 0.8},
	},
	model.TaskStatusTodo: {
		{regexp.MustCompile(`(?i)\bback to todo\b`), 1.0},
		{regexp.MustCompile(`(?i)\brevisit later\b`), 0.9},
		{regexp.MustCompile(`(?i)\bpause\b`), 0.7},
	},
}

// Intent is the parsed result of a free-form status update request.
type Intent struct {
	SuggestedStatus string
	Confidence      float64
	MatchedPhrase   string
	Reasoning       string
}

// ParseIntent detects the status a free-form input is proposing, scoring
// confidence by the number and specificity of matched phrases.
// Confidences below 0.4 are returned but callers should not apply them as
// an automatic transition.
func ParseIntent(input string) Intent {
	type candidate struct {
		status  string
		score   float64
		count   int
		phrase  string
	}
	best := candidate{}

	for _, status := range statusOrder {
		patterns := statusPatterns[status]
		var score float64
		var count int
		var phrase string
		for _, p := range patterns {
			if loc := p.re.FindStringIndex(input); loc != nil {
				score += p.specificity
				count++
				if phrase == "" {
					phrase = strings.TrimSpace(input[loc[0]:loc[1]])
				}
			}
		}
		if count == 0 {
			continue
		}
		if score > best.score {
			best = candidate{status: status, score: score, count: count, phrase: phrase}
		}
	}

	if best.count == 0 {
		return Intent{
			SuggestedStatus: "",
			Confidence:      0,
			Reasoning:       "no recognizable status phrase found",
		}
	}

	confidence := best.score / float64(best.count)
	if best.count > 1 {
		confidence = min1(confidence + 0.1*float64(best.count-1))
	}

	return Intent{
		SuggestedStatus: best.status,
		Confidence:      confidence,
		MatchedPhrase:   best.phrase,
		Reasoning:       "matched " + best.status + " phrasing: \"" + best.phrase + "\"",
	}
}

func min1(f float64) float64 {
	if f > 1 {
		return 1
	}
	return f
}
