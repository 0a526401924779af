// Package linker implements the Auto-Linker: it scores candidate
// memories against a task and maintains the bidirectional connection lists
// on both sides.
package linker

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/model"
	"github.com/endlessblink/memstore/internal/storeerr"
	"github.com/endlessblink/memstore/internal/task"
)

// Weights are the default relevance weights for scoring a task/memory pair.
const (
	WeightTitle    = 0.45
	WeightTags     = 0.25
	WeightCategory = 0.10
	WeightProject  = 0.15
	WeightRecency  = 0.05
)

// Threshold is the minimum rel() score for an automatic link.
const Threshold = 0.2

// TopK caps the number of automatic links created per task.
const TopK = 5

var tokenRe = regexp.MustCompile(`[A-Za-z0-9_]+`)

func tokens(s string) []string {
	matches := tokenRe.FindAllString(strings.ToLower(s), -1)
	return matches
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, t := range tokens(s) {
		set[t] = true
	}
	return set
}

// jaccard is |A∩B| / |A∪B|, 0 when both sets are empty.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	var intersection, union int
	seen := map[string]bool{}
	for t := range a {
		seen[t] = true
		if b[t] {
			intersection++
		}
	}
	for t := range b {
		seen[t] = true
	}
	union = len(seen)
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func overlap(a, b []string) float64 {
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	if max == 0 {
		return 0
	}
	bs := map[string]bool{}
	for _, t := range b {
		bs[strings.ToLower(t)] = true
	}
	var count int
	for _, t := range a {
		if bs[strings.ToLower(t)] {
			count++
		}
	}
	return float64(count) / float64(max)
}

// recencyBonus maps memory age onto the same four age bands used for
// ranking (day, week, month, older), scored 1.0, 0.6, 0.3 and 0.1.
func recencyBonus(age time.Duration) float64 {
	switch {
	case age <= 24*time.Hour:
		return 1.0
	case age <= 7*24*time.Hour:
		return 0.6
	case age <= 30*24*time.Hour:
		return 0.3
	default:
		return 0.1
	}
}

// Score is the relevance of a candidate memory against a task, plus the
// tokens that drove the title/content overlap.
type Score struct {
	Memory       *model.Memory
	Relevance    float64
	MatchedTerms []string
}

// score computes rel(T, M) and the terms shared between task text and
// memory content, which become matched_terms on the resulting link.
func score(t *model.Task, m *model.Memory, now time.Time) Score {
	taskTokens := tokenSet(t.Title + " " + t.Description)
	memTokens := tokenSet(m.Content)

	j := jaccard(taskTokens, memTokens)
	g := overlap(t.Tags, m.Tags)
	var c, p float64
	if t.Category != "" && t.Category == m.Category {
		c = 1
	}
	if t.Project != "" && t.Project == m.Project {
		p = 1
	}
	r := recencyBonus(now.Sub(m.Timestamp))

	rel := WeightTitle*j + WeightTags*g + WeightCategory*c + WeightProject*p + WeightRecency*r
	if rel > 1 {
		rel = 1
	}

	var matched []string
	for tok := range taskTokens {
		if memTokens[tok] {
			matched = append(matched, tok)
		}
	}
	sort.Strings(matched)

	return Score{Memory: m, Relevance: rel, MatchedTerms: matched}
}

// Linker composes the memory and task stores to maintain bidirectional
// connections.
type Linker struct {
	memories *memory.Store
	tasks    *task.Store
	now      func() time.Time
}

// New creates a Linker over the given stores.
func New(memories *memory.Store, tasks *task.Store) *Linker {
	return &Linker{memories: memories, tasks: tasks, now: time.Now}
}

// AutoLink scores every memory in the task's project (falling back to all
// projects when the task has none) against the task, links candidates at or
// above Threshold up to TopK, and writes both halves of each new connection.
// Existing manual connections are never touched or removed.
func (l *Linker) AutoLink(taskID string) ([]Score, error) {
	t, err := l.tasks.Get(taskID)
	if err != nil {
		return nil, err
	}

	candidates, err := l.memories.List(t.Project, 0)
	if err != nil {
		return nil, err
	}

	now := l.now()
	var scored []Score
	for _, m := range candidates {
		if t.HasMemoryConnection(m.ID) {
			continue
		}
		sc := score(t, m, now)
		if sc.Relevance >= Threshold {
			scored = append(scored, sc)
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Relevance != scored[j].Relevance {
			return scored[i].Relevance > scored[j].Relevance
		}
		return scored[i].Memory.Timestamp.After(scored[j].Memory.Timestamp)
	})
	if len(scored) > TopK {
		scored = scored[:TopK]
	}

	for _, sc := range scored {
		if err := l.Link(t.ID, sc.Memory.ID, "auto", sc.Relevance, sc.MatchedTerms); err != nil {
			return nil, err
		}
	}
	return scored, nil
}

// Link writes the task-side connection first, then the memory-side mirror.
// If the second write fails, the first is rolled back so the invariant that
// every link has both halves is never violated.
func (l *Linker) Link(taskID, memoryID, connType string, relevance float64, matchedTerms []string) error {
	updatedTask, err := l.tasks.Update(taskID, func(t *model.Task) {
		if t.HasMemoryConnection(memoryID) {
			return
		}
		t.MemoryConnections = append(t.MemoryConnections, model.MemoryConnection{
			MemoryID:       memoryID,
			ConnectionType: connType,
			Relevance:      relevance,
			MatchedTerms:   matchedTerms,
		})
	})
	if err != nil {
		return err
	}

	_, err = l.memories.Update(memoryID, func(m *model.Memory) {
		for _, c := range m.Connections {
			if c.TaskID == taskID {
				return
			}
		}
		m.Connections = append(m.Connections, model.MemoryTaskLink{
			TaskID:         taskID,
			TaskSerial:     updatedTask.Serial,
			ConnectionType: connType,
		})
	})
	if err != nil {
		// Roll back the task-side write so the link invariant holds.
		if _, rollbackErr := l.tasks.Update(taskID, func(t *model.Task) {
			var kept []model.MemoryConnection
			for _, c := range t.MemoryConnections {
				if c.MemoryID != memoryID {
					kept = append(kept, c)
				}
			}
			t.MemoryConnections = kept
		}); rollbackErr != nil {
			return storeerr.Wrap(storeerr.Internal, rollbackErr,
				"linking %s to %s: memory-side write failed (%v) and task-side rollback also failed: %v",
				taskID, memoryID, err, rollbackErr)
		}
		return storeerr.Wrap(storeerr.Internal, err, "linking %s to %s: %v", taskID, memoryID, err)
	}

	return nil
}

// Unlink removes both halves of a connection between a task and a memory,
// used by orphan cleanup on delete.
func (l *Linker) Unlink(taskID, memoryID string) error {
	if _, err := l.tasks.Update(taskID, func(t *model.Task) {
		var kept []model.MemoryConnection
		for _, c := range t.MemoryConnections {
			if c.MemoryID != memoryID {
				kept = append(kept, c)
			}
		}
		t.MemoryConnections = kept
	}); err != nil && storeerr.KindOf(err) != storeerr.NotFound {
		return err
	}

	if _, err := l.memories.Update(memoryID, func(m *model.Memory) {
		var kept []model.MemoryTaskLink
		for _, c := range m.Connections {
			if c.TaskID != taskID {
				kept = append(kept, c)
			}
		}
		m.Connections = kept
	}); err != nil && storeerr.KindOf(err) != storeerr.NotFound {
		return err
	}
	return nil
}
