package workflow

import (
	"sort"
	"time"

	"github.com/endlessblink/memstore/internal/model"
)

// RangeKind is one of the four analytics windows.
type RangeKind string

const (
	RangeDay     RangeKind = "day"
	RangeWeek    RangeKind = "week"
	RangeMonth   RangeKind = "month"
	RangeQuarter RangeKind = "quarter"
)

func windowDuration(r RangeKind) time.Duration {
	switch r {
	case RangeDay:
		return 24 * time.Hour
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeMonth:
		return 30 * 24 * time.Hour
	case RangeQuarter:
		return 90 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Analytics is the computed summary returned by get_task_status_analytics.
type Analytics struct {
	TotalsByStatus        map[string]int
	CompletionRate        float64
	AvgTimeInProgress     time.Duration
	BacklogAgeP50         time.Duration
	BacklogAgeP90         time.Duration
	StaleTodoCount        int
	LongRunningInProgress int
	BlockedNeedingAttention int
	ThroughputPerDay      float64
	WorkInProgressCount   int
	FocusScore            float64
}

const (
	staleTodoThreshold      = 14 * 24 * time.Hour
	longRunningThreshold    = 7 * 24 * time.Hour
	blockedAttentionThreshold = 3 * 24 * time.Hour
)

// Compute derives Analytics from a task snapshot and the time range's start
// boundary, using only file timestamps and each task's transition history
//. tasks should already be filtered to the project of interest.
func Compute(tasks []*model.Task, r RangeKind, now time.Time) Analytics {
	start := now.Add(-windowDuration(r))

	a := Analytics{TotalsByStatus: map[string]int{}}

	var backlogAges []time.Duration
	var inProgressDurations []time.Duration
	var doneInWindow int
	var nonLowActive, totalActive int

	for _, t := range tasks {
		a.TotalsByStatus[t.Status]++

		if t.Status != model.TaskStatusDone {
			backlogAges = append(backlogAges, now.Sub(t.Created))
			totalActive++
			if t.Priority != model.TaskPriorityLow {
				nonLowActive++
			}
		}

		if t.Status == model.TaskStatusInProgress {
			a.WorkInProgressCount++
			if now.Sub(lastTransitionTo(t, model.TaskStatusInProgress, t.Updated)) > longRunningThreshold {
				a.LongRunningInProgress++
			}
		}

		if t.Status == model.TaskStatusTodo && now.Sub(t.Updated) > staleTodoThreshold {
			a.StaleTodoCount++
		}

		if t.Status == model.TaskStatusBlocked && now.Sub(lastTransitionTo(t, model.TaskStatusBlocked, t.Updated)) > blockedAttentionThreshold {
			a.BlockedNeedingAttention++
		}

		if t.Status == model.TaskStatusDone && t.Completed != nil && t.Completed.After(start) {
			doneInWindow++
		}

		inProgressDurations = append(inProgressDurations, timeInStatus(t, model.TaskStatusInProgress)...)
	}

	total := len(tasks)
	if total > 0 {
		a.CompletionRate = float64(a.TotalsByStatus[model.TaskStatusDone]) / float64(total)
	}
	if totalActive > 0 {
		a.FocusScore = float64(nonLowActive) / float64(totalActive)
	}

	a.AvgTimeInProgress = average(inProgressDurations)
	sort.Slice(backlogAges, func(i, j int) bool { return backlogAges[i] < backlogAges[j] })
	a.BacklogAgeP50 = percentile(backlogAges, 0.5)
	a.BacklogAgeP90 = percentile(backlogAges, 0.9)

	days := windowDuration(r).Hours() / 24
	if days > 0 {
		a.ThroughputPerDay = float64(doneInWindow) / days
	}

	return a
}

// lastTransitionTo returns the timestamp of the most recent history entry
// transitioning into status, falling back to fallback when history is empty
// or carries no such entry.
func lastTransitionTo(t *model.Task, status string, fallback time.Time) time.Time {
	for i := len(t.History) - 1; i >= 0; i-- {
		if t.History[i].To == status {
			return t.History[i].At
		}
	}
	return fallback
}

// timeInStatus returns the duration of every completed stay in status found
// in the task's transition history (entering at one record, leaving at the next).
func timeInStatus(t *model.Task, status string) []time.Duration {
	var out []time.Duration
	for i, rec := range t.History {
		if rec.To != status {
			continue
		}
		if i+1 < len(t.History) {
			out = append(out, t.History[i+1].At.Sub(rec.At))
		}
	}
	return out
}

func average(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return sum / time.Duration(len(ds))
}

// percentile expects a pre-sorted ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
