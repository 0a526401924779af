package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/endlessblink/memstore/internal/model"
)

func TestComputeTotalsAndCompletionRate(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	completed := now.Add(-2 * 24 * time.Hour)

	tasks := []*model.Task{
		{Status: model.TaskStatusDone, Created: now.Add(-10 * 24 * time.Hour), Updated: completed, Completed: &completed, Priority: model.TaskPriorityMedium},
		{Status: model.TaskStatusTodo, Created: now.Add(-1 * time.Hour), Updated: now.Add(-1 * time.Hour), Priority: model.TaskPriorityLow},
	}

	a := Compute(tasks, RangeWeek, now)
	assert.Equal(t, 1, a.TotalsByStatus[model.TaskStatusDone])
	assert.Equal(t, 1, a.TotalsByStatus[model.TaskStatusTodo])
	assert.Equal(t, 0.5, a.CompletionRate)
}

func TestComputeStaleTodo(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	tasks := []*model.Task{
		{Status: model.TaskStatusTodo, Created: now.Add(-20 * 24 * time.Hour), Updated: now.Add(-20 * 24 * time.Hour)},
	}
	a := Compute(tasks, RangeMonth, now)
	assert.Equal(t, 1, a.StaleTodoCount)
}

func TestComputeLongRunningInProgress(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	tasks := []*model.Task{
		{Status: model.TaskStatusInProgress, Created: now.Add(-10 * 24 * time.Hour), Updated: now.Add(-8 * 24 * time.Hour)},
	}
	a := Compute(tasks, RangeMonth, now)
	assert.Equal(t, 1, a.LongRunningInProgress)
	assert.Equal(t, 1, a.WorkInProgressCount)
}

func TestComputeFocusScore(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	tasks := []*model.Task{
		{Status: model.TaskStatusTodo, Created: now, Updated: now, Priority: model.TaskPriorityHigh},
		{Status: model.TaskStatusTodo, Created: now, Updated: now, Priority: model.TaskPriorityLow},
	}
	a := Compute(tasks, RangeDay, now)
	assert.Equal(t, 0.5, a.FocusScore)
}
