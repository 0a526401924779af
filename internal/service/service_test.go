package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endlessblink/memstore/internal/linker"
	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/model"
	"github.com/endlessblink/memstore/internal/store"
	"github.com/endlessblink/memstore/internal/task"
)

func newTestService(t *testing.T) (*Service, *memory.Store, *task.Store) {
	t.Helper()
	root := t.TempDir()
	engine := store.NewEngine(root)
	mem := memory.New(engine, nil)
	tk := task.New(engine, nil)
	l := linker.New(mem, tk)
	return New(mem, tk, l, nil), mem, tk
}

func TestDeleteMemoryUnlinksFromTasks(t *testing.T) {
	svc, mem, tk := newTestService(t)

	m, err := mem.Add(&model.Memory{Content: "retry storm fix for checkout", Project: "p", Tags: []string{"a"}})
	require.NoError(t, err)
	tsk, err := tk.Add(&model.Task{Title: "fix retry storm", Project: "p", Tags: []string{"a"}})
	require.NoError(t, err)

	require.NoError(t, svc.Linker.Link(tsk.ID, m.ID, "manual", 1, nil))

	require.NoError(t, svc.DeleteMemory(m.ID))

	got, err := tk.Get(tsk.ID)
	require.NoError(t, err)
	assert.False(t, got.HasMemoryConnection(m.ID))
}

func TestDeleteTaskUnlinksFromMemories(t *testing.T) {
	svc, mem, tk := newTestService(t)

	m, err := mem.Add(&model.Memory{Content: "retry storm fix for checkout", Project: "p"})
	require.NoError(t, err)
	tsk, err := tk.Add(&model.Task{Title: "fix retry storm", Project: "p"})
	require.NoError(t, err)

	require.NoError(t, svc.Linker.Link(tsk.ID, m.ID, "manual", 1, nil))

	require.NoError(t, svc.DeleteTask(tsk.ID))

	got, err := mem.Get(m.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Connections)
}

func TestSmartStatusUpdateAppliesParsedIntent(t *testing.T) {
	svc, _, tk := newTestService(t)

	tsk, err := tk.Add(&model.Task{Title: "write docs", Project: "p"})
	require.NoError(t, err)

	updated, intent, result, err := svc.SmartStatusUpdate(tsk.ID, "started working on this", false, false)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, intent.SuggestedStatus)
	assert.True(t, result.Valid)
	assert.Equal(t, model.TaskStatusInProgress, updated.Status)
}

func TestSmartStatusUpdateBlocksOnUnresolvedSubtasks(t *testing.T) {
	svc, _, tk := newTestService(t)

	parent, err := tk.Add(&model.Task{Title: "ship feature", Project: "p", Status: model.TaskStatusInProgress})
	require.NoError(t, err)
	_, err = tk.Add(&model.Task{Title: "subtask", Project: "p", ParentTask: parent.ID})
	require.NoError(t, err)

	_, _, result, err := svc.SmartStatusUpdate(parent.ID, "done with this", false, false)
	require.Error(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.BlockingIssues)
}

func TestSmartStatusUpdateToDoneEmitsCompletionMemory(t *testing.T) {
	svc, mem, tk := newTestService(t)

	tsk, err := tk.Add(&model.Task{Title: "ship the migration", Project: "p", Status: model.TaskStatusInProgress})
	require.NoError(t, err)

	updated, _, result, err := svc.SmartStatusUpdate(tsk.ID, "finished the migration", false, false)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, model.TaskStatusDone, updated.Status)
	require.NotNil(t, updated.Completed)
	require.Len(t, updated.MemoryConnections, 1)

	linked, err := mem.Get(updated.MemoryConnections[0].MemoryID)
	require.NoError(t, err)
	assert.Contains(t, linked.Content, tsk.Serial)
	require.Len(t, linked.Connections, 1)
	assert.Equal(t, tsk.ID, linked.Connections[0].TaskID)
}

func TestGetTaskContextIncludesSubtasksAndMemories(t *testing.T) {
	svc, mem, tk := newTestService(t)

	parent, err := tk.Add(&model.Task{Title: "parent", Project: "p"})
	require.NoError(t, err)
	child, err := tk.Add(&model.Task{Title: "child", Project: "p", ParentTask: parent.ID})
	require.NoError(t, err)
	m, err := mem.Add(&model.Memory{Content: "context memory", Project: "p"})
	require.NoError(t, err)
	require.NoError(t, svc.Linker.Link(parent.ID, m.ID, "manual", 1, nil))

	ctx, err := svc.GetTaskContext(parent.ID)
	require.NoError(t, err)
	require.Len(t, ctx.Subtasks, 1)
	assert.Equal(t, child.ID, ctx.Subtasks[0].ID)
	require.Len(t, ctx.Memories, 1)
	assert.Equal(t, m.ID, ctx.Memories[0].ID)
}

func TestGenerateDropoffListsInProgressAndBlocked(t *testing.T) {
	svc, _, tk := newTestService(t)

	_, err := tk.Add(&model.Task{Title: "in flight", Project: "p", Status: model.TaskStatusInProgress})
	require.NoError(t, err)
	_, err = tk.Add(&model.Task{Title: "stuck", Project: "p", Status: model.TaskStatusBlocked})
	require.NoError(t, err)

	out, err := svc.GenerateDropoff("p")
	require.NoError(t, err)
	assert.Contains(t, out, "in flight")
	assert.Contains(t, out, "stuck")
}
