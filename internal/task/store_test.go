package task

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endlessblink/memstore/internal/model"
	"github.com/endlessblink/memstore/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	engine := store.NewEngine(t.TempDir())
	return New(engine, nil)
}

func TestAddAssignsSerialAndShard(t *testing.T) {
	s := newTestStore(t)

	tk, err := s.Add(&model.Task{Title: "Fix the retry loop", Project: "api"})
	require.NoError(t, err)
	assert.NotEmpty(t, tk.ID)
	assert.Equal(t, "TASK-001", tk.Serial)
	assert.Equal(t, model.TaskStatusTodo, tk.Status)
	assert.Contains(t, tk.Path, string(os.PathSeparator)+"active"+string(os.PathSeparator))

	tk2, err := s.Add(&model.Task{Title: "Write the changelog", Project: "api"})
	require.NoError(t, err)
	assert.Equal(t, "TASK-002", tk2.Serial)
}

func TestAddRejectsMissingTitle(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add(&model.Task{Project: "api"})
	require.Error(t, err)
}

func TestGetAfterAdd(t *testing.T) {
	s := newTestStore(t)
	tk, err := s.Add(&model.Task{Title: "Audit the logging pipeline", Project: "api"})
	require.NoError(t, err)

	got, err := s.Get(tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tk.Title, got.Title)
}

func TestUpdateStatusMovesShard(t *testing.T) {
	s := newTestStore(t)
	tk, err := s.Add(&model.Task{Title: "Ship the release notes", Project: "api"})
	require.NoError(t, err)
	oldPath := tk.Path

	done, err := s.Update(tk.ID, func(task *model.Task) {
		task.Status = model.TaskStatusDone
	})
	require.NoError(t, err)
	assert.NotEqual(t, oldPath, done.Path)
	assert.Contains(t, done.Path, string(os.PathSeparator)+"completed"+string(os.PathSeparator))
	assert.NotNil(t, done.Completed)

	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))

	got, err := s.Get(tk.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, got.Status)
}

func TestUpdatePreservesIDSerialCreated(t *testing.T) {
	s := newTestStore(t)
	s.now = fixedClock(t, 0)
	tk, err := s.Add(&model.Task{Title: "Original title for this task", Project: "api"})
	require.NoError(t, err)

	s.now = fixedClock(t, 5)
	updated, err := s.Update(tk.ID, func(task *model.Task) {
		task.Title = "Revised title for this task"
	})
	require.NoError(t, err)
	assert.Equal(t, tk.ID, updated.ID)
	assert.Equal(t, tk.Serial, updated.Serial)
	assert.Equal(t, tk.Created.Unix(), updated.Created.Unix())
	assert.Equal(t, "Revised title for this task", updated.Title)
}

func TestParentChildLinking(t *testing.T) {
	s := newTestStore(t)
	parent, err := s.Add(&model.Task{Title: "Parent task umbrella", Project: "api"})
	require.NoError(t, err)

	child, err := s.Add(&model.Task{Title: "Child task piece", Project: "api", ParentTask: parent.ID})
	require.NoError(t, err)

	gotParent, err := s.Get(parent.ID)
	require.NoError(t, err)
	assert.Contains(t, gotParent.Subtasks, child.ID)
}

func TestDeleteCascadesToSubtasks(t *testing.T) {
	s := newTestStore(t)
	parent, err := s.Add(&model.Task{Title: "Parent task to remove", Project: "api"})
	require.NoError(t, err)
	child, err := s.Add(&model.Task{Title: "Child of removed parent", Project: "api", ParentTask: parent.ID})
	require.NoError(t, err)

	require.NoError(t, s.Delete(parent.ID))

	_, err = s.Get(parent.ID)
	require.Error(t, err)
	_, err = s.Get(child.ID)
	require.Error(t, err)
}

func TestDeleteUnlinksFromParent(t *testing.T) {
	s := newTestStore(t)
	parent, err := s.Add(&model.Task{Title: "Parent task stays around", Project: "api"})
	require.NoError(t, err)
	child, err := s.Add(&model.Task{Title: "Child task removed alone", Project: "api", ParentTask: parent.ID})
	require.NoError(t, err)

	require.NoError(t, s.Delete(child.ID))

	gotParent, err := s.Get(parent.ID)
	require.NoError(t, err)
	assert.NotContains(t, gotParent.Subtasks, child.ID)
}

func TestListFiltersByStatus(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add(&model.Task{Title: "Todo task number one", Project: "api"})
	require.NoError(t, err)
	doneTask, err := s.Add(&model.Task{Title: "Done task number two", Project: "api"})
	require.NoError(t, err)
	_, err = s.Update(doneTask.ID, func(task *model.Task) { task.Status = model.TaskStatusDone })
	require.NoError(t, err)

	todoOnly, err := s.List("api", model.TaskStatusTodo, 0)
	require.NoError(t, err)
	assert.Len(t, todoOnly, 1)

	doneOnly, err := s.List("api", model.TaskStatusDone, 0)
	require.NoError(t, err)
	assert.Len(t, doneOnly, 1)
}

func TestSearchMatchesTitleAndTags(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add(&model.Task{Title: "Investigate flaky retries", Project: "api", Tags: []string{"flaky"}})
	require.NoError(t, err)

	byTitle, err := s.Search("flaky retries", "")
	require.NoError(t, err)
	assert.Len(t, byTitle, 1)

	byTag, err := s.Search("flaky", "")
	require.NoError(t, err)
	assert.Len(t, byTag, 1)
}
