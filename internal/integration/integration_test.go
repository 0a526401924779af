// Package integration holds black-box tests for the end-to-end scenarios
// the record stores, linker, workflow engine, and change bus must satisfy
// together — each test wires real packages against a temp directory store
// root rather than mocking any of them.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endlessblink/memstore/internal/changebus"
	"github.com/endlessblink/memstore/internal/linker"
	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/model"
	"github.com/endlessblink/memstore/internal/pathguard"
	"github.com/endlessblink/memstore/internal/safeguard"
	"github.com/endlessblink/memstore/internal/service"
	"github.com/endlessblink/memstore/internal/store"
	"github.com/endlessblink/memstore/internal/storeerr"
	"github.com/endlessblink/memstore/internal/task"
)

// newStack wires a full store root plus every subsystem that sits on top of
// it, the composition cmd/memstored performs at startup.
func newStack(t *testing.T) (root string, mem *memory.Store, tk *task.Store, l *linker.Linker, svc *service.Service) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, safeguard.EnsureLayout(root))

	engine := store.NewEngine(root)
	mem = memory.New(engine, nil)
	tk = task.New(engine, nil)
	l = linker.New(mem, tk)
	svc = service.New(mem, tk, l, nil)
	return root, mem, tk, l, svc
}

// Scenario 1: create-and-link. A memory about rate limiting and a task
// about handling it should auto-link above the relevance threshold, and
// both halves of the connection must exist on disk.
func TestCreateAndLink(t *testing.T) {
	_, mem, tk, l, _ := newStack(t)

	m, err := mem.Add(&model.Memory{
		Content: "Use exponential backoff on 429",
		Project: "api",
		Tags:    []string{"rate-limit"},
	})
	require.NoError(t, err)

	tsk, err := tk.Add(&model.Task{
		Title:   "Handle rate limiting in client",
		Project: "api",
		Tags:    []string{"rate-limit"},
	})
	require.NoError(t, err)

	_, err = l.AutoLink(tsk.ID)
	require.NoError(t, err)

	linked, err := tk.Get(tsk.ID)
	require.NoError(t, err)
	require.Len(t, linked.MemoryConnections, 1)
	assert.Equal(t, m.ID, linked.MemoryConnections[0].MemoryID)
	assert.GreaterOrEqual(t, linked.MemoryConnections[0].Relevance, linker.Threshold)

	linkedMem, err := mem.Get(m.ID)
	require.NoError(t, err)
	require.Len(t, linkedMem.Connections, 1)
	assert.Equal(t, tsk.ID, linkedMem.Connections[0].TaskID)

	assert.FileExists(t, m.Path, "memory file should exist")
	assert.FileExists(t, linked.Path)
}

// Scenario 2: a natural-language status update moves the task to done,
// writes a completion memory referencing it, and relocates the task file
// to the completed shard.
func TestSmartStatusUpdateMovesToCompletedShard(t *testing.T) {
	_, mem, tk, _, svc := newStack(t)

	tsk, err := tk.Add(&model.Task{
		Title:   "migrate auth tokens",
		Project: "api",
		Status:  model.TaskStatusInProgress,
	})
	require.NoError(t, err)

	updated, intent, result, err := svc.SmartStatusUpdate(tsk.ID, "I finished the auth migration", false, false)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusDone, intent.SuggestedStatus)
	assert.True(t, result.Valid)
	assert.Equal(t, model.TaskStatusDone, updated.Status)
	assert.Contains(t, updated.Path, string(filepath.Separator)+"completed"+string(filepath.Separator))
	assert.FileExists(t, updated.Path)

	require.Len(t, updated.MemoryConnections, 1)
	completionMemory, err := mem.Get(updated.MemoryConnections[0].MemoryID)
	require.NoError(t, err)
	assert.Contains(t, completionMemory.Content, tsk.Serial)
}

// Scenario 3: dedup preview reports candidates without touching disk;
// applying it for real removes all but one copy.
func TestDeduplicatePreviewThenApply(t *testing.T) {
	root, mem, _, _, _ := newStack(t)

	sharedID := "11111111-1111-1111-1111-111111111111"
	dir := filepath.Join(root, "memories", "default")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	writeDup := func(name string, mtime time.Time) {
		content := "---\nid: " + sharedID + "\ntimestamp: 2024-01-01T00:00:00Z\nproject: default\n---\nduplicate content body\n"
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}

	base := time.Now().Add(-time.Hour)
	writeDup("a.md", base)
	writeDup("b.md", base.Add(time.Minute))
	writeDup("c.md", base.Add(2*time.Minute))

	preview, err := mem.Deduplicate(true)
	require.NoError(t, err)
	assert.Len(t, preview, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "preview must not modify the on-disk file count")

	removed, err := mem.Deduplicate(false)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "exactly one copy should survive deduplication")
}

// Scenario 4: a path-traversal project name is rejected before any
// filesystem access outside the root occurs.
func TestListMemoriesRejectsPathTraversal(t *testing.T) {
	root, mem, _, _, _ := newStack(t)

	_, err := mem.List("../etc", 0)
	require.Error(t, err)
	assert.Equal(t, storeerr.InvalidInput, storeerr.KindOf(err))

	_, err = pathguard.ResolveProject(filepath.Join(root, "memories"), "../etc")
	require.Error(t, err)
}

// Scenario 5: deleting a memory referenced by two tasks removes the
// corresponding entries from both tasks' memory_connections without
// touching other connections.
func TestBidirectionalDeletionCleansBothTasks(t *testing.T) {
	_, mem, tk, l, svc := newStack(t)

	m, err := mem.Add(&model.Memory{Content: "shared incident postmortem notes", Project: "api"})
	require.NoError(t, err)
	other, err := mem.Add(&model.Memory{Content: "unrelated note that should survive", Project: "api"})
	require.NoError(t, err)

	taskA, err := tk.Add(&model.Task{Title: "task A", Project: "api"})
	require.NoError(t, err)
	taskB, err := tk.Add(&model.Task{Title: "task B", Project: "api"})
	require.NoError(t, err)

	require.NoError(t, l.Link(taskA.ID, m.ID, "manual", 1, nil))
	require.NoError(t, l.Link(taskB.ID, m.ID, "manual", 1, nil))
	require.NoError(t, l.Link(taskA.ID, other.ID, "manual", 1, nil))

	require.NoError(t, svc.DeleteMemory(m.ID))

	gotA, err := tk.Get(taskA.ID)
	require.NoError(t, err)
	assert.False(t, gotA.HasMemoryConnection(m.ID))
	assert.True(t, gotA.HasMemoryConnection(other.ID), "unrelated connection must survive")

	gotB, err := tk.Get(taskB.ID)
	require.NoError(t, err)
	assert.Empty(t, gotB.MemoryConnections)
}

// Scenario 6: writing a memory through the store causes the change bus to
// emit a created event within the debounce window, the signal the HTTP
// surface's WebSocket broadcaster relies on.
func TestWatchToChangeBusEmitsCreatedEvent(t *testing.T) {
	root, mem, _, _, _ := newStack(t)

	bus, err := changebus.New(root, nil)
	require.NoError(t, err)

	sub, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	time.Sleep(50 * time.Millisecond)

	_, err = mem.Add(&model.Memory{Content: "watcher smoke test content", Project: "api"})
	require.NoError(t, err)

	select {
	case ev := <-sub:
		assert.Equal(t, changebus.DomainMemory, ev.Domain)
		assert.Equal(t, "api", ev.Project)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change bus event")
	}
}
