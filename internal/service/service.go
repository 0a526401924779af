// Package service composes the memory and task stores with the Auto-Linker
// and workflow engine for operations that cross record types: orphan
// cleanup on delete, smart status updates driven by natural language, and
// workflow transition validation backed by live subtask/memory state.
package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/endlessblink/memstore/internal/linker"
	"github.com/endlessblink/memstore/internal/memory"
	"github.com/endlessblink/memstore/internal/model"
	"github.com/endlessblink/memstore/internal/storeerr"
	"github.com/endlessblink/memstore/internal/task"
	"github.com/endlessblink/memstore/internal/workflow"
)

// Service is the cross-store orchestration layer the tool handlers and the
// HTTP API both call into, so the two surfaces can never diverge on
// invariant maintenance.
type Service struct {
	Memories *memory.Store
	Tasks    *task.Store
	Linker   *linker.Linker
	logger   *slog.Logger
}

// New creates a Service over already-constructed stores.
func New(memories *memory.Store, tasks *task.Store, l *linker.Linker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Memories: memories, Tasks: tasks, Linker: l, logger: logger}
}

// DeleteMemory removes a memory and unlinks it from every task that
// references it, so no task is left pointing at a connection that no
// longer resolves.
func (s *Service) DeleteMemory(id string) error {
	m, err := s.Memories.Get(id)
	if err != nil {
		return err
	}
	for _, link := range m.Connections {
		if err := s.Linker.Unlink(link.TaskID, id); err != nil && storeerr.KindOf(err) != storeerr.NotFound {
			s.logger.Warn("failed to unlink memory from task during delete", "memory", id, "task", link.TaskID, "error", err)
		}
	}
	return s.Memories.Delete(id)
}

// DeleteTask removes a task and unlinks it from every memory that
// references it. Subtask cascade is handled by task.Store.Delete itself.
func (s *Service) DeleteTask(id string) error {
	t, err := s.Tasks.Get(id)
	if err != nil {
		return err
	}
	for _, conn := range t.MemoryConnections {
		if err := s.Linker.Unlink(id, conn.MemoryID); err != nil && storeerr.KindOf(err) != storeerr.NotFound {
			s.logger.Warn("failed to unlink task from memory during delete", "task", id, "memory", conn.MemoryID, "error", err)
		}
	}
	return s.Tasks.Delete(id)
}

// SmartStatusUpdate parses a free-form status request, validates the
// resulting transition against live subtask and referenced-memory state,
// and applies it unless the request forces past a blocking issue.
func (s *Service) SmartStatusUpdate(taskID, freeformInput string, forceComplete, skipValidation bool) (*model.Task, workflow.Intent, workflow.Result, error) {
	t, err := s.Tasks.Get(taskID)
	if err != nil {
		return nil, workflow.Intent{}, workflow.Result{}, err
	}

	intent := workflow.ParseIntent(freeformInput)
	if intent.SuggestedStatus == "" {
		return nil, intent, workflow.Result{}, storeerr.New(storeerr.InvalidInput,
			"could not determine a target status from %q", freeformInput)
	}

	result := s.ValidateTransition(t, intent.SuggestedStatus, forceComplete, skipValidation)
	if !result.Valid {
		return nil, intent, result, storeerr.New(storeerr.Conflict,
			"transition from %s to %s is blocked: %v", t.Status, intent.SuggestedStatus, result.BlockingIssues).
			WithSuggestions(result.Suggestions...)
	}

	wasDone := t.Status == model.TaskStatusDone
	updated, err := s.Tasks.Update(taskID, func(task *model.Task) {
		from := task.Status
		task.Status = intent.SuggestedStatus
		task.PushHistory(model.TransitionRecord{
			From:   from,
			To:     intent.SuggestedStatus,
			At:     time.Now(),
			Reason: intent.MatchedPhrase,
		})
	})
	if err != nil {
		return nil, intent, result, err
	}

	if updated.Status == model.TaskStatusDone && !wasDone {
		if err := s.emitCompletionMemory(updated, intent.MatchedPhrase); err != nil {
			s.logger.Warn("failed to emit completion memory", "task", updated.ID, "error", err)
		} else if refreshed, err := s.Tasks.Get(updated.ID); err == nil {
			updated = refreshed
		}
	}

	return updated, intent, result, nil
}

// emitCompletionMemory writes the handoff memory a task's transition into
// done leaves behind, then links it back to the task.
func (s *Service) emitCompletionMemory(t *model.Task, reason string) error {
	content := fmt.Sprintf("Completed task %s: %s", t.Serial, t.Title)
	if t.Description != "" {
		content += "\n\n" + t.Description
	}
	if reason != "" {
		content += fmt.Sprintf("\n\nContext: %s", reason)
	}

	saved, err := s.Memories.Add(&model.Memory{
		Content:  content,
		Project:  t.Project,
		Category: t.Category,
		Priority: model.PriorityMedium,
		Tags:     []string{"task-completion"},
	})
	if err != nil {
		return err
	}
	return s.Linker.Link(t.ID, saved.ID, "manual", 1.0, nil)
}

// ValidateTransition gathers live subtask statuses and referenced-memory
// contents for t and runs them through workflow.Validate.
func (s *Service) ValidateTransition(t *model.Task, to string, forceComplete, skipValidation bool) workflow.Result {
	ctx := workflow.Context{
		ForceComplete:  forceComplete,
		SkipValidation: skipValidation,
	}

	for _, childID := range t.Subtasks {
		child, err := s.Tasks.Get(childID)
		if err != nil {
			continue
		}
		ctx.SubtaskStatuses = append(ctx.SubtaskStatuses, child.Status)
	}

	for _, conn := range t.MemoryConnections {
		m, err := s.Memories.Get(conn.MemoryID)
		if err != nil {
			continue
		}
		ctx.ReferencedMemoryContents = append(ctx.ReferencedMemoryContents, m.Content)
	}

	return workflow.Validate(t.Status, to, ctx)
}

// GetTaskContext loads a task plus its parent, subtasks, and connected
// memories in one call, the shape get_task_context returns.
type TaskContext struct {
	Task     *model.Task
	Parent   *model.Task
	Subtasks []*model.Task
	Memories []*model.Memory
}

func (s *Service) GetTaskContext(taskID string) (*TaskContext, error) {
	t, err := s.Tasks.Get(taskID)
	if err != nil {
		return nil, err
	}

	ctx := &TaskContext{Task: t}

	if t.ParentTask != "" {
		if parent, err := s.Tasks.Get(t.ParentTask); err == nil {
			ctx.Parent = parent
		}
	}

	for _, childID := range t.Subtasks {
		if child, err := s.Tasks.Get(childID); err == nil {
			ctx.Subtasks = append(ctx.Subtasks, child)
		}
	}

	for _, conn := range t.MemoryConnections {
		if m, err := s.Memories.Get(conn.MemoryID); err == nil {
			ctx.Memories = append(ctx.Memories, m)
		}
	}

	return ctx, nil
}

// GenerateDropoff renders a human-readable handoff summary of in-flight work
// for a project: active and blocked tasks plus recently touched memories.
func (s *Service) GenerateDropoff(project string) (string, error) {
	tasks, err := s.Tasks.List(project, "", 0)
	if err != nil {
		return "", err
	}
	memories, err := s.Memories.List(project, 10)
	if err != nil {
		return "", err
	}

	var inProgress, blocked []*model.Task
	for _, t := range tasks {
		switch t.Status {
		case model.TaskStatusInProgress:
			inProgress = append(inProgress, t)
		case model.TaskStatusBlocked:
			blocked = append(blocked, t)
		}
	}

	out := fmt.Sprintf("# Dropoff: %s\n\n", project)
	out += fmt.Sprintf("## In progress (%d)\n", len(inProgress))
	for _, t := range inProgress {
		out += fmt.Sprintf("- [%s] %s (updated %s)\n", t.Serial, t.Title, humanize.Time(t.Updated))
	}
	out += fmt.Sprintf("\n## Blocked (%d)\n", len(blocked))
	for _, t := range blocked {
		out += fmt.Sprintf("- [%s] %s (updated %s)\n", t.Serial, t.Title, humanize.Time(t.Updated))
	}
	out += fmt.Sprintf("\n## Recent memories (%d)\n", len(memories))
	for _, m := range memories {
		preview := m.Content
		if len(preview) > 120 {
			preview = preview[:120] + "..."
		}
		out += fmt.Sprintf("- %s (%s)\n", preview, humanize.Time(m.Timestamp))
	}
	return out, nil
}
