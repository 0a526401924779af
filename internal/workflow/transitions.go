// Package workflow implements the task workflow engine: natural
// language status intent parsing, transition validation, and time-range
// analytics over the task store.
package workflow

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/endlessblink/memstore/internal/model"
)

// Common transition errors, generalized from a multi-entity-type registry
// down to the single Task state machine this store needs.
var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrAlreadyInState    = errors.New("already in target state")
)

// allowedTransitions is the source -> targets table for Task.Status.
var allowedTransitions = map[string][]string{
	model.TaskStatusTodo:       {model.TaskStatusInProgress, model.TaskStatusBlocked, model.TaskStatusDone},
	model.TaskStatusInProgress: {model.TaskStatusDone, model.TaskStatusBlocked, model.TaskStatusTodo},
	model.TaskStatusBlocked:    {model.TaskStatusInProgress, model.TaskStatusTodo, model.TaskStatusDone},
	model.TaskStatusDone:       {model.TaskStatusInProgress, model.TaskStatusTodo},
}

func isAllowedTransition(from, to string) bool {
	for _, allowedTo := range allowedTransitions[from] {
		if allowedTo == to {
			return true
		}
	}
	return false
}

func transitionError(from, to string) error {
	return fmt.Errorf("%w: cannot transition from %q to %q", ErrInvalidTransition, from, to)
}

var errorMarkerRe = regexp.MustCompile(`(?i)\b(error|exception|panic|traceback|unresolved)\b`)

// Context carries the optional overrides and side information a transition
// check needs beyond the bare from/to states.
type Context struct {
	ForceComplete  bool
	SkipValidation bool

	// SubtaskStatuses is the status of every direct subtask, for the
	// non-done-subtasks blocking check.
	SubtaskStatuses []string

	// ReferencedMemoryContents is the content of every memory the task links,
	// for the unresolved-error-marker blocking check.
	ReferencedMemoryContents []string
}

// Result mirrors the shape the validate_task_workflow tool returns.
type Result struct {
	Valid           bool
	BlockingIssues  []string
	Warnings        []string
	Suggestions     []string
	Confidence      float64
	WorkflowAnalysis string
}

// Validate checks a proposed from->to transition against the state machine
// and the task's current subtask/memory context.
func Validate(from, to string, ctx Context) Result {
	if from == to {
		return Result{
			Valid:           true,
			WorkflowAnalysis: fmt.Sprintf("%s -> %s is a no-op", from, to),
			Confidence:      1,
		}
	}

	if !isAllowedTransition(from, to) {
		return Result{
			Valid:          false,
			BlockingIssues: []string{transitionError(from, to).Error()},
			Confidence:     0,
		}
	}

	var blocking, warnings, suggestions []string

	if from == model.TaskStatusTodo && to == model.TaskStatusDone {
		warnings = append(warnings, "marking done directly from todo skips in_progress")
	}

	if to == model.TaskStatusDone && !ctx.ForceComplete {
		for _, s := range ctx.SubtaskStatuses {
			if s != model.TaskStatusDone {
				blocking = append(blocking, "task has subtasks that are not done (force_complete to override)")
				break
			}
		}
	}

	if to == model.TaskStatusDone && !ctx.SkipValidation {
		for _, content := range ctx.ReferencedMemoryContents {
			if errorMarkerRe.MatchString(content) {
				blocking = append(blocking, "referenced memory contains an unresolved error marker (skip_validation to override)")
				break
			}
		}
	}

	confidence := 1.0
	if len(warnings) > 0 {
		confidence = 0.8
	}

	return Result{
		Valid:           len(blocking) == 0,
		BlockingIssues:  blocking,
		Warnings:        warnings,
		Suggestions:     suggestions,
		Confidence:      confidence,
		WorkflowAnalysis: fmt.Sprintf("%s -> %s", from, to),
	}
}

// AllowedFrom reports the valid target states for the given source state,
// used by get_automation_suggestions.
func AllowedFrom(status string) []string {
	out := make([]string, len(allowedTransitions[status]))
	copy(out, allowedTransitions[status])
	return out
}

// ValidStatuses lists every recognized task status.
func ValidStatuses() []string {
	return []string{
		model.TaskStatusTodo,
		model.TaskStatusInProgress,
		model.TaskStatusDone,
		model.TaskStatusBlocked,
	}
}

// IsValidStatus reports whether s is one of the four recognized statuses.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses() {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
