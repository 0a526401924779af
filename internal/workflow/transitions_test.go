package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/endlessblink/memstore/internal/model"
)

func TestValidateAllowedTransition(t *testing.T) {
	r := Validate(model.TaskStatusTodo, model.TaskStatusInProgress, Context{})
	assert.True(t, r.Valid)
	assert.Empty(t, r.BlockingIssues)
}

func TestValidateDisallowedTransition(t *testing.T) {
	r := Validate(model.TaskStatusDone, model.TaskStatusBlocked, Context{})
	assert.False(t, r.Valid)
	assert.NotEmpty(t, r.BlockingIssues)
}

func TestValidateSameStateIsNoOp(t *testing.T) {
	r := Validate(model.TaskStatusDone, model.TaskStatusDone, Context{})
	assert.True(t, r.Valid)
}

func TestValidateTodoToDoneWarnsSkippingInProgress(t *testing.T) {
	r := Validate(model.TaskStatusTodo, model.TaskStatusDone, Context{})
	assert.True(t, r.Valid)
	assert.NotEmpty(t, r.Warnings)
}

func TestValidateBlocksDoneWithOpenSubtasks(t *testing.T) {
	r := Validate(model.TaskStatusInProgress, model.TaskStatusDone, Context{
		SubtaskStatuses: []string{model.TaskStatusTodo},
	})
	assert.False(t, r.Valid)
}

func TestValidateForceCompleteOverridesOpenSubtasks(t *testing.T) {
	r := Validate(model.TaskStatusInProgress, model.TaskStatusDone, Context{
		ForceComplete:   true,
		SubtaskStatuses: []string{model.TaskStatusTodo},
	})
	assert.True(t, r.Valid)
}

func TestValidateBlocksDoneWithUnresolvedErrorMemory(t *testing.T) {
	r := Validate(model.TaskStatusInProgress, model.TaskStatusDone, Context{
		ReferencedMemoryContents: []string{"still seeing an unresolved exception in logs"},
	})
	assert.False(t, r.Valid)
}

func TestValidateSkipValidationOverridesErrorMemory(t *testing.T) {
	r := Validate(model.TaskStatusInProgress, model.TaskStatusDone, Context{
		SkipValidation:           true,
		ReferencedMemoryContents: []string{"still seeing an unresolved exception in logs"},
	})
	assert.True(t, r.Valid)
}
