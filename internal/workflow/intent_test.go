package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/endlessblink/memstore/internal/model"
)

func TestParseIntentDetectsDone(t *testing.T) {
	i := ParseIntent("just wrapped up the migration script")
	assert.Equal(t, model.TaskStatusDone, i.SuggestedStatus)
	assert.GreaterOrEqual(t, i.Confidence, 0.4)
}

func TestParseIntentDetectsInProgress(t *testing.T) {
	i := ParseIntent("started working on the retry fix this morning")
	assert.Equal(t, model.TaskStatusInProgress, i.SuggestedStatus)
	assert.GreaterOrEqual(t, i.Confidence, 0.4)
}

func TestParseIntentDetectsBlocked(t *testing.T) {
	i := ParseIntent("stuck, waiting on the credentials from ops")
	assert.Equal(t, model.TaskStatusBlocked, i.SuggestedStatus)
}

func TestParseIntentDetectsTodo(t *testing.T) {
	i := ParseIntent("let's pause this and revisit later")
	assert.Equal(t, model.TaskStatusTodo, i.SuggestedStatus)
}

func TestParseIntentNoMatch(t *testing.T) {
	i := ParseIntent("the weather is nice today")
	assert.Empty(t, i.SuggestedStatus)
	assert.Equal(t, 0.0, i.Confidence)
}
