package task

import (
	"testing"
	"time"
)

func fixedClock(t *testing.T, minuteSeed int) func() time.Time {
	t.Helper()
	base := time.Date(2026, 1, 1, 12, minuteSeed, 0, 0, time.UTC)
	return func() time.Time { return base }
}
