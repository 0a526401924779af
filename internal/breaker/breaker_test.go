package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckItemTripsOnOversizedItem(t *testing.T) {
	b := New()
	err := b.CheckItem(MaxItemSize + 1)
	require.Error(t, err)
}

func TestCheckItemTripsOnItemCount(t *testing.T) {
	b := New()
	var err error
	for i := 0; i < MaxItems+1; i++ {
		if err = b.CheckItem(10); err != nil {
			break
		}
	}
	require.Error(t, err)
}

func TestCheckItemTripsOnElapsed(t *testing.T) {
	b := New()
	b.now = func() time.Time { return b.start.Add(MaxElapsed + time.Second) }
	err := b.CheckItem(10)
	require.Error(t, err)
}

func TestCheckItemPassesUnderThresholds(t *testing.T) {
	b := New()
	err := b.CheckItem(10)
	assert.NoError(t, err)
}
