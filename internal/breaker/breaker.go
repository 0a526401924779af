// Package breaker implements the circuit breaker bulk operations run under:
// a trip check evaluated before and during a bulk op's item loop.
package breaker

import (
	"time"

	"github.com/endlessblink/memstore/internal/storeerr"
)

// Thresholds beyond which a bulk operation trips and aborts.
const (
	MaxElapsed  = 30 * time.Second
	MaxItems    = 50_000
	MaxItemSize = 100 * 1024 // bytes
)

// Breaker tracks a single bulk operation's progress against the thresholds.
type Breaker struct {
	start     time.Time
	now       func() time.Time
	itemCount int
}

// New creates a breaker whose clock starts now.
func New() *Breaker {
	return &Breaker{start: time.Now(), now: time.Now}
}

// CheckItem records one more processed item and its size, tripping if any
// threshold is exceeded.
func (b *Breaker) CheckItem(size int) error {
	b.itemCount++

	if size > MaxItemSize {
		return storeerr.New(storeerr.InvalidInput,
			"item size %d bytes exceeds the %d byte circuit-breaker limit", size, MaxItemSize)
	}
	if b.itemCount > MaxItems {
		return storeerr.New(storeerr.Internal,
			"bulk operation aborted: exceeded %d items", MaxItems)
	}
	if elapsed := b.now().Sub(b.start); elapsed > MaxElapsed {
		return storeerr.New(storeerr.Timeout,
			"bulk operation aborted after %s, exceeding the %s circuit-breaker limit", elapsed, MaxElapsed)
	}
	return nil
}

// ItemCount reports how many items have been checked so far.
func (b *Breaker) ItemCount() int { return b.itemCount }
