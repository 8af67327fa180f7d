// Package ratelimit is a small in-memory token bucket, used by the
// flashkvtool inspector to cap how fast its HTTP write endpoint accepts
// new records. Adapted from the teacher repository's
// lsm/token_bucket package: the same refill-on-elapsed-intervals
// AllowRequest logic, with the disk-backed persistence (it serialized
// the bucket's state through its BlockManager, surviving process
// restarts) dropped - the inspector's rate limit only needs to survive
// one run.
package ratelimit

import (
	"sync"
	"time"
)

// Bucket is a goroutine-safe token bucket.
type Bucket struct {
	mu sync.Mutex

	capacity       uint16
	remaining      uint16
	refillInterval time.Duration
	refillAmount   uint16
	lastReset      time.Time
}

// New creates a Bucket starting at full capacity.
func New(capacity uint16, refillInterval time.Duration, refillAmount uint16) *Bucket {
	return &Bucket{
		capacity:       capacity,
		remaining:      capacity,
		refillInterval: refillInterval,
		refillAmount:   refillAmount,
		lastReset:      time.Now(),
	}
}

// Allow reports whether a request may proceed, consuming one token if
// so. It first refills for however many whole intervals have elapsed
// since the last refill.
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := time.Since(b.lastReset)
	if intervals := int(elapsed / b.refillInterval); intervals > 0 {
		b.remaining += uint16(intervals) * b.refillAmount
		if b.remaining > b.capacity {
			b.remaining = b.capacity
		}
		b.lastReset = b.lastReset.Add(time.Duration(intervals) * b.refillInterval)
	}

	if b.remaining == 0 {
		return false
	}
	b.remaining--
	return true
}
