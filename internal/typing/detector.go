// Package typing tracks keystroke pacing so playback can shorten sprites
// when the user types faster than they play.
package typing

import (
	"sync"
	"time"
)

// Pacing thresholds.
var (
	// FastGap is the inter-key gap below which typing counts as fast.
	FastGap = 100 * time.Millisecond
	// FastLimit caps sprite playback during fast typing.
	FastLimit = 50 * time.Millisecond
)

// Detector watches the gaps between keystrokes. During a fast burst it
// reports a playback limit that keeps sounds from stacking up behind the
// keys; at a relaxed pace sprites play out in full.
type Detector struct {
	mu      sync.Mutex
	last    time.Time
	now     func() time.Time // test hook
	fastGap time.Duration
	limit   time.Duration
}

// NewDetector creates a detector with the stock thresholds.
func NewDetector() *Detector {
	return &Detector{
		now:     time.Now,
		fastGap: FastGap,
		limit:   FastLimit,
	}
}

// Keystroke records one keypress and returns the playback limit for its
// sound: FastLimit when the previous key was under FastGap ago, zero (no
// limit) otherwise. The first keystroke is never fast.
func (d *Detector) Keystroke() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	prev := d.last
	d.last = now

	if prev.IsZero() || now.Sub(prev) >= d.fastGap {
		return 0
	}
	return d.limit
}

// Reset forgets the previous keystroke, so the next one plays in full.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = time.Time{}
}
