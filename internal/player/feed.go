package player

import (
	"encoding/json"
	"sync"
)

// Feed is the hand-off point between the scheduler and the renderer in the
// browser. The scheduler publishes load-scene events into it; the UI polls
// the current blob and compares Seq to know when a new scene arrived.
// Strictly one-way: nothing about renderer state ever flows back.
type Feed struct {
	mu   sync.RWMutex
	seq  uint64
	blob json.RawMessage
}

func NewFeed() *Feed {
	return &Feed{}
}

// Publish replaces the current scene. Wired as the scheduler's onLoad.
func (f *Feed) Publish(blob json.RawMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.blob = blob
}

// Current returns the latest scene blob and its sequence number.
func (f *Feed) Current() (json.RawMessage, uint64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.blob, f.seq
}
