package world

import "sync"

// Barrier collects command buffers produced during a tick and replays them
// in submission order. Submitters that run in parallel must submit after
// their own synchronization point so the order stays deterministic.
type Barrier struct {
	mu      sync.Mutex
	buffers []*CommandBuffer
}

func NewBarrier() *Barrier {
	return &Barrier{buffers: make([]*CommandBuffer, 0, 8)}
}

// Submit queues cb for the next Playback.
func (b *Barrier) Submit(cb *CommandBuffer) {
	if cb == nil || cb.Len() == 0 {
		return
	}
	b.mu.Lock()
	b.buffers = append(b.buffers, cb)
	b.mu.Unlock()
}

// Pending returns the number of buffers waiting.
func (b *Barrier) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffers)
}

// Playback replays every queued buffer and clears the queue.
func (b *Barrier) Playback() PlaybackStats {
	b.mu.Lock()
	buffers := b.buffers
	b.buffers = make([]*CommandBuffer, 0, len(buffers))
	b.mu.Unlock()

	var stats PlaybackStats
	for _, cb := range buffers {
		stats.add(cb.Playback())
	}
	return stats
}
