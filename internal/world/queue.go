package world

import (
	"sync"

	"github.com/urbanforge/buildsim/internal/core/ecs"
)

// EdgeQueue collects road edges whose utility graph needs reindexing.
type EdgeQueue struct {
	mu    sync.Mutex
	edges []ecs.EntityID
}

func NewEdgeQueue() *EdgeQueue {
	return &EdgeQueue{}
}

func (q *EdgeQueue) Enqueue(edge ecs.EntityID) {
	q.mu.Lock()
	q.edges = append(q.edges, edge)
	q.mu.Unlock()
}

func (q *EdgeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.edges)
}

// Drain returns the queued edges in enqueue order and empties the queue.
func (q *EdgeQueue) Drain() []ecs.EntityID {
	q.mu.Lock()
	out := q.edges
	q.edges = nil
	q.mu.Unlock()
	return out
}
