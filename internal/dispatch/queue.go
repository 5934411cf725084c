// internal/dispatch/queue.go
package dispatch

import (
	"sync"

	commonerrors "notifyd/internal/common/errors"
	"notifyd/internal/common/metrics"
	"notifyd/internal/models"
)

// laneOrder is the strict drain order: high ahead of normal ahead of low.
var laneOrder = []models.Priority{models.PriorityHigh, models.PriorityNormal, models.PriorityLow}

// Queue is the three-lane priority queue shared by submitters and workers.
// One lock guards all lanes so lane selection is atomic with respect to
// enqueue: a dequeue always takes the head of the highest non-empty lane.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	lanes  map[models.Priority][]*models.Notification
	closed bool
}

func NewQueue() *Queue {
	q := &Queue{
		lanes: map[models.Priority][]*models.Notification{
			models.PriorityHigh:   nil,
			models.PriorityNormal: nil,
			models.PriorityLow:    nil,
		},
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends the notification to the tail of its priority lane. Retries
// go through the same path, so a retried item never jumps ahead of work
// already waiting in its lane.
func (q *Queue) Enqueue(n *models.Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return commonerrors.NewQueueClosedError()
	}

	q.lanes[n.Priority] = append(q.lanes[n.Priority], n)
	metrics.QueueDepth.WithLabelValues(n.Priority.String()).Inc()
	q.cond.Signal()
	return nil
}

// Dequeue blocks until an item is available or the queue is closed. It
// returns the head of the highest non-empty lane; ok is false once the queue
// is closed and drained.
func (q *Queue) Dequeue() (*models.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		for _, prio := range laneOrder {
			lane := q.lanes[prio]
			if len(lane) > 0 {
				n := lane[0]
				q.lanes[prio] = lane[1:]
				metrics.QueueDepth.WithLabelValues(prio.String()).Dec()
				return n, true
			}
		}

		if q.closed {
			return nil, false
		}
		q.cond.Wait()
	}
}

// Depth returns the number of queued items in the given lane.
func (q *Queue) Depth(prio models.Priority) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lanes[prio])
}

// Close stops acceptance of new items and wakes all blocked consumers.
// Items still queued are drained before Dequeue reports closed.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}
