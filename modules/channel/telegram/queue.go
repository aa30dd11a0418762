package telegram

import "sync"

// updateQueue is an unbounded, ordered, single-producer/single-consumer
// queue decoupling the polling loop from update processing. The producer
// never blocks; the consumer blocks while the queue is empty. Close is the
// sole termination signal: after Close the consumer drains the remaining
// items and then observes end-of-stream.
type updateQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Update
	closed bool
}

func newUpdateQueue() *updateQueue {
	q := &updateQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an update. It reports false when the queue is already closed.
func (q *updateQueue) Push(u Update) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, u)
	q.cond.Signal()
	return true
}

// Pop removes and returns the oldest update, blocking while the queue is
// empty. It returns ok=false only after Close has been called and all
// buffered items have been drained.
func (q *updateQueue) Pop() (Update, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return Update{}, false
	}
	u := q.items[0]
	q.items = q.items[1:]
	return u, true
}

// Close marks the queue closed and wakes the consumer. Pushing after Close
// is a no-op; buffered items remain poppable.
func (q *updateQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of buffered updates.
func (q *updateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
