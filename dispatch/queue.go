package dispatch

import "sync"

// taskQueue is an ordered work list drained by one or more workers. Tasks
// submitted after close are rejected; tasks accepted before close always
// run.
type taskQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	closed bool
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends a task. Returns false once the queue is closed.
func (q *taskQueue) push(t func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, t)
	q.cond.Signal()
	return true
}

// run executes tasks until the queue is closed and drained. One run loop
// per worker; a single worker gives strict FIFO execution.
func (q *taskQueue) run() {
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		t()
	}
}

// close rejects further pushes and wakes the workers to drain what remains.
func (q *taskQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}
