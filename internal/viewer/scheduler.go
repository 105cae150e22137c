package viewer

import (
	"container/heap"
	"time"
)

// Task is a callback scheduled on a [Scheduler].
type Task struct {
	due       time.Time
	seq       uint64
	fn        func()
	cancelled bool
	done      bool
	index     int
}

// Cancel prevents the task from running. It reports whether the task was still pending.
func (t *Task) Cancel() bool {
	if t == nil || t.done || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

// Pending reports whether the task has neither run nor been cancelled.
func (t *Task) Pending() bool {
	return t != nil && !t.done && !t.cancelled
}

// Scheduler runs delayed callbacks on the goroutine that calls [Scheduler.Advance].
//
// Time only moves when Advance is called, which makes it suitable both for a
// render loop (advance with the wall clock every frame) and for tests.
// A task scheduled from inside another task is timed from the parent's due time,
// so chained phases do not drift with frame jitter.
type Scheduler struct {
	now   time.Time
	seq   uint64
	queue taskQueue
}

// NewScheduler creates a scheduler whose clock starts at start.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time { return s.now }

// After schedules fn to run once d has elapsed.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	return s.At(s.now.Add(d), fn)
}

// At schedules fn to run at due. A due time already passed runs on the next [Scheduler.Advance].
func (s *Scheduler) At(due time.Time, fn func()) *Task {
	s.seq++
	t := &Task{due: due, seq: s.seq, fn: fn}
	heap.Push(&s.queue, t)
	return t
}

// Advance moves the clock to now and runs every task due by then in due-time order.
// Tasks scheduled while advancing run in the same call when they fall due before now.
// It returns the number of callbacks run.
func (s *Scheduler) Advance(now time.Time) int {
	ran := 0
	for s.queue.Len() > 0 {
		next := s.queue[0]
		if next.due.After(now) {
			break
		}
		heap.Pop(&s.queue)
		if next.cancelled {
			continue
		}
		if next.due.After(s.now) {
			s.now = next.due
		}
		next.done = true
		next.fn()
		ran++
	}
	if now.After(s.now) {
		s.now = now
	}
	return ran
}

// Len returns the number of scheduled tasks that have not yet run, including cancelled ones not yet discarded.
func (s *Scheduler) Len() int { return s.queue.Len() }

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*Task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}
