// Package schedule provides the deferred-callback schedulers the coordinator
// runs on. Every scheduler runs callbacks one at a time on a single logical
// thread, so callers never need locks around the state the callbacks touch.
package schedule

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Scheduler runs fn once, no earlier than d from now. Scheduled callbacks
// cannot be cancelled; they must check whether their target still exists.
type Scheduler interface {
	After(d time.Duration, fn func())
}

type task struct {
	at  time.Duration
	seq uint64
	fn  func()
}

// Manual is a scheduler driven by a virtual clock. Nothing runs until
// Advance or Flush is called, which makes deferred choreography
// deterministic in tests and batch tools.
type Manual struct {
	now   time.Duration
	seq   uint64
	tasks []task
}

// NewManual returns a Manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// After queues fn at now+d. Callbacks due at the same instant run in the
// order they were scheduled.
func (m *Manual) After(d time.Duration, fn func()) {
	m.seq++
	m.tasks = append(m.tasks, task{at: m.now + max(d, 0), seq: m.seq, fn: fn})
}

// Now returns the virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of queued callbacks.
func (m *Manual) Pending() int {
	return len(m.tasks)
}

// Advance moves the clock forward by d, running every callback that falls due
// on the way, including ones scheduled by earlier callbacks. It returns the
// number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	target := m.now + d
	n := 0
	for {
		t, ok := m.next(target)
		if !ok {
			break
		}
		m.now = t.at
		t.fn()
		n++
	}
	m.now = target
	return n
}

// Flush runs callbacks until the queue is empty, moving the clock to each
// callback's due time. It returns the number of callbacks run.
func (m *Manual) Flush() int {
	n := 0
	for len(m.tasks) > 0 {
		t, _ := m.next(-1)
		m.now = max(m.now, t.at)
		t.fn()
		n++
	}
	return n
}

// next pops the earliest task due at or before limit. A negative limit
// accepts any task.
func (m *Manual) next(limit time.Duration) (task, bool) {
	if len(m.tasks) == 0 {
		return task{}, false
	}
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at == m.tasks[j].at {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].at < m.tasks[j].at
	})
	t := m.tasks[0]
	if limit >= 0 && t.at > limit {
		return task{}, false
	}
	m.tasks = m.tasks[1:]
	return t, true
}

// Loop funnels real-time callbacks onto the goroutine that calls Run.
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop whose queue holds up to buffer pending callbacks.
func NewLoop(buffer int) *Loop {
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// After posts fn to the loop once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { l.Post(fn) })
}

// Post queues fn to run on the loop goroutine. It is safe to call from any
// goroutine; callbacks posted after Run has returned are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
	case l.tasks <- fn:
	}
}

// Run executes posted callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}
