// Package reactor implements the minimal abstract scheduler the supervisor
// core treats as an external collaborator: a single run queue that
// serializes every callback onto one goroutine, a deadline-based timer
// primitive, and OS signal delivery. It is deliberately small — see
// DESIGN.md for why a larger, general-purpose event loop from the retrieved
// corpus was not used here.
package reactor

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"
)

// Reactor runs every posted job on one internal goroutine, in the order
// they were posted, so that callers never need to synchronize state shared
// only among jobs — nothing in the core needs locking as a result.
type Reactor struct {
	jobs    chan func()
	quitCh  chan struct{}
	quitted sync.Once
}

// New creates a Reactor. Call Run to start processing posted jobs.
func New() *Reactor {
	return &Reactor{
		jobs:   make(chan func(), 256),
		quitCh: make(chan struct{}),
	}
}

// Run processes jobs until ctx is done or Quit is called, including the job
// that calls Quit itself (Quit only takes effect on the reactor's next pass
// through the loop — see Quit's doc for why that matters).
func (r *Reactor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.quitCh:
			return
		case job := <-r.jobs:
			job()
		}
	}
}

// Post enqueues fn to run on the reactor goroutine. Safe to call from any
// goroutine, including from inside a job already running on the reactor
// (fn simply runs on a later pass of the loop). If the reactor has already
// quit, fn is silently dropped — this is expected for a died callback that
// arrives after the last process has torn down.
func (r *Reactor) Post(fn func()) {
	select {
	case r.jobs <- fn:
	case <-r.quitCh:
	}
}

// Quit asks the reactor to stop after its currently queued jobs (including
// the job that calls Quit) finish running. Quit is posted as a job rather
// than acted on immediately so that calling it from deep inside another
// callback — e.g. a process destructor freeing the last process in the
// supervisor's collection, a real reentrancy hazard in the original
// implementation this behavior is grounded on — is always safe: the close
// happens on the reactor's own goroutine, one turn later, never
// synchronously inside the caller's stack frame.
func (r *Reactor) Quit() {
	r.Post(func() {
		r.quitted.Do(func() { close(r.quitCh) })
	})
}

// Timer is a handle to a scheduled callback. Stop is idempotent and safe to
// call after the callback has already fired.
type Timer struct {
	t *time.Timer
}

// Stop cancels the timer if it hasn't fired yet. It returns false if the
// timer already fired or was already stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.t == nil {
		return false
	}
	return t.t.Stop()
}

// AfterFunc schedules fn to run on the reactor goroutine after d elapses.
// This is the "fire callback after deadline" primitive the supervisor core
// treats as an external collaborator; here it's implemented with
// time.AfterFunc plus Post so fn still only ever runs serialized with every
// other job.
func (r *Reactor) AfterFunc(d time.Duration, fn func()) *Timer {
	return &Timer{t: time.AfterFunc(d, func() { r.Post(fn) })}
}

// AfterFuncAt is AfterFunc expressed as an absolute deadline, matching
// wait()'s "arm a timer to fire at the slot's error_until deadline".
func (r *Reactor) AfterFuncAt(deadline time.Time, fn func()) *Timer {
	d := time.Until(deadline)
	if d < 0 {
		d = 0
	}
	return r.AfterFunc(d, fn)
}

// SignalSubscription lets a caller stop receiving signal notifications.
type SignalSubscription struct {
	cancel func()
}

// Cancel stops forwarding signals to the handler registered by
// NotifySignal. Idempotent.
func (s *SignalSubscription) Cancel() {
	if s != nil && s.cancel != nil {
		s.cancel()
	}
}

// NotifySignal delivers sig to fn, dispatched on the reactor goroutine, for
// as long as the returned subscription isn't cancelled.
func (r *Reactor) NotifySignal(fn func(os.Signal), sig ...os.Signal) *SignalSubscription {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, sig...)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			signal.Stop(ch)
		})
	}

	go func() {
		for {
			select {
			case s := <-ch:
				r.Post(func() { fn(s) })
			case <-done:
				return
			}
		}
	}()

	return &SignalSubscription{cancel: cancel}
}
