package reactor_test

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/ncdsv/ncdsv/internal/reactor"
)

func TestPostRunsJobsInOrder(t *testing.T) {
	r := reactor.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		r.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			if i == 4 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for posted jobs")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			t.Fatalf("want jobs to run in post order, got %v", order)
		}
	}
}

func TestQuitStopsRun(t *testing.T) {
	r := reactor.New()
	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	r.Post(func() { r.Quit() })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

func TestPostAfterQuitIsDropped(t *testing.T) {
	r := reactor.New()
	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	r.Quit()
	<-done

	finished := make(chan struct{})
	go func() {
		r.Post(func() {})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Post after Quit should not block")
	}
}

func TestAfterFuncFiresOnReactorGoroutine(t *testing.T) {
	r := reactor.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	fired := make(chan struct{})
	r.AfterFunc(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for AfterFunc")
	}
}

func TestTimerStopPreventsCallback(t *testing.T) {
	r := reactor.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	fired := make(chan struct{}, 1)
	timer := r.AfterFunc(50*time.Millisecond, func() { fired <- struct{}{} })
	if !timer.Stop() {
		t.Fatal("want Stop to report the timer was still pending")
	}

	select {
	case <-fired:
		t.Fatal("stopped timer should not have fired")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestAfterFuncAtPastDeadlineFiresImmediately(t *testing.T) {
	r := reactor.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	fired := make(chan struct{})
	r.AfterFuncAt(time.Now().Add(-time.Second), func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(1 * time.Second):
		t.Fatal("a past deadline should fire immediately")
	}
}

func TestNotifySignalDeliversAndCancelStopsIt(t *testing.T) {
	r := reactor.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	received := make(chan os.Signal, 1)
	sub := r.NotifySignal(func(s os.Signal) { received <- s }, syscall.SIGUSR1)

	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("FindProcess failed: %v", err)
	}
	if err := proc.Signal(syscall.SIGUSR1); err != nil {
		t.Fatalf("Signal failed: %v", err)
	}

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the signal to be delivered")
	}

	sub.Cancel()
	sub.Cancel() // idempotent
}
