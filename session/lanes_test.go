package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLanesKeepFIFOPerUser(t *testing.T) {
	l := NewLanes(4)
	l.Start(context.Background())
	defer l.Stop()

	var mu sync.Mutex
	var order []int

	for i := 0; i < 20; i++ {
		i := i
		err := l.Enqueue(context.Background(), 42, func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	if !l.WaitIdle(2 * time.Second) {
		t.Fatal("lanes never went idle")
	}
	l.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 20 {
		t.Fatalf("ran %d tasks, want 20", len(order))
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("order[%d] = %d; lane must be FIFO", i, got)
		}
	}
}

func TestLanesNeverOverlapSameUser(t *testing.T) {
	l := NewLanes(8)
	l.Start(context.Background())
	defer l.Stop()

	var inFlight, maxSeen atomic.Int64
	for i := 0; i < 50; i++ {
		err := l.Enqueue(context.Background(), 1, func(context.Context) error {
			n := inFlight.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			return nil
		})
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	if !l.WaitIdle(5 * time.Second) {
		t.Fatal("lanes never went idle")
	}
	if maxSeen.Load() != 1 {
		t.Fatalf("saw %d concurrent tasks for one user, want 1", maxSeen.Load())
	}
}

func TestLanesRunUsersConcurrently(t *testing.T) {
	l := NewLanes(2)
	l.Start(context.Background())
	defer l.Stop()

	release := make(chan struct{})
	started := make(chan int64, 2)

	for _, uid := range []int64{1, 2} {
		uid := uid
		if err := l.Enqueue(context.Background(), uid, func(context.Context) error {
			started <- uid
			<-release
			return nil
		}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			close(release)
			t.Fatal("users were not processed concurrently")
		}
	}
	close(release)
	if !l.WaitIdle(2 * time.Second) {
		t.Fatal("lanes never went idle")
	}
}

func TestLanesWaitIdleWaitsForQueuedTasks(t *testing.T) {
	l := NewLanes(1)
	l.Start(context.Background())
	defer l.Stop()

	var ran atomic.Int64
	for i := 0; i < 5; i++ {
		err := l.Enqueue(context.Background(), 9, func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	if !l.WaitIdle(2 * time.Second) {
		t.Fatal("lanes never went idle")
	}
	if got := ran.Load(); got != 5 {
		t.Fatalf("went idle with %d of 5 tasks run", got)
	}
}

func TestLanesStopCompletesQueuedTasks(t *testing.T) {
	l := NewLanes(1)
	l.Start(context.Background())

	var ran atomic.Int64
	for i := 0; i < 10; i++ {
		err := l.Enqueue(context.Background(), 7, func(context.Context) error {
			time.Sleep(time.Millisecond)
			ran.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	l.Stop()
	if got := ran.Load(); got != 10 {
		t.Fatalf("Stop completed %d queued tasks, want 10", got)
	}
	if err := l.Enqueue(context.Background(), 7, func(context.Context) error { return nil }); err == nil {
		t.Fatal("Enqueue after Stop must fail")
	}
}

func TestLanesEnqueueBeforeStart(t *testing.T) {
	l := NewLanes(1)
	if err := l.Enqueue(context.Background(), 1, func(context.Context) error { return nil }); err == nil {
		t.Fatal("Enqueue before Start must fail")
	}
}
