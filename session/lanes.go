package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/m3rciful/shelfbot/core/logger"
)

const laneBuffer = 100

// Lanes runs dialog work per-user in FIFO order. Each user gets their own
// lane so two updates from the same user can never race on one worker,
// while the semaphore caps how many users are processed at once.
type Lanes struct {
	lanes map[int64]chan task
	sem   *semaphore.Weighted

	// pending counts enqueued tasks that have not finished yet, so
	// WaitIdle sees queued work and not just the task in flight.
	pending atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

type task struct {
	ctx context.Context
	run func(context.Context) error
}

// NewLanes allows up to maxConcurrent tasks to execute simultaneously
// across all user lanes.
func NewLanes(maxConcurrent int64) *Lanes {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Lanes{
		lanes: make(map[int64]chan task),
		sem:   semaphore.NewWeighted(maxConcurrent),
	}
}

// Start initialises the lane context. Must be called before Enqueue.
func (l *Lanes) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ctx, l.cancel = context.WithCancel(ctx)
}

// Stop closes all lanes, lets each drain goroutine finish the tasks
// already queued (so no caller is left waiting on a discarded task),
// then cancels the lane context. Safe to call more than once.
func (l *Lanes) Stop() {
	l.mu.Lock()
	if l.ctx == nil {
		l.mu.Unlock()
		return
	}
	lanes := l.lanes
	cancel := l.cancel
	l.lanes = make(map[int64]chan task)
	l.ctx = nil
	l.cancel = nil
	l.mu.Unlock()

	for _, lane := range lanes {
		close(lane)
	}
	l.wg.Wait()
	cancel()
}

// Enqueue appends a task to the user's lane, creating the lane (and its
// goroutine) on first use. The given context travels with the task so
// request-scoped log metadata survives the hop.
func (l *Lanes) Enqueue(ctx context.Context, userID int64, run func(context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ctx == nil {
		return fmt.Errorf("lanes not started")
	}

	lane, exists := l.lanes[userID]
	if !exists {
		lane = make(chan task, laneBuffer)
		l.lanes[userID] = lane
		l.wg.Add(1)
		go l.drain(l.ctx, lane)
	}

	select {
	case lane <- task{ctx: ctx, run: run}:
		l.pending.Add(1)
		return nil
	default:
		return fmt.Errorf("lane full for user %d", userID)
	}
}

// drain processes one user's lane. Tasks run synchronously, so FIFO order
// holds within the lane; the semaphore bounds cross-user parallelism.
// When the parent context dies the semaphore stops admitting work, but
// queued tasks still run so callers waiting on them are not abandoned.
func (l *Lanes) drain(ctx context.Context, lane chan task) {
	defer l.wg.Done()
	for t := range lane {
		held := l.sem.Acquire(ctx, 1) == nil
		if err := t.run(t.ctx); err != nil {
			logger.Error(t.ctx, "session", "lane.task",
				slog.String("status", "fail"),
				slog.String("err", logger.Sanitize(err.Error())),
			)
		}
		if held {
			l.sem.Release(1)
		}
		l.pending.Add(-1)
	}
}

// WaitIdle blocks until every enqueued task has finished, queued ones
// included, or the timeout expires.
func (l *Lanes) WaitIdle(timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if l.pending.Load() == 0 {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-time.After(10 * time.Millisecond):
		}
	}
}
