package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Errors returned by Queue and Completion.
var (
	// ErrClosed is returned when submitting to, or reading from, a closed
	// and drained queue.
	ErrClosed = errors.New("command: queue closed")

	// ErrNotSync is returned by SubmitSync for asynchronous commands.
	ErrNotSync = errors.New("command: command is not synchronous")

	// ErrConsumed is returned when a completion's status was already taken.
	ErrConsumed = errors.New("command: completion already consumed")
)

// Queue is a FIFO of commands between one producer and one consumer.
type Queue struct {
	ch chan *Command

	mu        sync.RWMutex // guards sends against close(ch)
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue creates a queue buffering up to capacity commands.
func NewQueue(capacity int) *Queue {
	return &Queue{
		ch:   make(chan *Command, capacity),
		done: make(chan struct{}),
	}
}

// Submit enqueues cmd, blocking while the queue is full.
func (q *Queue) Submit(ctx context.Context, cmd *Command) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- cmd:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitSync enqueues a synchronous command and waits for its status.
func (q *Queue) SubmitSync(ctx context.Context, cmd *Command) (Status, error) {
	if !cmd.Sync || cmd.done == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotSync, cmd.Op)
	}
	if err := q.Submit(ctx, cmd); err != nil {
		return 0, err
	}
	return cmd.done.Wait(ctx)
}

// Next dequeues the next command, blocking while the queue is empty.
// Commands submitted before Close are still delivered; once the queue is
// closed and drained Next returns ErrClosed.
func (q *Queue) Next(ctx context.Context) (*Command, error) {
	select {
	case cmd, ok := <-q.ch:
		if !ok {
			return nil, ErrClosed
		}
		return cmd, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryNext dequeues a command without blocking.
func (q *Queue) TryNext() (*Command, bool) {
	select {
	case cmd, ok := <-q.ch:
		return cmd, ok
	default:
		return nil, false
	}
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close stops accepting commands. Producers blocked in Submit return
// ErrClosed. Close is idempotent.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
		q.mu.Lock()
		close(q.ch)
		q.mu.Unlock()
	})
}
