package command

import (
	"context"
	"sync"
)

// Command is a single queued operation.
type Command struct {
	Op   Opcode
	Args Stack

	// Sync marks an explicit, synchronous command. The handler signals
	// its Completion exactly once.
	Sync bool

	done     *Completion
	released bool
}

// New creates an asynchronous command. args are listed in the order the
// handler pops them.
func New(op Opcode, args ...any) *Command {
	c := &Command{Op: op}
	c.Args.items = make([]any, 0, len(args))
	for i := len(args) - 1; i >= 0; i-- {
		c.Args.Push(args[i])
	}
	return c
}

// NewSync creates a synchronous command with a fresh Completion.
func NewSync(op Opcode, args ...any) *Command {
	c := New(op, args...)
	c.Sync = true
	c.done = NewCompletion()
	return c
}

// Complete signals the command's completion with s. It reports false for
// asynchronous commands and for a second call.
func (c *Command) Complete(s Status) bool {
	if c.done == nil {
		return false
	}
	return c.done.Complete(s)
}

// Release drops any arguments the handler did not pop and marks the
// command as consumed. A released command must not be handled again.
func (c *Command) Release() {
	c.Args.Clear()
	c.released = true
}

// Released reports whether Release has been called.
func (c *Command) Released() bool {
	return c.released
}

// Completion returns the command's completion, or nil for asynchronous
// commands.
func (c *Command) Completion() *Completion {
	return c.done
}

// Completion is a one-shot status signal consumed by the producer.
type Completion struct {
	once sync.Once
	ch   chan Status
}

// NewCompletion creates an unsignalled completion.
func NewCompletion() *Completion {
	return &Completion{ch: make(chan Status, 1)}
}

// Complete stores s and wakes the waiter. Only the first call has an
// effect; it reports whether this call was the one that signalled.
func (c *Completion) Complete(s Status) bool {
	signalled := false
	c.once.Do(func() {
		c.ch <- s
		close(c.ch)
		signalled = true
	})
	return signalled
}

// Wait blocks until the completion is signalled or ctx is done.
// The status is delivered to exactly one Wait call.
func (c *Completion) Wait(ctx context.Context) (Status, error) {
	select {
	case s, ok := <-c.ch:
		if !ok {
			return 0, ErrConsumed
		}
		return s, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
