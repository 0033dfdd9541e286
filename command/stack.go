package command

import (
	"errors"
	"fmt"
)

// Errors returned when decoding arguments.
var (
	// ErrStackEmpty is returned when popping from an empty stack.
	ErrStackEmpty = errors.New("command: argument stack empty")

	// ErrArgType is returned when the top argument has an unexpected type.
	ErrArgType = errors.New("command: argument type mismatch")
)

// Stack is a LIFO of command arguments.
//
// Popped slots are cleared, so payloads moved into a command are dropped
// by the stack as soon as the handler has taken them.
//
// Stack is not safe for concurrent use; it is filled by the producer
// before submission and drained by exactly one handler.
type Stack struct {
	items []any
}

// Push pushes v onto the stack.
func (s *Stack) Push(v any) {
	s.items = append(s.items, v)
}

// Len returns the number of arguments left.
func (s *Stack) Len() int {
	return len(s.items)
}

// Clear drops all remaining arguments.
func (s *Stack) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}

// Pop removes the top argument and returns it as a T.
//
// A nil argument pops as the zero T, which lets producers pass a bare nil
// for optional pointer arguments.
func Pop[T any](s *Stack) (T, error) {
	var zero T
	n := len(s.items)
	if n == 0 {
		return zero, fmt.Errorf("%w: want %T", ErrStackEmpty, zero)
	}
	v := s.items[n-1]
	s.items[n-1] = nil
	s.items = s.items[:n-1]

	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: want %T, got %T", ErrArgType, zero, v)
	}
	return t, nil
}
