package codec

import "fmt"

// stack is a LIFO with a capacity fixed at creation.
type stack[T any] struct {
	name  string
	items []T
}

func newStack[T any](name string, capacity int) stack[T] {
	return stack[T]{name: name, items: make([]T, 0, capacity)}
}

func (s *stack[T]) push(v T) error {
	if len(s.items) == cap(s.items) {
		return fmt.Errorf("%w: %s stack holds %d", ErrStackOverflow, s.name, cap(s.items))
	}
	s.items = append(s.items, v)
	return nil
}

func (s *stack[T]) pop() T {
	var zero T
	n := len(s.items) - 1
	v := s.items[n]
	s.items[n] = zero
	s.items = s.items[:n]
	return v
}

// peek returns the top item. The pointer is valid until the next push or pop.
func (s *stack[T]) peek() *T { return &s.items[len(s.items)-1] }

func (s *stack[T]) len() int { return len(s.items) }
