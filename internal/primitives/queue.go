package primitives

// Queue is a FIFO of pending items. The zero value is ready to use.
// Not safe for concurrent use; the engine drains it on one goroutine.
type Queue[T any] struct {
	items []T
	head  int
}

// Push appends items to the tail.
func (q *Queue[T]) Push(items ...T) {
	q.items = append(q.items, items...)
}

// Pop removes and returns the head item.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.head >= len(q.items) {
		return zero, false
	}
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return item, true
}

// Len reports the number of pending items.
func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

// Clear drops every pending item.
func (q *Queue[T]) Clear() {
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
}
