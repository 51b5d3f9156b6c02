// Package listview holds the list-synchronization primitives every screen
// uses to keep an in-memory ordered collection consistent with the remote
// store: wholesale replacement on fetch, in-place patch or removal after a
// confirmed mutation, and an explicit two-phase record for optimistic
// updates.
package listview

import "sync"

// List is an ordered collection mirroring one remote query result.
type List[T any] struct {
	mu    sync.Mutex
	items []T
}

// Replace swaps in a fresh query result wholesale; there is no
// incremental merge.
func (l *List[T]) Replace(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]T(nil), items...)
}

// Items returns a copy of the collection.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.items...)
}

func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *List[T]) Find(match func(T) bool) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Prepend inserts an item at the head (a fresh comment on a
// newest-first list).
func (l *List[T]) Prepend(item T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]T{item}, l.items...)
}

// RemoveFirst drops the first matching item, reporting whether one was
// found. Used after a confirmed deletion: the item leaves the collection
// only once the remote accepted the mutation.
func (l *List[T]) RemoveFirst(match func(T) bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if match(it) {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// PatchFirst rewrites the first matching item in place. The patch must
// mirror the server-accepted state exactly or the view silently diverges
// from the backend.
func (l *List[T]) PatchFirst(match func(T) bool, patch func(T) T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if match(it) {
			l.items[i] = patch(it)
			return true
		}
	}
	return false
}
