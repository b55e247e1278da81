// Package collector assigns dense, stable indices to the distinct objects
// referenced by a scene so that device records can refer to each other by
// offset.
package collector

import (
	"iter"
)

// Collector gathers a de-duplicated set of objects and assigns each one a
// dense index in first-seen order. Indices stay valid until the next Clear.
type Collector[T comparable] struct {
	items []T
	index map[T]int
}

// Create a new empty collector.
func New[T comparable]() *Collector[T] {
	return &Collector[T]{
		index: make(map[T]int),
	}
}

// Reset the collector. Previously returned indices are invalidated.
func (c *Collector[T]) Clear() {
	c.items = c.items[:0]
	clear(c.index)
}

// Add items to the collector. Duplicates and zero values are ignored.
func (c *Collector[T]) Collect(items ...T) {
	var zero T
	for _, item := range items {
		if item == zero {
			continue
		}
		if _, exists := c.index[item]; exists {
			continue
		}
		c.index[item] = len(c.items)
		c.items = append(c.items, item)
	}
}

// Get the index of a collected item. The second return value is false if the
// item was never collected.
func (c *Collector[T]) Index(item T) (int, bool) {
	idx, ok := c.index[item]
	return idx, ok
}

// Check if an item has been collected.
func (c *Collector[T]) Contains(item T) bool {
	_, ok := c.index[item]
	return ok
}

// Get the number of collected items.
func (c *Collector[T]) Len() int {
	return len(c.items)
}

// Iterate the collected items in index order. The returned sequence may be
// ranged over any number of times.
func (c *Collector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for idx, item := range c.items {
			if !yield(idx, item) {
				return
			}
		}
	}
}

// Get a copy of the collected items in index order.
func (c *Collector[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Capture the current set of collected items.
func (c *Collector[T]) CreateBundle() *Bundle[T] {
	b := &Bundle[T]{
		keys: make(map[T]int, len(c.items)),
	}
	for index, item := range c.items {
		b.keys[item] = index
	}
	return b
}

// Check whether the items referenced by a previous bundle need to be
// re-uploaded. This is the case when the bundle is missing, the set of
// collected items changed, an item was assigned a different index or any
// collected item matches the dirty predicate.
func (c *Collector[T]) NeedsUpdate(b *Bundle[T], dirty func(T) bool) bool {
	if b == nil || !b.matches(c) {
		return true
	}
	if dirty == nil {
		return false
	}
	for _, item := range c.items {
		if dirty(item) {
			return true
		}
	}
	return false
}

// Bundle is an immutable snapshot of a collector's item set and the index
// assigned to each item.
type Bundle[T comparable] struct {
	keys map[T]int
}

// Get the number of items in the bundle.
func (b *Bundle[T]) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Check if the bundle contains an item.
func (b *Bundle[T]) Contains(item T) bool {
	if b == nil {
		return false
	}
	_, ok := b.keys[item]
	return ok
}

// Compare two bundles for set equality. Item indices are ignored.
func (b *Bundle[T]) Equal(other *Bundle[T]) bool {
	if b.Len() != other.Len() {
		return false
	}
	if b == nil || other == nil {
		return true
	}
	for key := range b.keys {
		if _, ok := other.keys[key]; !ok {
			return false
		}
	}
	return true
}

func (b *Bundle[T]) matches(c *Collector[T]) bool {
	if len(b.keys) != len(c.items) {
		return false
	}
	for index, item := range c.items {
		if bIndex, ok := b.keys[item]; !ok || bIndex != index {
			return false
		}
	}
	return true
}
