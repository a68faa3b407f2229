// Package controller implements the fetch-hold-render pattern every
// resource command shares: load a collection through an injected fetch
// function, keep it with a human-readable error state, and sort it client
// side. A form variant tracks an edit buffer against the last-fetched
// snapshot.
package controller

import (
	"context"
	"reflect"
	"sort"
	"sync"
)

// FetchFunc loads a collection of T.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// ListController loads and holds one resource collection. A result is
// never applied after the controller's context is canceled, so a command
// that goes away cannot have its state overwritten by a late response.
type ListController[T any] struct {
	fetch FetchFunc[T]

	mu      sync.Mutex
	items   []T
	errMsg  string
	loading bool

	less func(a, b T) bool
	asc  bool
}

// NewList returns a controller that loads via fetch.
func NewList[T any](fetch FetchFunc[T]) *ListController[T] {
	return &ListController[T]{fetch: fetch}
}

// Load fetches the collection. On success the items replace the previous
// state and the error is cleared; on failure the error message replaces
// the previous one and the items are kept. A canceled context discards
// the result entirely.
func (c *ListController[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	items, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		c.errMsg = err.Error()
		return err
	}

	c.items = items
	c.errMsg = ""
	if c.less != nil {
		c.sortLocked()
	}
	return nil
}

// Items returns the current collection in display order.
func (c *ListController[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Err returns the current error message, empty after a successful load.
func (c *ListController[T]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Loading reports whether a load is in flight.
func (c *ListController[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// SortBy installs less as the ascending comparator and sorts the current
// items with it.
func (c *ListController[T]) SortBy(less func(a, b T) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.less = less
	c.asc = true
	c.sortLocked()
}

// Toggle flips the sort direction by reversing the current order exactly.
func (c *ListController[T]) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.less == nil {
		return
	}
	c.asc = !c.asc
	for i, j := 0, len(c.items)-1; i < j; i, j = i+1, j-1 {
		c.items[i], c.items[j] = c.items[j], c.items[i]
	}
}

// Ascending reports the current sort direction.
func (c *ListController[T]) Ascending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.asc
}

// sortLocked stable-sorts items ascending by c.less, then reverses when
// the controller is in descending mode. Caller holds c.mu.
func (c *ListController[T]) sortLocked() {
	if c.less == nil {
		return
	}
	sort.SliceStable(c.items, func(i, j int) bool {
		return c.less(c.items[i], c.items[j])
	})
	if !c.asc {
		for i, j := 0, len(c.items)-1; i < j; i, j = i+1, j-1 {
			c.items[i], c.items[j] = c.items[j], c.items[i]
		}
	}
}

// LoadFunc fetches a single record of T.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// SubmitFunc saves a record of T and returns the saved version.
type SubmitFunc[T any] func(ctx context.Context, value T) (T, error)

// FormController holds a snapshot of a fetched record and an edit buffer.
// The save affordance is shown only while the two differ.
type FormController[T any] struct {
	load   LoadFunc[T]
	submit SubmitFunc[T]

	mu       sync.Mutex
	snapshot T
	buffer   T
	errMsg   string
}

// NewForm returns a form controller loading via load and saving via submit.
func NewForm[T any](load LoadFunc[T], submit SubmitFunc[T]) *FormController[T] {
	return &FormController[T]{load: load, submit: submit}
}

// Load fetches the record and resets the buffer to match it.
func (f *FormController[T]) Load(ctx context.Context) error {
	v, err := f.load(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		f.errMsg = err.Error()
		return err
	}
	f.snapshot = v
	f.buffer = v
	f.errMsg = ""
	return nil
}

// Buffer returns the current edit buffer.
func (f *FormController[T]) Buffer() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buffer
}

// Edit replaces the edit buffer.
func (f *FormController[T]) Edit(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buffer = v
}

// Dirty reports whether the buffer differs from the last-fetched snapshot.
func (f *FormController[T]) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !reflect.DeepEqual(f.snapshot, f.buffer)
}

// Err returns the current error message.
func (f *FormController[T]) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// Save submits the buffer. On success the saved record becomes both the
// new snapshot and the new buffer, so the form is clean again.
func (f *FormController[T]) Save(ctx context.Context) error {
	f.mu.Lock()
	buf := f.buffer
	f.mu.Unlock()

	saved, err := f.submit(ctx, buf)

	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		f.errMsg = err.Error()
		return err
	}
	f.snapshot = saved
	f.buffer = saved
	f.errMsg = ""
	return nil
}
