// Package store keeps the list state behind the task and journal screens:
// the current cards, a loading flag, the last error and the active filter.
// Every action takes a context; results that arrive after the context is
// cancelled are discarded.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/fastygo/daybook/domain"
)

// State is an immutable snapshot of a store.
type State[T any] struct {
	Items   []T
	Loading bool
	Error   string
	Filter  string
}

type core[T any] struct {
	mu       sync.Mutex
	state    State[T]
	inflight int
	fetchSeq uint64
	idOf     func(T) string
}

func newCore[T any](filter string, idOf func(T) string) *core[T] {
	return &core[T]{state: State[T]{Items: []T{}, Filter: filter}, idOf: idOf}
}

func (c *core[T]) snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Items = slices.Clone(c.state.Items)
	return s
}

func (c *core[T]) setFilter(name string) {
	c.mu.Lock()
	c.state.Filter = name
	c.mu.Unlock()
}

func (c *core[T]) filter() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Filter
}

func (c *core[T]) clearError() {
	c.mu.Lock()
	c.state.Error = ""
	c.mu.Unlock()
}

func (c *core[T]) find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.state.Items {
		if c.idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// begin marks an action in flight. Fetches also bump the sequence so only the latest one lands.
func (c *core[T]) begin(fetch bool) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight++
	c.state.Loading = true
	if fetch {
		c.fetchSeq++
	}
	return c.fetchSeq
}

// settle applies the outcome of an action. apply runs when the action produced
// a result, which includes partial failures. A cancelled context discards
// both the result and the error.
func (c *core[T]) settle(ctx context.Context, seq uint64, fetch bool, err error, apply func(*State[T])) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	c.state.Loading = c.inflight > 0

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if fetch && seq != c.fetchSeq {
		return err
	}
	var partial *domain.PartialError
	if apply != nil && (err == nil || errors.As(err, &partial)) {
		apply(&c.state)
	}
	if err != nil {
		c.state.Error = err.Error()
	}
	return err
}

// upsert replaces the item with the same id, prepends a new one, or drops it when keep is false.
func (c *core[T]) upsert(s *State[T], item T, keep bool) {
	id := c.idOf(item)
	idx := slices.IndexFunc(s.Items, func(existing T) bool { return c.idOf(existing) == id })
	switch {
	case idx >= 0 && keep:
		s.Items[idx] = item
	case idx >= 0:
		s.Items = slices.Delete(s.Items, idx, idx+1)
	case keep:
		s.Items = slices.Insert(s.Items, 0, item)
	}
}

func (c *core[T]) remove(s *State[T], id string) {
	s.Items = slices.DeleteFunc(s.Items, func(item T) bool { return c.idOf(item) == id })
}
