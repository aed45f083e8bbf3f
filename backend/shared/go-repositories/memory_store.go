package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// memoryStore is the in-process backing for the item repositories when no
// database is configured. It keeps insertion order with the newest record
// first and hands out deep copies so callers never alias stored state.
type memoryStore[T EntityWithVersion] struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]T
	clone func(T) T
}

func newMemoryStore[T EntityWithVersion](clone func(T) T) *memoryStore[T] {
	return &memoryStore[T]{byID: make(map[string]T), clone: clone}
}

func (s *memoryStore[T]) create(e T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := e.GetID()
	if _, exists := s.byID[id]; exists {
		return fmt.Errorf("duplicate id %q", id)
	}
	stored := s.clone(e)
	stored.SetRowVersion(1)
	e.SetRowVersion(1)
	s.byID[id] = stored
	s.order = append([]string{id}, s.order...)
	return nil
}

// get returns the zero T when id is unknown, like the postgres scanners.
func (s *memoryStore[T]) get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		var zero T
		return zero, nil
	}
	return s.clone(e), nil
}

func (s *memoryStore[T]) list(keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		e := s.byID[id]
		if keep == nil || keep(e) {
			out = append(out, s.clone(e))
		}
	}
	return out
}

func (s *memoryStore[T]) updateIfVersion(_ context.Context, e T, expected int64) (pgconn.CommandTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[e.GetID()]
	if !ok || cur.GetRowVersion() != expected {
		return tagNotUpdated, nil
	}
	stored := s.clone(e)
	stored.SetRowVersion(expected + 1)
	s.byID[e.GetID()] = stored
	return tagUpdated, nil
}

// mutate applies fn under the write lock and bumps the row version.
func (s *memoryStore[T]) mutate(id string, fn func(T)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[id]
	if !ok {
		var zero T
		return zero, pgx.ErrNoRows
	}
	fn(cur)
	cur.SetRowVersion(cur.GetRowVersion() + 1)
	return s.clone(cur), nil
}

func (s *memoryStore[T]) delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
