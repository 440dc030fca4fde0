package project

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/redislock"
)

// keyedMutex hands out one mutex per project id. Entries are dropped when
// their last holder leaves.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[int64]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[int64]*keyedEntry)}
}

func (k *keyedMutex) lock(id int64) func() {
	k.mu.Lock()
	e, ok := k.entries[id]
	if !ok {
		e = &keyedEntry{}
		k.entries[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}

// lockProject serializes writers of one project inside this process and,
// when a Redis locker is set, across processes.
func (s *Service) lockProject(ctx context.Context, projectID int64) (func(), error) {
	unlock := s.locks.lock(projectID)
	if s.remote == nil {
		return unlock, nil
	}

	remote, err := s.remote.Acquire(ctx, redislock.ProjectKey(projectID))
	if err != nil {
		unlock()
		return nil, fmt.Errorf("locking project %d: %w", projectID, err)
	}
	return func() {
		// The write is already committed; a lost lease only gets logged.
		if err := remote.Release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("releasing project lock", "project_id", projectID, "error", err)
		}
		unlock()
	}, nil
}
