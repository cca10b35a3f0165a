// Package store provides interview.Store implementations backed by process
// memory and by SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/hh-interviewer/internal/interview"
)

// Memory keeps sessions in process memory.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]*interview.Session
	locks    keyedMutex
	now      func() time.Time
}

var _ interview.Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	o := buildOptions(opts)
	return &Memory{
		sessions: make(map[string]*interview.Session),
		now:      o.now,
	}
}

func (m *Memory) Create(_ context.Context, s *interview.Session) (string, error) {
	stored := s.Clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = m.now()
	stored.UpdatedAt = stored.CreatedAt

	m.mu.Lock()
	m.sessions[stored.ID] = stored
	m.mu.Unlock()

	return stored.ID, nil
}

func (m *Memory) Get(_ context.Context, id string) (*interview.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, interview.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, id string, mutate func(*interview.Session) error) (*interview.Session, error) {
	unlock := m.locks.lock(id)
	defer unlock()

	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		if errors.Is(err, interview.ErrNoChange) {
			return current, nil
		}
		return nil, err
	}
	if err := interview.ValidateUpdate(current, next); err != nil {
		return nil, fmt.Errorf("update session %s: %w", id, err)
	}
	next.UpdatedAt = m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	// The janitor may have expired the session while the mutator ran.
	if _, ok := m.sessions[id]; !ok {
		return nil, interview.ErrSessionNotFound
	}
	m.sessions[id] = next

	return next.Clone(), nil
}

func (m *Memory) Expire(_ context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(olderThan) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
