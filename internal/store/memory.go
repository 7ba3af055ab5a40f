// Package store provides SessionStore implementations: an in-memory map for
// single-process deployments and tests, and a Redis store for shared state.
package store

import (
	"context"
	"sync"

	"voxbot/internal/domain"
)

// Memory is the default in-process session store.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewMemory() *Memory {
	return &Memory{sessions: map[string]domain.Session{}}
}

func (m *Memory) Load(_ context.Context, sessionID string) (domain.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[sessionID]
	return session, ok, nil
}

func (m *Memory) Save(_ context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}
