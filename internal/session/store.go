package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spacesedan/emotisense/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// Store persists analysis sessions. Implementations return ErrSessionNotFound for
// missing or expired sessions.
type Store interface {
	Get(ctx context.Context, id string) (models.AnalysisSession, error)
	Put(ctx context.Context, s models.AnalysisSession) error
	Delete(ctx context.Context, id string) error
}

// maxSweepInterval bounds how long expired sessions can linger in a MemoryStore.
const maxSweepInterval = time.Minute

type memoryEntry struct {
	session   models.AnalysisSession
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Entries expire ttl after their last
// write; a ttl of zero or less keeps them forever. Expired entries are dropped on read and
// swept on write.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]memoryEntry
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) expired(e memoryEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (m *MemoryStore) Get(_ context.Context, id string) (models.AnalysisSession, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return models.AnalysisSession{}, ErrSessionNotFound
	}

	if now := m.now(); m.expired(e, now) {
		m.mu.Lock()
		// Re-check under the write lock; a Put may have refreshed it.
		if cur, ok := m.sessions[id]; ok && m.expired(cur, now) {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
		return models.AnalysisSession{}, ErrSessionNotFound
	}
	return e.session, nil
}

func (m *MemoryStore) Put(_ context.Context, s models.AnalysisSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e := memoryEntry{session: s}
	if m.ttl > 0 {
		e.expiresAt = now.Add(m.ttl)
	}
	m.sessions[s.ID] = e

	m.sweepLocked(now)
	return nil
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	interval := min(m.ttl, maxSweepInterval)
	if now.Sub(m.lastSweep) < interval {
		return
	}
	m.lastSweep = now

	for id, e := range m.sessions {
		if m.expired(e, now) {
			delete(m.sessions, id)
		}
	}
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}
