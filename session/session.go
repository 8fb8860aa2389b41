// Package session keeps the login audit trail behind an injected Store.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"dserve-api/models"
	"dserve-api/store"
)

const DefaultRecentLimit = 10

type Store interface {
	Add(ctx context.Context, s models.LoginSession) (models.LoginSession, error)
	// Recent returns the newest sessions first. A limit <= 0 means
	// DefaultRecentLimit.
	Recent(ctx context.Context, limit int) ([]models.LoginSession, error)
	// Clear drops the sessions of userID, or every session when userID is
	// empty, and reports how many were removed.
	Clear(ctx context.Context, userID string) (int, error)
}

func stamp(s *models.LoginSession, now time.Time) {
	if s.ID == "" {
		s.ID = models.NewID()
	}
	if s.LoginTime.IsZero() {
		s.LoginTime = now
	}
}

func normLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return limit
}

// Memory holds sessions for the life of the process.
type Memory struct {
	mu       sync.Mutex
	sessions []models.LoginSession
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: func() time.Time { return time.Now().UTC() }}
}

func (m *Memory) Add(_ context.Context, s models.LoginSession) (models.LoginSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp(&s, m.now())
	m.sessions = append(m.sessions, s)
	return s, nil
}

func (m *Memory) Recent(_ context.Context, limit int) ([]models.LoginSession, error) {
	m.mu.Lock()
	out := make([]models.LoginSession, len(m.sessions))
	copy(out, m.sessions)
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].LoginTime.After(out[j].LoginTime) })
	if limit = normLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Clear(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if userID == "" {
		n := len(m.sessions)
		m.sessions = nil
		return n, nil
	}
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	n := len(m.sessions) - len(kept)
	m.sessions = kept
	return n, nil
}

// Persistent writes sessions to the login_sessions table.
type Persistent struct {
	backend store.LoginSessions
	now     func() time.Time
}

func NewPersistent(backend store.LoginSessions) *Persistent {
	return &Persistent{backend: backend, now: func() time.Time { return time.Now().UTC() }}
}

func (p *Persistent) Add(ctx context.Context, s models.LoginSession) (models.LoginSession, error) {
	stamp(&s, p.now())
	if err := p.backend.AddLoginSession(ctx, &s); err != nil {
		return models.LoginSession{}, err
	}
	return s, nil
}

func (p *Persistent) Recent(ctx context.Context, limit int) ([]models.LoginSession, error) {
	return p.backend.RecentLoginSessions(ctx, normLimit(limit))
}

func (p *Persistent) Clear(ctx context.Context, userID string) (int, error) {
	n, err := p.backend.ClearLoginSessions(ctx, userID)
	return int(n), err
}
