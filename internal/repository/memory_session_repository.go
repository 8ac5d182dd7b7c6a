package repository

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/tracker-console/internal/models"
)

type memorySession struct {
	session   models.Session
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. Sessions idle for longer than
// the TTL are dropped on access.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore constructs an in-memory store. A zero ttl disables expiry.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(sessionID)
	if entry == nil {
		return models.Session{}, nil
	}
	s.touch(entry)
	snapshot := entry.session
	if entry.session.Profile != nil {
		profile := *entry.session.Profile
		snapshot.Profile = &profile
	}
	return snapshot, nil
}

func (s *MemorySessionStore) SetAuthToken(_ context.Context, sessionID, authToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.upsert(sessionID)
	entry.session.AuthToken = authToken
	return nil
}

func (s *MemorySessionStore) SaveTokens(_ context.Context, sessionID, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.upsert(sessionID)
	entry.session.AccessToken = access
	if refresh != "" {
		entry.session.RefreshToken = refresh
	}
	return nil
}

func (s *MemorySessionStore) SaveProfile(_ context.Context, sessionID string, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.upsert(sessionID)
	if profile == nil {
		entry.session.Profile = nil
		return nil
	}
	cp := *profile
	entry.session.Profile = &cp
	return nil
}

func (s *MemorySessionStore) ClearTokens(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(sessionID)
	if entry == nil {
		return nil
	}
	entry.session.AccessToken = ""
	entry.session.RefreshToken = ""
	entry.session.Profile = nil
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// Len reports the number of live sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.sessions {
		s.live(id)
	}
	return len(s.sessions)
}

// live returns the entry for id, evicting it when expired. Callers hold mu.
func (s *MemorySessionStore) live(id string) *memorySession {
	entry, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if s.ttl > 0 && !s.now().Before(entry.expiresAt) {
		delete(s.sessions, id)
		return nil
	}
	return entry
}

func (s *MemorySessionStore) upsert(id string) *memorySession {
	entry := s.live(id)
	if entry == nil {
		entry = &memorySession{}
		s.sessions[id] = entry
	}
	s.touch(entry)
	return entry
}

func (s *MemorySessionStore) touch(entry *memorySession) {
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
}
