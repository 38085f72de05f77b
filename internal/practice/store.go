package practice

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/handspeak/handspeak-api/internal/domain"
)

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	byUser  map[string][]string // userID -> session IDs, start order
	entries map[string]Session
	clock   func() time.Time
}

// NewMemoryStore creates an empty in-memory practice store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUser:  make(map[string][]string),
		entries: make(map[string]Session),
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Test hook.
func (s *MemoryStore) SetClock(clock func() time.Time) { s.clock = clock }

func (s *MemoryStore) Create(_ context.Context, in Session) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.ID = uuid.NewString()
	in.StartedAt = s.clock()
	in.CompletedAt = nil
	s.entries[in.ID] = in
	s.byUser[in.UserID] = append(s.byUser[in.UserID], in.ID)
	return in, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.entries[id]
	if !ok {
		return Session{}, domain.NotFound(domain.KindPractice, id)
	}
	return sess, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Session{}
	for _, id := range s.byUser[userID] {
		out = append(out, s.entries[id])
	}
	return out, nil
}

func (s *MemoryStore) Complete(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.entries[id]
	if !ok {
		return Session{}, domain.NotFound(domain.KindPractice, id)
	}
	return s.complete(sess), nil
}

func (s *MemoryStore) CompleteForQuestion(_ context.Context, userID, questionID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Earliest session for the pair wins, matching start order.
	for _, id := range s.byUser[userID] {
		if sess := s.entries[id]; sess.QuestionID == questionID {
			return s.complete(sess), nil
		}
	}
	return Session{}, domain.NotFound(domain.KindPractice, userID+"/"+questionID)
}

func (s *MemoryStore) complete(sess Session) Session {
	if sess.CompletedAt == nil {
		at := s.clock()
		sess.CompletedAt = &at
		s.entries[sess.ID] = sess
	}
	return sess
}
