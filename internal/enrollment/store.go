package enrollment

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
	byUser  map[string][]string // userID -> enrollment IDs, insertion order
	entries map[string]Enrollment
	clock   func() time.Time
}

// NewMemoryStore creates an empty in-memory enrollment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUser:  make(map[string][]string),
		entries: make(map[string]Enrollment),
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Test hook.
func (s *MemoryStore) SetClock(clock func() time.Time) { s.clock = clock }

func (s *MemoryStore) Create(_ context.Context, userID, courseID string) (Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byUser[userID] {
		if s.entries[id].CourseID == courseID {
			return Enrollment{}, domain.Conflict(domain.KindEnrollment, userID+"/"+courseID)
		}
	}
	e := Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: s.clock(),
	}
	s.entries[e.ID] = e
	s.byUser[userID] = append(s.byUser[userID], e.ID)
	return e, nil
}

func (s *MemoryStore) Get(_ context.Context, userID, courseID string) (Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(userID, courseID)
}

func (s *MemoryStore) find(userID, courseID string) (Enrollment, error) {
	for _, id := range s.byUser[userID] {
		if e := s.entries[id]; e.CourseID == courseID {
			return e, nil
		}
	}
	return Enrollment{}, domain.NotFound(domain.KindEnrollment, userID+"/"+courseID)
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Enrollment{}
	for _, id := range s.byUser[userID] {
		out = append(out, s.entries[id])
	}
	return out, nil
}

func (s *MemoryStore) UpdateFraction(_ context.Context, userID, courseID string, fraction float64) (Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.find(userID, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	e.Fraction = clampFraction(fraction)
	if e.Fraction >= 1 && e.CompletedAt == nil {
		at := s.clock()
		e.CompletedAt = &at
	}
	s.entries[e.ID] = e
	return e, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.find(userID, courseID)
	if err != nil {
		return err
	}
	delete(s.entries, e.ID)
	ids := s.byUser[userID]
	for i, id := range ids {
		if id == e.ID {
			s.byUser[userID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
