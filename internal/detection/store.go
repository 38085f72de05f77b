package detection

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/handspeak/handspeak-api/internal/domain"
)

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu          sync.RWMutex
	detections  map[string]DetectedSign
	byUser      map[string][]string // newest first
	suggestions map[string]Suggestion
	clock       func() time.Time
}

// NewMemoryStore creates an empty in-memory detection store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		detections:  make(map[string]DetectedSign),
		byUser:      make(map[string][]string),
		suggestions: make(map[string]Suggestion),
		clock:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Test hook.
func (s *MemoryStore) SetClock(clock func() time.Time) { s.clock = clock }

func (s *MemoryStore) CreateDetection(_ context.Context, d DetectedSign) (DetectedSign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.clock()
	}
	s.detections[d.ID] = d
	s.byUser[d.UserID] = append([]string{d.ID}, s.byUser[d.UserID]...)
	return d, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string, offset, limit int) ([]DetectedSign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return []DetectedSign{}, nil
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]DetectedSign, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, s.detections[id])
	}
	return out, nil
}

func (s *MemoryStore) CreateSuggestion(_ context.Context, detectionID, suggestedText string) (Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.detections[detectionID]; !ok {
		return Suggestion{}, domain.NotFound(domain.KindDetection, detectionID)
	}
	if _, ok := s.suggestions[detectionID]; ok {
		return Suggestion{}, domain.Conflict(domain.KindSuggestion, detectionID)
	}
	sg := Suggestion{DetectionID: detectionID, SuggestedText: suggestedText}
	s.suggestions[detectionID] = sg
	return sg, nil
}

func (s *MemoryStore) AcceptSuggestion(_ context.Context, detectionID, acceptedText string) (Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sg, ok := s.suggestions[detectionID]
	if !ok {
		return Suggestion{}, domain.NotFound(domain.KindSuggestion, detectionID)
	}
	// First acceptance wins; later calls do not move the timestamp.
	if sg.AcceptedAt == nil {
		at := s.clock()
		sg.AcceptedAt = &at
		sg.AcceptedText = &acceptedText
		s.suggestions[detectionID] = sg
	}
	return sg, nil
}
