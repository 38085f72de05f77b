package progress

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/handspeak/handspeak-api/internal/domain"
)

// Store persists lesson progress rows and their answer records.
//
// RecordAnswer is the one compound write: it overwrites the answer and applies
// the progress-side bookkeeping (conditional increment, activity timestamp) as
// a single atomic unit.
type Store interface {
	CreateProgress(ctx context.Context, p LessonProgress) (LessonProgress, error)
	GetProgress(ctx context.Context, progressID string) (LessonProgress, error)
	GetProgressByUserLesson(ctx context.Context, userID, lessonID string) (LessonProgress, error)
	ListProgressByUser(ctx context.Context, userID string) ([]LessonProgress, error)

	CreateAnswer(ctx context.Context, progressID, questionID string) (Answer, error)
	GetAnswer(ctx context.Context, progressID, questionID string) (Answer, error)
	ListAnswers(ctx context.Context, progressID string) ([]Answer, error)
	RecordAnswer(ctx context.Context, progressID, questionID, choice string, correct bool) error
}

type answerKey struct {
	progressID string
	questionID string
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	progress map[string]LessonProgress
	answers  map[answerKey]Answer
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		progress: make(map[string]LessonProgress),
		answers:  make(map[answerKey]Answer),
		now:      time.Now,
	}
}

// SetClock overrides the store's time source. Tests only.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *MemoryStore) CreateProgress(_ context.Context, p LessonProgress) (LessonProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.progress {
		if existing.UserID == p.UserID && existing.LessonID == p.LessonID {
			return LessonProgress{}, domain.Conflict(domain.KindProgress, p.UserID+"/"+p.LessonID)
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.LastActivityAt.IsZero() {
		p.LastActivityAt = s.now().UTC()
	}
	s.progress[p.ID] = p
	return p, nil
}

func (s *MemoryStore) GetProgress(_ context.Context, progressID string) (LessonProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.progress[progressID]
	if !ok {
		return LessonProgress{}, domain.NotFound(domain.KindProgress, progressID)
	}
	return p, nil
}

func (s *MemoryStore) GetProgressByUserLesson(_ context.Context, userID, lessonID string) (LessonProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.progress {
		if p.UserID == userID && p.LessonID == lessonID {
			return p, nil
		}
	}
	return LessonProgress{}, domain.NotFound(domain.KindProgress, userID+"/"+lessonID)
}

func (s *MemoryStore) ListProgressByUser(_ context.Context, userID string) ([]LessonProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []LessonProgress{}
	for _, p := range s.progress {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivityAt.Before(out[j].LastActivityAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateAnswer(_ context.Context, progressID, questionID string) (Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := answerKey{progressID, questionID}
	if _, ok := s.answers[key]; ok {
		return Answer{}, domain.Conflict(domain.KindAnswer, progressID+"/"+questionID)
	}
	a := Answer{ProgressID: progressID, QuestionID: questionID}
	s.answers[key] = a
	return a, nil
}

func (s *MemoryStore) GetAnswer(_ context.Context, progressID, questionID string) (Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.answers[answerKey{progressID, questionID}]
	if !ok {
		return Answer{}, domain.NotFound(domain.KindAnswer, progressID+"/"+questionID)
	}
	return a, nil
}

func (s *MemoryStore) ListAnswers(_ context.Context, progressID string) ([]Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Answer{}
	for key, a := range s.answers {
		if key.progressID == progressID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) RecordAnswer(_ context.Context, progressID, questionID, choice string, correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := answerKey{progressID, questionID}
	a, ok := s.answers[key]
	if !ok {
		return domain.NotFound(domain.KindAnswer, progressID+"/"+questionID)
	}
	p, ok := s.progress[progressID]
	if !ok {
		return domain.NotFound(domain.KindProgress, progressID)
	}

	a.Choice = &choice
	a.Correct = &correct
	s.answers[key] = a

	if correct {
		p.CorrectQuestions++
	}
	p.LastActivityAt = s.now().UTC()
	s.progress[progressID] = p
	return nil
}
