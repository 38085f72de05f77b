package practice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/handspeak/handspeak-api/internal/catalog"
)

// Catalog is the slice of the course catalog the service needs.
type Catalog interface {
	GetCourse(ctx context.Context, id string) (catalog.Course, error)
	GetQuestion(ctx context.Context, id string) (catalog.Question, error)
}

// UserChecker reports whether a user account exists.
type UserChecker interface {
	UserExists(ctx context.Context, id string) error
}

// Service enforces referential checks before touching the practice store.
type Service struct {
	store   Store
	catalog Catalog
	users   UserChecker
	log     *slog.Logger
}

// NewService wires a practice service.
func NewService(store Store, cat Catalog, users UserChecker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, catalog: cat, users: users, log: log}
}

// Start opens a practice session for the question. User, course and question
// must all exist; the question's type is copied onto the session record.
func (s *Service) Start(ctx context.Context, userID, courseID, questionID string) (Session, error) {
	if err := s.users.UserExists(ctx, userID); err != nil {
		return Session{}, err
	}
	if _, err := s.catalog.GetCourse(ctx, courseID); err != nil {
		return Session{}, fmt.Errorf("start practice: %w", err)
	}
	q, err := s.catalog.GetQuestion(ctx, questionID)
	if err != nil {
		return Session{}, fmt.Errorf("start practice: %w", err)
	}

	sess, err := s.store.Create(ctx, Session{
		UserID:       userID,
		CourseID:     courseID,
		QuestionID:   questionID,
		QuestionType: string(q.Type),
	})
	if err != nil {
		return Session{}, err
	}
	s.log.Info("practice session started", "session_id", sess.ID, "user_id", userID, "question_id", questionID)
	return sess, nil
}

// Get returns the session by ID.
func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	return s.store.Get(ctx, id)
}

// ListForUser returns the user's sessions in start order.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Session, error) {
	if err := s.users.UserExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListByUser(ctx, userID)
}

// Complete stamps the session's completion time. Completing an already
// finished session returns it unchanged.
func (s *Service) Complete(ctx context.Context, id string) (Session, error) {
	return s.store.Complete(ctx, id)
}

// CompleteForQuestion completes the user's earliest session for the question,
// for clients that track questions rather than session IDs.
func (s *Service) CompleteForQuestion(ctx context.Context, userID, questionID string) (Session, error) {
	return s.store.CompleteForQuestion(ctx, userID, questionID)
}
