package enrollment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/handspeak/handspeak-api/internal/catalog"
)

// Catalog is the slice of the course catalog the service needs.
type Catalog interface {
	GetCourse(ctx context.Context, id string) (catalog.Course, error)
}

// UserChecker reports whether a user account exists.
type UserChecker interface {
	UserExists(ctx context.Context, id string) error
}

// Service enforces referential checks before touching the enrollment store.
type Service struct {
	store   Store
	courses Catalog
	users   UserChecker
	log     *slog.Logger
}

// NewService wires an enrollment service.
func NewService(store Store, courses Catalog, users UserChecker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, courses: courses, users: users, log: log}
}

// Enroll signs a user up for a course. Both sides must exist; enrolling twice
// in the same course is a conflict.
func (s *Service) Enroll(ctx context.Context, userID, courseID string) (Enrollment, error) {
	if err := s.users.UserExists(ctx, userID); err != nil {
		return Enrollment{}, err
	}
	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return Enrollment{}, fmt.Errorf("enroll: %w", err)
	}
	e, err := s.store.Create(ctx, userID, courseID)
	if err != nil {
		return Enrollment{}, err
	}
	s.log.Info("user enrolled", "user_id", userID, "course_id", courseID)
	return e, nil
}

// ListForUser returns the user's enrollments in enrollment order.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Enrollment, error) {
	if err := s.users.UserExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListByUser(ctx, userID)
}

// SetFraction records how much of the course the user has completed. The
// fraction is clamped to [0, 1]; reaching 1 stamps the completion time once.
func (s *Service) SetFraction(ctx context.Context, userID, courseID string, fraction float64) (Enrollment, error) {
	return s.store.UpdateFraction(ctx, userID, courseID, fraction)
}

// Unenroll removes the user's enrollment in the course.
func (s *Service) Unenroll(ctx context.Context, userID, courseID string) error {
	return s.store.Delete(ctx, userID, courseID)
}
