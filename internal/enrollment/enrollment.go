// Package enrollment tracks which courses a user is signed up for and how far
// along each one they are.
package enrollment

import (
	"context"
	"time"
)

// Enrollment links a user to a course they are taking. Fraction is the share
// of the course completed, in [0, 1]; CompletedAt is set once Fraction first
// reaches 1 and never cleared afterwards.
type Enrollment struct {
	ID          string     `json:"enrollment_id"`
	UserID      string     `json:"user_id"`
	CourseID    string     `json:"course_id"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Fraction    float64    `json:"progress"`
}

// Store persists enrollments.
type Store interface {
	Create(ctx context.Context, userID, courseID string) (Enrollment, error)
	Get(ctx context.Context, userID, courseID string) (Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]Enrollment, error)
	UpdateFraction(ctx context.Context, userID, courseID string, fraction float64) (Enrollment, error)
	Delete(ctx context.Context, userID, courseID string) error
}
