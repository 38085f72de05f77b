// Package practice tracks free-practice sessions: a user drilling a single
// question from a course outside the lesson progress flow.
package practice

import (
	"context"
	"time"
)

// Session is one practice run of a question. QuestionType is copied from the
// question at start time so the record stays meaningful if the question
// changes later. CompletedAt is set once on first completion and never moved.
type Session struct {
	ID           string     `json:"session_id"`
	UserID       string     `json:"user_id"`
	CourseID     string     `json:"course_id"`
	QuestionID   string     `json:"question_id"`
	QuestionType string     `json:"question_type,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Store persists practice sessions.
type Store interface {
	Create(ctx context.Context, s Session) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	ListByUser(ctx context.Context, userID string) ([]Session, error)
	Complete(ctx context.Context, id string) (Session, error)
	CompleteForQuestion(ctx context.Context, userID, questionID string) (Session, error)
}
