package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/handspeak/handspeak-api/internal/catalog"
	"github.com/handspeak/handspeak-api/internal/domain"
)

// Catalog is the slice of the catalog store the ledger needs for existence
// checks and answer targets.
type Catalog interface {
	GetLesson(ctx context.Context, id string) (catalog.Lesson, error)
	GetQuestion(ctx context.Context, id string) (catalog.Question, error)
}

// UserChecker verifies that a user exists.
type UserChecker interface {
	UserExists(ctx context.Context, id string) error
}

// Ledger exposes the progress-tracking operations. All preconditions are
// checked before any write; compound writes go through the store as one
// atomic unit.
type Ledger struct {
	store   Store
	catalog Catalog
	users   UserChecker
}

// NewLedger creates a progress ledger over the given store and collaborators.
func NewLedger(store Store, cat Catalog, users UserChecker) *Ledger {
	return &Ledger{store: store, catalog: cat, users: users}
}

// StartLesson creates the progress record for (user, lesson), or returns the
// existing one untouched. Starting a lesson twice is idempotent: no duplicate
// row, no timestamp refresh.
func (l *Ledger) StartLesson(ctx context.Context, userID, lessonID string) (LessonProgress, error) {
	if err := l.users.UserExists(ctx, userID); err != nil {
		return LessonProgress{}, err
	}
	if _, err := l.catalog.GetLesson(ctx, lessonID); err != nil {
		return LessonProgress{}, err
	}

	existing, err := l.store.GetProgressByUserLesson(ctx, userID, lessonID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return LessonProgress{}, err
	}

	created, err := l.store.CreateProgress(ctx, LessonProgress{
		UserID:   userID,
		LessonID: lessonID,
	})
	if errors.Is(err, domain.ErrConflict) {
		// Lost a creation race; the winner's row is the answer.
		return l.store.GetProgressByUserLesson(ctx, userID, lessonID)
	}
	if err != nil {
		return LessonProgress{}, err
	}

	slog.Info("lesson started",
		"progress_id", created.ID,
		"user_id", userID,
		"lesson_id", lessonID,
	)
	return created, nil
}

// BeginQuestion opens a question under a progress record, creating the empty
// answer row the later submission will fill in. A second call for the same
// pair fails with a conflict.
func (l *Ledger) BeginQuestion(ctx context.Context, progressID, questionID string) (Answer, error) {
	if _, err := l.catalog.GetQuestion(ctx, questionID); err != nil {
		return Answer{}, err
	}
	if _, err := l.store.GetProgress(ctx, progressID); err != nil {
		return Answer{}, err
	}
	return l.store.CreateAnswer(ctx, progressID, questionID)
}

// SubmitAnswer grades the user's choice against the question's target and
// records the result. Preconditions in order: the answer record must exist
// (opened via BeginQuestion), then the question, then the parent progress row.
// A correct submission increments the progress tally by exactly one — even
// when the same question was already answered correctly before. The activity
// timestamp is refreshed either way.
func (l *Ledger) SubmitAnswer(ctx context.Context, progressID, questionID, choice string) (bool, error) {
	if _, err := l.store.GetAnswer(ctx, progressID, questionID); err != nil {
		return false, err
	}
	question, err := l.catalog.GetQuestion(ctx, questionID)
	if err != nil {
		return false, err
	}

	correct := Normalize(choice) == Normalize(question.Target)

	if err := l.store.RecordAnswer(ctx, progressID, questionID, choice, correct); err != nil {
		return false, fmt.Errorf("record answer: %w", err)
	}

	slog.Debug("answer submitted",
		"progress_id", progressID,
		"question_id", questionID,
		"correct", correct,
	)
	return correct, nil
}

// SummaryForUser returns the user's progress rows ordered by last activity,
// oldest first.
func (l *Ledger) SummaryForUser(ctx context.Context, userID string) ([]Summary, error) {
	if err := l.users.UserExists(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := l.store.ListProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(rows))
	for _, p := range rows {
		out = append(out, Summary{
			ProgressID:       p.ID,
			LessonID:         p.LessonID,
			LastActivityAt:   p.LastActivityAt,
			CorrectQuestions: p.CorrectQuestions,
		})
	}
	return out, nil
}

// AnswersForProgress returns the answer records under a progress row. No
// ordering is guaranteed.
func (l *Ledger) AnswersForProgress(ctx context.Context, progressID string) ([]Answer, error) {
	if _, err := l.store.GetProgress(ctx, progressID); err != nil {
		return nil, err
	}
	return l.store.ListAnswers(ctx, progressID)
}
