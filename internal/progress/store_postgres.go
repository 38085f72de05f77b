package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handspeak/handspeak-api/internal/domain"
)

const pgUniqueViolation = "23505"

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed progress store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateProgress(ctx context.Context, p LessonProgress) (LessonProgress, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.LastActivityAt.IsZero() {
		p.LastActivityAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_lesson_progress (progress_id, user_id, lesson_id, last_activity_at, correct_questions)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4, $5)`,
		p.ID, p.UserID, p.LessonID, p.LastActivityAt, p.CorrectQuestions,
	)
	if isUniqueViolation(err) {
		return LessonProgress{}, domain.Conflict(domain.KindProgress, p.UserID+"/"+p.LessonID)
	}
	if err != nil {
		return LessonProgress{}, fmt.Errorf("create progress: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetProgress(ctx context.Context, progressID string) (LessonProgress, error) {
	return s.scanProgress(ctx,
		`SELECT progress_id::text, user_id::text, lesson_id::text, last_activity_at, correct_questions
		 FROM user_lesson_progress WHERE progress_id = $1::uuid`,
		progressID, progressID)
}

func (s *PostgresStore) GetProgressByUserLesson(ctx context.Context, userID, lessonID string) (LessonProgress, error) {
	var p LessonProgress
	err := s.pool.QueryRow(ctx,
		`SELECT progress_id::text, user_id::text, lesson_id::text, last_activity_at, correct_questions
		 FROM user_lesson_progress WHERE user_id = $1::uuid AND lesson_id = $2::uuid`,
		userID, lessonID,
	).Scan(&p.ID, &p.UserID, &p.LessonID, &p.LastActivityAt, &p.CorrectQuestions)
	if errors.Is(err, pgx.ErrNoRows) {
		return LessonProgress{}, domain.NotFound(domain.KindProgress, userID+"/"+lessonID)
	}
	if err != nil {
		return LessonProgress{}, fmt.Errorf("get progress: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) scanProgress(ctx context.Context, query, arg, key string) (LessonProgress, error) {
	var p LessonProgress
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.UserID, &p.LessonID, &p.LastActivityAt, &p.CorrectQuestions,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return LessonProgress{}, domain.NotFound(domain.KindProgress, key)
	}
	if err != nil {
		return LessonProgress{}, fmt.Errorf("get progress: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListProgressByUser(ctx context.Context, userID string) ([]LessonProgress, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT progress_id::text, user_id::text, lesson_id::text, last_activity_at, correct_questions
		 FROM user_lesson_progress WHERE user_id = $1::uuid
		 ORDER BY last_activity_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	out := []LessonProgress{}
	for rows.Next() {
		var p LessonProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.LessonID, &p.LastActivityAt, &p.CorrectQuestions); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateAnswer(ctx context.Context, progressID, questionID string) (Answer, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_question_answers (progress_id, question_id)
		 VALUES ($1::uuid, $2::uuid)`,
		progressID, questionID,
	)
	if isUniqueViolation(err) {
		return Answer{}, domain.Conflict(domain.KindAnswer, progressID+"/"+questionID)
	}
	if err != nil {
		return Answer{}, fmt.Errorf("create answer: %w", err)
	}
	return Answer{ProgressID: progressID, QuestionID: questionID}, nil
}

func (s *PostgresStore) GetAnswer(ctx context.Context, progressID, questionID string) (Answer, error) {
	var a Answer
	err := s.pool.QueryRow(ctx,
		`SELECT progress_id::text, question_id::text, user_choice, is_correct
		 FROM user_question_answers
		 WHERE progress_id = $1::uuid AND question_id = $2::uuid`,
		progressID, questionID,
	).Scan(&a.ProgressID, &a.QuestionID, &a.Choice, &a.Correct)
	if errors.Is(err, pgx.ErrNoRows) {
		return Answer{}, domain.NotFound(domain.KindAnswer, progressID+"/"+questionID)
	}
	if err != nil {
		return Answer{}, fmt.Errorf("get answer: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListAnswers(ctx context.Context, progressID string) ([]Answer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT progress_id::text, question_id::text, user_choice, is_correct
		 FROM user_question_answers WHERE progress_id = $1::uuid`,
		progressID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	out := []Answer{}
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ProgressID, &a.QuestionID, &a.Choice, &a.Correct); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RecordAnswer overwrites the answer row and applies the progress bookkeeping
// in one transaction; a failure at any step rolls the whole unit back.
func (s *PostgresStore) RecordAnswer(ctx context.Context, progressID, questionID, choice string, correct bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin record answer: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cmd, err := tx.Exec(ctx,
		`UPDATE user_question_answers
		 SET user_choice = $3, is_correct = $4
		 WHERE progress_id = $1::uuid AND question_id = $2::uuid`,
		progressID, questionID, choice, correct,
	)
	if err != nil {
		return fmt.Errorf("update answer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound(domain.KindAnswer, progressID+"/"+questionID)
	}

	cmd, err = tx.Exec(ctx,
		`UPDATE user_lesson_progress
		 SET correct_questions = correct_questions + CASE WHEN $2 THEN 1 ELSE 0 END,
		     last_activity_at = NOW()
		 WHERE progress_id = $1::uuid`,
		progressID, correct,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		// Answer without its parent progress row: data corruption, surface it.
		return domain.NotFound(domain.KindProgress, progressID)
	}

	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
