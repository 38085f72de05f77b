package practice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handspeak/handspeak-api/internal/domain"
)

const sessionColumns = `session_id::text, user_id::text, course_id::text, question_id::text, question_type, started_at, completed_at`

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed practice store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Create(ctx context.Context, in Session) (Session, error) {
	in.ID = uuid.NewString()
	in.CompletedAt = nil
	err := s.pool.QueryRow(ctx,
		`INSERT INTO practice_sessions (session_id, user_id, course_id, question_id, question_type)
		 VALUES ($1::uuid, $2::uuid, $3::uuid, $4::uuid, $5)
		 RETURNING started_at`,
		in.ID, in.UserID, in.CourseID, in.QuestionID, in.QuestionType,
	).Scan(&in.StartedAt)
	if err != nil {
		return Session{}, fmt.Errorf("create practice session: %w", err)
	}
	return in, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM practice_sessions WHERE session_id = $1::uuid`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.CourseID, &sess.QuestionID, &sess.QuestionType, &sess.StartedAt, &sess.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, domain.NotFound(domain.KindPractice, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get practice session: %w", err)
	}
	return sess, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM practice_sessions
		 WHERE user_id = $1::uuid
		 ORDER BY started_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list practice sessions: %w", err)
	}
	defer rows.Close()

	out := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.CourseID, &sess.QuestionID, &sess.QuestionType, &sess.StartedAt, &sess.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan practice session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Complete(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx,
		`UPDATE practice_sessions
		 SET completed_at = COALESCE(completed_at, NOW())
		 WHERE session_id = $1::uuid
		 RETURNING `+sessionColumns,
		id,
	).Scan(&sess.ID, &sess.UserID, &sess.CourseID, &sess.QuestionID, &sess.QuestionType, &sess.StartedAt, &sess.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, domain.NotFound(domain.KindPractice, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("complete practice session: %w", err)
	}
	return sess, nil
}

func (s *PostgresStore) CompleteForQuestion(ctx context.Context, userID, questionID string) (Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx,
		`UPDATE practice_sessions
		 SET completed_at = COALESCE(completed_at, NOW())
		 WHERE session_id = (SELECT session_id FROM practice_sessions
		                     WHERE user_id = $1::uuid AND question_id = $2::uuid
		                     ORDER BY started_at ASC LIMIT 1)
		 RETURNING `+sessionColumns,
		userID, questionID,
	).Scan(&sess.ID, &sess.UserID, &sess.CourseID, &sess.QuestionID, &sess.QuestionType, &sess.StartedAt, &sess.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, domain.NotFound(domain.KindPractice, userID+"/"+questionID)
	}
	if err != nil {
		return Session{}, fmt.Errorf("complete practice session: %w", err)
	}
	return sess, nil
}
