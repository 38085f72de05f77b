package enrollment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handspeak/handspeak-api/internal/domain"
)

const pgUniqueViolation = "23505"

const enrollmentColumns = `enrollment_id::text, user_id::text, course_id::text, enrolled_at, completed_at, progress`

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed enrollment store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Create(ctx context.Context, userID, courseID string) (Enrollment, error) {
	e := Enrollment{ID: uuid.NewString(), UserID: userID, CourseID: courseID}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO user_course_enrollments (enrollment_id, user_id, course_id)
		 VALUES ($1::uuid, $2::uuid, $3::uuid)
		 RETURNING enrolled_at, progress`,
		e.ID, userID, courseID,
	).Scan(&e.EnrolledAt, &e.Fraction)
	if isUniqueViolation(err) {
		return Enrollment{}, domain.Conflict(domain.KindEnrollment, userID+"/"+courseID)
	}
	if err != nil {
		return Enrollment{}, fmt.Errorf("create enrollment: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, courseID string) (Enrollment, error) {
	var e Enrollment
	err := s.pool.QueryRow(ctx,
		`SELECT `+enrollmentColumns+`
		 FROM user_course_enrollments
		 WHERE user_id = $1::uuid AND course_id = $2::uuid`,
		userID, courseID,
	).Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt, &e.CompletedAt, &e.Fraction)
	if errors.Is(err, pgx.ErrNoRows) {
		return Enrollment{}, domain.NotFound(domain.KindEnrollment, userID+"/"+courseID)
	}
	if err != nil {
		return Enrollment{}, fmt.Errorf("get enrollment: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Enrollment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+enrollmentColumns+`
		 FROM user_course_enrollments
		 WHERE user_id = $1::uuid
		 ORDER BY enrolled_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	out := []Enrollment{}
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt, &e.CompletedAt, &e.Fraction); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateFraction(ctx context.Context, userID, courseID string, fraction float64) (Enrollment, error) {
	fraction = clampFraction(fraction)
	var e Enrollment
	err := s.pool.QueryRow(ctx,
		`UPDATE user_course_enrollments
		 SET progress = $3,
		     completed_at = CASE WHEN $3 >= 1 THEN COALESCE(completed_at, NOW()) ELSE completed_at END
		 WHERE user_id = $1::uuid AND course_id = $2::uuid
		 RETURNING `+enrollmentColumns,
		userID, courseID, fraction,
	).Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt, &e.CompletedAt, &e.Fraction)
	if errors.Is(err, pgx.ErrNoRows) {
		return Enrollment{}, domain.NotFound(domain.KindEnrollment, userID+"/"+courseID)
	}
	if err != nil {
		return Enrollment{}, fmt.Errorf("update enrollment: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, courseID string) error {
	cmd, err := s.pool.Exec(ctx,
		`DELETE FROM user_course_enrollments
		 WHERE user_id = $1::uuid AND course_id = $2::uuid`,
		userID, courseID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound(domain.KindEnrollment, userID+"/"+courseID)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
