package detection

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

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed detection store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateDetection(ctx context.Context, d DetectedSign) (DetectedSign, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO detected_signs (detection_id, user_id, detected_character, current_user_text, created_at)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5)`,
		d.ID, d.UserID, d.Char, d.CurrentText, d.CreatedAt,
	)
	if err != nil {
		return DetectedSign{}, fmt.Errorf("create detection: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string, offset, limit int) ([]DetectedSign, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT detection_id::text, user_id::text, detected_character, current_user_text, created_at
		 FROM detected_signs
		 WHERE user_id = $1::uuid
		 ORDER BY created_at DESC
		 OFFSET $2 LIMIT $3`,
		userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	defer rows.Close()

	out := []DetectedSign{}
	for rows.Next() {
		var d DetectedSign
		if err := rows.Scan(&d.ID, &d.UserID, &d.Char, &d.CurrentText, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan detection: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateSuggestion(ctx context.Context, detectionID, suggestedText string) (Suggestion, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO auto_suggests (detection_id, suggested_text) VALUES ($1::uuid, $2)`,
		detectionID, suggestedText,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return Suggestion{}, domain.Conflict(domain.KindSuggestion, detectionID)
		case pgForeignKeyViolation:
			return Suggestion{}, domain.NotFound(domain.KindDetection, detectionID)
		}
	}
	if err != nil {
		return Suggestion{}, fmt.Errorf("create suggestion: %w", err)
	}
	return Suggestion{DetectionID: detectionID, SuggestedText: suggestedText}, nil
}

func (s *PostgresStore) AcceptSuggestion(ctx context.Context, detectionID, acceptedText string) (Suggestion, error) {
	var sg Suggestion
	err := s.pool.QueryRow(ctx,
		`UPDATE auto_suggests
		 SET accepted_text = COALESCE(accepted_text, $2),
		     accepted_at = COALESCE(accepted_at, NOW())
		 WHERE detection_id = $1::uuid
		 RETURNING detection_id::text, suggested_text, accepted_text, accepted_at`,
		detectionID, acceptedText,
	).Scan(&sg.DetectionID, &sg.SuggestedText, &sg.AcceptedText, &sg.AcceptedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Suggestion{}, domain.NotFound(domain.KindSuggestion, detectionID)
	}
	if err != nil {
		return Suggestion{}, fmt.Errorf("accept suggestion: %w", err)
	}
	return sg, nil
}
