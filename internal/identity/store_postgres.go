package identity

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

const userColumns = `user_id::text, email, user_name, password_hash, created_at, last_login`

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed user store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Create(ctx context.Context, email, username, password string) (User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return User{}, err
	}
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO users (user_id, email, user_name, password_hash)
		 VALUES ($1::uuid, $2, $3, $4)
		 RETURNING created_at, last_login`,
		u.ID, u.Email, u.Username, u.PasswordHash,
	).Scan(&u.CreatedAt, &u.LastLogin)
	if isUniqueViolation(err) {
		return User{}, domain.Conflict(domain.KindUser, email)
	}
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) Get(ctx context.Context, key LookupKey) (User, error) {
	var query string
	switch key.Field {
	case ByID:
		query = `SELECT ` + userColumns + ` FROM users WHERE user_id = $1::uuid`
	case ByEmail:
		query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	case ByUsername:
		query = `SELECT ` + userColumns + ` FROM users WHERE user_name = $1`
	default:
		return User{}, domain.Invariant("unknown user lookup field %d", key.Field)
	}

	var u User
	err := s.pool.QueryRow(ctx, query, key.Value).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.LastLogin,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, domain.NotFound(domain.KindUser, key.Value)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by %s: %w", key.Field, err)
	}
	return u, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, upd UserUpdate) (User, error) {
	var hash *string
	if upd.Password != nil {
		h, err := hashPassword(*upd.Password)
		if err != nil {
			return User{}, err
		}
		hash = &h
	}

	var u User
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET
		   email = COALESCE($2, email),
		   user_name = COALESCE($3, user_name),
		   password_hash = COALESCE($4, password_hash)
		 WHERE user_id = $1::uuid
		 RETURNING `+userColumns,
		id, upd.Email, upd.Username, hash,
	).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.LastLogin)
	if isUniqueViolation(err) {
		return User{}, domain.Conflict(domain.KindUser, *upd.Email)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, domain.NotFound(domain.KindUser, id)
	}
	if err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) List(ctx context.Context, offset, limit int) ([]User, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC OFFSET $1 LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.LastLogin); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound(domain.KindUser, id)
	}
	return nil
}

func (s *PostgresStore) TouchLogin(ctx context.Context, id string, at time.Time) error {
	cmd, err := s.pool.Exec(ctx,
		`UPDATE users SET last_login = $2 WHERE user_id = $1::uuid`, id, at)
	if err != nil {
		return fmt.Errorf("touch login: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound(domain.KindUser, id)
	}
	return nil
}

func (s *PostgresStore) UserExists(ctx context.Context, id string) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1::uuid)`, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return domain.NotFound(domain.KindUser, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
