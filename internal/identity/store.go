package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/handspeak/handspeak-api/internal/domain"
)

// Store persists user accounts.
type Store interface {
	Create(ctx context.Context, email, username, password string) (User, error)
	Get(ctx context.Context, key LookupKey) (User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (User, error)
	List(ctx context.Context, offset, limit int) ([]User, error)
	Delete(ctx context.Context, id string) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	UserExists(ctx context.Context, id string) error
}

// Authenticate checks the password for the account registered under email.
// Returns NotFound for an unknown email and for a wrong password alike, so
// callers cannot distinguish the two.
func Authenticate(ctx context.Context, store Store, email, password string) (User, error) {
	u, err := store.Get(ctx, UserByEmail(email))
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, domain.NotFound(domain.KindUser, email)
	}
	now := time.Now().UTC()
	if err := store.TouchLogin(ctx, u.ID, now); err != nil {
		return User{}, err
	}
	u.LastLogin = now
	return u, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
	order []string // insertion order, for stable pagination
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User)}
}

func (s *MemoryStore) Create(_ context.Context, email, username, password string) (User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return User{}, domain.Conflict(domain.KindUser, email)
		}
	}
	now := time.Now().UTC()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		LastLogin:    now,
	}
	s.users[u.ID] = u
	s.order = append(s.order, u.ID)
	return u, nil
}

func (s *MemoryStore) Get(_ context.Context, key LookupKey) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch key.Field {
	case ByID:
		if u, ok := s.users[key.Value]; ok {
			return u, nil
		}
	case ByEmail:
		for _, u := range s.users {
			if u.Email == key.Value {
				return u, nil
			}
		}
	case ByUsername:
		for _, u := range s.users {
			if u.Username == key.Value {
				return u, nil
			}
		}
	}
	return User{}, domain.NotFound(domain.KindUser, key.Value)
}

func (s *MemoryStore) Update(_ context.Context, id string, upd UserUpdate) (User, error) {
	var hash string
	if upd.Password != nil {
		var err error
		if hash, err = hashPassword(*upd.Password); err != nil {
			return User{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return User{}, domain.NotFound(domain.KindUser, id)
	}
	if upd.Email != nil {
		for _, other := range s.users {
			if other.ID != id && other.Email == *upd.Email {
				return User{}, domain.Conflict(domain.KindUser, *upd.Email)
			}
		}
		u.Email = *upd.Email
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Password != nil {
		u.PasswordHash = hash
	}
	s.users[id] = u
	return u, nil
}

func (s *MemoryStore) List(_ context.Context, offset, limit int) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.order) {
		return []User{}, nil
	}
	end := len(s.order)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]User, 0, end-offset)
	for _, id := range s.order[offset:end] {
		out = append(out, s.users[id])
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return domain.NotFound(domain.KindUser, id)
	}
	delete(s.users, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) TouchLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.NotFound(domain.KindUser, id)
	}
	u.LastLogin = at
	s.users[id] = u
	return nil
}

func (s *MemoryStore) UserExists(_ context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[id]; !ok {
		return domain.NotFound(domain.KindUser, id)
	}
	return nil
}
