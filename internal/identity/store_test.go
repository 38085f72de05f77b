package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/handspeak/handspeak-api/internal/domain"
	"github.com/handspeak/handspeak-api/internal/identity"
)

func TestCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()

	u, err := store.Create(ctx, "ana@example.com", "ana", "s3cret-pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == "" {
		t.Error("Create returned empty ID")
	}
	if u.PasswordHash == "s3cret-pw" {
		t.Error("password stored in plaintext")
	}

	keys := []identity.LookupKey{
		identity.UserByID(u.ID),
		identity.UserByEmail("ana@example.com"),
		identity.UserByUsername("ana"),
	}
	for _, key := range keys {
		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%s): %v", key.Field, err)
		}
		if got.ID != u.ID {
			t.Errorf("Get(%s) ID = %q, want %q", key.Field, got.ID, u.ID)
		}
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()

	if _, err := store.Create(ctx, "ana@example.com", "ana", "pw-one"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := store.Create(ctx, "ana@example.com", "other", "pw-two")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate email error = %v, want ErrConflict", err)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()

	u, err := store.Create(ctx, "ana@example.com", "ana", "pw-one")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	name := "ana-v2"
	got, err := store.Update(ctx, u.ID, identity.UserUpdate{Username: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Username != "ana-v2" {
		t.Errorf("Username = %q, want %q", got.Username, "ana-v2")
	}
	if got.Email != "ana@example.com" {
		t.Errorf("partial update changed Email to %q", got.Email)
	}

	pw := "pw-two"
	if _, err := store.Update(ctx, u.ID, identity.UserUpdate{Password: &pw}); err != nil {
		t.Fatalf("Update password: %v", err)
	}
	if _, err := identity.Authenticate(ctx, store, "ana@example.com", "pw-one"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("old password still accepted, error = %v", err)
	}
	if _, err := identity.Authenticate(ctx, store, "ana@example.com", "pw-two"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	_, err = store.Update(ctx, "88888888-8888-8888-8888-888888888888", identity.UserUpdate{Username: &name})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update unknown user error = %v, want ErrNotFound", err)
	}
}

func TestUpdateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()

	if _, err := store.Create(ctx, "ana@example.com", "ana", "pw-one"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	u, err := store.Create(ctx, "ben@example.com", "ben", "pw-two")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	taken := "ana@example.com"
	_, err = store.Update(ctx, u.ID, identity.UserUpdate{Email: &taken})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Update to taken email error = %v, want ErrConflict", err)
	}
}

func TestGetUnknownUser(t *testing.T) {
	store := identity.NewMemoryStore()
	_, err := store.Get(context.Background(), identity.UserByEmail("nobody@example.com"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()

	created, err := store.Create(ctx, "ana@example.com", "ana", "s3cret-pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	u, err := identity.Authenticate(ctx, store, "ana@example.com", "s3cret-pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("Authenticate ID = %q, want %q", u.ID, created.ID)
	}
	if u.LastLogin.Before(created.LastLogin) {
		t.Error("Authenticate did not refresh last login")
	}
}

func TestAuthenticateFailures(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()
	if _, err := store.Create(ctx, "ana@example.com", "ana", "s3cret-pw"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Wrong password and unknown email must be indistinguishable.
	for _, tc := range []struct{ email, password string }{
		{"ana@example.com", "wrong-pw"},
		{"nobody@example.com", "s3cret-pw"},
	} {
		_, err := identity.Authenticate(ctx, store, tc.email, tc.password)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Authenticate(%q) error = %v, want ErrNotFound", tc.email, err)
		}
	}
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, email := range emails {
		if _, err := store.Create(ctx, email, email[:1], "pw"); err != nil {
			t.Fatalf("Create(%s): %v", email, err)
		}
	}

	page, err := store.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 1 || page[0].Email != "b@example.com" {
		t.Fatalf("List(1, 1) = %+v, want single entry b@example.com", page)
	}

	all, err := store.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List(0, 0) returned %d users, want 3", len(all))
	}
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	store := identity.NewMemoryStore()

	u, err := store.Create(ctx, "ana@example.com", "ana", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.UserExists(ctx, u.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UserExists after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, u.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}
