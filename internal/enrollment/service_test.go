package enrollment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/handspeak/handspeak-api/internal/catalog"
	"github.com/handspeak/handspeak-api/internal/domain"
	"github.com/handspeak/handspeak-api/internal/enrollment"
)

type stubUsers map[string]bool

func (u stubUsers) UserExists(_ context.Context, id string) error {
	if !u[id] {
		return domain.NotFound(domain.KindUser, id)
	}
	return nil
}

type fixture struct {
	svc      *enrollment.Service
	store    *enrollment.MemoryStore
	userID   string
	courseID string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	courses := catalog.NewMemoryStore()
	course, err := courses.CreateCourse(ctx, catalog.Course{Name: "Fingerspelling"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	store := enrollment.NewMemoryStore()
	userID := "11111111-1111-1111-1111-111111111111"
	svc := enrollment.NewService(store, courses, stubUsers{userID: true}, nil)
	return fixture{svc: svc, store: store, userID: userID, courseID: course.ID}
}

func TestEnroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.Enroll(ctx, f.userID, f.courseID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if e.Fraction != 0 {
		t.Errorf("new enrollment fraction = %v, want 0", e.Fraction)
	}
	if e.CompletedAt != nil {
		t.Error("new enrollment already completed")
	}

	_, err = f.svc.Enroll(ctx, f.userID, f.courseID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second Enroll error = %v, want ErrConflict", err)
	}
}

func TestEnrollMissingEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, "22222222-2222-2222-2222-222222222222", f.courseID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Enroll with unknown user error = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.Enroll(ctx, f.userID, "33333333-3333-3333-3333-333333333333"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Enroll with unknown course error = %v, want ErrNotFound", err)
	}
}

func TestSetFraction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, f.userID, f.courseID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	e, err := f.svc.SetFraction(ctx, f.userID, f.courseID, 0.5)
	if err != nil {
		t.Fatalf("SetFraction: %v", err)
	}
	if e.Fraction != 0.5 {
		t.Errorf("fraction = %v, want 0.5", e.Fraction)
	}
	if e.CompletedAt != nil {
		t.Error("completion stamped before the course was finished")
	}

	// Out-of-range input is clamped, not rejected.
	e, err = f.svc.SetFraction(ctx, f.userID, f.courseID, 1.7)
	if err != nil {
		t.Fatalf("SetFraction: %v", err)
	}
	if e.Fraction != 1 {
		t.Errorf("fraction = %v, want 1", e.Fraction)
	}
	if e.CompletedAt == nil {
		t.Fatal("completion not stamped at fraction 1")
	}
	completedAt := *e.CompletedAt

	// Finishing again must not move the completion timestamp.
	f.store.SetClock(func() time.Time { return completedAt.Add(time.Hour) })
	e, err = f.svc.SetFraction(ctx, f.userID, f.courseID, 1)
	if err != nil {
		t.Fatalf("SetFraction: %v", err)
	}
	if !e.CompletedAt.Equal(completedAt) {
		t.Errorf("completion timestamp moved from %v to %v", completedAt, *e.CompletedAt)
	}
}

func TestUnenroll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, f.userID, f.courseID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if err := f.svc.Unenroll(ctx, f.userID, f.courseID); err != nil {
		t.Fatalf("Unenroll: %v", err)
	}
	if err := f.svc.Unenroll(ctx, f.userID, f.courseID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Unenroll error = %v, want ErrNotFound", err)
	}

	list, err := f.svc.ListForUser(ctx, f.userID)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("ListForUser returned %d enrollments, want 0", len(list))
	}
}
