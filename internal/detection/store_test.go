package detection_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/handspeak/handspeak-api/internal/detection"
	"github.com/handspeak/handspeak-api/internal/domain"
)

const userID = "11111111-1111-1111-1111-111111111111"

func TestListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := detection.NewMemoryStore()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, char := range []string{"H", "E", "L"} {
		at := base.Add(time.Duration(i) * time.Second)
		store.SetClock(func() time.Time { return at })
		if _, err := store.CreateDetection(ctx, detection.DetectedSign{UserID: userID, Char: char}); err != nil {
			t.Fatalf("CreateDetection(%s): %v", char, err)
		}
	}

	got, err := store.ListByUser(ctx, userID, 0, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	chars := make([]string, len(got))
	for i, d := range got {
		chars[i] = d.Char
	}
	if len(chars) != 3 || chars[0] != "L" || chars[1] != "E" || chars[2] != "H" {
		t.Fatalf("chars = %v, want [L E H] (newest first)", chars)
	}
}

func TestListByUserPagination(t *testing.T) {
	ctx := context.Background()
	store := detection.NewMemoryStore()

	for _, char := range []string{"A", "B", "C", "D"} {
		if _, err := store.CreateDetection(ctx, detection.DetectedSign{UserID: userID, Char: char}); err != nil {
			t.Fatalf("CreateDetection(%s): %v", char, err)
		}
	}

	page, err := store.ListByUser(ctx, userID, 1, 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(page) != 2 || page[0].Char != "C" || page[1].Char != "B" {
		t.Fatalf("page = %+v, want [C B]", page)
	}

	empty, err := store.ListByUser(ctx, userID, 10, 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("past-end page has %d entries, want 0", len(empty))
	}
}

func TestSuggestionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := detection.NewMemoryStore()

	d, err := store.CreateDetection(ctx, detection.DetectedSign{UserID: userID, Char: "H", CurrentText: "H"})
	if err != nil {
		t.Fatalf("CreateDetection: %v", err)
	}

	if _, err := store.CreateSuggestion(ctx, d.ID, "HELLO"); err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}
	if _, err := store.CreateSuggestion(ctx, d.ID, "HELP"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second CreateSuggestion error = %v, want ErrConflict", err)
	}

	accepted, err := store.AcceptSuggestion(ctx, d.ID, "HELLO")
	if err != nil {
		t.Fatalf("AcceptSuggestion: %v", err)
	}
	if accepted.AcceptedAt == nil || accepted.AcceptedText == nil || *accepted.AcceptedText != "HELLO" {
		t.Fatalf("accepted = %+v, want accepted text and timestamp set", accepted)
	}
	firstAt := *accepted.AcceptedAt

	// Accepting again must not move the timestamp or change the text.
	store.SetClock(func() time.Time { return firstAt.Add(time.Hour) })
	again, err := store.AcceptSuggestion(ctx, d.ID, "HELIPORT")
	if err != nil {
		t.Fatalf("AcceptSuggestion: %v", err)
	}
	if !again.AcceptedAt.Equal(firstAt) {
		t.Errorf("acceptance timestamp moved from %v to %v", firstAt, *again.AcceptedAt)
	}
	if *again.AcceptedText != "HELLO" {
		t.Errorf("accepted text changed to %q", *again.AcceptedText)
	}
}

func TestSuggestionForUnknownDetection(t *testing.T) {
	store := detection.NewMemoryStore()
	_, err := store.CreateSuggestion(context.Background(), "22222222-2222-2222-2222-222222222222", "HELLO")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestAcceptUnknownSuggestion(t *testing.T) {
	store := detection.NewMemoryStore()
	_, err := store.AcceptSuggestion(context.Background(), "22222222-2222-2222-2222-222222222222", "HELLO")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
