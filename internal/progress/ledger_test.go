package progress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/handspeak/handspeak-api/internal/catalog"
	"github.com/handspeak/handspeak-api/internal/domain"
	"github.com/handspeak/handspeak-api/internal/progress"
)

// stubUsers recognizes a fixed set of user IDs.
type stubUsers map[string]bool

func (s stubUsers) UserExists(_ context.Context, id string) error {
	if s[id] {
		return nil
	}
	return domain.NotFound(domain.KindUser, id)
}

type fixture struct {
	ledger *progress.Ledger
	store  *progress.MemoryStore
	cat    *catalog.MemoryStore
	lesson catalog.Lesson
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cat := catalog.NewMemoryStore()
	lesson, err := cat.CreateLesson(context.Background(), catalog.Lesson{Name: "Fingerspelling", Type: catalog.LessonDetect})
	if err != nil {
		t.Fatalf("CreateLesson() error = %v", err)
	}
	store := progress.NewMemoryStore()
	return fixture{
		ledger: progress.NewLedger(store, cat, stubUsers{"u-1": true}),
		store:  store,
		cat:    cat,
		lesson: lesson,
	}
}

func (f fixture) question(t *testing.T, target string) catalog.Question {
	t.Helper()
	q, err := f.cat.CreateQuestion(context.Background(), catalog.Question{
		Type:   catalog.QuestionInput,
		Target: target,
	})
	if err != nil {
		t.Fatalf("CreateQuestion() error = %v", err)
	}
	return q
}

func TestStartLesson_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.ledger.StartLesson(ctx, "u-1", f.lesson.ID)
	if err != nil {
		t.Fatalf("StartLesson() error = %v", err)
	}
	if first.CorrectQuestions != 0 {
		t.Errorf("CorrectQuestions = %d, want 0", first.CorrectQuestions)
	}

	second, err := f.ledger.StartLesson(ctx, "u-1", f.lesson.ID)
	if err != nil {
		t.Fatalf("StartLesson() second call error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second progress_id = %q, want %q", second.ID, first.ID)
	}
	if !second.LastActivityAt.Equal(first.LastActivityAt) {
		t.Error("second StartLesson() refreshed the timestamp; it must not")
	}

	rows, err := f.store.ListProgressByUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("ListProgressByUser() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("progress rows = %d, want 1", len(rows))
	}
}

func TestStartLesson_MissingUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.StartLesson(context.Background(), "ghost", f.lesson.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("StartLesson() error = %v, want ErrNotFound", err)
	}
}

func TestStartLesson_MissingLesson(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.StartLesson(context.Background(), "u-1", "no-such-lesson")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("StartLesson() error = %v, want ErrNotFound", err)
	}
}

func TestBeginQuestion_DuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _ := f.ledger.StartLesson(ctx, "u-1", f.lesson.ID)
	q := f.question(t, "cat")

	if _, err := f.ledger.BeginQuestion(ctx, p.ID, q.ID); err != nil {
		t.Fatalf("BeginQuestion() error = %v", err)
	}

	_, err := f.ledger.BeginQuestion(ctx, p.ID, q.ID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second BeginQuestion() error = %v, want ErrConflict", err)
	}
}

func TestBeginQuestion_MissingQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _ := f.ledger.StartLesson(ctx, "u-1", f.lesson.ID)

	_, err := f.ledger.BeginQuestion(ctx, p.ID, "no-such-question")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("BeginQuestion() error = %v, want ErrNotFound", err)
	}
}

func TestSubmitAnswer_CaseAndWhitespaceInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _ := f.ledger.StartLesson(ctx, "u-1", f.lesson.ID)
	q := f.question(t, "a")
	if _, err := f.ledger.BeginQuestion(ctx, p.ID, q.ID); err != nil {
		t.Fatalf("BeginQuestion() error = %v", err)
	}

	correct, err := f.ledger.SubmitAnswer(ctx, p.ID, q.ID, " A ")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if !correct {
		t.Error(`SubmitAnswer(" A ") against target "a" = false, want true`)
	}

	got, err := f.store.GetProgress(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if got.CorrectQuestions != 1 {
		t.Errorf("CorrectQuestions = %d, want 1", got.CorrectQuestions)
	}
}

func TestSubmitAnswer_WrongAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _ := f.ledger.StartLesson(ctx, "u-1", f.lesson.ID)
	q := f.question(t, "Cat")
	_, _ = f.ledger.BeginQuestion(ctx, p.ID, q.ID)

	before, _ := f.store.GetProgress(ctx, p.ID)

	correct, err := f.ledger.SubmitAnswer(ctx, p.ID, q.ID, "dog")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if correct {
		t.Error("SubmitAnswer(dog) = true, want false")
	}

	after, _ := f.store.GetProgress(ctx, p.ID)
	if after.CorrectQuestions != 0 {
		t.Errorf("CorrectQuestions = %d, want 0", after.CorrectQuestions)
	}
	// The activity timestamp is refreshed regardless of correctness.
	if after.LastActivityAt.Before(before.LastActivityAt) {
		t.Error("LastActivityAt went backwards")
	}
}

// Resubmitting a correct answer counts again. This is the accumulation
// semantics the tally has always had; it is not a distinct-question count.
func TestSubmitAnswer_RepeatCorrectCountsTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _ := f.ledger.StartLesson(ctx, "u-1", f.lesson.ID)
	q := f.question(t, "cat")
	_, _ = f.ledger.BeginQuestion(ctx, p.ID, q.ID)

	for i := 0; i < 2; i++ {
		if _, err := f.ledger.SubmitAnswer(ctx, p.ID, q.ID, "Cat"); err != nil {
			t.Fatalf("SubmitAnswer(#%d) error = %v", i, err)
		}
	}

	got, _ := f.store.GetProgress(ctx, p.ID)
	if got.CorrectQuestions != 2 {
		t.Errorf("CorrectQuestions = %d, want 2", got.CorrectQuestions)
	}
}

func TestSubmitAnswer_WithoutBeginQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _ := f.ledger.StartLesson(ctx, "u-1", f.lesson.ID)
	q := f.question(t, "cat")

	before, _ := f.store.GetProgress(ctx, p.ID)

	_, err := f.ledger.SubmitAnswer(ctx, p.ID, q.ID, "cat")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("SubmitAnswer() error = %v, want NotFoundError", err)
	}
	if nf.Kind != domain.KindAnswer {
		t.Errorf("NotFound kind = %q, want %q", nf.Kind, domain.KindAnswer)
	}

	// Nothing on the progress row was touched.
	after, _ := f.store.GetProgress(ctx, p.ID)
	if after.CorrectQuestions != before.CorrectQuestions || !after.LastActivityAt.Equal(before.LastActivityAt) {
		t.Error("failed SubmitAnswer() mutated the progress row")
	}
}

func TestSubmitAnswer_OverwritesAnswerRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _ := f.ledger.StartLesson(ctx, "u-1", f.lesson.ID)
	q := f.question(t, "cat")
	_, _ = f.ledger.BeginQuestion(ctx, p.ID, q.ID)

	_, _ = f.ledger.SubmitAnswer(ctx, p.ID, q.ID, "dog")
	_, _ = f.ledger.SubmitAnswer(ctx, p.ID, q.ID, "cat")

	answers, err := f.ledger.AnswersForProgress(ctx, p.ID)
	if err != nil {
		t.Fatalf("AnswersForProgress() error = %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("answer rows = %d, want 1 (overwrite, not append)", len(answers))
	}
	if answers[0].Choice == nil || *answers[0].Choice != "cat" {
		t.Errorf("Choice = %v, want cat", answers[0].Choice)
	}
	if answers[0].Correct == nil || !*answers[0].Correct {
		t.Errorf("Correct = %v, want true", answers[0].Correct)
	}
}

func TestSummaryForUser_OrderedByActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f.store.SetClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	second, err := f.cat.CreateLesson(ctx, catalog.Lesson{Name: "Numbers", Type: catalog.LessonLearn})
	if err != nil {
		t.Fatalf("CreateLesson() error = %v", err)
	}

	p1, _ := f.ledger.StartLesson(ctx, "u-1", f.lesson.ID)
	p2, _ := f.ledger.StartLesson(ctx, "u-1", second.ID)

	// Touch p1 so it becomes the most recent.
	q := f.question(t, "x")
	_, _ = f.ledger.BeginQuestion(ctx, p1.ID, q.ID)
	_, _ = f.ledger.SubmitAnswer(ctx, p1.ID, q.ID, "x")

	summary, err := f.ledger.SummaryForUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("SummaryForUser() error = %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("summary rows = %d, want 2", len(summary))
	}
	if summary[0].ProgressID != p2.ID || summary[1].ProgressID != p1.ID {
		t.Errorf("order = [%s %s], want oldest activity first [%s %s]",
			summary[0].ProgressID, summary[1].ProgressID, p2.ID, p1.ID)
	}
}

func TestSummaryForUser_MissingUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.SummaryForUser(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SummaryForUser() error = %v, want ErrNotFound", err)
	}
}
