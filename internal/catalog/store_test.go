package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/handspeak/handspeak-api/internal/catalog"
	"github.com/handspeak/handspeak-api/internal/domain"
)

func newStoreWithCourse(t *testing.T) (*catalog.MemoryStore, catalog.Course) {
	t.Helper()
	store := catalog.NewMemoryStore()
	course, err := store.CreateCourse(context.Background(), catalog.Course{Name: "ASL Basics"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	return store, course
}

func mustLesson(t *testing.T, store *catalog.MemoryStore, name string) catalog.Lesson {
	t.Helper()
	l, err := store.CreateLesson(context.Background(), catalog.Lesson{Name: name, Type: catalog.LessonLearn})
	if err != nil {
		t.Fatalf("CreateLesson(%s) error = %v", name, err)
	}
	return l
}

func mustQuestion(t *testing.T, store *catalog.MemoryStore, target string) catalog.Question {
	t.Helper()
	q, err := store.CreateQuestion(context.Background(), catalog.Question{
		Type:   catalog.QuestionChoice,
		Target: target,
	})
	if err != nil {
		t.Fatalf("CreateQuestion(%s) error = %v", target, err)
	}
	return q
}

func lessonIndices(t *testing.T, store *catalog.MemoryStore, courseID string) map[string]int {
	t.Helper()
	links, err := store.CourseLessons(context.Background(), courseID)
	if err != nil {
		t.Fatalf("CourseLessons() error = %v", err)
	}
	out := make(map[string]int, len(links))
	for _, cl := range links {
		out[cl.LessonID] = cl.Index
	}
	return out
}

func TestAttachLesson_AppendWithoutIndex(t *testing.T) {
	store, course := newStoreWithCourse(t)
	ctx := context.Background()

	l1 := mustLesson(t, store, "Alphabet A-F")
	l2 := mustLesson(t, store, "Alphabet G-M")
	l3 := mustLesson(t, store, "Alphabet N-Z")

	for i, l := range []catalog.Lesson{l1, l2, l3} {
		link, err := store.AttachLesson(ctx, course.ID, l.ID, nil)
		if err != nil {
			t.Fatalf("AttachLesson() error = %v", err)
		}
		if link.Index != i {
			t.Errorf("link.Index = %d, want %d", link.Index, i)
		}
	}
}

func TestAttachLesson_InsertAtPositionShifts(t *testing.T) {
	store, course := newStoreWithCourse(t)
	ctx := context.Background()

	l1 := mustLesson(t, store, "L1")
	l2 := mustLesson(t, store, "L2")
	l3 := mustLesson(t, store, "L3")
	l4 := mustLesson(t, store, "L4")

	for _, l := range []catalog.Lesson{l1, l2, l3} {
		if _, err := store.AttachLesson(ctx, course.ID, l.ID, nil); err != nil {
			t.Fatalf("AttachLesson() error = %v", err)
		}
	}

	at := 1
	link, err := store.AttachLesson(ctx, course.ID, l4.ID, &at)
	if err != nil {
		t.Fatalf("AttachLesson(at=1) error = %v", err)
	}
	if link.Index != 1 {
		t.Errorf("link.Index = %d, want 1", link.Index)
	}

	got := lessonIndices(t, store, course.ID)
	want := map[string]int{l1.ID: 0, l4.ID: 1, l2.ID: 2, l3.ID: 3}
	for id, idx := range want {
		if got[id] != idx {
			t.Errorf("lesson %s at index %d, want %d", id, got[id], idx)
		}
	}
}

// Out-of-range and absent positions are treated identically: append.
func TestAttachLesson_OutOfRangeAppends(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		at   func(total int) *int
	}{
		{"nil", func(int) *int { return nil }},
		{"negative", func(int) *int { v := -3; return &v }},
		{"equal to total", func(total int) *int { return &total }},
		{"past the end", func(total int) *int { v := total + 5; return &v }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, course := newStoreWithCourse(t)
			existing := []catalog.Lesson{
				mustLesson(t, store, "A"),
				mustLesson(t, store, "B"),
			}
			for _, l := range existing {
				if _, err := store.AttachLesson(ctx, course.ID, l.ID, nil); err != nil {
					t.Fatalf("AttachLesson() error = %v", err)
				}
			}

			last := mustLesson(t, store, "C")
			link, err := store.AttachLesson(ctx, course.ID, last.ID, tc.at(len(existing)))
			if err != nil {
				t.Fatalf("AttachLesson() error = %v", err)
			}
			if link.Index != 2 {
				t.Errorf("link.Index = %d, want 2 (append)", link.Index)
			}
		})
	}
}

// Indices stay exactly {0..N-1} after any insert sequence without detaches.
func TestAttachLesson_ContiguityInvariant(t *testing.T) {
	store, course := newStoreWithCourse(t)
	ctx := context.Background()

	positions := []*int{nil, intPtr(0), intPtr(1), nil, intPtr(2), intPtr(0), intPtr(99), intPtr(-1)}
	for i, at := range positions {
		l := mustLesson(t, store, "lesson")
		if _, err := store.AttachLesson(ctx, course.ID, l.ID, at); err != nil {
			t.Fatalf("AttachLesson(#%d) error = %v", i, err)
		}
	}

	links, err := store.CourseLessons(ctx, course.ID)
	if err != nil {
		t.Fatalf("CourseLessons() error = %v", err)
	}
	if len(links) != len(positions) {
		t.Fatalf("link count = %d, want %d", len(links), len(positions))
	}
	for i, cl := range links {
		if cl.Index != i {
			t.Errorf("links[%d].Index = %d, want %d", i, cl.Index, i)
		}
	}
}

func TestAttachLesson_MissingEntities(t *testing.T) {
	store, course := newStoreWithCourse(t)
	ctx := context.Background()
	l := mustLesson(t, store, "L")

	_, err := store.AttachLesson(ctx, "missing-course", l.ID, nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AttachLesson(missing course) error = %v, want ErrNotFound", err)
	}

	_, err = store.AttachLesson(ctx, course.ID, "missing-lesson", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AttachLesson(missing lesson) error = %v, want ErrNotFound", err)
	}
}

func TestCourseLessons_EmptyIsNotAnError(t *testing.T) {
	store, course := newStoreWithCourse(t)

	links, err := store.CourseLessons(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("CourseLessons() error = %v", err)
	}
	if len(links) != 0 {
		t.Errorf("link count = %d, want 0", len(links))
	}
}

func TestCourseLessons_MissingCourse(t *testing.T) {
	store := catalog.NewMemoryStore()

	_, err := store.CourseLessons(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("CourseLessons() error = %v, want ErrNotFound", err)
	}
}

// Detach removes the link but does not re-compact: the remaining indices keep
// their values and a gap is left where the lesson sat. Current behavior,
// asserted on purpose.
func TestDetachLesson_LeavesGap(t *testing.T) {
	store, course := newStoreWithCourse(t)
	ctx := context.Background()

	l1 := mustLesson(t, store, "L1")
	l2 := mustLesson(t, store, "L2")
	l3 := mustLesson(t, store, "L3")
	for _, l := range []catalog.Lesson{l1, l2, l3} {
		if _, err := store.AttachLesson(ctx, course.ID, l.ID, nil); err != nil {
			t.Fatalf("AttachLesson() error = %v", err)
		}
	}

	if err := store.DetachLesson(ctx, course.ID, l2.ID); err != nil {
		t.Fatalf("DetachLesson() error = %v", err)
	}

	got := lessonIndices(t, store, course.ID)
	if got[l1.ID] != 0 || got[l3.ID] != 2 {
		t.Errorf("indices after detach = %v, want {%s:0, %s:2}", got, l1.ID, l3.ID)
	}
}

func TestDetachLesson_NotAttached(t *testing.T) {
	store, course := newStoreWithCourse(t)

	err := store.DetachLesson(context.Background(), course.ID, "never-attached")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DetachLesson() error = %v, want ErrNotFound", err)
	}
}

// Course and lesson orderings are independent index spaces.
func TestAttachQuestion_IndependentOfCourseOrdering(t *testing.T) {
	store, course := newStoreWithCourse(t)
	ctx := context.Background()

	lesson := mustLesson(t, store, "L")
	if _, err := store.AttachLesson(ctx, course.ID, lesson.ID, nil); err != nil {
		t.Fatalf("AttachLesson() error = %v", err)
	}

	q1 := mustQuestion(t, store, "a")
	q2 := mustQuestion(t, store, "b")
	for i, q := range []catalog.Question{q1, q2} {
		link, err := store.AttachQuestion(ctx, lesson.ID, q.ID, nil)
		if err != nil {
			t.Fatalf("AttachQuestion() error = %v", err)
		}
		if link.Index != i {
			t.Errorf("question link.Index = %d, want %d", link.Index, i)
		}
	}

	// Lesson's position in the course is untouched by question inserts.
	got := lessonIndices(t, store, course.ID)
	if got[lesson.ID] != 0 {
		t.Errorf("lesson index in course = %d, want 0", got[lesson.ID])
	}
}

func TestDeleteCourse_Cascades(t *testing.T) {
	store, course := newStoreWithCourse(t)
	ctx := context.Background()

	var lessons []catalog.Lesson
	for i := 0; i < 2; i++ {
		l := mustLesson(t, store, "lesson")
		if _, err := store.AttachLesson(ctx, course.ID, l.ID, nil); err != nil {
			t.Fatalf("AttachLesson() error = %v", err)
		}
		for j := 0; j < 3; j++ {
			q := mustQuestion(t, store, "x")
			if _, err := store.AttachQuestion(ctx, l.ID, q.ID, nil); err != nil {
				t.Fatalf("AttachQuestion() error = %v", err)
			}
		}
		lessons = append(lessons, l)
	}

	if err := store.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("DeleteCourse() error = %v", err)
	}

	if _, err := store.GetCourse(ctx, course.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetCourse() after delete error = %v, want ErrNotFound", err)
	}
	for _, l := range lessons {
		// The lessons themselves survive; their question links do not.
		if _, err := store.GetLesson(ctx, l.ID); err != nil {
			t.Errorf("GetLesson(%s) error = %v, want nil", l.ID, err)
		}
		links, err := store.LessonQuestions(ctx, l.ID)
		if err != nil {
			t.Fatalf("LessonQuestions() error = %v", err)
		}
		if len(links) != 0 {
			t.Errorf("lesson %s still has %d question links", l.ID, len(links))
		}
	}
}

func TestDeleteLesson_CascadesBothLinkSpaces(t *testing.T) {
	store, course := newStoreWithCourse(t)
	ctx := context.Background()

	lesson := mustLesson(t, store, "L")
	if _, err := store.AttachLesson(ctx, course.ID, lesson.ID, nil); err != nil {
		t.Fatalf("AttachLesson() error = %v", err)
	}
	q := mustQuestion(t, store, "y")
	if _, err := store.AttachQuestion(ctx, lesson.ID, q.ID, nil); err != nil {
		t.Fatalf("AttachQuestion() error = %v", err)
	}

	if err := store.DeleteLesson(ctx, lesson.ID); err != nil {
		t.Fatalf("DeleteLesson() error = %v", err)
	}

	links, err := store.CourseLessons(ctx, course.ID)
	if err != nil {
		t.Fatalf("CourseLessons() error = %v", err)
	}
	if len(links) != 0 {
		t.Errorf("course still links %d lessons after lesson delete", len(links))
	}
	// The question survives.
	if _, err := store.GetQuestion(ctx, q.ID); err != nil {
		t.Errorf("GetQuestion() error = %v, want nil", err)
	}
}

func TestUpdateCourse_PartialFields(t *testing.T) {
	store, course := newStoreWithCourse(t)

	diff := 3
	got, err := store.UpdateCourse(context.Background(), course.ID, catalog.CourseUpdate{Difficulty: &diff})
	if err != nil {
		t.Fatalf("UpdateCourse() error = %v", err)
	}
	if got.Difficulty != 3 {
		t.Errorf("Difficulty = %d, want 3", got.Difficulty)
	}
	if got.Name != course.Name {
		t.Errorf("Name = %q, want unchanged %q", got.Name, course.Name)
	}
}

func TestCourseOverview(t *testing.T) {
	store, course := newStoreWithCourse(t)
	ctx := context.Background()

	lesson := mustLesson(t, store, "Greetings")
	if _, err := store.AttachLesson(ctx, course.ID, lesson.ID, nil); err != nil {
		t.Fatalf("AttachLesson() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		q := mustQuestion(t, store, "z")
		if _, err := store.AttachQuestion(ctx, lesson.ID, q.ID, nil); err != nil {
			t.Fatalf("AttachQuestion() error = %v", err)
		}
	}

	overview, err := store.CourseOverview(ctx)
	if err != nil {
		t.Fatalf("CourseOverview() error = %v", err)
	}
	if len(overview) != 1 {
		t.Fatalf("overview count = %d, want 1", len(overview))
	}
	if len(overview[0].Lessons) != 1 {
		t.Fatalf("overview lesson count = %d, want 1", len(overview[0].Lessons))
	}
	if overview[0].Lessons[0].QuestionCount != 2 {
		t.Errorf("QuestionCount = %d, want 2", overview[0].Lessons[0].QuestionCount)
	}
}

func TestGetCourseByName(t *testing.T) {
	store, course := newStoreWithCourse(t)

	got, err := store.GetCourseByName(context.Background(), "ASL Basics")
	if err != nil {
		t.Fatalf("GetCourseByName() error = %v", err)
	}
	if got.ID != course.ID {
		t.Errorf("ID = %q, want %q", got.ID, course.ID)
	}
}

func intPtr(v int) *int { return &v }
