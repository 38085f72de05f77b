package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/handspeak/handspeak-api/internal/domain"
)

// Store persists the course/lesson/question catalog and its ordering links.
//
// Attach operations insert a child into the parent's ordering: a nil, negative,
// or past-the-end position appends; otherwise every link at or after the
// position is shifted up by one before the new link is written, so indices for
// a parent stay contiguous as long as nothing is detached. Detach removes the
// single matching link and deliberately leaves the resulting index gap in
// place; callers that depend on contiguity must not interleave detaches.
type Store interface {
	CreateCourse(ctx context.Context, c Course) (Course, error)
	GetCourse(ctx context.Context, id string) (Course, error)
	GetCourseByName(ctx context.Context, name string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	UpdateCourse(ctx context.Context, id string, upd CourseUpdate) (Course, error)
	DeleteCourse(ctx context.Context, id string) error

	CreateLesson(ctx context.Context, l Lesson) (Lesson, error)
	GetLesson(ctx context.Context, id string) (Lesson, error)
	UpdateLesson(ctx context.Context, id string, upd LessonUpdate) (Lesson, error)
	DeleteLesson(ctx context.Context, id string) error

	CreateQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	UpdateQuestion(ctx context.Context, id string, upd QuestionUpdate) (Question, error)
	DeleteQuestion(ctx context.Context, id string) error

	AttachLesson(ctx context.Context, courseID, lessonID string, at *int) (CourseLesson, error)
	CourseLessons(ctx context.Context, courseID string) ([]CourseLesson, error)
	DetachLesson(ctx context.Context, courseID, lessonID string) error

	AttachQuestion(ctx context.Context, lessonID, questionID string, at *int) (LessonQuestion, error)
	LessonQuestions(ctx context.Context, lessonID string) ([]LessonQuestion, error)
	DetachQuestion(ctx context.Context, lessonID, questionID string) error

	CourseOverview(ctx context.Context) ([]CourseSummary, error)
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu              sync.RWMutex
	courses         map[string]Course
	lessons         map[string]Lesson
	questions       map[string]Question
	courseLessons   map[string][]CourseLesson   // course_id -> links
	lessonQuestions map[string][]LessonQuestion // lesson_id -> links
}

// NewMemoryStore creates an empty in-memory catalog store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		courses:         make(map[string]Course),
		lessons:         make(map[string]Lesson),
		questions:       make(map[string]Question),
		courseLessons:   make(map[string][]CourseLesson),
		lessonQuestions: make(map[string][]LessonQuestion),
	}
}

func (s *MemoryStore) CreateCourse(_ context.Context, c Course) (Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.courses[c.ID] = c
	return c, nil
}

func (s *MemoryStore) GetCourse(_ context.Context, id string) (Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[id]
	if !ok {
		return Course{}, domain.NotFound(domain.KindCourse, id)
	}
	return c, nil
}

func (s *MemoryStore) GetCourseByName(_ context.Context, name string) (Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.courses {
		if c.Name == name {
			return c, nil
		}
	}
	return Course{}, domain.NotFound(domain.KindCourse, name)
}

func (s *MemoryStore) ListCourses(_ context.Context) ([]Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateCourse(_ context.Context, id string, upd CourseUpdate) (Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.courses[id]
	if !ok {
		return Course{}, domain.NotFound(domain.KindCourse, id)
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.Difficulty != nil {
		c.Difficulty = *upd.Difficulty
	}
	s.courses[id] = c
	return c, nil
}

// DeleteCourse removes the course, its lesson links, and the question links of
// every lesson that was attached to it. The lessons and questions themselves
// are shared entities and survive.
func (s *MemoryStore) DeleteCourse(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return domain.NotFound(domain.KindCourse, id)
	}
	for _, cl := range s.courseLessons[id] {
		delete(s.lessonQuestions, cl.LessonID)
	}
	delete(s.courseLessons, id)
	delete(s.courses, id)
	return nil
}

func (s *MemoryStore) CreateLesson(_ context.Context, l Lesson) (Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	s.lessons[l.ID] = l
	return l, nil
}

func (s *MemoryStore) GetLesson(_ context.Context, id string) (Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lessons[id]
	if !ok {
		return Lesson{}, domain.NotFound(domain.KindLesson, id)
	}
	return l, nil
}

func (s *MemoryStore) UpdateLesson(_ context.Context, id string, upd LessonUpdate) (Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lessons[id]
	if !ok {
		return Lesson{}, domain.NotFound(domain.KindLesson, id)
	}
	if upd.Name != nil {
		l.Name = *upd.Name
	}
	if upd.Description != nil {
		l.Description = *upd.Description
	}
	if upd.Type != nil {
		l.Type = *upd.Type
	}
	s.lessons[id] = l
	return l, nil
}

// DeleteLesson removes the lesson, its own question links, and any links that
// placed it inside a course.
func (s *MemoryStore) DeleteLesson(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[id]; !ok {
		return domain.NotFound(domain.KindLesson, id)
	}
	delete(s.lessonQuestions, id)
	for courseID, links := range s.courseLessons {
		kept := links[:0]
		for _, cl := range links {
			if cl.LessonID != id {
				kept = append(kept, cl)
			}
		}
		s.courseLessons[courseID] = kept
	}
	delete(s.lessons, id)
	return nil
}

func (s *MemoryStore) CreateQuestion(_ context.Context, q Question) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	s.questions[q.ID] = q
	return q, nil
}

func (s *MemoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return Question{}, domain.NotFound(domain.KindQuestion, id)
	}
	return q, nil
}

func (s *MemoryStore) UpdateQuestion(_ context.Context, id string, upd QuestionUpdate) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return Question{}, domain.NotFound(domain.KindQuestion, id)
	}
	if upd.Type != nil {
		q.Type = *upd.Type
	}
	if upd.Target != nil {
		q.Target = *upd.Target
	}
	if upd.Choices != nil {
		q.Choices = *upd.Choices
	}
	s.questions[id] = q
	return q, nil
}

func (s *MemoryStore) DeleteQuestion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[id]; !ok {
		return domain.NotFound(domain.KindQuestion, id)
	}
	for lessonID, links := range s.lessonQuestions {
		kept := links[:0]
		for _, lq := range links {
			if lq.QuestionID != id {
				kept = append(kept, lq)
			}
		}
		s.lessonQuestions[lessonID] = kept
	}
	delete(s.questions, id)
	return nil
}

func (s *MemoryStore) AttachLesson(_ context.Context, courseID, lessonID string, at *int) (CourseLesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[courseID]; !ok {
		return CourseLesson{}, domain.NotFound(domain.KindCourse, courseID)
	}
	if _, ok := s.lessons[lessonID]; !ok {
		return CourseLesson{}, domain.NotFound(domain.KindLesson, lessonID)
	}

	links := s.courseLessons[courseID]
	index := resolveIndex(at, len(links))
	for i := range links {
		if links[i].Index >= index {
			links[i].Index++
		}
	}
	link := CourseLesson{CourseID: courseID, LessonID: lessonID, Index: index}
	s.courseLessons[courseID] = append(links, link)
	return link, nil
}

func (s *MemoryStore) CourseLessons(_ context.Context, courseID string) ([]CourseLesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.courses[courseID]; !ok {
		return nil, domain.NotFound(domain.KindCourse, courseID)
	}
	return sortedLinks(s.courseLessons[courseID], func(cl CourseLesson) int { return cl.Index }), nil
}

// DetachLesson removes the link only. Indices of the remaining links are left
// as they are, so a gap remains where the lesson used to sit.
func (s *MemoryStore) DetachLesson(_ context.Context, courseID, lessonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := s.courseLessons[courseID]
	for i, cl := range links {
		if cl.LessonID == lessonID {
			s.courseLessons[courseID] = append(links[:i], links[i+1:]...)
			return nil
		}
	}
	return domain.NotFound(domain.KindLesson, lessonID)
}

func (s *MemoryStore) AttachQuestion(_ context.Context, lessonID, questionID string, at *int) (LessonQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[lessonID]; !ok {
		return LessonQuestion{}, domain.NotFound(domain.KindLesson, lessonID)
	}
	if _, ok := s.questions[questionID]; !ok {
		return LessonQuestion{}, domain.NotFound(domain.KindQuestion, questionID)
	}

	links := s.lessonQuestions[lessonID]
	index := resolveIndex(at, len(links))
	for i := range links {
		if links[i].Index >= index {
			links[i].Index++
		}
	}
	link := LessonQuestion{LessonID: lessonID, QuestionID: questionID, Index: index}
	s.lessonQuestions[lessonID] = append(links, link)
	return link, nil
}

func (s *MemoryStore) LessonQuestions(_ context.Context, lessonID string) ([]LessonQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.lessons[lessonID]; !ok {
		return nil, domain.NotFound(domain.KindLesson, lessonID)
	}
	return sortedLinks(s.lessonQuestions[lessonID], func(lq LessonQuestion) int { return lq.Index }), nil
}

func (s *MemoryStore) DetachQuestion(_ context.Context, lessonID, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	links := s.lessonQuestions[lessonID]
	for i, lq := range links {
		if lq.QuestionID == questionID {
			s.lessonQuestions[lessonID] = append(links[:i], links[i+1:]...)
			return nil
		}
	}
	return domain.NotFound(domain.KindQuestion, questionID)
}

func (s *MemoryStore) CourseOverview(ctx context.Context) ([]CourseSummary, error) {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		summary := CourseSummary{Course: c, Lessons: []LessonSummary{}}
		links := sortedLinks(s.courseLessons[c.ID], func(cl CourseLesson) int { return cl.Index })
		for _, cl := range links {
			lesson, ok := s.lessons[cl.LessonID]
			if !ok {
				continue
			}
			summary.Lessons = append(summary.Lessons, LessonSummary{
				LessonID:      lesson.ID,
				Name:          lesson.Name,
				Description:   lesson.Description,
				Type:          lesson.Type,
				QuestionCount: len(s.lessonQuestions[lesson.ID]),
			})
		}
		out = append(out, summary)
	}
	return out, nil
}

// resolveIndex picks the effective insertion index: out-of-range and "no
// preference" both mean append.
func resolveIndex(at *int, total int) int {
	if at == nil || *at < 0 || *at > total {
		return total
	}
	return *at
}

func sortedLinks[T any](links []T, index func(T) int) []T {
	out := append([]T{}, links...)
	sort.Slice(out, func(i, j int) bool { return index(out[i]) < index(out[j]) })
	return out
}
