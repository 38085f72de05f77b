// Package catalog manages courses, lessons, questions, and the ordered
// membership links between them.
package catalog

import "time"

// LessonType categorizes how a lesson is presented.
type LessonType string

const (
	LessonLearn  LessonType = "learn"
	LessonDetect LessonType = "detect"
	LessonChoice LessonType = "choice"
)

// QuestionType distinguishes multiple-choice from free-text questions.
type QuestionType string

const (
	QuestionChoice QuestionType = "choice"
	QuestionInput  QuestionType = "input"
)

// Course groups an ordered sequence of lessons.
type Course struct {
	ID          string    `json:"course_id"`
	Name        string    `json:"course_name"`
	Description string    `json:"course_desc"`
	Difficulty  int       `json:"course_difficulty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Lesson groups an ordered sequence of questions. A lesson may belong to any
// number of courses.
type Lesson struct {
	ID          string     `json:"lesson_id"`
	Name        string     `json:"lesson_name"`
	Description string     `json:"lesson_desc"`
	Type        LessonType `json:"lesson_type"`
}

// Question is an immutable prompt with a stored correct target. Choices holds
// up to four choice characters for multiple-choice questions.
type Question struct {
	ID      string       `json:"question_id"`
	Type    QuestionType `json:"question_type"`
	Target  string       `json:"question_target"`
	Choices string       `json:"question_choice,omitempty"`
}

// CourseLesson links a lesson into a course at a given position.
type CourseLesson struct {
	CourseID string `json:"course_id"`
	LessonID string `json:"lesson_id"`
	Index    int    `json:"index_in_course"`
}

// LessonQuestion links a question into a lesson at a given position.
type LessonQuestion struct {
	LessonID   string `json:"lesson_id"`
	QuestionID string `json:"question_id"`
	Index      int    `json:"index_in_lesson"`
}

// CourseUpdate carries partial course changes; nil fields are left untouched.
type CourseUpdate struct {
	Name        *string `json:"course_name,omitempty"`
	Description *string `json:"course_desc,omitempty"`
	Difficulty  *int    `json:"course_difficulty,omitempty"`
}

// LessonUpdate carries partial lesson changes.
type LessonUpdate struct {
	Name        *string     `json:"lesson_name,omitempty"`
	Description *string     `json:"lesson_desc,omitempty"`
	Type        *LessonType `json:"lesson_type,omitempty"`
}

// QuestionUpdate carries partial question changes.
type QuestionUpdate struct {
	Type    *QuestionType `json:"question_type,omitempty"`
	Target  *string       `json:"question_target,omitempty"`
	Choices *string       `json:"question_choice,omitempty"`
}

// LessonSummary is a lesson with its question count, as shown in the catalog
// overview.
type LessonSummary struct {
	LessonID      string     `json:"lesson_id"`
	Name          string     `json:"lesson_name"`
	Description   string     `json:"lesson_desc"`
	Type          LessonType `json:"lesson_type"`
	QuestionCount int        `json:"lesson_num_question"`
}

// CourseSummary is a course with its lessons in order.
type CourseSummary struct {
	Course
	Lessons []LessonSummary `json:"course_lessons"`
}
