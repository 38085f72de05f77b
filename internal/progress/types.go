// Package progress tracks per-user lesson progress and per-question answer
// correctness.
package progress

import "time"

// LessonProgress is the one record a user holds for a lesson they started.
// CorrectQuestions counts correct submissions, not distinct correct questions:
// resubmitting a question correctly counts again.
type LessonProgress struct {
	ID               string    `json:"progress_id"`
	UserID           string    `json:"user_id"`
	LessonID         string    `json:"lesson_id"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	CorrectQuestions int       `json:"correct_questions"`
}

// Answer is a per-question attempt record under a LessonProgress. Choice and
// Correct stay nil between opening the question and submitting an answer.
type Answer struct {
	ProgressID string  `json:"progress_id"`
	QuestionID string  `json:"question_id"`
	Choice     *string `json:"user_choice"`
	Correct    *bool   `json:"is_correct"`
}

// Summary is one row of a user's progress report.
type Summary struct {
	ProgressID       string    `json:"progress_id"`
	LessonID         string    `json:"lesson_id"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	CorrectQuestions int       `json:"correct_question"`
}
