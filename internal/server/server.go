// Package server builds the HTTP API: route registration, request decoding
// and the mapping from domain errors to response statuses.
package server

import (
	"context"
	"net/http"

	"github.com/handspeak/handspeak-api/internal/catalog"
	"github.com/handspeak/handspeak-api/internal/detection"
	"github.com/handspeak/handspeak-api/internal/enrollment"
	"github.com/handspeak/handspeak-api/internal/identity"
	"github.com/handspeak/handspeak-api/internal/practice"
	"github.com/handspeak/handspeak-api/internal/progress"
	"github.com/handspeak/handspeak-api/internal/reference"
)

// RecentFeed is the optional Redis detection feed.
type RecentFeed interface {
	Recent(ctx context.Context, userID string) ([]detection.DetectedSign, error)
}

// Deps carries everything the API routes need. Reference, Detections and
// Feed may be nil; their routes then report the feature as unavailable.
type Deps struct {
	Catalog     catalog.Store
	Ledger      *progress.Ledger
	Users       identity.Store
	Enrollments *enrollment.Service
	Practice    *practice.Service
	Detections  detection.Store
	Feed        RecentFeed
	Reference   *reference.Loader
	Realtime    http.Handler
	Ready       func(ctx context.Context) error
}

// NewMux builds the HTTP router.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", d.handleReadyz)
	if d.Realtime != nil {
		mux.Handle("GET /ws", d.Realtime)
	}

	mux.HandleFunc("POST /api/courses", d.createCourse)
	mux.HandleFunc("GET /api/courses", d.listCourses)
	mux.HandleFunc("GET /api/courses/overview", d.courseOverview)
	mux.HandleFunc("GET /api/courses/{id}", d.getCourse)
	mux.HandleFunc("PATCH /api/courses/{id}", d.updateCourse)
	mux.HandleFunc("DELETE /api/courses/{id}", d.deleteCourse)
	mux.HandleFunc("POST /api/courses/{id}/lessons", d.attachLesson)
	mux.HandleFunc("GET /api/courses/{id}/lessons", d.courseLessons)
	mux.HandleFunc("DELETE /api/courses/{id}/lessons/{lessonID}", d.detachLesson)

	mux.HandleFunc("POST /api/lessons", d.createLesson)
	mux.HandleFunc("GET /api/lessons/{id}", d.getLesson)
	mux.HandleFunc("PATCH /api/lessons/{id}", d.updateLesson)
	mux.HandleFunc("DELETE /api/lessons/{id}", d.deleteLesson)
	mux.HandleFunc("POST /api/lessons/{id}/questions", d.attachQuestion)
	mux.HandleFunc("GET /api/lessons/{id}/questions", d.lessonQuestions)
	mux.HandleFunc("DELETE /api/lessons/{id}/questions/{questionID}", d.detachQuestion)

	mux.HandleFunc("POST /api/questions", d.createQuestion)
	mux.HandleFunc("GET /api/questions/{id}", d.getQuestion)
	mux.HandleFunc("PATCH /api/questions/{id}", d.updateQuestion)
	mux.HandleFunc("DELETE /api/questions/{id}", d.deleteQuestion)

	mux.HandleFunc("POST /api/users", d.registerUser)
	mux.HandleFunc("GET /api/users", d.listUsers)
	mux.HandleFunc("GET /api/users/{id}", d.getUser)
	mux.HandleFunc("PUT /api/users/{id}", d.updateUser)
	mux.HandleFunc("DELETE /api/users/{id}", d.deleteUser)
	mux.HandleFunc("POST /api/auth/login", d.login)

	mux.HandleFunc("POST /api/users/{id}/progress", d.startLesson)
	mux.HandleFunc("GET /api/users/{id}/progress", d.progressSummary)
	mux.HandleFunc("POST /api/progress/{id}/questions/{questionID}", d.beginQuestion)
	mux.HandleFunc("PUT /api/progress/{id}/questions/{questionID}", d.submitAnswer)
	mux.HandleFunc("GET /api/progress/{id}/answers", d.listAnswers)

	mux.HandleFunc("POST /api/users/{id}/enrollments", d.enroll)
	mux.HandleFunc("GET /api/users/{id}/enrollments", d.listEnrollments)
	mux.HandleFunc("PATCH /api/users/{id}/enrollments/{courseID}", d.updateEnrollment)
	mux.HandleFunc("DELETE /api/users/{id}/enrollments/{courseID}", d.unenroll)

	mux.HandleFunc("POST /api/practice", d.startPractice)
	mux.HandleFunc("GET /api/practice/{id}", d.getPracticeSession)
	mux.HandleFunc("PUT /api/practice/{id}/complete", d.completePracticeSession)
	mux.HandleFunc("PATCH /api/practice/complete", d.completePracticeForQuestion)
	mux.HandleFunc("GET /api/users/{id}/practice", d.listPracticeSessions)

	mux.HandleFunc("GET /api/users/{id}/detections", d.listDetections)
	mux.HandleFunc("GET /api/users/{id}/detections/recent", d.recentDetections)
	mux.HandleFunc("POST /api/detections/{id}/suggestion", d.createSuggestion)
	mux.HandleFunc("PUT /api/detections/{id}/suggestion", d.acceptSuggestion)

	mux.HandleFunc("GET /api/reference", d.listReference)
	mux.HandleFunc("GET /api/reference/{letter}", d.getReference)

	return mux
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d Deps) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if d.Ready != nil {
		if err := d.Ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
