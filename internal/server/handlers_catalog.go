package server

import (
	"net/http"

	"github.com/handspeak/handspeak-api/internal/catalog"
)

func (d Deps) createCourse(w http.ResponseWriter, r *http.Request) {
	var c catalog.Course
	if err := decode(r, &c); err != nil {
		badRequest(w, err.Error())
		return
	}
	if c.Name == "" {
		badRequest(w, "course_name is required")
		return
	}
	created, err := d.Catalog.CreateCourse(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (d Deps) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := d.Catalog.ListCourses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (d Deps) courseOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := d.Catalog.CourseOverview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (d Deps) getCourse(w http.ResponseWriter, r *http.Request) {
	course, err := d.Catalog.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (d Deps) updateCourse(w http.ResponseWriter, r *http.Request) {
	var upd catalog.CourseUpdate
	if err := decode(r, &upd); err != nil {
		badRequest(w, err.Error())
		return
	}
	course, err := d.Catalog.UpdateCourse(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (d Deps) deleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := d.Catalog.DeleteCourse(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// attachRequest is the body for both attach endpoints. A nil index appends.
type attachRequest struct {
	LessonID   string `json:"lesson_id,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
	Index      *int   `json:"index,omitempty"`
}

func (d Deps) attachLesson(w http.ResponseWriter, r *http.Request) {
	var req attachRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.LessonID == "" {
		badRequest(w, "lesson_id is required")
		return
	}
	link, err := d.Catalog.AttachLesson(r.Context(), r.PathValue("id"), req.LessonID, req.Index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (d Deps) courseLessons(w http.ResponseWriter, r *http.Request) {
	links, err := d.Catalog.CourseLessons(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (d Deps) detachLesson(w http.ResponseWriter, r *http.Request) {
	if err := d.Catalog.DetachLesson(r.Context(), r.PathValue("id"), r.PathValue("lessonID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (d Deps) createLesson(w http.ResponseWriter, r *http.Request) {
	var l catalog.Lesson
	if err := decode(r, &l); err != nil {
		badRequest(w, err.Error())
		return
	}
	if l.Name == "" {
		badRequest(w, "lesson_name is required")
		return
	}
	created, err := d.Catalog.CreateLesson(r.Context(), l)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (d Deps) getLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := d.Catalog.GetLesson(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (d Deps) updateLesson(w http.ResponseWriter, r *http.Request) {
	var upd catalog.LessonUpdate
	if err := decode(r, &upd); err != nil {
		badRequest(w, err.Error())
		return
	}
	lesson, err := d.Catalog.UpdateLesson(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (d Deps) deleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := d.Catalog.DeleteLesson(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (d Deps) attachQuestion(w http.ResponseWriter, r *http.Request) {
	var req attachRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.QuestionID == "" {
		badRequest(w, "question_id is required")
		return
	}
	link, err := d.Catalog.AttachQuestion(r.Context(), r.PathValue("id"), req.QuestionID, req.Index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (d Deps) lessonQuestions(w http.ResponseWriter, r *http.Request) {
	links, err := d.Catalog.LessonQuestions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (d Deps) detachQuestion(w http.ResponseWriter, r *http.Request) {
	if err := d.Catalog.DetachQuestion(r.Context(), r.PathValue("id"), r.PathValue("questionID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (d Deps) createQuestion(w http.ResponseWriter, r *http.Request) {
	var q catalog.Question
	if err := decode(r, &q); err != nil {
		badRequest(w, err.Error())
		return
	}
	if q.Target == "" {
		badRequest(w, "question_target is required")
		return
	}
	created, err := d.Catalog.CreateQuestion(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (d Deps) getQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := d.Catalog.GetQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (d Deps) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var upd catalog.QuestionUpdate
	if err := decode(r, &upd); err != nil {
		badRequest(w, err.Error())
		return
	}
	question, err := d.Catalog.UpdateQuestion(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (d Deps) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := d.Catalog.DeleteQuestion(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
