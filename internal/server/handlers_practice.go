package server

import "net/http"

type startPracticeRequest struct {
	UserID     string `json:"user_id"`
	CourseID   string `json:"course_id"`
	QuestionID string `json:"question_id"`
}

func (d Deps) startPractice(w http.ResponseWriter, r *http.Request) {
	var req startPracticeRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.UserID == "" || req.CourseID == "" || req.QuestionID == "" {
		badRequest(w, "user_id, course_id and question_id are required")
		return
	}
	sess, err := d.Practice.Start(r.Context(), req.UserID, req.CourseID, req.QuestionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (d Deps) getPracticeSession(w http.ResponseWriter, r *http.Request) {
	sess, err := d.Practice.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (d Deps) listPracticeSessions(w http.ResponseWriter, r *http.Request) {
	list, err := d.Practice.ListForUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (d Deps) completePracticeSession(w http.ResponseWriter, r *http.Request) {
	sess, err := d.Practice.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type completePracticeRequest struct {
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
}

func (d Deps) completePracticeForQuestion(w http.ResponseWriter, r *http.Request) {
	var req completePracticeRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.UserID == "" || req.QuestionID == "" {
		badRequest(w, "user_id and question_id are required")
		return
	}
	sess, err := d.Practice.CompleteForQuestion(r.Context(), req.UserID, req.QuestionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
