package server

import "net/http"

type startLessonRequest struct {
	LessonID string `json:"lesson_id"`
}

func (d Deps) startLesson(w http.ResponseWriter, r *http.Request) {
	var req startLessonRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.LessonID == "" {
		badRequest(w, "lesson_id is required")
		return
	}
	p, err := d.Ledger.StartLesson(r.Context(), r.PathValue("id"), req.LessonID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (d Deps) progressSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := d.Ledger.SummaryForUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (d Deps) beginQuestion(w http.ResponseWriter, r *http.Request) {
	answer, err := d.Ledger.BeginQuestion(r.Context(), r.PathValue("id"), r.PathValue("questionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

type submitAnswerRequest struct {
	Choice string `json:"choice"`
}

type submitAnswerResponse struct {
	Correct bool `json:"correct"`
}

func (d Deps) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	correct, err := d.Ledger.SubmitAnswer(r.Context(), r.PathValue("id"), r.PathValue("questionID"), req.Choice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitAnswerResponse{Correct: correct})
}

func (d Deps) listAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := d.Ledger.AnswersForProgress(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answers)
}
