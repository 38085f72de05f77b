package server

import "net/http"

type enrollRequest struct {
	CourseID string `json:"course_id"`
}

func (d Deps) enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.CourseID == "" {
		badRequest(w, "course_id is required")
		return
	}
	e, err := d.Enrollments.Enroll(r.Context(), r.PathValue("id"), req.CourseID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (d Deps) listEnrollments(w http.ResponseWriter, r *http.Request) {
	list, err := d.Enrollments.ListForUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type updateEnrollmentRequest struct {
	Fraction float64 `json:"progress"`
}

func (d Deps) updateEnrollment(w http.ResponseWriter, r *http.Request) {
	var req updateEnrollmentRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	e, err := d.Enrollments.SetFraction(r.Context(), r.PathValue("id"), r.PathValue("courseID"), req.Fraction)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (d Deps) unenroll(w http.ResponseWriter, r *http.Request) {
	if err := d.Enrollments.Unenroll(r.Context(), r.PathValue("id"), r.PathValue("courseID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
