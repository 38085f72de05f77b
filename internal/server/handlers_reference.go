package server

import "net/http"

func (d Deps) listReference(w http.ResponseWriter, r *http.Request) {
	if d.Reference == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "reference content is not loaded"})
		return
	}
	writeJSON(w, http.StatusOK, d.Reference.All())
}

func (d Deps) getReference(w http.ResponseWriter, r *http.Request) {
	if d.Reference == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "reference content is not loaded"})
		return
	}
	entry, err := d.Reference.Get(r.PathValue("letter"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
