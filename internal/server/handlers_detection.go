package server

import "net/http"

func (d Deps) listDetections(w http.ResponseWriter, r *http.Request) {
	if d.Detections == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "detection history is not enabled"})
		return
	}
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	list, err := d.Detections.ListByUser(r.Context(), r.PathValue("id"), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (d Deps) recentDetections(w http.ResponseWriter, r *http.Request) {
	if d.Feed == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "detection feed is not enabled"})
		return
	}
	list, err := d.Feed.Recent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type suggestionRequest struct {
	SuggestedText string `json:"suggested_text,omitempty"`
	AcceptedText  string `json:"accepted_text,omitempty"`
}

func (d Deps) createSuggestion(w http.ResponseWriter, r *http.Request) {
	if d.Detections == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "detection history is not enabled"})
		return
	}
	var req suggestionRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.SuggestedText == "" {
		badRequest(w, "suggested_text is required")
		return
	}
	sg, err := d.Detections.CreateSuggestion(r.Context(), r.PathValue("id"), req.SuggestedText)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sg)
}

func (d Deps) acceptSuggestion(w http.ResponseWriter, r *http.Request) {
	if d.Detections == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "detection history is not enabled"})
		return
	}
	var req suggestionRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.AcceptedText == "" {
		badRequest(w, "accepted_text is required")
		return
	}
	sg, err := d.Detections.AcceptSuggestion(r.Context(), r.PathValue("id"), req.AcceptedText)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sg)
}
