package server

import (
	"net/http"
	"strconv"

	"github.com/handspeak/handspeak-api/internal/identity"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"user_name"`
	Password string `json:"password"`
}

func (d Deps) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		badRequest(w, "email, user_name and password are required")
		return
	}
	u, err := d.Users.Create(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d Deps) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	u, err := identity.Authenticate(r.Context(), d.Users, req.Email, req.Password)
	if err != nil {
		// A failed login is always a 401, never a 404.
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (d Deps) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := d.Users.Get(r.Context(), identity.UserByID(r.PathValue("id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (d Deps) updateUser(w http.ResponseWriter, r *http.Request) {
	var upd identity.UserUpdate
	if err := decode(r, &upd); err != nil {
		badRequest(w, err.Error())
		return
	}
	if upd.Email != nil && *upd.Email == "" {
		badRequest(w, "email cannot be empty")
		return
	}
	u, err := d.Users.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (d Deps) listUsers(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 100)
	users, err := d.Users.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (d Deps) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := d.Users.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
