package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/priyanshsolanki/medilink-assignment3/internal/auth"
	"github.com/priyanshsolanki/medilink-assignment3/internal/timeslot"
	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

func registerHandler(users user.Repository, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if req.Name == "" || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "name, email and password are required")
			return
		}

		role := user.Role(req.Role)
		if req.Role == "" {
			role = user.RolePatient
		}
		if !user.ValidRole(role) {
			writeError(w, http.StatusBadRequest, "invalid_role", "role must be patient, doctor or admin")
			return
		}

		var dob *time.Time
		if req.DOB != "" {
			parsed, err := time.Parse(timeslot.DayLayout, req.DOB)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_dob", "dob must be YYYY-MM-DD")
				return
			}
			dob = &parsed
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		u := &user.User{
			Name:         req.Name,
			Gender:       req.Gender,
			DOB:          dob,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         role,
		}
		if req.Specialty != "" {
			u.Specialty = &req.Specialty
		}

		if err := users.Create(r.Context(), u); err != nil {
			if errors.Is(err, user.ErrEmailTaken) {
				writeError(w, http.StatusBadRequest, "email_taken", "user already exists")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		token, err := auth.MakeToken(u, secret)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, AuthResponse{
			Token:  token,
			UserID: u.ID,
			Name:   u.Name,
			Role:   string(u.Role),
		})
	}
}

func loginHandler(users user.Repository, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		u, err := users.GetByEmail(r.Context(), req.Email)
		if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
			return
		}

		token, err := auth.MakeToken(u, secret)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{
			Token:  token,
			UserID: u.ID,
			Name:   u.Name,
			Role:   string(u.Role),
		})
	}
}
