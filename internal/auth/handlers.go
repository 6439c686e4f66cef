package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/taba-id/taba/internal/rbac"
)

// BcryptCost is lowered in tests.
var BcryptCost = bcrypt.DefaultCost

const minPasswordLen = 6

type session struct {
	AccessToken string  `json:"access_token"`
	Profile     Profile `json:"profile"`
}

// POST /auth/signup  { "email": "...", "password": "...", "full_name": "..." }
func SignupHandler(a *AuthService, profiles *ProfileStore, enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !enabled {
			writeError(w, http.StatusForbidden, "signup disabled")
			return
		}
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			FullName string `json:"full_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if !strings.Contains(req.Email, "@") || len(req.Password) < minPasswordLen {
			writeError(w, http.StatusBadRequest, "valid email and a password of at least 6 characters required")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), BcryptCost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "hash password")
			return
		}
		p, err := profiles.Create(r.Context(), req.Email, string(hash), req.FullName, rbac.RoleLearner)
		if errors.Is(err, ErrEmailTaken) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		if err != nil {
			log.Printf("auth: signup: %v", err)
			writeError(w, http.StatusServiceUnavailable, "could not create account")
			return
		}
		issue(w, a, p, http.StatusCreated)
	}
}

// POST /auth/login  { "email": "...", "password": "..." }
func LoginHandler(a *AuthService, profiles *ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		p, hash, err := profiles.GetByEmail(r.Context(), req.Email)
		if errors.Is(err, ErrProfileNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			log.Printf("auth: login: %v", err)
			writeError(w, http.StatusServiceUnavailable, "could not sign in")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		issue(w, a, p, http.StatusOK)
	}
}

func issue(w http.ResponseWriter, a *AuthService, p Profile, status int) {
	tok, err := a.IssueJWT(p.ID, p.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue token")
		return
	}
	writeJSON(w, status, session{AccessToken: tok, Profile: p})
}

// GET /profile
func ProfileHandler(profiles *ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := profiles.Get(r.Context(), rbac.SubjectFromContext(r.Context()))
		if errors.Is(err, ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "could not load profile")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// PATCH /profile  { "full_name": "...", "avatar_url": "..." }
func UpdateProfileHandler(profiles *ProfileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch ProfilePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		p, err := profiles.Update(r.Context(), rbac.SubjectFromContext(r.Context()), patch)
		if errors.Is(err, ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "could not update profile")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// PUT /admin/users/{userID}/role  { "role": "author" }
func SetRoleHandler(profiles *ProfileStore, userID func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
			writeError(w, http.StatusBadRequest, "role required")
			return
		}
		err := profiles.SetRole(r.Context(), userID(r), req.Role)
		switch {
		case errors.Is(err, ErrProfileNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrUnknownRole):
			writeError(w, http.StatusBadRequest, err.Error())
		case err != nil:
			writeError(w, http.StatusServiceUnavailable, "could not update role")
		default:
			p, err := profiles.Get(r.Context(), userID(r))
			if err != nil {
				writeError(w, http.StatusServiceUnavailable, "could not load profile")
				return
			}
			writeJSON(w, http.StatusOK, p)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
