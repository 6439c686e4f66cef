package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taba-id/taba/internal/grading"
	"github.com/taba-id/taba/internal/quiz"
	"github.com/taba-id/taba/internal/rbac"
)

type sessionResponse struct {
	quiz.View
	Question *questionView  `json:"question,omitempty"`
	Grade    *grading.Grade `json:"grade,omitempty"`
	Duration string         `json:"duration"`
}

func presentSession(v quiz.View) *sessionResponse {
	out := &sessionResponse{View: v, Duration: quiz.FormatDuration(v.Elapsed)}
	if v.Current != nil {
		q := presentQuestion(*v.Current, false)
		out.Question = &q
	}
	if v.Result != nil {
		g := grading.Classify(v.Result.TotalScore)
		out.Grade = &g
	}
	return out
}

// POST /sessions  { "course": "...", "topic": "..." }
func StartSessionHandler(engine *quiz.Engine, reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Course string `json:"course"`
			Topic  string `json:"topic"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Course == "" || req.Topic == "" {
			writeError(w, errBadRequest("course and topic required"))
			return
		}
		s, err := engine.Start(r.Context(), rbac.SubjectFromContext(r.Context()), req.Course, req.Topic)
		if err != nil {
			writeError(w, err)
			return
		}
		reg.Add(s)
		writeJSON(w, http.StatusCreated, presentSession(engine.Snapshot(s)))
	}
}

func lookupSession(reg *quiz.Registry, r *http.Request) (*quiz.Session, error) {
	return reg.Get(chi.URLParam(r, "sessionID"), rbac.SubjectFromContext(r.Context()))
}

// GET /sessions/{sessionID}
func GetSessionHandler(engine *quiz.Engine, reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := lookupSession(reg, r)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, presentSession(engine.Snapshot(s)))
	}
}

// POST /sessions/{sessionID}/answers  { "question_id": "...", "answer": "..." | [...] }
func SubmitAnswerHandler(engine *quiz.Engine, reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := lookupSession(reg, r)
		if err != nil {
			writeError(w, err)
			return
		}
		var req struct {
			QuestionID string          `json:"question_id"`
			Answer     json.RawMessage `json:"answer"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.QuestionID == "" || len(req.Answer) == 0 || string(req.Answer) == "null" {
			writeError(w, errBadRequest("question_id and answer required"))
			return
		}
		var a quiz.Answer
		if err := json.Unmarshal(req.Answer, &a); err != nil {
			writeError(w, errBadRequest("answer must be a string or a list of strings"))
			return
		}
		v, err := engine.Submit(s, req.QuestionID, a)
		if err != nil {
			writeErrorBody(w, err, presentSession(v))
			return
		}
		writeJSON(w, http.StatusOK, presentSession(v))
	}
}

// POST /sessions/{sessionID}/advance
//
// On the last question this grades and saves. A failed save answers 503 with
// the graded session attached; POST .../save retries it.
func AdvanceHandler(engine *quiz.Engine, reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := lookupSession(reg, r)
		if err != nil {
			writeError(w, err)
			return
		}
		v, err := engine.Advance(r.Context(), s)
		if err != nil {
			writeErrorBody(w, err, presentSession(v))
			return
		}
		writeJSON(w, http.StatusOK, presentSession(v))
	}
}

// POST /sessions/{sessionID}/save
func SaveSessionHandler(engine *quiz.Engine, reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := lookupSession(reg, r)
		if err != nil {
			writeError(w, err)
			return
		}
		if _, err := engine.Save(r.Context(), s); err != nil {
			if errors.Is(err, quiz.ErrNotCompleted) {
				writeError(w, err)
				return
			}
			writeErrorBody(w, err, presentSession(engine.Snapshot(s)))
			return
		}
		writeJSON(w, http.StatusOK, presentSession(engine.Snapshot(s)))
	}
}

// DELETE /sessions/{sessionID}
func AbandonSessionHandler(reg *quiz.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !reg.Remove(chi.URLParam(r, "sessionID"), rbac.SubjectFromContext(r.Context())) {
			writeError(w, quiz.ErrSessionNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
