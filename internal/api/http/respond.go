package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/taba-id/taba/internal/course"
	"github.com/taba-id/taba/internal/quiz"
	"github.com/taba-id/taba/internal/storage"
)

// errorBody is the JSON shape of every API error. Retryable marks failures
// of the data service that the client should offer to retry.
type errorBody struct {
	Error     string           `json:"error"`
	Code      string           `json:"code"`
	Retryable bool             `json:"retryable,omitempty"`
	Session   *sessionResponse `json:"session,omitempty"`
}

// badRequest marks request validation failures.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func errBadRequest(msg string) error { return badRequest{msg: msg} }

func classify(err error) (status int, code string) {
	var (
		du  *quiz.DataUnavailableError
		mal *quiz.MalformedAnswerError
		req *quiz.AnswerRequiredError
		bad badRequest
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &du):
		return http.StatusServiceUnavailable, "data_unavailable"
	case errors.As(err, &mal):
		return http.StatusUnprocessableEntity, "malformed_answer"
	case errors.As(err, &req):
		return http.StatusConflict, "answer_required"
	case errors.Is(err, quiz.ErrNoQuestions):
		return http.StatusNotFound, "no_questions"
	case errors.Is(err, quiz.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, quiz.ErrSessionCompleted):
		return http.StatusConflict, "session_completed"
	case errors.Is(err, quiz.ErrNotCompleted):
		return http.StatusConflict, "session_not_completed"
	case errors.Is(err, quiz.ErrUnknownQuestion):
		return http.StatusBadRequest, "unknown_question"
	case errors.Is(err, quiz.ErrNoUser):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, course.ErrUnknownCourse):
		return http.StatusNotFound, "unknown_course"
	case errors.Is(err, quiz.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not_found"
	}
	return http.StatusInternalServerError, "internal"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorBody(w, err, nil)
}

// writeErrorBody writes err, attaching the session view when there is one.
func writeErrorBody(w http.ResponseWriter, err error, s *sessionResponse) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{
		Error:     msg,
		Code:      code,
		Retryable: status == http.StatusServiceUnavailable,
		Session:   s,
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest("bad json")
	}
	return nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
