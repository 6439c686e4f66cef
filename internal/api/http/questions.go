package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taba-id/taba/internal/importer"
	"github.com/taba-id/taba/internal/quiz"
	"github.com/taba-id/taba/internal/rbac"
)

const maxImportBytes = 10 << 20

func canSeeKeys(r *http.Request) bool { return rbac.Allowed(r.Context(), "question:view-keys") }

// GET /questions?course=&topic=
func ListQuestionsHandler(store quiz.QuestionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, t := r.URL.Query().Get("course"), r.URL.Query().Get("topic")
		if c == "" || t == "" {
			writeError(w, errBadRequest("course and topic required"))
			return
		}
		qs, err := store.LoadQuestions(r.Context(), c, t)
		if err != nil {
			writeError(w, quiz.Unavailable("load questions", err))
			return
		}
		keys := canSeeKeys(r)
		out := make([]questionView, 0, len(qs))
		for _, q := range qs {
			out = append(out, presentQuestion(q, keys))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /questions/{questionID}
func GetQuestionHandler(store quiz.QuestionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuestion(r.Context(), chi.URLParam(r, "questionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, presentQuestion(q, canSeeKeys(r)))
	}
}

// POST /questions  (author) body: the question wire JSON
func CreateQuestionHandler(store quiz.QuestionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Question
		err := json.NewDecoder(r.Body).Decode(&q)
		if err == nil {
			q.ID = ""
			err = q.Validate()
		}
		if err != nil {
			var mal *quiz.MalformedAnswerError
			if errors.As(err, &mal) {
				writeError(w, err)
				return
			}
			writeError(w, errBadRequest(err.Error()))
			return
		}
		created, err := store.CreateQuestion(r.Context(), q)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, presentQuestion(created, true))
	}
}

// DELETE /questions/{questionID}  (author)
func DeleteQuestionHandler(store quiz.QuestionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /questions/import  multipart "file" (.csv or .xlsx); ?sheet= picks
// the xlsx sheet.
func ImportQuestionsHandler(store quiz.QuestionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, errBadRequest("file required"))
			return
		}
		defer f.Close()
		format, err := importer.FormatFromName(hdr.Filename)
		if err != nil {
			writeError(w, errBadRequest(err.Error()))
			return
		}
		res, err := importer.Import(r.Context(), store, f, format, importer.Config{Sheet: r.URL.Query().Get("sheet")})
		if err != nil {
			var du *quiz.DataUnavailableError
			if errors.As(err, &du) {
				writeError(w, err)
				return
			}
			writeError(w, errBadRequest(err.Error()))
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
