package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taba-id/taba/internal/course"
	"github.com/taba-id/taba/internal/quiz"
	"github.com/taba-id/taba/internal/rbac"
	syncx "github.com/taba-id/taba/internal/sync"
)

// GET /courses
func ListCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, course.All())
	}
}

// GET /courses/{course}
func GetCourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := course.Lookup(chi.URLParam(r, "course"))
		if !ok {
			writeError(w, course.ErrUnknownCourse)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// GET /courses/{course}/material
func GetMaterialHandler(m *course.Materials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := m.Get(chi.URLParam(r, "course"))
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write(b)
	}
}

// PUT /courses/{course}/material  (author) body: markdown
func PutMaterialHandler(m *course.Materials) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.Put(chi.URLParam(r, "course"), r.Body); err != nil {
			if errors.Is(err, course.ErrUnknownCourse) {
				writeError(w, err)
				return
			}
			writeError(w, errBadRequest(err.Error()))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /progress -> { "Ejaan": 40, ... }
func GetProgressHandler(store *course.ProgressStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := store.List(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, quiz.Unavailable("list progress", err))
			return
		}
		if r.URL.Query().Get("detail") == "1" {
			writeJSON(w, http.StatusOK, ps)
			return
		}
		writeJSON(w, http.StatusOK, course.Map(ps))
	}
}

// PUT /progress/{course}  { "progress": 0..100 }
func PutProgressHandler(store *course.ProgressStore, events Emitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "course")
		if _, ok := course.Lookup(name); !ok {
			writeError(w, course.ErrUnknownCourse)
			return
		}
		var req struct {
			Progress *int `json:"progress"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Progress == nil {
			writeError(w, errBadRequest("progress required"))
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		p, err := store.Upsert(r.Context(), sub, name, *req.Progress)
		if err != nil {
			writeError(w, quiz.Unavailable("update progress", err))
			return
		}
		emit(r.Context(), events, sub, syncx.TypeProgressUpdated, name, p)
		writeJSON(w, http.StatusOK, p)
	}
}

// GET /events?after=&limit=
func ListEventsHandler(repo *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after := int64(parseIntDefault(r.URL.Query().Get("after"), 0))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		evs, err := repo.List(r.Context(), rbac.SubjectFromContext(r.Context()), after, limit)
		if err != nil {
			writeError(w, quiz.Unavailable("list events", err))
			return
		}
		next := after
		if len(evs) > 0 {
			next = evs[len(evs)-1].Seq
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": evs, "next": next})
	}
}
