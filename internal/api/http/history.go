package http

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taba-id/taba/internal/grading"
	"github.com/taba-id/taba/internal/quiz"
	"github.com/taba-id/taba/internal/rbac"
	syncx "github.com/taba-id/taba/internal/sync"
)

// Emitter records user-visible events; *syncx.EventRepo satisfies it.
type Emitter interface {
	Emit(ctx context.Context, userID, typ, key string, payload any) (int64, error)
}

func emit(ctx context.Context, e Emitter, userID, typ, key string, payload any) {
	if e == nil {
		return
	}
	if _, err := e.Emit(ctx, userID, typ, key, payload); err != nil {
		log.Printf("events: append %s for %s: %v", typ, userID, err)
	}
}

// GET /history
func ListHistoryHandler(hist quiz.HistoryRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := hist.ListHistory(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, quiz.Unavailable("list history", err))
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// GET /history/{historyID}; another user's record reads as not found.
func GetHistoryHandler(hist quiz.HistoryRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := hist.GetDetail(r.Context(), chi.URLParam(r, "historyID"))
		if err != nil {
			writeError(w, quiz.Unavailable("get history", err))
			return
		}
		if d.UserID != rbac.SubjectFromContext(r.Context()) {
			writeError(w, quiz.ErrNotFound)
			return
		}
		type out struct {
			quiz.HistoryDetail
			Grade grading.Grade `json:"grade"`
		}
		writeJSON(w, http.StatusOK, out{HistoryDetail: d, Grade: grading.Classify(d.Score)})
	}
}

// DELETE /history
func ClearHistoryHandler(hist quiz.HistoryRecorder, events Emitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		n, err := hist.ClearHistory(r.Context(), sub)
		if err != nil {
			writeError(w, quiz.Unavailable("clear history", err))
			return
		}
		emit(r.Context(), events, sub, syncx.TypeHistoryCleared, sub, map[string]int64{"deleted": n})
		writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
	}
}

// GET /history/stats?course=&topic=
func TopicStatsHandler(hist quiz.HistoryRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, t := r.URL.Query().Get("course"), r.URL.Query().Get("topic")
		if c == "" || t == "" {
			writeError(w, errBadRequest("course and topic required"))
			return
		}
		recs, err := hist.ListHistory(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, quiz.Unavailable("list history", err))
			return
		}
		stats, ok := quiz.TopicStats(recs, c, t)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "no attempts for this topic", Code: "no_attempts"})
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

type reportEntry struct {
	quiz.HistoryRecord
	Grade grading.Grade `json:"grade"`
}

// GET /report
func ReportHandler(hist quiz.HistoryRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := hist.ListHistory(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, quiz.Unavailable("list history", err))
			return
		}
		entries := make([]reportEntry, 0, len(recs))
		for _, rec := range recs {
			entries = append(entries, reportEntry{HistoryRecord: rec, Grade: grading.Classify(rec.Score)})
		}
		writeJSON(w, http.StatusOK, struct {
			quiz.Report
			Records []reportEntry `json:"records"`
		}{quiz.Summarize(recs), entries})
	}
}
