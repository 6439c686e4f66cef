package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types written by the server. Clients poll them in place of a
// realtime push channel.
const (
	TypeQuizCompleted   = "QuizCompleted"
	TypeProgressUpdated = "ProgressUpdated"
	TypeHistoryCleared  = "HistoryCleared"
)

type Event struct {
	Seq       int64           `json:"seq"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
}

type EventRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db, now: time.Now} }

// Append stores e and returns its sequence number.
func (r *EventRepo) Append(ctx context.Context, e Event) (int64, error) {
	data := string(e.Data)
	if data == "" {
		data = "{}"
	}
	var seq int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO event_log (user_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5) RETURNING seq`,
		e.UserID, e.Type, e.Key, data, r.now().Unix()).Scan(&seq)
	return seq, err
}

// Emit marshals payload and appends it.
func (r *EventRepo) Emit(ctx context.Context, userID, typ, key string, payload any) (int64, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	return r.Append(ctx, Event{UserID: userID, Type: typ, Key: key, Data: b})
}

const maxList = 500

// List returns userID's events with seq > after in order, at most limit.
func (r *EventRepo) List(ctx context.Context, userID string, after int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > maxList {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, user_id, typ, key, data, created_at FROM event_log
		 WHERE user_id=$1 AND seq>$2 ORDER BY seq LIMIT $3`, userID, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Event, 0)
	for rows.Next() {
		var (
			e    Event
			data string
			at   int64
		)
		if err := rows.Scan(&e.Seq, &e.UserID, &e.Type, &e.Key, &data, &at); err != nil {
			return nil, err
		}
		e.Data = json.RawMessage(data)
		e.CreatedAt = time.Unix(at, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
