package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// SQLStore keeps the question bank and quiz history in a relational DB. The
// same SQL runs on SQLite (modernc) and Postgres (pgx).
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
	log *log.Logger
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now, log: log.Default()}
}

// SetClock replaces the time source used for created_at and completed_at.
func (s *SQLStore) SetClock(now func() time.Time) { s.now = now }

type questionRow struct {
	id, course, topic, kind, prompt string
	options, dragItems, correct     string
	explanation                     string
	createdAt                       int64
}

func (r questionRow) question() (Question, error) {
	var opts, items []string
	if err := unmarshalList(r.options, &opts); err != nil {
		return Question{}, &MalformedAnswerError{QuestionID: r.id, Reason: "options: " + err.Error()}
	}
	if err := unmarshalList(r.dragItems, &items); err != nil {
		return Question{}, &MalformedAnswerError{QuestionID: r.id, Reason: "drag items: " + err.Error()}
	}
	correct, ok, err := DecodeAnswer(r.correct)
	if err != nil || !ok {
		return Question{}, &MalformedAnswerError{QuestionID: r.id, Reason: "correct answer is missing or not JSON"}
	}
	body, err := NewBody(Kind(r.kind), opts, items, correct)
	if err != nil {
		var m *MalformedAnswerError
		if errors.As(err, &m) {
			return Question{}, &MalformedAnswerError{QuestionID: r.id, Reason: m.Reason}
		}
		return Question{}, err
	}
	q := Question{
		ID:          r.id,
		Course:      r.course,
		Topic:       r.topic,
		Prompt:      r.prompt,
		Explanation: r.explanation,
		CreatedAt:   time.Unix(0, r.createdAt).UTC(),
		Body:        body,
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

func unmarshalList(s string, dst *[]string) error {
	if s == "" || s == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}

const questionCols = `id,course,topic,kind,prompt,options_json,drag_items_json,correct_answer_json,explanation,created_at`

func scanQuestion(sc interface{ Scan(...any) error }) (questionRow, error) {
	var r questionRow
	err := sc.Scan(&r.id, &r.course, &r.topic, &r.kind, &r.prompt,
		&r.options, &r.dragItems, &r.correct, &r.explanation, &r.createdAt)
	return r, err
}

// LoadQuestions returns the topic's questions in creation order. Rows whose
// stored answer does not fit their kind are logged and left out.
func (s *SQLStore) LoadQuestions(ctx context.Context, course, topic string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+questionCols+` FROM questions
		WHERE course=$1 AND topic=$2 ORDER BY created_at, id`, course, topic)
	if err != nil {
		return nil, Unavailable("load questions", err)
	}
	var raw []questionRow
	for rows.Next() {
		r, err := scanQuestion(rows)
		if err != nil {
			rows.Close()
			return nil, Unavailable("load questions", err)
		}
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, Unavailable("load questions", err)
	}
	rows.Close()

	out := make([]Question, 0, len(raw))
	for _, r := range raw {
		q, err := r.question()
		if err != nil {
			s.log.Printf("quiz: skip question %s in %s/%s: %v", r.id, course, topic, err)
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	r, err := scanQuestion(s.db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM questions WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrNotFound
		}
		return Question{}, Unavailable("get question", err)
	}
	return r.question()
}

func (s *SQLStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = s.now().UTC()
	}
	var opts, items []string
	switch b := q.Body.(type) {
	case MultipleChoice:
		opts = b.Options
	case DragDrop:
		items = b.Items
	}
	oj, _ := json.Marshal(opts)
	ij, _ := json.Marshal(items)
	_, err := s.db.ExecContext(ctx, `INSERT INTO questions (`+questionCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		q.ID, q.Course, q.Topic, string(q.Kind()), q.Prompt, string(oj), string(ij),
		EncodeAnswer(q.Body.Correct(), true), q.Explanation, q.CreatedAt.UnixNano())
	if err != nil {
		return Question{}, Unavailable("create question", err)
	}
	return q, nil
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return Unavailable("delete question", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveResult writes the summary row and every answer row in one transaction,
// so a failure never leaves a summary without its answers.
func (s *SQLStore) SaveResult(ctx context.Context, req SaveRequest) (HistoryRecord, error) {
	rec := recordFromRequest(uuid.NewString(), req, s.now().UTC())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return HistoryRecord{}, Unavailable("save result", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO quiz_history
		(id,user_id,course,topic,score,total_questions,correct_answers,duration,completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.UserID, rec.Course, rec.Topic, rec.Score, rec.TotalQuestions,
		rec.CorrectAnswers, rec.Duration, rec.CompletedAt.UnixNano()); err != nil {
		return HistoryRecord{}, Unavailable("save result", err)
	}
	for i, a := range rec.Answers {
		if _, err := tx.ExecContext(ctx, `INSERT INTO quiz_answers
			(quiz_history_id,position,question_id,user_answer,correct_answer,is_correct)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			rec.ID, i, a.QuestionID, a.UserAnswer, a.CorrectAnswer, a.IsCorrect); err != nil {
			return HistoryRecord{}, Unavailable("save answers", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return HistoryRecord{}, Unavailable("save result", err)
	}
	return rec, nil
}

const historyCols = `id,user_id,course,topic,score,total_questions,correct_answers,duration,completed_at`

func scanHistory(sc interface{ Scan(...any) error }) (HistoryRecord, error) {
	var (
		r  HistoryRecord
		at int64
	)
	if err := sc.Scan(&r.ID, &r.UserID, &r.Course, &r.Topic, &r.Score,
		&r.TotalQuestions, &r.CorrectAnswers, &r.Duration, &at); err != nil {
		return HistoryRecord{}, err
	}
	r.CompletedAt = time.Unix(0, at).UTC()
	return r, nil
}

// ListHistory returns userID's records, newest first, without answer rows.
func (s *SQLStore) ListHistory(ctx context.Context, userID string) ([]HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+historyCols+` FROM quiz_history
		WHERE user_id=$1 ORDER BY completed_at DESC, id DESC`, userID)
	if err != nil {
		return nil, Unavailable("list history", err)
	}
	defer rows.Close()
	out := make([]HistoryRecord, 0)
	for rows.Next() {
		r, err := scanHistory(rows)
		if err != nil {
			return nil, Unavailable("list history", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, Unavailable("list history", err)
	}
	return out, nil
}

// GetDetail loads a record with its answers joined against the questions
// table as it is now.
func (s *SQLStore) GetDetail(ctx context.Context, historyID string) (HistoryDetail, error) {
	rec, err := scanHistory(s.db.QueryRowContext(ctx,
		`SELECT `+historyCols+` FROM quiz_history WHERE id=$1`, historyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return HistoryDetail{}, ErrNotFound
		}
		return HistoryDetail{}, Unavailable("get history", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT a.question_id, a.user_answer, a.correct_answer, a.is_correct,
			q.id, q.course, q.topic, q.kind, q.prompt, q.options_json, q.drag_items_json,
			q.correct_answer_json, q.explanation, q.created_at
		FROM quiz_answers a LEFT JOIN questions q ON q.id = a.question_id
		WHERE a.quiz_history_id=$1 ORDER BY a.position`, historyID)
	if err != nil {
		return HistoryDetail{}, Unavailable("get history answers", err)
	}
	defer rows.Close()

	d := HistoryDetail{HistoryRecord: rec, Items: []DetailAnswer{}}
	for rows.Next() {
		var (
			a       AnswerRow
			qid     sql.NullString
			qcourse sql.NullString
			qtopic  sql.NullString
			qkind   sql.NullString
			qprompt sql.NullString
			qopts   sql.NullString
			qitems  sql.NullString
			qkey    sql.NullString
			qexpl   sql.NullString
			qat     sql.NullInt64
		)
		if err := rows.Scan(&a.QuestionID, &a.UserAnswer, &a.CorrectAnswer, &a.IsCorrect,
			&qid, &qcourse, &qtopic, &qkind, &qprompt, &qopts, &qitems,
			&qkey, &qexpl, &qat); err != nil {
			return HistoryDetail{}, Unavailable("get history answers", err)
		}

		var q Question
		found := qid.Valid
		if found {
			row := questionRow{
				id: qid.String, course: qcourse.String, topic: qtopic.String,
				kind: qkind.String, prompt: qprompt.String, options: qopts.String,
				dragItems: qitems.String, correct: qkey.String,
				explanation: qexpl.String, createdAt: qat.Int64,
			}
			if q, err = row.question(); err != nil {
				// Broken after an edit: show the text but nothing that
				// depends on the body.
				s.log.Printf("quiz: history %s: %v", historyID, err)
				q = Question{ID: row.id, Prompt: row.prompt, Explanation: row.explanation}
			}
		}
		item, err := joinAnswer(a, q, found)
		if err != nil {
			return HistoryDetail{}, &MalformedAnswerError{QuestionID: a.QuestionID, Reason: fmt.Sprintf("stored answer: %v", err)}
		}
		if found && q.Body == nil {
			item.Type = Kind(qkind.String)
		}
		d.Items = append(d.Items, item)
	}
	if err := rows.Err(); err != nil {
		return HistoryDetail{}, Unavailable("get history answers", err)
	}
	return d, nil
}

// ClearHistory deletes every record of userID and returns how many summaries
// were removed.
func (s *SQLStore) ClearHistory(ctx context.Context, userID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, Unavailable("clear history", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_answers WHERE quiz_history_id IN
		(SELECT id FROM quiz_history WHERE user_id=$1)`, userID); err != nil {
		return 0, Unavailable("clear history", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM quiz_history WHERE user_id=$1`, userID)
	if err != nil {
		return 0, Unavailable("clear history", err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, Unavailable("clear history", err)
	}
	return n, nil
}
