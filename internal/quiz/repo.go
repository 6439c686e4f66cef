package quiz

import (
	"context"
	"time"
)

// QuestionBank supplies the ordered questions of one (course, topic) pair.
// Order is creation order and must be stable across loads. An empty result
// is not an error.
type QuestionBank interface {
	LoadQuestions(ctx context.Context, course, topic string) ([]Question, error)
}

// QuestionStore is the authoring side of the question bank.
type QuestionStore interface {
	QuestionBank
	GetQuestion(ctx context.Context, id string) (Question, error)
	CreateQuestion(ctx context.Context, q Question) (Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}

// HistoryRecorder persists graded sessions and reads them back. SaveResult is
// not idempotent: every call appends a new record.
type HistoryRecorder interface {
	SaveResult(ctx context.Context, req SaveRequest) (HistoryRecord, error)
	ListHistory(ctx context.Context, userID string) ([]HistoryRecord, error)
	GetDetail(ctx context.Context, historyID string) (HistoryDetail, error)
	ClearHistory(ctx context.Context, userID string) (int64, error)
}

// Scorer grades a full answer map against a question set.
type Scorer interface {
	Score(questions []Question, answers map[string]Answer) (Result, error)
}

// QuestionResult is the graded outcome of one question.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	UserAnswer    Answer `json:"user_answer"`
	Answered      bool   `json:"answered"`
	CorrectAnswer Answer `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// Result is the graded outcome of a session. TotalScore is 0..100.
type Result struct {
	TotalScore     int              `json:"score"`
	TotalQuestions int              `json:"total_questions"`
	CorrectAnswers int              `json:"correct_answers"`
	PerQuestion    []QuestionResult `json:"answers"`
}

type SaveRequest struct {
	UserID         string
	Course         string
	Topic          string
	TotalScore     int
	TotalQuestions int
	CorrectAnswers int
	Duration       string
	PerQuestion    []QuestionResult
}

// NewSaveRequest copies a scored result into a save request.
func NewSaveRequest(userID, course, topic string, res Result, duration string) SaveRequest {
	return SaveRequest{
		UserID:         userID,
		Course:         course,
		Topic:          topic,
		TotalScore:     res.TotalScore,
		TotalQuestions: res.TotalQuestions,
		CorrectAnswers: res.CorrectAnswers,
		Duration:       duration,
		PerQuestion:    res.PerQuestion,
	}
}

// AnswerRow is one stored per-question answer. Answers are JSON-serialized.
type AnswerRow struct {
	QuestionID    string `json:"question_id"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// AnswerRows serializes per-question results in question order.
func AnswerRows(per []QuestionResult) []AnswerRow {
	rows := make([]AnswerRow, 0, len(per))
	for _, qr := range per {
		rows = append(rows, AnswerRow{
			QuestionID:    qr.QuestionID,
			UserAnswer:    EncodeAnswer(qr.UserAnswer, qr.Answered),
			CorrectAnswer: EncodeAnswer(qr.CorrectAnswer, true),
			IsCorrect:     qr.IsCorrect,
		})
	}
	return rows
}

// HistoryRecord is the durable artifact of a completed session.
type HistoryRecord struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Course         string      `json:"course"`
	Topic          string      `json:"topic"`
	Score          int         `json:"score"`
	TotalQuestions int         `json:"total_questions"`
	CorrectAnswers int         `json:"correct_answers"`
	Duration       string      `json:"duration,omitempty"`
	CompletedAt    time.Time   `json:"completed_at"`
	Answers        []AnswerRow `json:"answers,omitempty"`
}

// DefaultExplanation is shown when a question has no explanation.
const DefaultExplanation = "Tidak ada pembahasan tersedia."

// DetailAnswer is a stored answer joined against the current question bank.
// Question text is read live, so edits show up in old records.
type DetailAnswer struct {
	QuestionID    string   `json:"question_id"`
	Question      string   `json:"question"`
	Type          Kind     `json:"type"`
	UserAnswer    *Answer  `json:"user_answer"`
	CorrectAnswer Answer   `json:"correct_answer"`
	IsCorrect     bool     `json:"is_correct"`
	Explanation   string   `json:"explanation"`
	Options       []string `json:"options"`
	DragItems     []string `json:"drag_items"`
}

type HistoryDetail struct {
	HistoryRecord
	Items []DetailAnswer `json:"items"`
}
