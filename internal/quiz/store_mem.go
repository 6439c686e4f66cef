package quiz

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a process-local QuestionStore and HistoryRecorder for
// development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	questions map[string]Question
	history   map[string]HistoryRecord
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		questions: map[string]Question{},
		history:   map[string]HistoryRecord{},
		now:       time.Now,
	}
}

func (m *MemoryStore) LoadQuestions(_ context.Context, course, topic string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0)
	for _, q := range m.questions {
		if q.Course == course && q.Topic == topic {
			out = append(out, q)
		}
	}
	sortQuestions(out)
	return out, nil
}

func (m *MemoryStore) GetQuestion(_ context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return q, nil
}

func (m *MemoryStore) CreateQuestion(_ context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = m.now()
	}
	m.questions[q.ID] = q
	return q, nil
}

func (m *MemoryStore) DeleteQuestion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return ErrNotFound
	}
	delete(m.questions, id)
	return nil
}

func (m *MemoryStore) SaveResult(_ context.Context, req SaveRequest) (HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := recordFromRequest(uuid.NewString(), req, m.now())
	m.history[rec.ID] = rec
	return rec, nil
}

func (m *MemoryStore) ListHistory(_ context.Context, userID string) ([]HistoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]HistoryRecord, 0)
	for _, r := range m.history {
		if r.UserID == userID {
			r.Answers = nil
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (m *MemoryStore) GetDetail(_ context.Context, historyID string) (HistoryDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.history[historyID]
	if !ok {
		return HistoryDetail{}, ErrNotFound
	}
	d := HistoryDetail{HistoryRecord: rec, Items: []DetailAnswer{}}
	d.Answers = nil
	for _, row := range rec.Answers {
		q, found := m.questions[row.QuestionID]
		item, err := joinAnswer(row, q, found)
		if err != nil {
			return HistoryDetail{}, err
		}
		d.Items = append(d.Items, item)
	}
	return d, nil
}

func (m *MemoryStore) ClearHistory(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.history {
		if r.UserID == userID {
			delete(m.history, id)
			n++
		}
	}
	return n, nil
}

func recordFromRequest(id string, req SaveRequest, at time.Time) HistoryRecord {
	return HistoryRecord{
		ID:             id,
		UserID:         req.UserID,
		Course:         req.Course,
		Topic:          req.Topic,
		Score:          req.TotalScore,
		TotalQuestions: req.TotalQuestions,
		CorrectAnswers: req.CorrectAnswers,
		Duration:       req.Duration,
		CompletedAt:    at,
		Answers:        AnswerRows(req.PerQuestion),
	}
}

// joinAnswer combines a stored answer with the question as it is now. A
// question deleted since the attempt leaves the text fields empty; its kind
// is drag-drop when the stored key is ordered and unknown otherwise.
func joinAnswer(row AnswerRow, q Question, found bool) (DetailAnswer, error) {
	item := DetailAnswer{
		QuestionID:  row.QuestionID,
		IsCorrect:   row.IsCorrect,
		Explanation: DefaultExplanation,
	}
	user, answered, err := DecodeAnswer(row.UserAnswer)
	if err != nil {
		return DetailAnswer{}, err
	}
	if answered {
		item.UserAnswer = &user
	}
	if item.CorrectAnswer, _, err = DecodeAnswer(row.CorrectAnswer); err != nil {
		return DetailAnswer{}, err
	}
	if !found {
		if item.CorrectAnswer.IsSequence() {
			item.Type = KindDragDrop
		}
		return item, nil
	}
	item.Question = q.Prompt
	item.Type = q.Kind()
	if q.Explanation != "" {
		item.Explanation = q.Explanation
	}
	switch b := q.Body.(type) {
	case MultipleChoice:
		item.Options = clone(b.Options)
	case TrueFalse:
		item.Options = TrueFalseOptions()
	case DragDrop:
		item.DragItems = clone(b.Items)
	}
	return item, nil
}

func sortQuestions(qs []Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		if qs[i].CreatedAt.Equal(qs[j].CreatedAt) {
			return qs[i].ID < qs[j].ID
		}
		return qs[i].CreatedAt.Before(qs[j].CreatedAt)
	})
}
