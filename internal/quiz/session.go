package quiz

import (
	"sync"
	"sync/atomic"
	"time"
)

type State int

const (
	StateAwaitingAnswer State = iota
	StateCompleted
)

func (s State) String() string {
	if s == StateCompleted {
		return "completed"
	}
	return "awaiting_answer"
}

// Session is one in-memory attempt at a topic. It is never persisted; on
// completion its Result is handed to a HistoryRecorder exactly once.
//
// Session methods are not safe for concurrent use. Engine serializes access.
type Session struct {
	ID        string
	UserID    string
	Course    string
	Topic     string
	StartedAt time.Time

	mu          sync.Mutex
	lastSeen    atomic.Int64
	questions   []Question
	index       int
	answers     map[string]Answer
	state       State
	result      *Result
	completedAt time.Time
	record      *HistoryRecord
}

// NewSession starts at the first question. Drag-drop questions are seeded
// with their starting arrangement, so an untouched question is scored
// against that order.
func NewSession(id, userID, course, topic string, questions []Question, now time.Time) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	s := &Session{
		ID:        id,
		UserID:    userID,
		Course:    course,
		Topic:     topic,
		StartedAt: now,
		questions: make([]Question, len(questions)),
		answers:   make(map[string]Answer, len(questions)),
	}
	copy(s.questions, questions)
	for _, q := range s.questions {
		if dd, ok := q.Body.(DragDrop); ok {
			s.answers[q.ID] = Sequence(dd.Items...)
		}
	}
	s.touch(now)
	return s, nil
}

func (s *Session) State() State { return s.state }

func (s *Session) Index() int { return s.index }

func (s *Session) Len() int { return len(s.questions) }

func (s *Session) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Current returns the question at the current index.
func (s *Session) Current() Question { return s.questions[s.index] }

func (s *Session) Answer(questionID string) (Answer, bool) {
	a, ok := s.answers[questionID]
	return a, ok
}

func (s *Session) Answers() map[string]Answer {
	out := make(map[string]Answer, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

func (s *Session) question(id string) (Question, bool) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// SubmitAnswer records or overwrites the answer for questionID without
// moving the index.
func (s *Session) SubmitAnswer(questionID string, value Answer) error {
	if s.state == StateCompleted {
		return ErrSessionCompleted
	}
	q, ok := s.question(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if value.IsSequence() != q.Body.Correct().IsSequence() {
		return &MalformedAnswerError{QuestionID: q.ID, Reason: "answer shape does not match a " + string(q.Kind()) + " question"}
	}
	s.answers[questionID] = value
	return nil
}

// Advance moves to the next question, or grades the session when the current
// question is the last one. It reports whether the session completed. On a
// scoring error the session stays on the last question.
func (s *Session) Advance(scorer Scorer, now time.Time) (bool, error) {
	if s.state == StateCompleted {
		return false, ErrSessionCompleted
	}
	cur := s.questions[s.index]
	if _, ok := s.answers[cur.ID]; !ok {
		return false, &AnswerRequiredError{QuestionID: cur.ID, Index: s.index}
	}
	if s.index < len(s.questions)-1 {
		s.index++
		return false, nil
	}
	res, err := scorer.Score(s.questions, s.answers)
	if err != nil {
		return false, err
	}
	s.result = &res
	s.completedAt = now
	s.state = StateCompleted
	return true, nil
}

func (s *Session) Result() (Result, bool) {
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// Record returns the saved history record, if the result has been persisted.
func (s *Session) Record() (HistoryRecord, bool) {
	if s.record == nil {
		return HistoryRecord{}, false
	}
	return *s.record, true
}

// Elapsed is the time from start to completion, or to now while in progress.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s.state == StateCompleted {
		return s.completedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// LastSeen is safe to call concurrently with the other methods.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }
