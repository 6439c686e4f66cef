package quiz

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Engine drives sessions: it loads questions, applies learner actions and
// hands a completed session's result to the recorder once.
type Engine struct {
	bank     QuestionBank
	recorder HistoryRecorder
	scorer   Scorer
	now      func() time.Time
	newID    func() string
	onSaved  func(context.Context, HistoryRecord)
	log      *log.Logger
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }
func WithIDs(newID func() string) Option    { return func(e *Engine) { e.newID = newID } }
func WithLogger(l *log.Logger) Option       { return func(e *Engine) { e.log = l } }

// WithSavedHook runs fn after a history record has been stored.
func WithSavedHook(fn func(context.Context, HistoryRecord)) Option {
	return func(e *Engine) { e.onSaved = fn }
}

func NewEngine(bank QuestionBank, recorder HistoryRecorder, scorer Scorer, opts ...Option) *Engine {
	e := &Engine{
		bank:     bank,
		recorder: recorder,
		scorer:   scorer,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      log.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Start loads the topic and opens a session for userID. An empty topic
// yields ErrNoQuestions; a failed load yields *DataUnavailableError.
func (e *Engine) Start(ctx context.Context, userID, course, topic string) (*Session, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	qs, err := e.bank.LoadQuestions(ctx, course, topic)
	if err != nil {
		return nil, Unavailable("load questions", err)
	}
	return NewSession(e.newID(), userID, course, topic, qs, e.now())
}

// View is a point-in-time copy of a session for presentation.
type View struct {
	ID            string         `json:"id"`
	Course        string         `json:"course"`
	Topic         string         `json:"topic"`
	State         string         `json:"state"`
	Index         int            `json:"index"`
	Total         int            `json:"total"`
	Current       *Question      `json:"-"`
	CurrentAnswer *Answer        `json:"current_answer,omitempty"`
	Result        *Result        `json:"result,omitempty"`
	Record        *HistoryRecord `json:"record,omitempty"`
	Saved         bool           `json:"saved"`
	Elapsed       time.Duration  `json:"-"`
}

func (e *Engine) Snapshot(s *Session) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.view(s)
}

func (e *Engine) view(s *Session) View {
	v := View{
		ID:      s.ID,
		Course:  s.Course,
		Topic:   s.Topic,
		State:   s.state.String(),
		Index:   s.index,
		Total:   len(s.questions),
		Elapsed: s.Elapsed(e.now()),
	}
	if s.state == StateAwaitingAnswer {
		q := s.Current()
		v.Current = &q
		if a, ok := s.answers[q.ID]; ok {
			v.CurrentAnswer = &a
		}
	}
	if res, ok := s.Result(); ok {
		v.Result = &res
	}
	if rec, ok := s.Record(); ok {
		v.Record = &rec
		v.Saved = true
	}
	return v
}

func (e *Engine) Submit(s *Session, questionID string, value Answer) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(e.now())
	if err := s.SubmitAnswer(questionID, value); err != nil {
		return e.view(s), err
	}
	return e.view(s), nil
}

// Advance moves the session forward. When it completes, the result is saved
// before returning; a save failure returns the view (with its result) and a
// *DataUnavailableError, and Save can be retried.
func (e *Engine) Advance(ctx context.Context, s *Session) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(e.now())
	done, err := s.Advance(e.scorer, e.now())
	if err != nil {
		return e.view(s), err
	}
	if !done {
		return e.view(s), nil
	}
	if _, err := e.save(ctx, s); err != nil {
		return e.view(s), err
	}
	return e.view(s), nil
}

// Save persists a completed session's result. It writes at most one record
// per session: once saved, the stored record is returned again.
func (e *Engine) Save(ctx context.Context, s *Session) (HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(e.now())
	if s.state != StateCompleted {
		return HistoryRecord{}, ErrNotCompleted
	}
	return e.save(ctx, s)
}

func (e *Engine) save(ctx context.Context, s *Session) (HistoryRecord, error) {
	if s.record != nil {
		return *s.record, nil
	}
	req := NewSaveRequest(s.UserID, s.Course, s.Topic, *s.result, FormatDuration(s.Elapsed(e.now())))
	rec, err := e.recorder.SaveResult(ctx, req)
	if err != nil {
		e.log.Printf("quiz: save session %s: %v", s.ID, err)
		return HistoryRecord{}, Unavailable("save result", err)
	}
	s.record = &rec
	if e.onSaved != nil {
		e.onSaved(ctx, rec)
	}
	return rec, nil
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
