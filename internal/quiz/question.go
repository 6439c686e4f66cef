package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Kind string

const (
	KindMultipleChoice Kind = "multiple-choice"
	KindTrueFalse      Kind = "true-false"
	KindDragDrop       Kind = "drag-drop"
)

func (k Kind) Valid() bool {
	switch k {
	case KindMultipleChoice, KindTrueFalse, KindDragDrop:
		return true
	}
	return false
}

// Label is the learner-facing name of the question kind.
func (k Kind) Label() string {
	switch k {
	case KindMultipleChoice:
		return "Pilihan Ganda"
	case KindTrueFalse:
		return "Benar/Salah"
	case KindDragDrop:
		return "Urutkan"
	}
	return string(k)
}

const (
	True  = "Benar"
	False = "Salah"
)

// TrueFalseOptions returns the implicit options of a true-false question.
func TrueFalseOptions() []string { return []string{True, False} }

// Body holds the kind-specific part of a question. It is implemented only by
// MultipleChoice, TrueFalse and DragDrop.
type Body interface {
	Kind() Kind
	// Correct returns the canonical answer.
	Correct() Answer
	// Choices returns what the learner is shown: options, or the starting
	// arrangement for drag-drop.
	Choices() []string
	validate() error
}

type MultipleChoice struct {
	Options []string
	Answer  string
}

func (MultipleChoice) Kind() Kind { return KindMultipleChoice }

func (b MultipleChoice) Correct() Answer { return Text(b.Answer) }

func (b MultipleChoice) Choices() []string { return clone(b.Options) }

func (b MultipleChoice) validate() error {
	if len(b.Options) < 2 {
		return errors.New("multiple-choice needs at least two options")
	}
	for _, o := range b.Options {
		if o == b.Answer {
			return nil
		}
	}
	return &MalformedAnswerError{Reason: "correct answer is not one of the options"}
}

type TrueFalse struct {
	Answer string
}

func (TrueFalse) Kind() Kind { return KindTrueFalse }

func (b TrueFalse) Correct() Answer { return Text(b.Answer) }

func (TrueFalse) Choices() []string { return TrueFalseOptions() }

func (b TrueFalse) validate() error {
	if b.Answer != True && b.Answer != False {
		return &MalformedAnswerError{Reason: fmt.Sprintf("true-false answer must be %q or %q", True, False)}
	}
	return nil
}

// DragDrop asks the learner to reorder Items into the Answer order.
type DragDrop struct {
	Items  []string
	Answer []string
}

func (DragDrop) Kind() Kind { return KindDragDrop }

func (b DragDrop) Correct() Answer { return Sequence(b.Answer...) }

func (b DragDrop) Choices() []string { return clone(b.Items) }

func (b DragDrop) validate() error {
	if len(b.Items) < 2 {
		return errors.New("drag-drop needs at least two items")
	}
	if len(b.Items) != len(b.Answer) {
		return &MalformedAnswerError{Reason: "correct order is not a permutation of the drag items"}
	}
	count := make(map[string]int, len(b.Items))
	for _, it := range b.Items {
		count[it]++
	}
	for _, it := range b.Answer {
		count[it]--
		if count[it] < 0 {
			return &MalformedAnswerError{Reason: "correct order is not a permutation of the drag items"}
		}
	}
	return nil
}

// NewBody builds the body for kind from flat fields, checking that the
// canonical answer has the shape the kind requires.
func NewBody(kind Kind, options, dragItems []string, correct Answer) (Body, error) {
	switch kind {
	case KindMultipleChoice:
		if correct.IsSequence() {
			return nil, &MalformedAnswerError{Reason: "multiple-choice answer must be a single value"}
		}
		return MultipleChoice{Options: clone(options), Answer: correct.Value()}, nil
	case KindTrueFalse:
		if correct.IsSequence() {
			return nil, &MalformedAnswerError{Reason: "true-false answer must be a single value"}
		}
		return TrueFalse{Answer: correct.Value()}, nil
	case KindDragDrop:
		if !correct.IsSequence() {
			return nil, &MalformedAnswerError{Reason: "drag-drop answer must be an ordered list"}
		}
		return DragDrop{Items: clone(dragItems), Answer: correct.Items()}, nil
	}
	return nil, fmt.Errorf("unknown question kind %q", kind)
}

// Question is one evaluable unit of a topic.
type Question struct {
	ID          string
	Course      string
	Topic       string
	Prompt      string
	Explanation string
	CreatedAt   time.Time
	Body        Body
}

func (q Question) Kind() Kind {
	if q.Body == nil {
		return ""
	}
	return q.Body.Kind()
}

// Validate checks authoring invariants. Answer-shape problems are reported as
// *MalformedAnswerError carrying the question id.
func (q Question) Validate() error {
	switch {
	case strings.TrimSpace(q.Course) == "":
		return errors.New("course required")
	case strings.TrimSpace(q.Topic) == "":
		return errors.New("topic required")
	case strings.TrimSpace(q.Prompt) == "":
		return errors.New("question text required")
	case q.Body == nil:
		return errors.New("question kind required")
	}
	if err := q.Body.validate(); err != nil {
		var m *MalformedAnswerError
		if errors.As(err, &m) {
			return &MalformedAnswerError{QuestionID: q.ID, Reason: m.Reason}
		}
		return err
	}
	return nil
}

// questionJSON is the wire shape shared by the API and the importers.
type questionJSON struct {
	ID            string    `json:"id,omitempty"`
	Course        string    `json:"course"`
	Topic         string    `json:"topic"`
	Type          Kind      `json:"type"`
	Question      string    `json:"question"`
	Options       []string  `json:"options,omitempty"`
	DragItems     []string  `json:"drag_items,omitempty"`
	CorrectAnswer *Answer   `json:"correct_answer,omitempty"`
	Explanation   string    `json:"explanation,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		ID:          q.ID,
		Course:      q.Course,
		Topic:       q.Topic,
		Type:        q.Kind(),
		Question:    q.Prompt,
		Explanation: q.Explanation,
		CreatedAt:   q.CreatedAt,
	}
	switch b := q.Body.(type) {
	case MultipleChoice:
		out.Options = b.Options
	case TrueFalse:
		out.Options = TrueFalseOptions()
	case DragDrop:
		out.DragItems = b.Items
	}
	if q.Body != nil {
		c := q.Body.Correct()
		out.CorrectAnswer = &c
	}
	return json.Marshal(out)
}

func (q *Question) UnmarshalJSON(b []byte) error {
	var in questionJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in.CorrectAnswer == nil {
		return errors.New("correct_answer required")
	}
	body, err := NewBody(in.Type, in.Options, in.DragItems, *in.CorrectAnswer)
	if err != nil {
		return err
	}
	*q = Question{
		ID:          in.ID,
		Course:      in.Course,
		Topic:       in.Topic,
		Prompt:      in.Question,
		Explanation: in.Explanation,
		CreatedAt:   in.CreatedAt,
		Body:        body,
	}
	return nil
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
