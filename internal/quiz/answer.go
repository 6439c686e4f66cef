package quiz

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Answer is either a single text value (multiple-choice, true-false) or an
// ordered sequence of values (drag-drop). The zero value is Text("").
type Answer struct {
	seq   bool
	text  string
	items []string
}

// Text returns a scalar answer.
func Text(s string) Answer { return Answer{text: s} }

// Sequence returns an ordered answer. The slice is copied.
func Sequence(items ...string) Answer {
	out := make([]string, len(items))
	copy(out, items)
	return Answer{seq: true, items: out}
}

func (a Answer) IsSequence() bool { return a.seq }

// Value returns the scalar value; empty for sequences.
func (a Answer) Value() string { return a.text }

// Items returns a copy of the ordered values; nil for scalars.
func (a Answer) Items() []string {
	if !a.seq {
		return nil
	}
	out := make([]string, len(a.items))
	copy(out, a.items)
	return out
}

func (a Answer) String() string {
	if a.seq {
		return "[" + strings.Join(a.items, ", ") + "]"
	}
	return a.text
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.seq {
		items := a.items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(a.text)
}

var errAnswerShape = errors.New("answer must be a string or an array of strings")

func (a *Answer) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errAnswerShape
	}
	switch b[0] {
	case '[':
		var items []string
		if err := json.Unmarshal(b, &items); err != nil {
			return errAnswerShape
		}
		*a = Sequence(items...)
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Text(s)
	default:
		return errAnswerShape
	}
	return nil
}

// EncodeAnswer serializes an answer for storage. Unanswered questions are
// stored as JSON null.
func EncodeAnswer(a Answer, answered bool) string {
	if !answered {
		return "null"
	}
	b, _ := json.Marshal(a)
	return string(b)
}

// DecodeAnswer is the inverse of EncodeAnswer.
func DecodeAnswer(s string) (a Answer, answered bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return Answer{}, false, nil
	}
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return Answer{}, false, err
	}
	return a, true, nil
}
