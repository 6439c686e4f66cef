package quiz

import (
	"errors"
	"fmt"
)

var (
	ErrNoQuestions      = errors.New("no questions for this topic")
	ErrSessionCompleted = errors.New("session already completed")
	ErrNotCompleted     = errors.New("session not completed")
	ErrUnknownQuestion  = errors.New("question is not part of this session")
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoUser           = errors.New("no authenticated user")
	ErrNotFound         = errors.New("not found")
)

// DataUnavailableError reports that the backing data service could not serve
// a read or write. Callers should offer a retry and never substitute data.
type DataUnavailableError struct {
	Op  string
	Err error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable: %s: %v", e.Op, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// Unavailable wraps err as a DataUnavailableError unless it already is one.
// ErrNotFound and *MalformedAnswerError pass through untouched: neither is
// fixed by retrying.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		du  *DataUnavailableError
		mal *MalformedAnswerError
	)
	if errors.As(err, &du) || errors.As(err, &mal) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &DataUnavailableError{Op: op, Err: err}
}

// MalformedAnswerError marks an answer-shape mismatch between a submitted or
// stored answer and the question's canonical answer. It is a data defect, not
// a wrong answer.
type MalformedAnswerError struct {
	QuestionID string
	Reason     string
}

func (e *MalformedAnswerError) Error() string {
	if e.QuestionID == "" {
		return "malformed answer: " + e.Reason
	}
	return fmt.Sprintf("malformed answer for question %s: %s", e.QuestionID, e.Reason)
}

// AnswerRequiredError is returned when advancing past a question that has no
// recorded answer.
type AnswerRequiredError struct {
	QuestionID string
	Index      int
}

func (e *AnswerRequiredError) Error() string {
	return fmt.Sprintf("answer required for question %d (%s)", e.Index+1, e.QuestionID)
}
