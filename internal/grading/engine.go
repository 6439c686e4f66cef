package grading

import (
	"errors"
	"fmt"
	"math"

	"github.com/taba-id/taba/internal/quiz"
)

// Strategy decides whether one submitted answer matches the canonical one.
type Strategy interface {
	Compare(user, correct quiz.Answer) (bool, error)
}

// Grader routes by question kind to the matching Strategy and scores whole
// sessions. It implements quiz.Scorer.
type Grader struct {
	strategies map[quiz.Kind]Strategy
}

type Option func(*Grader)

// WithStrategy overrides the strategy used for kind.
func WithStrategy(kind quiz.Kind, s Strategy) Option {
	return func(g *Grader) { g.strategies[kind] = s }
}

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader(opts ...Option) *Grader {
	g := &Grader{
		strategies: map[quiz.Kind]Strategy{
			quiz.KindMultipleChoice: scalarStrategy{},
			quiz.KindTrueFalse:      scalarStrategy{},
			quiz.KindDragDrop:       orderStrategy{},
		},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Score grades every question. A question missing from answers counts as
// incorrect. The total is round(100*correct/total), computed once from the
// exact count; an empty set scores 0.
func (g *Grader) Score(questions []quiz.Question, answers map[string]quiz.Answer) (quiz.Result, error) {
	res := quiz.Result{
		TotalQuestions: len(questions),
		PerQuestion:    make([]quiz.QuestionResult, 0, len(questions)),
	}
	for _, q := range questions {
		if q.Body == nil {
			return quiz.Result{}, &quiz.MalformedAnswerError{QuestionID: q.ID, Reason: "question has no body"}
		}
		correct := q.Body.Correct()
		qr := quiz.QuestionResult{QuestionID: q.ID, CorrectAnswer: correct}
		if user, ok := answers[q.ID]; ok {
			qr.UserAnswer, qr.Answered = user, true
			s, ok := g.strategies[q.Kind()]
			if !ok {
				return quiz.Result{}, fmt.Errorf("grading: no strategy for %q", q.Kind())
			}
			hit, err := s.Compare(user, correct)
			if err != nil {
				return quiz.Result{}, withQuestion(err, q.ID)
			}
			qr.IsCorrect = hit
		}
		if qr.IsCorrect {
			res.CorrectAnswers++
		}
		res.PerQuestion = append(res.PerQuestion, qr)
	}
	res.TotalScore = Percent(res.CorrectAnswers, res.TotalQuestions)
	return res, nil
}

// Percent is round(100*k/n) with halves rounded up, or 0 when n is 0.
func Percent(k, n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(k) / float64(n)))
}

// IsCorrect compares two answers of any kind: scalars by exact string
// equality, sequences position by position. Mixed shapes are a
// *quiz.MalformedAnswerError.
func IsCorrect(user, correct quiz.Answer) (bool, error) {
	if user.IsSequence() {
		return orderStrategy{}.Compare(user, correct)
	}
	return scalarStrategy{}.Compare(user, correct)
}

// --- Strategies ---

type scalarStrategy struct{}

func (scalarStrategy) Compare(user, correct quiz.Answer) (bool, error) {
	if user.IsSequence() || correct.IsSequence() {
		return false, &quiz.MalformedAnswerError{Reason: "expected a single value, got an ordered list"}
	}
	return user.Value() == correct.Value(), nil
}

type orderStrategy struct{}

func (orderStrategy) Compare(user, correct quiz.Answer) (bool, error) {
	if !user.IsSequence() || !correct.IsSequence() {
		return false, &quiz.MalformedAnswerError{Reason: "expected an ordered list, got a single value"}
	}
	a, b := user.Items(), correct.Items()
	if len(a) != len(b) {
		return false, nil
	}
	for i := range a {
		if a[i] != b[i] {
			return false, nil
		}
	}
	return true, nil
}

func withQuestion(err error, id string) error {
	var m *quiz.MalformedAnswerError
	if errors.As(err, &m) && m.QuestionID == "" {
		return &quiz.MalformedAnswerError{QuestionID: id, Reason: m.Reason}
	}
	return err
}
