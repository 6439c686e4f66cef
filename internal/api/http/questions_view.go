package http

import (
	"github.com/taba-id/taba/internal/quiz"
)

// questionView is a question as shown to a client. The answer key and the
// explanation are only filled in when the caller may see them.
type questionView struct {
	ID            string       `json:"id"`
	Course        string       `json:"course"`
	Topic         string       `json:"topic"`
	Type          quiz.Kind    `json:"type"`
	TypeLabel     string       `json:"type_label"`
	Question      string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	DragItems     []string     `json:"drag_items,omitempty"`
	CorrectAnswer *quiz.Answer `json:"correct_answer,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
}

func presentQuestion(q quiz.Question, withKey bool) questionView {
	v := questionView{
		ID:        q.ID,
		Course:    q.Course,
		Topic:     q.Topic,
		Type:      q.Kind(),
		TypeLabel: q.Kind().Label(),
		Question:  q.Prompt,
	}
	switch q.Kind() {
	case quiz.KindDragDrop:
		v.DragItems = q.Body.Choices()
	default:
		v.Options = q.Body.Choices()
	}
	if withKey {
		c := q.Body.Correct()
		v.CorrectAnswer = &c
		v.Explanation = q.Explanation
	}
	return v
}
