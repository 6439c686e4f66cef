package quiz

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewBodyShapes(t *testing.T) {
	if _, err := NewBody(KindMultipleChoice, []string{"a", "b"}, nil, Sequence("a")); !isMalformed(err) {
		t.Fatalf("mc with sequence: %v", err)
	}
	if _, err := NewBody(KindDragDrop, nil, []string{"a", "b"}, Text("a")); !isMalformed(err) {
		t.Fatalf("dd with text: %v", err)
	}
	if _, err := NewBody("essay", nil, nil, Text("a")); err == nil || isMalformed(err) {
		t.Fatalf("unknown kind: %v", err)
	}
	b, err := NewBody(KindTrueFalse, nil, nil, Text(True))
	if err != nil || b.Kind() != KindTrueFalse || len(b.Choices()) != 2 {
		t.Fatalf("tf: %v %v", b, err)
	}
}

func TestQuestionValidate(t *testing.T) {
	cases := []struct {
		name string
		q    Question
		ok   bool
	}{
		{"mc ok", Question{Course: "Ejaan", Topic: "Tanda Baca", Prompt: "p", Body: MultipleChoice{Options: []string{"a", "b"}, Answer: "a"}}, true},
		{"mc answer not an option", Question{Course: "c", Topic: "t", Prompt: "p", Body: MultipleChoice{Options: []string{"a", "b"}, Answer: "c"}}, false},
		{"mc one option", Question{Course: "c", Topic: "t", Prompt: "p", Body: MultipleChoice{Options: []string{"a"}, Answer: "a"}}, false},
		{"tf bad", Question{Course: "c", Topic: "t", Prompt: "p", Body: TrueFalse{Answer: "benar"}}, false},
		{"dd ok", Question{Course: "c", Topic: "t", Prompt: "p", Body: DragDrop{Items: []string{"b", "a"}, Answer: []string{"a", "b"}}}, true},
		{"dd not a permutation", Question{Course: "c", Topic: "t", Prompt: "p", Body: DragDrop{Items: []string{"b", "a"}, Answer: []string{"a", "a"}}}, false},
		{"missing prompt", Question{Course: "c", Topic: "t", Body: TrueFalse{Answer: True}}, false},
		{"missing body", Question{Course: "c", Topic: "t", Prompt: "p"}, false},
	}
	for _, tc := range cases {
		err := tc.q.Validate()
		if (err == nil) != tc.ok {
			t.Errorf("%s: err=%v", tc.name, err)
		}
	}
}

func TestValidateCarriesQuestionID(t *testing.T) {
	q := Question{ID: "q1", Course: "c", Topic: "t", Prompt: "p", Body: TrueFalse{Answer: "x"}}
	var m *MalformedAnswerError
	if err := q.Validate(); !errors.As(err, &m) || m.QuestionID != "q1" {
		t.Fatalf("got %v", err)
	}
}

func TestQuestionJSON(t *testing.T) {
	in := `{"course":"Ejaan","topic":"Huruf Kapital","type":"drag-drop","question":"Urutkan",
		"drag_items":["b","a"],"correct_answer":["a","b"],"explanation":"karena"}`
	var q Question
	if err := json.Unmarshal([]byte(in), &q); err != nil {
		t.Fatal(err)
	}
	dd, ok := q.Body.(DragDrop)
	if !ok || dd.Items[0] != "b" || dd.Answer[0] != "a" {
		t.Fatalf("body: %#v", q.Body)
	}
	out, err := json.Marshal(q)
	if err != nil {
		t.Fatal(err)
	}
	var back Question
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("round trip: %v (%s)", err, out)
	}
	if back.Prompt != "Urutkan" || back.Kind() != KindDragDrop {
		t.Fatalf("back: %+v", back)
	}

	if err := json.Unmarshal([]byte(`{"type":"multiple-choice","question":"x"}`), &q); err == nil {
		t.Fatal("expected error without correct_answer")
	}
}

func isMalformed(err error) bool {
	var m *MalformedAnswerError
	return errors.As(err, &m)
}
