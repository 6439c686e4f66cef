package quiz

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreHistory(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if _, err := m.CreateQuestion(ctx, mc("q1", "Jakarta")); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateQuestion(ctx, Question{Course: "c", Topic: "t", Prompt: "p",
		Body: MultipleChoice{Options: []string{"a"}, Answer: "a"}}); err == nil {
		t.Fatal("single-option question accepted")
	}

	rec, err := m.SaveResult(ctx, SaveRequest{UserID: "alice", Course: "Ejaan", Topic: "Tanda Baca",
		TotalScore: 100, TotalQuestions: 1, CorrectAnswers: 1,
		PerQuestion: []QuestionResult{{QuestionID: "q1", UserAnswer: Text("Jakarta"), Answered: true, CorrectAnswer: Text("Jakarta"), IsCorrect: true}}})
	if err != nil {
		t.Fatal(err)
	}
	d, err := m.GetDetail(ctx, rec.ID)
	if err != nil || len(d.Items) != 1 || d.Items[0].Question != "prompt q1" || d.Answers != nil {
		t.Fatalf("detail %+v %v", d, err)
	}
	if _, err := m.GetDetail(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
	if n, _ := m.ClearHistory(ctx, "alice"); n != 1 {
		t.Fatalf("cleared %d", n)
	}
	if recs, _ := m.ListHistory(ctx, "alice"); len(recs) != 0 {
		t.Fatal("history not cleared")
	}
}

func TestMemoryStoreDetailOfDeletedQuestions(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	empty, err := m.SaveResult(ctx, SaveRequest{UserID: "alice", Course: "c", Topic: "t"})
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := m.GetDetail(ctx, empty.ID); d.Items == nil {
		t.Fatal("items must be an empty list, not nil")
	}

	rec, err := m.SaveResult(ctx, SaveRequest{UserID: "alice", Course: "c", Topic: "t", TotalQuestions: 2,
		PerQuestion: []QuestionResult{
			{QuestionID: "gone-dd", UserAnswer: Sequence("b", "a"), Answered: true, CorrectAnswer: Sequence("a", "b")},
			{QuestionID: "gone-mc", UserAnswer: Text("x"), Answered: true, CorrectAnswer: Text("x"), IsCorrect: true},
		}})
	if err != nil {
		t.Fatal(err)
	}
	d, err := m.GetDetail(ctx, rec.ID)
	if err != nil || len(d.Items) != 2 {
		t.Fatalf("detail %+v %v", d, err)
	}
	if d.Items[0].Type != KindDragDrop || d.Items[0].Question != "" {
		t.Fatalf("deleted drag-drop %+v", d.Items[0])
	}
	if d.Items[1].Type != "" || !d.Items[1].IsCorrect {
		t.Fatalf("deleted scalar question %+v", d.Items[1])
	}
}
