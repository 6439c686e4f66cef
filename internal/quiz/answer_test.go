package quiz

import (
	"encoding/json"
	"testing"
)

func TestAnswerJSONShapes(t *testing.T) {
	b, _ := json.Marshal(Text("Jakarta"))
	if string(b) != `"Jakarta"` {
		t.Fatalf("text: %s", b)
	}
	b, _ = json.Marshal(Sequence("a", "b"))
	if string(b) != `["a","b"]` {
		t.Fatalf("sequence: %s", b)
	}
	b, _ = json.Marshal(Sequence())
	if string(b) != `[]` {
		t.Fatalf("empty sequence: %s", b)
	}

	var a Answer
	if err := json.Unmarshal([]byte(` ["x","y"]`), &a); err != nil || !a.IsSequence() || a.String() != "[x, y]" {
		t.Fatalf("decode sequence: %v %v", a, err)
	}
	if err := json.Unmarshal([]byte(`"Benar"`), &a); err != nil || a.IsSequence() || a.Value() != "Benar" {
		t.Fatalf("decode text: %v %v", a, err)
	}
	for _, bad := range []string{`1`, `{"a":1}`, `[1,2]`, `true`} {
		if err := json.Unmarshal([]byte(bad), &a); err == nil {
			t.Errorf("%s: expected error", bad)
		}
	}
}

func TestSequenceCopies(t *testing.T) {
	src := []string{"a", "b"}
	a := Sequence(src...)
	src[0] = "z"
	if a.Items()[0] != "a" {
		t.Fatal("Sequence must copy its input")
	}
	items := a.Items()
	items[1] = "z"
	if a.Items()[1] != "b" {
		t.Fatal("Items must return a copy")
	}
}

func TestEncodeDecodeAnswer(t *testing.T) {
	if got := EncodeAnswer(Text("x"), false); got != "null" {
		t.Fatalf("unanswered: %q", got)
	}
	a, ok, err := DecodeAnswer("null")
	if err != nil || ok {
		t.Fatalf("null: %v %v %v", a, ok, err)
	}
	a, ok, err = DecodeAnswer(EncodeAnswer(Sequence("b", "a"), true))
	if err != nil || !ok || a.String() != "[b, a]" {
		t.Fatalf("sequence: %v %v %v", a, ok, err)
	}
	if _, _, err := DecodeAnswer("{"); err == nil {
		t.Fatal("expected error for bad JSON")
	}
}
