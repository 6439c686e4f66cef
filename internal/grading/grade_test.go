package grading

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		score  int
		letter string
		passed bool
		stars  int
	}{
		{100, "A", true, 3},
		{90, "A", true, 3},
		{89, "B", true, 3},
		{80, "B", true, 3},
		{70, "C", true, 3},
		{69, "D", false, 3},
		{67, "D", false, 3},
		{60, "D", false, 2},
		{34, "E", false, 2},
		{33, "E", false, 1},
		{0, "E", false, 0},
		{-10, "E", false, 0},
		{150, "A", true, 3},
	}
	for _, c := range cases {
		g := Classify(c.score)
		if g.Letter != c.letter || g.Passed != c.passed || g.Stars != c.stars {
			t.Errorf("Classify(%d) = %+v", c.score, g)
		}
		want := StatusFailed
		if c.passed {
			want = StatusPassed
		}
		if g.Status != want {
			t.Errorf("Classify(%d).Status = %q", c.score, g.Status)
		}
	}
}

func TestClassifyMessages(t *testing.T) {
	if g := Classify(95); g.Message != "Excellent!" || g.Colors[0] != "#4ADE80" {
		t.Fatalf("got %+v", g)
	}
	if g := Classify(10); g.Message != "Try Again" {
		t.Fatalf("got %+v", g)
	}
}
