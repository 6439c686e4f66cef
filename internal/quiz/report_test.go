package quiz

import "testing"

func TestTopicStats(t *testing.T) {
	recs := []HistoryRecord{ // newest first
		{ID: "h3", Course: "Ejaan", Topic: "Tanda Baca", Score: 67},
		{ID: "h2", Course: "Ejaan", Topic: "Singkatan", Score: 100},
		{ID: "h1", Course: "Ejaan", Topic: "Tanda Baca", Score: 90},
	}
	st, ok := TopicStats(recs, "Ejaan", "Tanda Baca")
	if !ok {
		t.Fatal("expected stats")
	}
	if st.TotalAttempts != 2 || st.BestScore != 90 || st.LastAttempt.ID != "h3" {
		t.Fatalf("stats %+v", st)
	}
	if st.AverageScore != 79 { // 78.5 rounds up
		t.Fatalf("average %d", st.AverageScore)
	}
	if _, ok := TopicStats(recs, "Tata Kata", "Kata Benda"); ok {
		t.Fatal("no attempts must report !ok")
	}
}

func TestSummarize(t *testing.T) {
	if rep := Summarize(nil); rep.Total != 0 || rep.AvgScore != 0 {
		t.Fatalf("empty %+v", rep)
	}
	rep := Summarize([]HistoryRecord{{Score: 70}, {Score: 69}, {Score: 100}})
	if rep.Total != 3 || rep.Passed != 2 || rep.AvgScore != 80 {
		t.Fatalf("report %+v", rep)
	}
}
