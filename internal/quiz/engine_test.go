package quiz_test

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/taba-id/taba/internal/grading"
	"github.com/taba-id/taba/internal/quiz"
)

// flakyRecorder fails the first n saves.
type flakyRecorder struct {
	*quiz.MemoryStore
	mu    sync.Mutex
	fails int
	calls int
}

func (f *flakyRecorder) SaveResult(ctx context.Context, req quiz.SaveRequest) (quiz.HistoryRecord, error) {
	f.mu.Lock()
	f.calls++
	fail := f.fails > 0
	if fail {
		f.fails--
	}
	f.mu.Unlock()
	if fail {
		return quiz.HistoryRecord{}, errors.New("connection reset")
	}
	return f.MemoryStore.SaveResult(ctx, req)
}

type failingBank struct{}

func (failingBank) LoadQuestions(context.Context, string, string) ([]quiz.Question, error) {
	return nil, errors.New("db down")
}

func seed(t *testing.T, store *quiz.MemoryStore) {
	t.Helper()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	qs := []quiz.Question{
		{ID: "q1", Prompt: "Ibu kota Indonesia?", Body: quiz.MultipleChoice{Options: []string{"Jakarta", "Bandung", "Surabaya"}, Answer: "Jakarta"}},
		{ID: "q2", Prompt: "Matahari terbit di timur.", Body: quiz.TrueFalse{Answer: quiz.True}},
		{ID: "q3", Prompt: "Urutkan.", Body: quiz.DragDrop{Items: []string{"C", "A", "B"}, Answer: []string{"A", "B", "C"}}},
	}
	for i, q := range qs {
		q.Course, q.Topic = "Ejaan", "Tanda Baca"
		q.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := store.CreateQuestion(context.Background(), q); err != nil {
			t.Fatal(err)
		}
	}
}

func newEngine(bank quiz.QuestionBank, rec quiz.HistoryRecorder, opts ...quiz.Option) *quiz.Engine {
	opts = append([]quiz.Option{quiz.WithLogger(log.New(io.Discard, "", 0))}, opts...)
	return quiz.NewEngine(bank, rec, grading.NewDefaultGrader(), opts...)
}

func answerAll(t *testing.T, e *quiz.Engine, s *quiz.Session, answers ...quiz.Answer) quiz.View {
	t.Helper()
	var v quiz.View
	for i, a := range answers {
		cur := e.Snapshot(s).Current
		if _, err := e.Submit(s, cur.ID, a); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		var err error
		if v, err = e.Advance(context.Background(), s); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	return v
}

func TestEngineCompletesAndSavesOnce(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewMemoryStore()
	seed(t, store)

	var hooked []quiz.HistoryRecord
	e := newEngine(store, store, quiz.WithSavedHook(func(_ context.Context, r quiz.HistoryRecord) { hooked = append(hooked, r) }))
	s, err := e.Start(ctx, "alice", "Ejaan", "Tanda Baca")
	if err != nil {
		t.Fatal(err)
	}
	if v := e.Snapshot(s); v.Total != 3 || v.Current.ID != "q1" {
		t.Fatalf("start view %+v", v)
	}

	v := answerAll(t, e, s, quiz.Text("Jakarta"), quiz.Text(quiz.False), quiz.Sequence("A", "B", "C"))
	if v.State != "completed" || !v.Saved || v.Result.TotalScore != 67 {
		t.Fatalf("final view %+v", v)
	}
	if _, err := e.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	recs, _ := store.ListHistory(ctx, "alice")
	if len(recs) != 1 || recs[0].Score != 67 || recs[0].CorrectAnswers != 2 {
		t.Fatalf("history %+v", recs)
	}
	if len(hooked) != 1 {
		t.Fatalf("hook calls %d", len(hooked))
	}
}

func TestEngineSaveRetryWritesOneRecord(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewMemoryStore()
	seed(t, store)
	rec := &flakyRecorder{MemoryStore: store, fails: 1}
	e := newEngine(store, rec)

	s, _ := e.Start(ctx, "alice", "Ejaan", "Tanda Baca")
	for _, a := range []quiz.Answer{quiz.Text("Jakarta"), quiz.Text(quiz.True)} {
		_, _ = e.Submit(s, e.Snapshot(s).Current.ID, a)
		if _, err := e.Advance(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	v, err := e.Advance(ctx, s) // q3 keeps its starting order
	var du *quiz.DataUnavailableError
	if !errors.As(err, &du) {
		t.Fatalf("want data unavailable, got %v", err)
	}
	if v.Result == nil || v.Saved || v.Result.TotalScore != 67 {
		t.Fatalf("result must survive a failed save: %+v", v)
	}
	if _, err := e.Advance(ctx, s); !errors.Is(err, quiz.ErrSessionCompleted) {
		t.Fatalf("advance after completion: %v", err)
	}

	first, err := e.Save(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	again, err := e.Save(ctx, s)
	if err != nil || again.ID != first.ID {
		t.Fatalf("second save must return the stored record: %v", err)
	}
	recs, _ := store.ListHistory(ctx, "alice")
	if len(recs) != 1 || rec.calls != 2 {
		t.Fatalf("records=%d calls=%d", len(recs), rec.calls)
	}
}

func TestEngineStartErrors(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewMemoryStore()

	if _, err := newEngine(store, store).Start(ctx, "alice", "Ejaan", "Kosong"); !errors.Is(err, quiz.ErrNoQuestions) {
		t.Fatalf("empty topic: %v", err)
	}
	if _, err := newEngine(store, store).Start(ctx, "", "Ejaan", "Kosong"); !errors.Is(err, quiz.ErrNoUser) {
		t.Fatalf("no user: %v", err)
	}
	var du *quiz.DataUnavailableError
	if _, err := newEngine(failingBank{}, store).Start(ctx, "alice", "Ejaan", "Tanda Baca"); !errors.As(err, &du) {
		t.Fatalf("bank failure: %v", err)
	}
}

func TestEngineSaveBeforeCompletion(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewMemoryStore()
	seed(t, store)
	e := newEngine(store, store)
	s, _ := e.Start(ctx, "alice", "Ejaan", "Tanda Baca")
	if _, err := e.Save(ctx, s); !errors.Is(err, quiz.ErrNotCompleted) {
		t.Fatalf("got %v", err)
	}
}

func TestEngineElapsedDuration(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewMemoryStore()
	seed(t, store)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e := newEngine(store, store, quiz.WithClock(func() time.Time { return now }))
	s, _ := e.Start(ctx, "alice", "Ejaan", "Tanda Baca")
	now = now.Add(2*time.Minute + 5*time.Second)
	v := answerAll(t, e, s, quiz.Text("Jakarta"), quiz.Text(quiz.True), quiz.Sequence("A", "B", "C"))
	if v.Record == nil || v.Record.Duration != "2:05" || v.Record.Score != 100 {
		t.Fatalf("record %+v", v.Record)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                            "0:00",
		59 * time.Second:             "0:59",
		61 * time.Second:             "1:01",
		12*time.Minute + time.Second: "12:01",
		-5 * time.Second:             "0:00",
	}
	for d, want := range cases {
		if got := quiz.FormatDuration(d); got != want {
			t.Errorf("FormatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}
