package quiz

import (
	"fmt"
	"testing"
)

func payloadOf(n int) Payload {
	p := Payload{}
	for i := 0; i < n; i++ {
		p.Questions = append(p.Questions, RawQuestion{
			ID:          fmt.Sprintf("src-%d", i),
			Question:    fmt.Sprintf("Question %d", i),
			Options:     []string{"a", "b", "c", "d"},
			AnswerIndex: intPtr(i % OptionCount),
		})
	}
	return p
}

func mustBuild(t *testing.T, p Payload, n int) *Session {
	t.Helper()
	s, err := Build(p, n)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return s
}

func TestBuild_SizeClamping(t *testing.T) {
	tests := []struct {
		name      string
		pool      int
		requested int
		want      int
	}{
		{"request within pool", 10, 4, 4},
		{"request exceeds pool", 5, 10, 5},
		{"request zero", 5, 0, 1},
		{"request negative", 5, -3, 1},
		{"exact pool", 5, 5, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := mustBuild(t, payloadOf(tc.pool), tc.requested)
			if len(s.Items) != tc.want {
				t.Fatalf("len(items) = %d, want %d", len(s.Items), tc.want)
			}
			if len(s.Answers) != tc.want || len(s.ExplanationOpen) != tc.want {
				t.Fatalf("parallel arrays out of step: answers=%d explanations=%d", len(s.Answers), len(s.ExplanationOpen))
			}
		})
	}
}

func TestBuild_EmptyPool(t *testing.T) {
	if _, err := Build(Payload{}, 5); err == nil || !IsValidation(err) {
		t.Fatalf("expected ValidationError for empty pool, got %v", err)
	}
	if _, err := Build(Payload{Questions: []RawQuestion{}}, 5); err == nil || !IsValidation(err) {
		t.Fatalf("expected ValidationError for zero questions, got %v", err)
	}
}

func TestBuild_FailsFastOnBadQuestion(t *testing.T) {
	p := payloadOf(4)
	p.Questions[2].Options = []string{"only", "three", "options"}
	if _, err := Build(p, 4); err == nil || !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestBuild_NoRepetition(t *testing.T) {
	s := mustBuild(t, payloadOf(20), 20)
	seen := map[string]bool{}
	for _, q := range s.Items {
		if seen[q.ID] {
			t.Fatalf("question %s appears twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestBuild_InitialState(t *testing.T) {
	s := mustBuild(t, payloadOf(3), 3)
	if s.Current != 0 {
		t.Fatalf("current = %d, want 0", s.Current)
	}
	if s.StartedAt == 0 {
		t.Fatalf("startedAt not set")
	}
	for i, a := range s.Answers {
		if a != Unanswered {
			t.Fatalf("answers[%d] = %d, want Unanswered", i, a)
		}
	}
	for i, open := range s.ExplanationOpen {
		if open {
			t.Fatalf("explanationOpen[%d] = true, want false", i)
		}
	}
}

func TestBuildFromJSON(t *testing.T) {
	data := []byte(`{
		"title": "demo",
		"questions": [
			{"question": "Q?", "options": ["a","b","c","d"], "answer_index": 1}
		]
	}`)
	s, err := BuildFromJSON(data, 1)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(s.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(s.Items))
	}

	for _, bad := range []string{
		`not json`,
		`{"questions": "nope"}`,
		`{"questions": [42]}`,
		`{}`,
	} {
		if _, err := BuildFromJSON([]byte(bad), 1); err == nil || !IsValidation(err) {
			t.Fatalf("payload %q: expected ValidationError, got %v", bad, err)
		}
	}
}

func TestSession_Navigation(t *testing.T) {
	s := mustBuild(t, payloadOf(3), 3)

	s.Prev() // saturates at 0
	if s.Current != 0 {
		t.Fatalf("prev at 0 moved cursor to %d", s.Current)
	}
	s.Next()
	s.Next()
	if s.Current != 2 {
		t.Fatalf("current = %d, want 2", s.Current)
	}
	s.Next() // saturates at last
	if s.Current != 2 {
		t.Fatalf("next at last moved cursor to %d", s.Current)
	}
	s.Prev()
	if s.Current != 1 {
		t.Fatalf("current = %d, want 1", s.Current)
	}
}

func TestSession_AnswerOverwriteAndValidation(t *testing.T) {
	s := mustBuild(t, payloadOf(2), 2)

	if err := s.Answer(1); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := s.Answer(3); err != nil {
		t.Fatalf("re-answer: %v", err)
	}
	if s.Answers[0] != 3 {
		t.Fatalf("answers[0] = %d, want overwritten 3", s.Answers[0])
	}

	for _, bad := range []int{-1, 4, 99} {
		if err := s.Answer(bad); err == nil || !IsValidation(err) {
			t.Fatalf("option %d: expected ValidationError, got %v", bad, err)
		}
	}
	if s.Answers[0] != 3 {
		t.Fatalf("rejected answer mutated state: %d", s.Answers[0])
	}
}

func TestSession_ToggleExplanation(t *testing.T) {
	s := mustBuild(t, payloadOf(2), 2)
	s.ToggleExplanation()
	if !s.ExplanationOpen[0] {
		t.Fatalf("expected explanation open after toggle")
	}
	s.Next()
	if s.ExplanationOpen[1] {
		t.Fatalf("toggle leaked to other item")
	}
	s.Prev()
	s.ToggleExplanation()
	if s.ExplanationOpen[0] {
		t.Fatalf("expected explanation closed after second toggle")
	}
}

func TestScore_FreshSessionAllBlank(t *testing.T) {
	s := mustBuild(t, payloadOf(3), 3)
	got := s.Score()
	want := Score{OK: 0, Bad: 0, Blank: 3, Total: 3}
	if got != want {
		t.Fatalf("score = %+v, want %+v", got, want)
	}
}

func TestScore_PartitionAndIdempotence(t *testing.T) {
	s := mustBuild(t, payloadOf(5), 5)

	// answer first correctly, second incorrectly, leave the rest blank
	if err := s.Answer(s.Items[0].AnswerIndex); err != nil {
		t.Fatalf("answer: %v", err)
	}
	s.Next()
	wrong := (s.Items[1].AnswerIndex + 1) % OptionCount
	if err := s.Answer(wrong); err != nil {
		t.Fatalf("answer: %v", err)
	}

	got := s.Score()
	want := Score{OK: 1, Bad: 1, Blank: 3, Total: 5}
	if got != want {
		t.Fatalf("score = %+v, want %+v", got, want)
	}
	if got.OK+got.Bad+got.Blank != got.Total {
		t.Fatalf("partition violated: %+v", got)
	}
	if again := s.Score(); again != got {
		t.Fatalf("score not idempotent: %+v then %+v", got, again)
	}
}

func TestScore_AfterNavigationStaysConsistent(t *testing.T) {
	s := mustBuild(t, payloadOf(4), 4)
	for i := range s.Items {
		if err := s.Answer(s.Items[i].AnswerIndex); err != nil {
			t.Fatalf("answer: %v", err)
		}
		s.Next()
	}
	// post-submission review: navigation still works, score unchanged
	s.Prev()
	s.Prev()
	got := s.Score()
	want := Score{OK: 4, Bad: 0, Blank: 0, Total: 4}
	if got != want {
		t.Fatalf("score = %+v, want %+v", got, want)
	}
}
