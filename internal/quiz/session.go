package quiz

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

// Build normalizes every question in the payload, shuffles the pool and
// samples a session of max(1, min(requested, pool size)) items. The pool
// shuffle is independent of the per-question option shuffle: it decides both
// which questions appear and in what order. A single bad question aborts the
// whole build.
func Build(payload Payload, requested int) (*Session, error) {
	if len(payload.Questions) == 0 {
		return nil, validationf("document has no 'questions'")
	}

	pool := make([]Question, len(payload.Questions))
	for i, raw := range payload.Questions {
		q, err := Normalize(raw, fmt.Sprintf("Q%d", i+1))
		if err != nil {
			return nil, err
		}
		pool[i] = q
	}

	shuffled := make([]Question, len(pool))
	for newPos, oldPos := range rand.Perm(len(pool)) {
		shuffled[newPos] = pool[oldPos]
	}

	count := requested
	if count > len(shuffled) {
		count = len(shuffled)
	}
	if count < 1 {
		count = 1
	}

	answers := make([]int, count)
	for i := range answers {
		answers[i] = Unanswered
	}
	return &Session{
		Items:           shuffled[:count],
		Answers:         answers,
		ExplanationOpen: make([]bool, count),
		Current:         0,
		StartedAt:       time.Now().Unix(),
	}, nil
}

// BuildFromJSON decodes a raw document payload and builds a session from it.
// Decode failures (wrong shapes, non-object questions, non-string prompts)
// surface as ValidationError.
func BuildFromJSON(data []byte, requested int) (*Session, error) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, validationf("invalid document payload: %v", err)
	}
	return Build(payload, requested)
}

// Answer records a choice for the current question, overwriting any prior
// choice. Out-of-range indexes are rejected rather than stored.
func (s *Session) Answer(optionIndex int) error {
	if optionIndex < 0 || optionIndex >= OptionCount {
		return validationf("option index must be 0..%d, got %d", OptionCount-1, optionIndex)
	}
	s.Answers[s.Current] = optionIndex
	return nil
}

// Next moves the cursor forward, saturating at the last item.
func (s *Session) Next() {
	if s.Current < len(s.Items)-1 {
		s.Current++
	}
}

// Prev moves the cursor back, saturating at the first item.
func (s *Session) Prev() {
	if s.Current > 0 {
		s.Current--
	}
}

// ToggleExplanation flips explanation visibility for the current question.
func (s *Session) ToggleExplanation() {
	s.ExplanationOpen[s.Current] = !s.ExplanationOpen[s.Current]
}

// Score aggregates the session into correct/incorrect/unanswered counts. It
// mutates nothing and can be called at any point in the session's life.
func (s *Session) Score() Score {
	sc := Score{Total: len(s.Items)}
	for i, q := range s.Items {
		switch a := s.Answers[i]; {
		case a == Unanswered:
			sc.Blank++
		case a == q.AnswerIndex:
			sc.OK++
		default:
			sc.Bad++
		}
	}
	return sc
}
