package quiz

import "math/rand"

// Normalize validates one raw question and returns it with its options in a
// fresh uniform random order. Correctness is carried through the permutation
// by index, so duplicate option texts cannot shift the answer. fallbackID is
// used when the raw record carries no id of its own.
func Normalize(raw RawQuestion, fallbackID string) (Question, error) {
	if raw.Question == "" {
		return Question{}, validationf("invalid question %s: missing 'question'", fallbackID)
	}
	if len(raw.Options) != OptionCount {
		return Question{}, validationf("invalid question: 'options' must have %d entries (%s)", OptionCount, raw.Question)
	}
	if raw.AnswerIndex == nil || *raw.AnswerIndex < 0 || *raw.AnswerIndex >= OptionCount {
		return Question{}, validationf("invalid question: 'answer_index' must be 0..%d (%s)", OptionCount-1, raw.Question)
	}

	perm := rand.Perm(OptionCount)
	options := make([]string, OptionCount)
	answer := 0
	for newPos, oldPos := range perm {
		options[newPos] = raw.Options[oldPos]
		if oldPos == *raw.AnswerIndex {
			answer = newPos
		}
	}

	id := raw.ID
	if id == "" {
		id = fallbackID
	}
	return Question{
		ID:          id,
		Prompt:      raw.Question,
		Options:     options,
		AnswerIndex: answer,
		Explanation: raw.Explanation,
	}, nil
}
