package quiz

// OptionCount is the fixed number of choices per question in the bank format.
const OptionCount = 4

// Unanswered marks a session slot with no recorded choice.
const Unanswered = -1

// RawQuestion is one untrusted element of a document's questions array.
// AnswerIndex is a pointer so a missing field can be told apart from 0.
type RawQuestion struct {
	ID          string   `json:"id,omitempty"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex *int     `json:"answer_index"`
	Explanation string   `json:"explanation,omitempty"`
}

// Question is a validated question with its options in session order.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation"`
}

// Payload is the quiz-bearing part of a stored document.
type Payload struct {
	Questions []RawQuestion `json:"questions"`
}

// Session is one quiz attempt: a fixed subset of the pool plus per-question
// answer/explanation state and a navigation cursor. Items, Answers and
// ExplanationOpen are parallel and never resized after Build.
type Session struct {
	Items           []Question `json:"items"`
	Answers         []int      `json:"answers"`
	ExplanationOpen []bool     `json:"explanation_open"`
	Current         int        `json:"current"`
	StartedAt       int64      `json:"started_at"`
}

// Score is the aggregate outcome of a session at a point in time.
type Score struct {
	OK    int `json:"ok"`
	Bad   int `json:"bad"`
	Blank int `json:"blank"`
	Total int `json:"total"`
}
