package model

// Option is a single answer choice within a question. Immutable once built.
type Option struct {
	ID   string `json:"id"` // Letter a..g
	Text string `json:"text"`
}

// Question represents a single extracted exam question.
// IDs are assigned by the extractor: 1-based, dense, in document order.
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"` // ≥2 after validation, sorted by letter
}

// ExamDefinition is the single active exam. Replacing it is always
// build-then-swap, never an in-place edit.
type ExamDefinition struct {
	RawText   string     `json:"raw_text"`
	Questions []Question `json:"questions"`
}

// QuestionCount returns the number of questions, nil-safe.
func (e *ExamDefinition) QuestionCount() int {
	if e == nil {
		return 0
	}
	return len(e.Questions)
}
