package model

// Question is a single imported multiple-choice question. Questions are never
// mutated after import; sessions refer to them by their index in the set.
type Question struct {
	ID                 int      `json:"id"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Rationale          string   `json:"rationale"`
}

// IsCorrect reports whether answer selects the correct option.
func (q Question) IsCorrect(answer int) bool {
	return answer == q.CorrectAnswerIndex
}

// QuestionView is a question as shown while the correct answer must stay hidden.
type QuestionView struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// View strips the answer key and rationale.
func (q Question) View() QuestionView {
	return QuestionView{ID: q.ID, Question: q.Question, Options: q.Options}
}

// ImportReport summarizes a completed spreadsheet import.
type ImportReport struct {
	Imported int `json:"imported"`
	// Skipped lists the 1-based sheet rows dropped for having fewer than two options.
	Skipped []int `json:"skipped"`
}
