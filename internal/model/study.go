package model

// StudyView is the current question in study mode. CorrectAnswerIndex and
// Rationale are only populated once the answer was revealed.
type StudyView struct {
	Position           int          `json:"position"`
	TotalQuestions     int          `json:"total_questions"`
	StudiedCount       int          `json:"studied_count"`
	Question           QuestionView `json:"question"`
	Revealed           bool         `json:"revealed"`
	CorrectAnswerIndex *int         `json:"correct_answer_index,omitempty"`
	Rationale          string       `json:"rationale,omitempty"`
	IsLast             bool         `json:"is_last"`
}
