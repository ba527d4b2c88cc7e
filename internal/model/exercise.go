package model

// ExerciseFeedback is shown right after an exercise answer.
type ExerciseFeedback struct {
	SelectedAnswer     int    `json:"selected_answer"`
	IsCorrect          bool   `json:"is_correct"`
	CorrectAnswerIndex int    `json:"correct_answer_index"`
	Rationale          string `json:"rationale"`
}

// ExerciseSettingsView is the pre-session settings screen.
type ExerciseSettingsView struct {
	QuestionsPerSession int  `json:"questions_per_session"`
	TotalQuestions      int  `json:"total_questions"`
	AnsweredQuestions   int  `json:"answered_questions"`
	RemainingQuestions  int  `json:"remaining_questions"`
	AllAnswered         bool `json:"all_answered"`
	SessionActive       bool `json:"session_active"`
}

// ExerciseSessionView is the current question of a running exercise session.
type ExerciseSessionView struct {
	Position      int               `json:"position"`
	SessionSize   int               `json:"session_size"`
	QuestionIndex int               `json:"question_index"`
	Question      QuestionView      `json:"question"`
	Feedback      *ExerciseFeedback `json:"feedback,omitempty"`
	IsLast        bool              `json:"is_last"`
}

// UpdateExerciseSettingsRequest carries the raw input of the size field; it is
// a string so that non-numeric input can be ignored instead of rejected.
type UpdateExerciseSettingsRequest struct {
	QuestionsPerSession string `json:"questions_per_session" binding:"required"`
}

// ExerciseAnswerRequest is the payload for answering an exercise question.
type ExerciseAnswerRequest struct {
	AnswerIndex *int `json:"answer_index" binding:"required,min=0"`
}

// SessionStepResult reports whether a navigation step ended the session.
type SessionStepResult struct {
	Finished bool `json:"finished"`
}
