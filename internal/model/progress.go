package model

// ExerciseProgress tracks which questions were ever answered in exercise mode.
// AnsweredQuestions is kept as an ordered set (JSON array without duplicates).
type ExerciseProgress struct {
	AnsweredQuestions []int `json:"answeredQuestions"`
	LastQuestionIndex int   `json:"lastQuestionIndex"`
}

// StudyProgress tracks which questions had their answer revealed in study mode.
type StudyProgress struct {
	StudiedQuestions  []int `json:"studiedQuestions"`
	LastQuestionIndex int   `json:"lastQuestionIndex"`
}

func NewExerciseProgress() ExerciseProgress {
	return ExerciseProgress{AnsweredQuestions: []int{}}
}

func NewStudyProgress() StudyProgress {
	return StudyProgress{StudiedQuestions: []int{}}
}

// Has reports whether index was answered.
func (p ExerciseProgress) Has(index int) bool {
	return containsIndex(p.AnsweredQuestions, index)
}

// Has reports whether index was studied.
func (p StudyProgress) Has(index int) bool {
	return containsIndex(p.StudiedQuestions, index)
}

func (p ExerciseProgress) Clone() ExerciseProgress {
	p.AnsweredQuestions = append([]int{}, p.AnsweredQuestions...)
	return p
}

func (p StudyProgress) Clone() StudyProgress {
	p.StudiedQuestions = append([]int{}, p.StudiedQuestions...)
	return p
}

// Overview is the home screen summary across all three modes.
type Overview struct {
	TotalQuestions    int       `json:"total_questions"`
	ExerciseAnswered  int       `json:"exercise_answered"`
	StudyStudied      int       `json:"study_studied"`
	ExamState         ExamState `json:"exam_state"`
	ExamQuestionCount int       `json:"exam_question_count"`
	PassingScore      int       `json:"passing_score"`
	ExamTimeLimitSecs int       `json:"exam_time_limit_seconds"`
}

func containsIndex(set []int, index int) bool {
	for _, v := range set {
		if v == index {
			return true
		}
	}
	return false
}
