package service

import (
	"github.com/stemsi/kbtrainer/internal/model"
	"github.com/stemsi/kbtrainer/internal/store"
)

// OverviewService builds the home screen summary.
type OverviewService struct {
	store *store.QuestionStore
	exam  *ExamSessionService
}

func NewOverviewService(st *store.QuestionStore, exam *ExamSessionService) *OverviewService {
	return &OverviewService{store: st, exam: exam}
}

func (s *OverviewService) Get() model.Overview {
	return model.Overview{
		TotalQuestions:    s.store.QuestionCount(),
		ExerciseAnswered:  len(s.store.ExerciseProgress().AnsweredQuestions),
		StudyStudied:      len(s.store.StudyProgress().StudiedQuestions),
		ExamState:         s.exam.State(),
		ExamQuestionCount: s.store.ExamSize(),
		PassingScore:      s.store.PassingScore(),
		ExamTimeLimitSecs: int(s.exam.TimeLimit().Seconds()),
	}
}
