package store

import (
	"context"

	"github.com/stemsi/kbtrainer/internal/config"
	"github.com/stemsi/kbtrainer/internal/model"
)

// UpdateExerciseProgress marks questionIndex as answered. Correctness is only
// used for the immediate feedback and is not retained.
func (s *QuestionStore) UpdateExerciseProgress(ctx context.Context, questionIndex int, isCorrect bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exercise.Has(questionIndex) {
		s.exercise.AnsweredQuestions = append(s.exercise.AnsweredQuestions, questionIndex)
	}
	s.exercise.LastQuestionIndex = questionIndex
	s.persist(ctx, config.StorageKey.ExerciseProgress, s.exercise)

	s.log.Debug().Int("question", questionIndex).Bool("correct", isCorrect).Msg("Exercise answer recorded")
}

// ResetExerciseProgress empties the answered set.
func (s *QuestionStore) ResetExerciseProgress(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exercise = model.NewExerciseProgress()
	s.remove(ctx, config.StorageKey.ExerciseProgress)
}

// ExerciseProgress returns a copy of the exercise record.
func (s *QuestionStore) ExerciseProgress() model.ExerciseProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exercise.Clone()
}

// UpdateStudyProgress marks questionIndex as studied.
func (s *QuestionStore) UpdateStudyProgress(ctx context.Context, questionIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.study.Has(questionIndex) {
		s.study.StudiedQuestions = append(s.study.StudiedQuestions, questionIndex)
	}
	s.study.LastQuestionIndex = questionIndex
	s.persist(ctx, config.StorageKey.StudyProgress, s.study)
}

// ResetStudyProgress empties the studied set.
func (s *QuestionStore) ResetStudyProgress(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.study = model.NewStudyProgress()
	s.remove(ctx, config.StorageKey.StudyProgress)
}

// StudyProgress returns a copy of the study record.
func (s *QuestionStore) StudyProgress() model.StudyProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.study.Clone()
}
