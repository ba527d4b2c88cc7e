package store

import (
	"context"

	"github.com/stemsi/kbtrainer/internal/config"
	"github.com/stemsi/kbtrainer/internal/model"
)

// StartNewExam draws a fresh exam and overwrites any previous one. It returns
// nil and changes nothing when no questions are loaded.
func (s *QuestionStore) StartNewExam(ctx context.Context) *model.ExamProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.questions) == 0 {
		return nil
	}

	drawn := SampleIndices(s.rng, IndexRange(len(s.questions)), s.examSize)
	questions := make([]model.ExamQuestion, len(drawn))
	for i, idx := range drawn {
		questions[i] = model.ExamQuestion{
			Question:      cloneQuestion(s.questions[idx]),
			OriginalIndex: idx,
		}
	}

	s.exam = &model.ExamProgress{
		Questions:   questions,
		Answers:     make([]*int, len(questions)),
		StartTime:   s.now().UnixMilli(),
		IsCompleted: false,
		Results:     nil,
	}
	s.persist(ctx, config.StorageKey.ExamProgress, s.exam)

	s.log.Info().Int("questions", len(questions)).Msg("Exam started")
	return s.exam.Clone()
}

// SubmitExamAnswer records answerIndex for the exam question at position
// questionIndex, replacing any earlier answer. answerIndex is not range
// checked. Without a running exam, or for a position outside the exam, it
// does nothing.
func (s *QuestionStore) SubmitExamAnswer(ctx context.Context, questionIndex, answerIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exam == nil || s.exam.IsCompleted {
		return
	}
	if questionIndex < 0 || questionIndex >= len(s.exam.Answers) {
		return
	}

	answer := answerIndex
	s.exam.Answers[questionIndex] = &answer
	s.persist(ctx, config.StorageKey.ExamProgress, s.exam)
}

// CompleteExam scores the exam and marks it completed. A second call returns
// the results computed by the first without recomputing them. Returns nil
// without an exam.
func (s *QuestionStore) CompleteExam(ctx context.Context) *model.Results {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exam == nil {
		return nil
	}
	if s.exam.IsCompleted && s.exam.Results != nil {
		return s.exam.Results.Clone()
	}

	results := Score(s.exam, s.passingScore)
	results.EndTime = s.now().UnixMilli()

	s.exam.IsCompleted = true
	s.exam.Results = results
	s.persist(ctx, config.StorageKey.ExamProgress, s.exam)

	s.log.Info().
		Int("score", results.Score).
		Int("total", len(s.exam.Questions)).
		Bool("passed", results.IsPassed).
		Msg("Exam completed")
	return results.Clone()
}

// ResetExam discards the exam and its persisted copy.
func (s *QuestionStore) ResetExam(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exam = nil
	s.remove(ctx, config.StorageKey.ExamProgress)
}

// ExamProgress returns a copy of the current exam, or nil.
func (s *QuestionStore) ExamProgress() *model.ExamProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exam.Clone()
}

// Score compares every stored answer with the question's correct index. An
// unanswered question never counts as correct. The pass threshold is an
// absolute count, independent of how many questions were drawn.
func Score(exam *model.ExamProgress, passingScore int) *model.Results {
	outcomes := make([]model.AnswerOutcome, len(exam.Questions))
	incorrect := make([]model.AnswerOutcome, 0, len(exam.Questions))
	score := 0

	for i, q := range exam.Questions {
		var answer *int
		if i < len(exam.Answers) && exam.Answers[i] != nil {
			v := *exam.Answers[i]
			answer = &v
		}
		correct := answer != nil && q.IsCorrect(*answer)

		outcomes[i] = model.AnswerOutcome{Question: q, UserAnswer: answer, IsCorrect: correct}
		if correct {
			score++
		} else {
			incorrect = append(incorrect, outcomes[i])
		}
	}

	return &model.Results{
		Score:            score,
		IsPassed:         score >= passingScore,
		CorrectAnswers:   outcomes,
		IncorrectAnswers: incorrect,
	}
}
