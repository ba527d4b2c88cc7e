package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExerciseService(t *testing.T, n int) *ExerciseService {
	t.Helper()
	return NewExerciseService(newStore(t, n), DefaultExerciseSize, rand.New(rand.NewSource(3)), zerolog.Nop())
}

// answerAll plays out the current session answering every question with 0.
func answerAll(t *testing.T, svc *ExerciseService) []int {
	t.Helper()
	ctx := context.Background()
	var seen []int
	for {
		view := svc.Current()
		require.NotNil(t, view)
		seen = append(seen, view.QuestionIndex)
		svc.Answer(ctx, 0)
		if svc.Next().Finished {
			return seen
		}
	}
}

func TestSetSessionSize(t *testing.T) {
	svc := newExerciseService(t, 8)

	assert.Equal(t, 10, svc.Settings().QuestionsPerSession)

	tests := []struct {
		input string
		want  int
	}{
		{"5", 5},
		{"abc", 5},
		{"0", 5},
		{"-3", 5},
		{"50", 8},
		{" 2 ", 2},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.SetSessionSize(tt.input).QuestionsPerSession)
		})
	}
}

func TestStartSessionWithoutQuestions(t *testing.T) {
	svc := newExerciseService(t, 0)
	_, err := svc.StartSession(context.Background())
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestSessionShrinksToUnansweredPool(t *testing.T) {
	ctx := context.Background()
	svc := newExerciseService(t, 8)

	svc.SetSessionSize("5")
	_, err := svc.StartSession(ctx)
	require.NoError(t, err)
	answerAll(t, svc)

	settings := svc.Settings()
	assert.Equal(t, 5, settings.AnsweredQuestions)
	assert.Equal(t, 3, settings.RemainingQuestions)

	view, err := svc.StartSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, view.SessionSize)

	answered := map[int]bool{}
	for _, idx := range svc.store.ExerciseProgress().AnsweredQuestions {
		answered[idx] = true
	}
	for _, idx := range answerAll(t, svc) {
		assert.False(t, answered[idx], "question %d drawn twice", idx)
	}
	assert.True(t, svc.Settings().AllAnswered)
}

func TestSessionFallsBackToWholeSetWhenAllAnswered(t *testing.T) {
	ctx := context.Background()
	svc := newExerciseService(t, 4)
	for i := 0; i < 4; i++ {
		svc.store.UpdateExerciseProgress(ctx, i, true)
	}

	view, err := svc.StartSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, view.SessionSize)
}

func TestAnswerGivesFeedbackOnce(t *testing.T) {
	ctx := context.Background()
	svc := newExerciseService(t, 6)
	_, err := svc.StartSession(ctx)
	require.NoError(t, err)

	// Next before answering stays put
	assert.False(t, svc.Next().Finished)
	assert.Equal(t, 0, svc.Current().Position)

	idx := svc.Current().QuestionIndex
	q, _ := svc.store.Question(idx)

	view := svc.Answer(ctx, q.CorrectAnswerIndex)
	require.NotNil(t, view.Feedback)
	assert.True(t, view.Feedback.IsCorrect)
	assert.Equal(t, q.Rationale, view.Feedback.Rationale)
	assert.True(t, svc.store.ExerciseProgress().Has(idx))

	again := svc.Answer(ctx, (q.CorrectAnswerIndex+1)%3)
	assert.True(t, again.Feedback.IsCorrect)

	assert.False(t, svc.Next().Finished)
	assert.Equal(t, 1, svc.Current().Position)
	assert.Nil(t, svc.Current().Feedback)
}

func TestAnswerWithoutSession(t *testing.T) {
	svc := newExerciseService(t, 3)
	assert.Nil(t, svc.Answer(context.Background(), 0))
	assert.Empty(t, svc.store.ExerciseProgress().AnsweredQuestions)
}

func TestAbandonAndResetProgress(t *testing.T) {
	ctx := context.Background()
	svc := newExerciseService(t, 3)
	_, err := svc.StartSession(ctx)
	require.NoError(t, err)
	svc.Answer(ctx, 0)
	assert.True(t, svc.Settings().SessionActive)

	svc.Abandon()
	assert.Nil(t, svc.Current())

	settings := svc.ResetProgress(ctx)
	assert.Zero(t, settings.AnsweredQuestions)
	assert.Equal(t, 3, settings.RemainingQuestions)
}

func TestSessionEndsWhenQuestionSetShrinks(t *testing.T) {
	ctx := context.Background()
	svc := newExerciseService(t, 30)
	svc.SetSessionSize("30")
	_, err := svc.StartSession(ctx)
	require.NoError(t, err)

	svc.store.ImportQuestions(ctx, makeQuestions(1))
	for svc.Current() != nil && svc.Current().QuestionIndex == 0 {
		svc.Answer(ctx, 0)
		svc.Next()
	}
	assert.Nil(t, svc.Current())
}
