package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudyWithoutQuestions(t *testing.T) {
	svc := NewStudyService(newStore(t, 0), zerolog.Nop())
	_, err := svc.Current()
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestStudyRevealMarksStudied(t *testing.T) {
	ctx := context.Background()
	st := newStore(t, 3)
	svc := NewStudyService(st, zerolog.Nop())

	view, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, view.Position)
	assert.False(t, view.Revealed)
	assert.Nil(t, view.CorrectAnswerIndex)
	assert.Empty(t, view.Rationale)

	view, err = svc.Reveal(ctx)
	require.NoError(t, err)
	require.NotNil(t, view.CorrectAnswerIndex)
	assert.Equal(t, 0, *view.CorrectAnswerIndex)
	assert.Equal(t, "Spiegazione 1", view.Rationale)
	assert.Equal(t, 1, view.StudiedCount)
	assert.Equal(t, []int{0}, st.StudyProgress().StudiedQuestions)
}

func TestStudyNavigation(t *testing.T) {
	svc := NewStudyService(newStore(t, 3), zerolog.Nop())

	view, err := svc.Prev()
	require.NoError(t, err)
	assert.Equal(t, 0, view.Position)

	step, err := svc.Next()
	require.NoError(t, err)
	assert.False(t, step.Finished)
	assert.Equal(t, 1, step.View.Position)

	view, err = svc.Prev()
	require.NoError(t, err)
	assert.Equal(t, 0, view.Position)
}

func TestStudyFinishWithoutRevealLeavesProgress(t *testing.T) {
	ctx := context.Background()
	st := newStore(t, 3)
	svc := NewStudyService(st, zerolog.Nop())

	_, err := svc.Reveal(ctx)
	require.NoError(t, err)
	_, err = svc.Next()
	require.NoError(t, err)
	step, err := svc.Next()
	require.NoError(t, err)
	require.True(t, step.View.IsLast)

	before := st.StudyProgress()
	step, err = svc.Next()
	require.NoError(t, err)
	assert.True(t, step.Finished)
	assert.Nil(t, step.View)
	assert.Equal(t, before, st.StudyProgress())
}

func TestStudyResumesAtLastRevealed(t *testing.T) {
	ctx := context.Background()
	st := newStore(t, 5)
	st.UpdateStudyProgress(ctx, 3)

	svc := NewStudyService(st, zerolog.Nop())
	view, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, 3, view.Position)

	svc.ResetProgress(ctx)
	assert.Empty(t, st.StudyProgress().StudiedQuestions)
}

func TestStudyResumeIgnoresStaleIndex(t *testing.T) {
	ctx := context.Background()
	st := newStore(t, 10)
	st.UpdateStudyProgress(ctx, 8)
	st.ImportQuestions(ctx, makeQuestions(4))

	view, err := NewStudyService(st, zerolog.Nop()).Current()
	require.NoError(t, err)
	assert.Equal(t, 0, view.Position)
}
