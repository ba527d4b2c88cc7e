package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/model"
	"github.com/stemsi/kbtrainer/internal/store"
)

// StudyService walks the question set in order. Only revealing an answer
// marks a question as studied.
type StudyService struct {
	store *store.QuestionStore
	log   zerolog.Logger

	mu       sync.Mutex
	active   bool
	position int
	revealed bool
}

// StudyStep is the outcome of a forward move.
type StudyStep struct {
	Finished bool             `json:"finished"`
	View     *model.StudyView `json:"view,omitempty"`
}

func NewStudyService(st *store.QuestionStore, log zerolog.Logger) *StudyService {
	return &StudyService{
		store: st,
		log:   log.With().Str("component", "study_service").Logger(),
	}
}

// Current returns the question on screen, resuming at the last studied
// question when the walk is not active yet.
func (s *StudyService) Current() (*model.StudyView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureActiveLocked(); err != nil {
		return nil, err
	}
	return s.viewLocked(), nil
}

// Reveal shows the answer and records the question as studied.
func (s *StudyService) Reveal(ctx context.Context) (*model.StudyView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureActiveLocked(); err != nil {
		return nil, err
	}
	s.revealed = true
	s.store.UpdateStudyProgress(ctx, s.position)
	return s.viewLocked(), nil
}

// Next moves forward. Moving past the final question ends the walk; the final
// question counts as studied only if it was revealed first.
func (s *StudyService) Next() (StudyStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureActiveLocked(); err != nil {
		return StudyStep{}, err
	}

	if s.position < s.store.QuestionCount()-1 {
		s.position++
		s.revealed = false
		return StudyStep{View: s.viewLocked()}, nil
	}

	s.active = false
	s.revealed = false
	s.log.Info().Msg("Study walk completed")
	return StudyStep{Finished: true}, nil
}

// Prev moves back one question; it stays put on the first.
func (s *StudyService) Prev() (*model.StudyView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureActiveLocked(); err != nil {
		return nil, err
	}
	if s.position > 0 {
		s.position--
		s.revealed = false
	}
	return s.viewLocked(), nil
}

// ResetProgress empties the studied set; the walk position is kept.
func (s *StudyService) ResetProgress(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.ResetStudyProgress(ctx)
}

func (s *StudyService) ensureActiveLocked() error {
	total := s.store.QuestionCount()
	if total == 0 {
		s.active = false
		return ErrNoQuestions
	}
	if !s.active {
		s.position = 0
		if last := s.store.StudyProgress().LastQuestionIndex; last >= 0 && last < total {
			s.position = last
		}
		s.revealed = false
		s.active = true
	}
	if s.position >= total {
		s.position = total - 1
		s.revealed = false
	}
	return nil
}

func (s *StudyService) viewLocked() *model.StudyView {
	q, _ := s.store.Question(s.position)
	progress := s.store.StudyProgress()
	total := s.store.QuestionCount()

	view := &model.StudyView{
		Position:       s.position,
		TotalQuestions: total,
		StudiedCount:   len(progress.StudiedQuestions),
		Question:       q.View(),
		Revealed:       s.revealed,
		IsLast:         s.position == total-1,
	}
	if s.revealed {
		correct := q.CorrectAnswerIndex
		view.CorrectAnswerIndex = &correct
		view.Rationale = q.Rationale
	}
	return view
}
