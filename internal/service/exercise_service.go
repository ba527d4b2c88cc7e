package service

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/model"
	"github.com/stemsi/kbtrainer/internal/store"
)

// DefaultExerciseSize is the initial number of questions per exercise session.
const DefaultExerciseSize = 10

// ExerciseService runs untimed practice sessions. A session is transient:
// only the answered set it feeds into the store survives.
type ExerciseService struct {
	store *store.QuestionStore
	log   zerolog.Logger

	mu      sync.Mutex
	rng     *rand.Rand
	size    int
	session *exerciseSession
}

type exerciseSession struct {
	indices  []int
	position int
	feedback *model.ExerciseFeedback
}

// NewExerciseService creates a new ExerciseService. rng may be nil.
func NewExerciseService(st *store.QuestionStore, defaultSize int, rng *rand.Rand, log zerolog.Logger) *ExerciseService {
	if defaultSize <= 0 {
		defaultSize = DefaultExerciseSize
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ExerciseService{
		store: st,
		log:   log.With().Str("component", "exercise_service").Logger(),
		rng:   rng,
		size:  defaultSize,
	}
}

// Settings returns the pre-session view.
func (s *ExerciseService) Settings() model.ExerciseSettingsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settingsLocked()
}

// SetSessionSize parses raw and stores it clamped to [1, total]. Input that
// is not a positive integer is ignored and the previous value kept.
func (s *ExerciseService) SetSessionSize(raw string) model.ExerciseSettingsView {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		s.log.Debug().Str("input", raw).Msg("Ignoring invalid session size")
		return s.settingsLocked()
	}
	if total := s.store.QuestionCount(); total > 0 && n > total {
		n = total
	}
	s.size = n
	return s.settingsLocked()
}

// StartSession draws a new batch, preferring questions never answered. When
// every question has been answered the whole set is eligible again.
func (s *ExerciseService) StartSession(ctx context.Context) (*model.ExerciseSessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.store.QuestionCount()
	if total == 0 {
		return nil, ErrNoQuestions
	}

	pool := unansweredIndices(total, s.store.ExerciseProgress())
	if len(pool) == 0 {
		pool = store.IndexRange(total)
	}

	s.session = &exerciseSession{indices: store.SampleIndices(s.rng, pool, s.size)}

	s.log.Info().
		Int("size", len(s.session.indices)).
		Int("pool", len(pool)).
		Msg("Exercise session started")
	return s.viewLocked(), nil
}

// Current returns the question on screen, or nil outside a session.
func (s *ExerciseService) Current() *model.ExerciseSessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Answer grades answerIndex against the current question, records the
// question as answered and returns the view with feedback. A question can
// only be answered once; later calls return the first feedback.
func (s *ExerciseService) Answer(ctx context.Context, answerIndex int) *model.ExerciseSessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.feedback != nil {
		return s.viewLocked()
	}

	qIndex := s.session.indices[s.session.position]
	q, ok := s.store.Question(qIndex)
	if !ok {
		s.session = nil
		return nil
	}

	correct := q.IsCorrect(answerIndex)
	s.session.feedback = &model.ExerciseFeedback{
		SelectedAnswer:     answerIndex,
		IsCorrect:          correct,
		CorrectAnswerIndex: q.CorrectAnswerIndex,
		Rationale:          q.Rationale,
	}
	s.store.UpdateExerciseProgress(ctx, qIndex, correct)
	return s.viewLocked()
}

// Next advances after feedback was shown. Past the last question the session
// ends and control returns to the settings view.
func (s *ExerciseService) Next() model.SessionStepResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.feedback == nil {
		return model.SessionStepResult{}
	}
	if s.session.position >= len(s.session.indices)-1 {
		s.session = nil
		s.log.Info().Msg("Exercise session finished")
		return model.SessionStepResult{Finished: true}
	}

	s.session.position++
	s.session.feedback = nil
	return model.SessionStepResult{}
}

// Abandon leaves the session and goes back to settings.
func (s *ExerciseService) Abandon() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

// ResetProgress empties the answered set.
func (s *ExerciseService) ResetProgress(ctx context.Context) model.ExerciseSettingsView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.ResetExerciseProgress(ctx)
	return s.settingsLocked()
}

func (s *ExerciseService) settingsLocked() model.ExerciseSettingsView {
	total := s.store.QuestionCount()
	answered := total - len(unansweredIndices(total, s.store.ExerciseProgress()))
	return model.ExerciseSettingsView{
		QuestionsPerSession: s.size,
		TotalQuestions:      total,
		AnsweredQuestions:   answered,
		RemainingQuestions:  total - answered,
		AllAnswered:         total > 0 && answered == total,
		SessionActive:       s.session != nil,
	}
}

func (s *ExerciseService) viewLocked() *model.ExerciseSessionView {
	if s.session == nil {
		return nil
	}
	qIndex := s.session.indices[s.session.position]
	q, ok := s.store.Question(qIndex)
	if !ok {
		// the question set shrank under the session
		s.session = nil
		return nil
	}
	return &model.ExerciseSessionView{
		Position:      s.session.position,
		SessionSize:   len(s.session.indices),
		QuestionIndex: qIndex,
		Question:      q.View(),
		Feedback:      s.session.feedback,
		IsLast:        s.session.position == len(s.session.indices)-1,
	}
}

// unansweredIndices is the complement of the answered set within [0, total).
func unansweredIndices(total int, p model.ExerciseProgress) []int {
	answered := make(map[int]struct{}, len(p.AnsweredQuestions))
	for _, idx := range p.AnsweredQuestions {
		answered[idx] = struct{}{}
	}
	out := make([]int, 0, total)
	for i := 0; i < total; i++ {
		if _, ok := answered[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}
