package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/model"
	"github.com/stemsi/kbtrainer/internal/store"
)

// ErrNoQuestions is returned when a session is requested before any import.
var ErrNoQuestions = errors.New("no questions imported")

// DefaultExamTimeLimit is the exam budget.
const DefaultExamTimeLimit = 30 * time.Minute

// ExamSessionService drives the exam lifecycle:
//
//	NO_EXAM → IN_PROGRESS → (TIME_EXPIRED →) COMPLETED → NO_EXAM (reset)
//
// The state is derived from the store and the clock, never cached, so a
// restarted process resumes with the same deadline.
type ExamSessionService struct {
	store    *store.QuestionStore
	log      zerolog.Logger
	limit    time.Duration
	interval time.Duration

	mu        sync.Mutex
	countdown *Countdown
	nextSub   int
	subs      map[int]func(Tick)
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(st *store.QuestionStore, limit, tickInterval time.Duration, log zerolog.Logger) *ExamSessionService {
	if limit <= 0 {
		limit = DefaultExamTimeLimit
	}
	if tickInterval <= 0 {
		tickInterval = time.Second
	}
	return &ExamSessionService{
		store:    st,
		log:      log.With().Str("component", "exam_session_service").Logger(),
		limit:    limit,
		interval: tickInterval,
		subs:     make(map[int]func(Tick)),
	}
}

// TimeLimit returns the exam budget.
func (s *ExamSessionService) TimeLimit() time.Duration { return s.limit }

// State derives the lifecycle state.
func (s *ExamSessionService) State() model.ExamState {
	return s.stateOf(s.store.ExamProgress())
}

// Remaining returns budget − elapsed, clamped at zero. Without an exam it
// returns the full budget.
func (s *ExamSessionService) Remaining() time.Duration {
	return s.remainingOf(s.store.ExamProgress())
}

// Begin resumes the current exam or starts one when none exists. A running
// exam gets its countdown (re)attached.
func (s *ExamSessionService) Begin(ctx context.Context) (*model.ExamView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.ExamProgress() == nil {
		if s.store.StartNewExam(ctx) == nil {
			return nil, ErrNoQuestions
		}
	}
	s.ensureCountdownLocked(ctx)
	return s.viewLocked(), nil
}

// NewExam discards whatever exam exists and starts a fresh one.
func (s *ExamSessionService) NewExam(ctx context.Context) (*model.ExamView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.QuestionCount() == 0 {
		return nil, ErrNoQuestions
	}

	s.stopCountdownLocked()
	s.store.ResetExam(ctx)
	s.store.StartNewExam(ctx)
	s.ensureCountdownLocked(ctx)
	return s.viewLocked(), nil
}

// View returns the exam screen without changing anything.
func (s *ExamSessionService) View() *model.ExamView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// SubmitAnswer records an answer while the exam is in progress. In any
// other state it silently does nothing.
func (s *ExamSessionService) SubmitAnswer(ctx context.Context, position, answerIndex int) *model.ExamView {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stateOf(s.store.ExamProgress()) == model.ExamStateInProgress {
		s.store.SubmitExamAnswer(ctx, position, answerIndex)
	} else {
		s.log.Debug().Int("position", position).Msg("Answer ignored, exam not in progress")
	}
	return s.viewLocked()
}

// Finish completes the exam from IN_PROGRESS or TIME_EXPIRED. Finishing an
// already completed exam returns the original results.
func (s *ExamSessionService) Finish(ctx context.Context) *model.Results {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.completeLocked(ctx)
	s.stopCountdownLocked()
	return res
}

// Reset stops the countdown and returns to NO_EXAM.
func (s *ExamSessionService) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopCountdownLocked()
	s.store.ResetExam(ctx)
}

// Subscribe registers fn for countdown ticks. The returned func unsubscribes.
// fn runs on the countdown goroutine and must not block.
func (s *ExamSessionService) Subscribe(fn func(Tick)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// CountdownActive reports whether a ticker is running.
func (s *ExamSessionService) CountdownActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countdown != nil
}

// Shutdown stops the ticker; called on process exit.
func (s *ExamSessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCountdownLocked()
}

// ─── internals (caller holds s.mu) ─────────────────────────────────────────

func (s *ExamSessionService) completeLocked(ctx context.Context) *model.Results {
	switch s.stateOf(s.store.ExamProgress()) {
	case model.ExamStateInProgress, model.ExamStateTimeExpired, model.ExamStateCompleted:
		return s.store.CompleteExam(ctx)
	default:
		return nil
	}
}

func (s *ExamSessionService) ensureCountdownLocked(ctx context.Context) {
	if s.countdown != nil {
		return
	}
	if s.stateOf(s.store.ExamProgress()) != model.ExamStateInProgress {
		return
	}

	c := NewCountdown()
	s.countdown = c
	c.Start(s.interval, s.Remaining,
		func(left time.Duration) { s.onTick(c, left) },
		func() { s.onExpire(context.WithoutCancel(ctx), c) },
	)
	s.log.Debug().Dur("remaining", s.Remaining()).Msg("Countdown started")
}

func (s *ExamSessionService) stopCountdownLocked() {
	if s.countdown == nil {
		return
	}
	s.countdown.Stop()
	s.countdown = nil
}

// onTick publishes unless c was replaced or stopped in the meantime.
func (s *ExamSessionService) onTick(c *Countdown, left time.Duration) {
	s.mu.Lock()
	if s.countdown != c {
		s.mu.Unlock()
		return
	}
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	tick := NewTick(left)
	for _, fn := range subs {
		fn(tick)
	}
}

// onExpire completes the exam when time runs out. A stale countdown (one
// that was stopped after firing) does nothing.
func (s *ExamSessionService) onExpire(ctx context.Context, c *Countdown) {
	s.mu.Lock()
	if s.countdown != c {
		s.mu.Unlock()
		return
	}
	s.countdown = nil
	res := s.completeLocked(ctx)
	s.mu.Unlock()

	if res != nil {
		s.log.Info().Int("score", res.Score).Msg("Exam time expired, completed automatically")
	}
}

func (s *ExamSessionService) snapshotSubsLocked() []func(Tick) {
	out := make([]func(Tick), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func (s *ExamSessionService) stateOf(p *model.ExamProgress) model.ExamState {
	switch {
	case p == nil:
		return model.ExamStateNone
	case p.IsCompleted:
		return model.ExamStateCompleted
	case s.remainingOf(p) <= 0:
		return model.ExamStateTimeExpired
	default:
		return model.ExamStateInProgress
	}
}

func (s *ExamSessionService) remainingOf(p *model.ExamProgress) time.Duration {
	if p == nil {
		return s.limit
	}
	left := s.limit - s.store.Now().Sub(p.StartedAt())
	if left < 0 {
		return 0
	}
	return left
}

func (s *ExamSessionService) viewLocked() *model.ExamView {
	p := s.store.ExamProgress()
	view := &model.ExamView{
		State:            s.stateOf(p),
		RemainingSeconds: int(s.remainingOf(p) / time.Second),
		Questions:        []model.QuestionView{},
		Answers:          []*int{},
	}
	if p == nil {
		return view
	}

	view.Questions = make([]model.QuestionView, len(p.Questions))
	for i, q := range p.Questions {
		view.Questions[i] = q.View()
	}
	view.Answers = p.Answers
	view.AnsweredCount = p.AnsweredCount()
	view.TotalQuestions = len(p.Questions)
	if view.State == model.ExamStateCompleted {
		view.Results = p.Results
		view.RemainingSeconds = 0
	}
	return view
}
