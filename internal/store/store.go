// Package store owns the imported question set and the exam, exercise and
// study progress records. It is the only writer of persistent storage: every
// mutation is written through immediately, and everything is read back once
// at process start.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/config"
	"github.com/stemsi/kbtrainer/internal/model"
	"github.com/stemsi/kbtrainer/internal/storage"
	"github.com/stemsi/kbtrainer/internal/telemetry"
)

const (
	DefaultExamSize     = 20
	DefaultPassingScore = 18

	component = "question_store"
)

// QuestionStore is the single source of truth for questions and progress.
// One instance is built at startup and handed to every session service.
// All methods are safe for concurrent use.
type QuestionStore struct {
	mu sync.Mutex

	storage  storage.Storage
	reporter telemetry.Reporter
	log      zerolog.Logger
	rng      *rand.Rand
	now      func() time.Time

	examSize      int
	passingScore  int
	clearOnImport bool
	loaded        bool

	questions []model.Question
	exam      *model.ExamProgress
	exercise  model.ExerciseProgress
	study     model.StudyProgress
}

// Option customizes a QuestionStore.
type Option func(*QuestionStore)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *QuestionStore) { s.now = now }
}

// WithRand sets the random source used for sampling.
func WithRand(rng *rand.Rand) Option {
	return func(s *QuestionStore) { s.rng = rng }
}

// WithExamSize sets how many questions an exam draws.
func WithExamSize(n int) Option {
	return func(s *QuestionStore) {
		if n > 0 {
			s.examSize = n
		}
	}
}

// WithPassingScore sets the absolute number of correct answers needed to pass.
func WithPassingScore(n int) Option {
	return func(s *QuestionStore) { s.passingScore = n }
}

// WithClearProgressOnImport makes ImportQuestions drop all progress records.
func WithClearProgressOnImport(clear bool) Option {
	return func(s *QuestionStore) { s.clearOnImport = clear }
}

// New creates an empty store. Call Load once before serving.
func New(st storage.Storage, reporter telemetry.Reporter, log zerolog.Logger, opts ...Option) *QuestionStore {
	s := &QuestionStore{
		storage:      st,
		reporter:     reporter,
		log:          log.With().Str("component", component).Logger(),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
		examSize:     DefaultExamSize,
		passingScore: DefaultPassingScore,
		questions:    []model.Question{},
		exercise:     model.NewExerciseProgress(),
		study:        model.NewStudyProgress(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reporter == nil {
		s.reporter = telemetry.NewLogReporter(s.log)
	}
	return s
}

// Load restores all four records from storage. It runs at most once; missing
// keys keep their defaults and unreadable ones are reported and skipped.
func (s *QuestionStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return
	}
	s.loaded = true

	var questions []model.Question
	if s.restore(ctx, config.StorageKey.Questions, &questions) && questions != nil {
		s.questions = questions
	}

	var exam *model.ExamProgress
	if s.restore(ctx, config.StorageKey.ExamProgress, &exam) {
		switch {
		case exam == nil || len(exam.Questions) == 0:
			s.fail(ctx, "load", config.StorageKey.ExamProgress, errors.New("exam record has no questions"))
		case len(exam.Answers) != len(exam.Questions):
			s.fail(ctx, "load", config.StorageKey.ExamProgress, errors.New("exam answers do not match exam questions"))
		default:
			s.exam = exam
		}
	}

	exercise := model.NewExerciseProgress()
	if s.restore(ctx, config.StorageKey.ExerciseProgress, &exercise) {
		if exercise.AnsweredQuestions == nil {
			exercise.AnsweredQuestions = []int{}
		}
		s.exercise = exercise
	}

	study := model.NewStudyProgress()
	if s.restore(ctx, config.StorageKey.StudyProgress, &study) {
		if study.StudiedQuestions == nil {
			study.StudiedQuestions = []int{}
		}
		s.study = study
	}

	s.log.Info().
		Int("questions", len(s.questions)).
		Bool("exam", s.exam != nil).
		Int("exercise_answered", len(s.exercise.AnsweredQuestions)).
		Int("study_studied", len(s.study.StudiedQuestions)).
		Msg("Progress restored")
}

// ─── Questions ─────────────────────────────────────────────────────────────

// ImportQuestions replaces the question set unconditionally.
func (s *QuestionStore) ImportQuestions(ctx context.Context, questions []model.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = cloneQuestions(questions)
	s.persist(ctx, config.StorageKey.Questions, s.questions)

	if s.clearOnImport {
		s.exam = nil
		s.remove(ctx, config.StorageKey.ExamProgress)
		s.exercise = model.NewExerciseProgress()
		s.remove(ctx, config.StorageKey.ExerciseProgress)
		s.study = model.NewStudyProgress()
		s.remove(ctx, config.StorageKey.StudyProgress)
	}

	s.log.Info().Int("count", len(questions)).Bool("progress_cleared", s.clearOnImport).Msg("Questions imported")
}

// Questions returns a copy of the question set.
func (s *QuestionStore) Questions() []model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneQuestions(s.questions)
}

// QuestionCount returns the size of the question set.
func (s *QuestionStore) QuestionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// Question returns the question at index.
func (s *QuestionStore) Question(index int) (model.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.questions) {
		return model.Question{}, false
	}
	return cloneQuestion(s.questions[index]), true
}

// ExamSize returns the configured number of questions per exam.
func (s *QuestionStore) ExamSize() int { return s.examSize }

// PassingScore returns the configured pass threshold.
func (s *QuestionStore) PassingScore() int { return s.passingScore }

// Now returns the store clock.
func (s *QuestionStore) Now() time.Time { return s.now() }

// ─── Persistence helpers ───────────────────────────────────────────────────

// persist writes v under key. Failures are reported; the
// in-memory state stays authoritative. Caller must hold s.mu.
func (s *QuestionStore) persist(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.fail(ctx, "encode", key, err)
		return
	}
	if err := s.storage.Set(ctx, key, raw); err != nil {
		s.fail(ctx, "save", key, err)
	}
}

func (s *QuestionStore) remove(ctx context.Context, key string) {
	if err := s.storage.Remove(ctx, key); err != nil {
		s.fail(ctx, "remove", key, err)
	}
}

// restore decodes key into dst and reports whether a value was loaded.
func (s *QuestionStore) restore(ctx context.Context, key string, dst interface{}) bool {
	raw, err := s.storage.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		s.fail(ctx, "load", key, err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.fail(ctx, "decode", key, err)
		return false
	}
	return true
}

// fail hands a storage error to the reporter, which owns logging it.
func (s *QuestionStore) fail(ctx context.Context, op, key string, err error) {
	s.reporter.Capture(ctx, component, err, map[string]string{"op": op, "key": key})
}

func cloneQuestions(in []model.Question) []model.Question {
	out := make([]model.Question, len(in))
	for i, q := range in {
		out[i] = cloneQuestion(q)
	}
	return out
}

func cloneQuestion(q model.Question) model.Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}
