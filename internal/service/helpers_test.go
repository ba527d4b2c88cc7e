package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/model"
	"github.com/stemsi/kbtrainer/internal/storage"
	"github.com/stemsi/kbtrainer/internal/store"
)

// manualClock is a clock tests move by hand.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func makeQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:                 i + 1,
			Question:           fmt.Sprintf("Domanda %d", i+1),
			Options:            []string{"a", "b", "c"},
			CorrectAnswerIndex: i % 3,
			Rationale:          fmt.Sprintf("Spiegazione %d", i+1),
		}
	}
	return qs
}

// newStore returns a loaded in-memory store holding n questions.
func newStore(t *testing.T, n int, opts ...store.Option) *store.QuestionStore {
	t.Helper()
	base := []store.Option{store.WithRand(rand.New(rand.NewSource(7)))}
	st := store.New(storage.NewMemoryStorage(), nil, zerolog.Nop(), append(base, opts...)...)
	st.Load(context.Background())
	if n > 0 {
		st.ImportQuestions(context.Background(), makeQuestions(n))
	}
	return st
}
