package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"STORAGE_DRIVER", "EXAM_TIME_LIMIT", "EXAM_QUESTION_COUNT", "ALLOWED_ORIGINS", "CLEAR_PROGRESS_ON_IMPORT"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, StorageDriverFile, cfg.StorageDriver)
	assert.Equal(t, 30*time.Minute, cfg.ExamTimeLimit)
	assert.Equal(t, 20, cfg.ExamQuestionCount)
	assert.Equal(t, 18, cfg.PassingScore)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.False(t, cfg.ClearProgressOnImport)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("EXAM_TIME_LIMIT", "90")
	t.Setenv("COUNTDOWN_INTERVAL", "250ms")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("CLEAR_PROGRESS_ON_IMPORT", "true")
	t.Setenv("EXAM_QUESTION_COUNT", "nope")

	cfg := Load()
	assert.Equal(t, StorageDriverRedis, cfg.StorageDriver)
	assert.Equal(t, 90*time.Second, cfg.ExamTimeLimit)
	assert.Equal(t, 250*time.Millisecond, cfg.CountdownInterval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.True(t, cfg.ClearProgressOnImport)
	assert.Equal(t, 20, cfg.ExamQuestionCount)
	assert.True(t, cfg.NeedsRedis())
	assert.False(t, cfg.NeedsPostgres())
}

func TestStorageKeyNamespaced(t *testing.T) {
	assert.Equal(t, "kbtrainer:esame-kb-questions", StorageKey.Namespaced("kbtrainer", StorageKey.Questions))
	assert.Equal(t, "esame-kb-questions", StorageKey.Namespaced("", StorageKey.Questions))
}
