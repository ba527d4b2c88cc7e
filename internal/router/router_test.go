package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/config"
	"github.com/stemsi/kbtrainer/internal/handler"
	"github.com/stemsi/kbtrainer/internal/service"
	"github.com/stemsi/kbtrainer/internal/storage"
	"github.com/stemsi/kbtrainer/internal/store"
	"github.com/stemsi/kbtrainer/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const questionsCSV = "Domanda;A;B;C;Corretta;Spiegazione\n" +
	"Q1;a;b;c;1;r1\n" +
	"Q2;a;b;c;2;r2\n" +
	"Q3;a;b;c;3;r3\n"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

type testApp struct {
	engine http.Handler
	exam   *service.ExamSessionService
}

func newTestApp(t *testing.T, limit time.Duration, interval time.Duration) *testApp {
	t.Helper()
	validator.Setup()

	log := zerolog.Nop()
	cfg := &config.Config{GinMode: "test", MaxUploadBytes: 1 << 20}

	st := store.New(storage.NewMemoryStorage(), nil, log)
	st.Load(context.Background())

	examSvc := service.NewExamSessionService(st, limit, interval, log)
	t.Cleanup(examSvc.Shutdown)
	importSvc := service.NewImportService(st, nil, log)

	engine := SetupRouter(&Handlers{
		Overview: handler.NewOverviewHandler(service.NewOverviewService(st, examSvc)),
		Question: handler.NewQuestionHandler(importSvc, st, cfg.MaxUploadBytes, log),
		Exam:     handler.NewExamHandler(examSvc),
		Exercise: handler.NewExerciseHandler(service.NewExerciseService(st, 2, nil, log)),
		Study:    handler.NewStudyHandler(service.NewStudyService(st, log)),
		WS:       handler.NewWSHandler(examSvc, log, nil),
	}, cfg)

	return &testApp{engine: engine, exam: examSvc}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (a *testApp) upload(t *testing.T, filename, content string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/questions/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode(t *testing.T, raw json.RawMessage, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, dst))
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, time.Minute, time.Hour)
	code, _ := app.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestModesRequireQuestions(t *testing.T) {
	app := newTestApp(t, time.Minute, time.Hour)

	for _, path := range []string{"/api/v1/exam", "/api/v1/study"} {
		code, env := app.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusConflict, code, path)
		require.NotNil(t, env.Error)
		assert.Equal(t, "NO_QUESTIONS", env.Error.Code)
	}

	code, env := app.do(t, http.MethodPost, "/api/v1/exercise/session", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NO_QUESTIONS", env.Error.Code)
}

func TestImportAndListQuestions(t *testing.T) {
	app := newTestApp(t, time.Minute, time.Hour)

	code, env := app.upload(t, "domande.csv", questionsCSV)
	require.Equal(t, http.StatusCreated, code)
	var report struct {
		Imported int   `json:"imported"`
		Skipped  []int `json:"skipped"`
	}
	decode(t, env.Data, &report)
	assert.Equal(t, 3, report.Imported)
	assert.Empty(t, report.Skipped)

	code, env = app.do(t, http.MethodGet, "/api/v1/questions/2", nil)
	require.Equal(t, http.StatusOK, code)
	var q struct {
		Question           string `json:"question"`
		CorrectAnswerIndex int    `json:"correctAnswerIndex"`
	}
	decode(t, env.Data, &q)
	assert.Equal(t, "Q3", q.Question)
	assert.Equal(t, 2, q.CorrectAnswerIndex)

	code, _ = app.do(t, http.MethodGet, "/api/v1/questions/9", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = app.do(t, http.MethodGet, "/api/v1/questions/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestImportRejectsBadUploads(t *testing.T) {
	app := newTestApp(t, time.Minute, time.Hour)

	code, env := app.upload(t, "domande.txt", questionsCSV)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", env.Error.Code)

	code, env = app.upload(t, "vuoto.csv", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "EMPTY_FILE", env.Error.Code)

	code, env = app.do(t, http.MethodPost, "/api/v1/questions/import", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "FILE_REQUIRED", env.Error.Code)

	code, env = app.upload(t, "enorme.csv", strings.Repeat("x", 2<<20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, "FILE_TOO_LARGE", env.Error.Code)
}

func TestExamFlow(t *testing.T) {
	app := newTestApp(t, time.Minute, time.Hour)
	_, _ = app.upload(t, "domande.csv", questionsCSV)

	code, env := app.do(t, http.MethodGet, "/api/v1/exam", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "correctAnswerIndex")

	var view struct {
		State          string `json:"state"`
		TotalQuestions int    `json:"total_questions"`
	}
	decode(t, env.Data, &view)
	assert.Equal(t, "IN_PROGRESS", view.State)
	assert.Equal(t, 3, view.TotalQuestions)

	code, env = app.do(t, http.MethodPut, "/api/v1/exam/answers/0", map[string]int{"answer_index": 1})
	require.Equal(t, http.StatusOK, code)
	var answered struct {
		AnsweredCount int `json:"answered_count"`
	}
	decode(t, env.Data, &answered)
	assert.Equal(t, 1, answered.AnsweredCount)

	code, env = app.do(t, http.MethodPut, "/api/v1/exam/answers/0", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "answer_index")

	code, env = app.do(t, http.MethodPost, "/api/v1/exam/complete", nil)
	require.Equal(t, http.StatusOK, code)
	var results struct {
		Score    int  `json:"score"`
		IsPassed bool `json:"isPassed"`
	}
	decode(t, env.Data, &results)
	assert.False(t, results.IsPassed)

	code, env = app.do(t, http.MethodDelete, "/api/v1/exam", nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data, &view)
	assert.Equal(t, "NO_EXAM", view.State)

	code, _ = app.do(t, http.MethodPost, "/api/v1/exam/complete", nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestExerciseFlow(t *testing.T) {
	app := newTestApp(t, time.Minute, time.Hour)
	_, _ = app.upload(t, "domande.csv", questionsCSV)

	code, env := app.do(t, http.MethodPut, "/api/v1/exercise/settings", map[string]string{"questions_per_session": "abc"})
	require.Equal(t, http.StatusOK, code)
	var settings struct {
		QuestionsPerSession int  `json:"questions_per_session"`
		RemainingQuestions  int  `json:"remaining_questions"`
		AllAnswered         bool `json:"all_answered"`
	}
	decode(t, env.Data, &settings)
	assert.Equal(t, 2, settings.QuestionsPerSession)

	code, _ = app.do(t, http.MethodGet, "/api/v1/exercise/session", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = app.do(t, http.MethodPost, "/api/v1/exercise/session", nil)
	require.Equal(t, http.StatusCreated, code)
	var session struct {
		SessionSize int `json:"session_size"`
	}
	decode(t, env.Data, &session)
	assert.Equal(t, 2, session.SessionSize)

	for i := 0; i < 2; i++ {
		code, env = app.do(t, http.MethodPost, "/api/v1/exercise/session/answer", map[string]int{"answer_index": 0})
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(env.Data), "feedback")

		code, env = app.do(t, http.MethodPost, "/api/v1/exercise/session/next", nil)
		require.Equal(t, http.StatusOK, code)
	}
	var step struct {
		Finished bool `json:"finished"`
	}
	decode(t, env.Data, &step)
	assert.True(t, step.Finished)

	code, env = app.do(t, http.MethodGet, "/api/v1/exercise", nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data, &settings)
	assert.Equal(t, 1, settings.RemainingQuestions)

	code, env = app.do(t, http.MethodDelete, "/api/v1/exercise/progress", nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data, &settings)
	assert.Equal(t, 3, settings.RemainingQuestions)
}

func TestStudyFlow(t *testing.T) {
	app := newTestApp(t, time.Minute, time.Hour)
	_, _ = app.upload(t, "domande.csv", questionsCSV)

	code, env := app.do(t, http.MethodGet, "/api/v1/study", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "rationale")

	code, env = app.do(t, http.MethodPost, "/api/v1/study/reveal", nil)
	require.Equal(t, http.StatusOK, code)
	var view struct {
		Rationale    string `json:"rationale"`
		StudiedCount int    `json:"studied_count"`
	}
	decode(t, env.Data, &view)
	assert.Equal(t, "r1", view.Rationale)
	assert.Equal(t, 1, view.StudiedCount)

	code, _ = app.do(t, http.MethodPost, "/api/v1/study/next", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = app.do(t, http.MethodPost, "/api/v1/study/prev", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = app.do(t, http.MethodGet, "/api/v1/overview", nil)
	require.Equal(t, http.StatusOK, code)
	var overview struct {
		TotalQuestions int `json:"total_questions"`
		StudyStudied   int `json:"study_studied"`
	}
	decode(t, env.Data, &overview)
	assert.Equal(t, 3, overview.TotalQuestions)
	assert.Equal(t, 1, overview.StudyStudied)

	code, _ = app.do(t, http.MethodDelete, "/api/v1/study/progress", nil)
	require.Equal(t, http.StatusOK, code)
}

func TestCountdownWebSocket(t *testing.T) {
	app := newTestApp(t, 200*time.Millisecond, 20*time.Millisecond)
	_, _ = app.upload(t, "domande.csv", questionsCSV)

	srv := httptest.NewServer(app.engine)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/v1/exam/countdown", nil)
	require.NoError(t, err)
	defer conn.Close()

	var first map[string]interface{}
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "state", first["event"])
	assert.Equal(t, "NO_EXAM", first["state"])

	code, _ := app.do(t, http.MethodGet, "/api/v1/exam", nil)
	require.Equal(t, http.StatusOK, code)

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "ping"}))

	sawPong, sawExpired := false, false
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for !sawExpired {
		var msg map[string]interface{}
		require.NoError(t, conn.ReadJSON(&msg))
		switch msg["event"] {
		case "pong":
			sawPong = true
		case "tick":
			if msg["expired"] == true {
				sawExpired = true
			}
		}
	}
	assert.True(t, sawPong)

	assert.Eventually(t, func() bool {
		return app.exam.State() == "COMPLETED"
	}, time.Second, 10*time.Millisecond)
}
