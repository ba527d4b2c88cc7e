package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ok", func(c *gin.Context) { Message(c, http.StatusOK, "done") })
	r.GET("/fail", func(c *gin.Context) { Fail(c, http.StatusConflict, ErrNoQuestions) })
	return r
}

func TestRequestIDIsReusedOrGenerated(t *testing.T) {
	r := newEngine()

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc-123", body.Metadata.RequestID)

	for _, bad := range []string{"has space", strings.Repeat("x", 200)} {
		req = httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("X-Request-ID", bad)
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.NotEqual(t, bad, rec.Header().Get("X-Request-ID"))
		assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
	}
}

func TestFailEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	newEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrNoQuestions, body.Error.Code)
	assert.Equal(t, GetMessage(ErrNoQuestions), body.Error.Message)
	assert.Nil(t, body.Data)
}
