package handlers

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scout/internal/models"
)

func TestChatHandler_Post(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		err        error
		wantStatus int
		wantBody   string
		wantCalls  int
	}{
		{
			name:       "answers question",
			method:     http.MethodPost,
			body:       `{"message":"What is HTTP?","history":[{"role":"user","content":"hi"}]}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"reply":"Here is a quick summary based on current web sources:\n- HTTP is a protocol. [1]","sources":[{"title":"HTTP","url":"https://developer.mozilla.org/en-US/docs/Web/HTTP"}]}`,
			wantCalls:  1,
		},
		{
			name:       "blank message",
			method:     http.MethodPost,
			body:       `{"message":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Empty message"}`,
		},
		{
			name:       "missing message",
			method:     http.MethodPost,
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Empty message"}`,
		},
		{
			name:       "invalid json",
			method:     http.MethodPost,
			body:       `{"message":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid request body"}`,
		},
		{
			name:       "unknown format",
			method:     http.MethodPost,
			body:       `{"message":"q","format":"pdf"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid request: format must be text or html"}`,
		},
		{
			name:       "wrong method",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   `{"error":"Method not allowed"}`,
		},
		{
			name:       "service failure",
			method:     http.MethodPost,
			body:       `{"message":"q"}`,
			err:        errBackend,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to generate response"}`,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := &stubAnswers{err: tt.err}
			handler := NewChatHandler(answers, arbor.NewLogger())

			req := httptest.NewRequest(tt.method, "/api/chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ChatHandler(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.wantCalls, answers.calls())
		})
	}
}

func TestChatHandler_PostHTML(t *testing.T) {
	handler := NewChatHandler(&stubAnswers{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"What is HTTP?","format":"html"}`))
	rec := httptest.NewRecorder()
	handler.ChatHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["reply_html"], "<li>HTTP is a protocol. [1]</li>")
	assert.NotContains(t, body, "generator")
}

func readEvents(t *testing.T, body string) []models.Phase {
	t.Helper()
	var phases []models.Phase
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		require.True(t, strings.HasPrefix(line, "data: "), "unexpected line %q", line)
		var phase models.Phase
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &phase))
		phases = append(phases, phase)
	}
	return phases
}

func TestChatHandler_Stream(t *testing.T) {
	handler := NewChatHandler(&stubAnswers{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/chat/stream?message=What+is+HTTP%3F", nil)
	rec := httptest.NewRecorder()
	handler.StreamHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.True(t, strings.HasSuffix(rec.Body.String(), "\n\n"))

	phases := readEvents(t, rec.Body.String())
	require.Len(t, phases, 3)

	assert.Equal(t, "searching", phases[0].Phase)
	assert.Equal(t, "Searching the web...", phases[0].Message)
	assert.Equal(t, "reading", phases[1].Phase)
	assert.Equal(t, 2, *phases[1].Count)
	assert.Equal(t, "answer", phases[2].Phase)
	require.NotNil(t, phases[2].Payload)
	assert.Len(t, phases[2].Payload.Sources, 1)
	assert.Empty(t, phases[2].Payload.ReplyHTML)
}

func TestChatHandler_StreamErrors(t *testing.T) {
	answers := &stubAnswers{}
	handler := NewChatHandler(answers, arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.StreamHandler(rec, httptest.NewRequest(http.MethodGet, "/api/chat/stream?message=%20%20", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Empty message"}`, rec.Body.String())
	assert.NotEqual(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Zero(t, answers.calls())

	rec = httptest.NewRecorder()
	handler.StreamHandler(rec, httptest.NewRequest(http.MethodPost, "/api/chat/stream?message=q", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	failing := NewChatHandler(&stubAnswers{err: errBackend}, arbor.NewLogger())
	rec = httptest.NewRecorder()
	failing.StreamHandler(rec, httptest.NewRequest(http.MethodGet, "/api/chat/stream?message=q", nil))
	phases := readEvents(t, rec.Body.String())
	require.Len(t, phases, 1)
	assert.Equal(t, "error", phases[0].Phase)
}

func TestAPIHandler(t *testing.T) {
	handler := NewAPIHandler(arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var version map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
	assert.Contains(t, version, "version")
	assert.Contains(t, version, "go_version")

	rec = httptest.NewRecorder()
	handler.NotFoundHandler(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
