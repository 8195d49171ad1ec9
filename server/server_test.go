package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentchat"
)

type stubAssistant struct {
	chatResult *agentchat.ChatResult
	chatErr    error
	resetErr   error

	lastSessionID string
	lastMessage   string
	resets        []string
}

func (s *stubAssistant) Chat(_ context.Context, sessionID, message string) (*agentchat.ChatResult, error) {
	s.lastSessionID = sessionID
	s.lastMessage = message
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	return s.chatResult, nil
}

func (s *stubAssistant) Reset(_ context.Context, sessionID string) error {
	s.resets = append(s.resets, sessionID)
	return s.resetErr
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat(t *testing.T) {
	stub := &stubAssistant{
		chatResult: &agentchat.ChatResult{Reply: "84", ToolUsed: "calculator", TraceID: "trace-1"},
	}
	handler := NewHandler(stub)

	rec := postJSON(t, handler, "/chat", `{"session_id":"s1","message":"what is 12*7?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "s1", stub.lastSessionID)
	assert.Equal(t, "what is 12*7?", stub.lastMessage)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "84", body["reply"])
	assert.Equal(t, "calculator", body["tool_used"])
	assert.Equal(t, "trace-1", body["trace_id"])
}

func TestHandleChat_BadRequests(t *testing.T) {
	handler := NewHandler(&stubAssistant{chatResult: &agentchat.ChatResult{}})

	rec := postJSON(t, handler, "/chat", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, handler, "/chat", `{"message":"no session"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, handler, "/chat", `{"session_id":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChat_AssistantFailure(t *testing.T) {
	handler := NewHandler(&stubAssistant{chatErr: errors.New("store unavailable")})

	rec := postJSON(t, handler, "/chat", `{"session_id":"s1","message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleReset(t *testing.T) {
	stub := &stubAssistant{}
	handler := NewHandler(stub)

	rec := postJSON(t, handler, "/reset", `{"session_id":"s1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"s1"}, stub.resets)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["ok"])
}

func TestHandleReset_BadRequests(t *testing.T) {
	handler := NewHandler(&stubAssistant{})

	rec := postJSON(t, handler, "/reset", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, handler, "/reset", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleReset_AssistantFailure(t *testing.T) {
	handler := NewHandler(&stubAssistant{resetErr: errors.New("store unavailable")})

	rec := postJSON(t, handler, "/reset", `{"session_id":"s1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleHealthz(t *testing.T) {
	handler := NewHandler(&stubAssistant{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	handler := NewHandler(&stubAssistant{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	handler := NewHandler(&stubAssistant{})

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
