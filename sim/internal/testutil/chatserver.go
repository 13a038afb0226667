package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// ChatHandler answers one decoded chat-completion request body with an HTTP
// status and, for 200, the assistant message content.
type ChatHandler func(body map[string]any) (status int, content string)

// ChatServer is a fake OpenAI-compatible chat-completion endpoint.
type ChatServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []map[string]any
	paths    []string
}

// NewChatServer starts a fake endpoint served by h and closes it at test end.
func NewChatServer(t *testing.T, h ChatHandler) *ChatServer {
	t.Helper()
	cs := &ChatServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		cs.mu.Lock()
		cs.requests = append(cs.requests, body)
		cs.paths = append(cs.paths, r.URL.Path)
		cs.mu.Unlock()

		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		status, content := h(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, ErrorBody(content))
			return
		}
		_, _ = io.WriteString(w, ChatReply(content))
	}))
	t.Cleanup(cs.Close)
	return cs
}

// Requests returns a copy of every decoded request body received so far.
func (cs *ChatServer) Requests() []map[string]any {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]map[string]any(nil), cs.requests...)
}

// Paths returns the request paths received so far.
func (cs *ChatServer) Paths() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]string(nil), cs.paths...)
}

// ChatReply builds a chat-completion response body carrying content.
func ChatReply(content string) string {
	resp := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

// ErrorBody builds an OpenAI-style error body.
func ErrorBody(message string) string {
	b, _ := json.Marshal(map[string]any{
		"error": map[string]any{"message": message, "type": "invalid_request_error"},
	})
	return string(b)
}

// RejectUnless returns a handler that fails with 400 until a request
// carries every named field, then answers with content.
func RejectUnless(content string, fields ...string) ChatHandler {
	return func(body map[string]any) (int, string) {
		for _, f := range fields {
			if _, ok := body[f]; !ok {
				return http.StatusBadRequest, "unsupported parameter shape"
			}
		}
		for _, f := range []string{"max_completion_tokens", "response_format"} {
			if _, ok := body[f]; ok && !contains(fields, f) {
				return http.StatusBadRequest, "unsupported parameter: " + f
			}
		}
		return http.StatusOK, content
	}
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
