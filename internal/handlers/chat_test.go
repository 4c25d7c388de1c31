package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"echomind-backend/internal/models"
	"echomind-backend/internal/services"
)

func newMockChatHandler() *ChatHandler {
	return NewChatHandler(services.NewGateway(nil, 5))
}

func TestChatComplete_Success(t *testing.T) {
	handler := newMockChatHandler()
	body := `{"messages":[{"role":"user","content":"你好"}],"model":"default"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Complete(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var result models.CompletionResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got error: %+v", result.Error)
	}
	if result.Data.FirstChoiceContent() == "" {
		t.Error("Expected non-empty completion content")
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}
}

func TestChatComplete_EmptyMessages(t *testing.T) {
	handler := newMockChatHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"messages":[]}`))
	rr := httptest.NewRecorder()
	handler.Complete(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}

	var result models.CompletionResult
	json.NewDecoder(rr.Body).Decode(&result)
	if result.Success {
		t.Error("Expected failure envelope")
	}
	if result.Error == nil || result.Error.Code != models.ErrCodeInvalidFormat {
		t.Errorf("Expected INVALID_FORMAT, got %+v", result.Error)
	}
}

func TestChatComplete_MalformedJSON(t *testing.T) {
	handler := newMockChatHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	handler.Complete(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}

	var result models.CompletionResult
	json.NewDecoder(rr.Body).Decode(&result)
	if result.Error == nil || result.Error.Code != models.ErrCodeInvalidFormat {
		t.Errorf("Expected INVALID_FORMAT, got %+v", result.Error)
	}
}

func TestChatPreflight(t *testing.T) {
	handler := newMockChatHandler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	rr := httptest.NewRecorder()
	handler.Preflight(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rr.Code)
	}
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
	}
	for name, want := range headers {
		if got := rr.Header().Get(name); got != want {
			t.Errorf("Expected %s %q, got %q", name, want, got)
		}
	}
	if rr.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %q", rr.Body.String())
	}
}
