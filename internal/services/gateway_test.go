package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"echomind-backend/internal/models"
	"echomind-backend/internal/provider"
)

// stubProvider lets tests script the provider boundary without a network.
type stubProvider struct {
	resp     *models.ProviderResponse
	err      error
	lastCall provider.Completion
	calls    int
}

func (s *stubProvider) Complete(_ context.Context, req provider.Completion) (*models.ProviderResponse, error) {
	s.calls++
	s.lastCall = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubProvider) Name() string { return "stub" }

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name     string
		modelID  string
		expected string
	}{
		{"default alias", "default", "llama-3.1-8b-instant"},
		{"advanced alias", "advanced", "deepseek-r1-distill-llama-70b"},
		{"creative alias", "creative", "qwen-2.5-32b"},
		{"maverick alias", "maverick", "meta-llama/llama-4-maverick-17b-128e-instruct"},
		{"raw llama passthrough", "llama-3.3-70b-versatile", "llama-3.3-70b-versatile"},
		{"raw deepseek passthrough", "deepseek-chat", "deepseek-chat"},
		{"unknown falls back", "gpt-4o", "llama-3.1-8b-instant"},
		{"empty falls back", "", "llama-3.1-8b-instant"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := ResolveModel(tc.modelID)
			if cfg.Name != tc.expected {
				t.Errorf("Expected model %q, got %q", tc.expected, cfg.Name)
			}
		})
	}
}

func TestGatewayComplete_EmptyMessages(t *testing.T) {
	stub := &stubProvider{}
	gateway := NewGateway(stub, 5)

	result := gateway.Complete(context.Background(), models.CompletionRequest{})

	if result.Success {
		t.Fatal("Expected failure for empty messages")
	}
	if result.Error.Code != models.ErrCodeInvalidFormat {
		t.Errorf("Expected code %q, got %q", models.ErrCodeInvalidFormat, result.Error.Code)
	}
	if result.Error.Status != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", result.Error.Status)
	}
	if stub.calls != 0 {
		t.Errorf("Expected no provider calls, got %d", stub.calls)
	}
}

func TestGatewayComplete_MockFallback(t *testing.T) {
	gateway := NewGateway(nil, 5)

	result := gateway.Complete(context.Background(), models.CompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "你好"}},
	})

	if !result.Success {
		t.Fatalf("Expected success, got error: %+v", result.Error)
	}
	if result.Data.FirstChoiceContent() == "" {
		t.Error("Expected non-empty mock content")
	}
	if result.Data.ID != "mock-completion" {
		t.Errorf("Expected mock completion id, got %q", result.Data.ID)
	}
}

func TestGatewayComplete_InjectsSystemPrompt(t *testing.T) {
	stub := &stubProvider{resp: &models.ProviderResponse{
		ID:      "cmpl-1",
		Choices: []models.Choice{{Message: models.ChatMessage{Role: models.RoleAssistant, Content: "好的"}}},
	}}
	gateway := NewGateway(stub, 5)

	result := gateway.Complete(context.Background(), models.CompletionRequest{
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: "課程資訊", ID: "m-1", CreatedAt: 1700000000000},
		},
	})

	if !result.Success {
		t.Fatalf("Expected success, got error: %+v", result.Error)
	}
	if len(stub.lastCall.Messages) != 2 {
		t.Fatalf("Expected 2 outbound messages, got %d", len(stub.lastCall.Messages))
	}
	if stub.lastCall.Messages[0].Role != models.RoleSystem {
		t.Errorf("Expected leading system message, got role %q", stub.lastCall.Messages[0].Role)
	}
	last := stub.lastCall.Messages[1]
	if last.ID != "" || last.CreatedAt != 0 {
		t.Error("Expected client-side id and timestamp stripped from outbound message")
	}
}

func TestGatewayComplete_AppliesModelDefaults(t *testing.T) {
	stub := &stubProvider{resp: &models.ProviderResponse{
		Choices: []models.Choice{{Message: models.ChatMessage{Role: models.RoleAssistant, Content: "ok"}}},
	}}
	gateway := NewGateway(stub, 5)

	gateway.Complete(context.Background(), models.CompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
		Model:    "advanced",
	})

	if stub.lastCall.Model != "deepseek-r1-distill-llama-70b" {
		t.Errorf("Expected resolved model name, got %q", stub.lastCall.Model)
	}
	if stub.lastCall.Temperature != 0.5 {
		t.Errorf("Expected temperature 0.5, got %v", stub.lastCall.Temperature)
	}
	if stub.lastCall.MaxTokens != 4096 {
		t.Errorf("Expected max tokens 4096, got %d", stub.lastCall.MaxTokens)
	}
}

func TestGatewayComplete_ProviderErrorNormalized(t *testing.T) {
	stub := &stubProvider{err: &provider.Error{
		Code:    "rate_limit_exceeded",
		Status:  http.StatusTooManyRequests,
		Message: "Rate limit reached",
	}}
	gateway := NewGateway(stub, 5)

	result := gateway.Complete(context.Background(), models.CompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})

	if result.Success {
		t.Fatal("Expected failure result")
	}
	if result.Error.Code != "rate_limit_exceeded" {
		t.Errorf("Expected provider error code, got %q", result.Error.Code)
	}
	if result.Error.Status != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", result.Error.Status)
	}
	if stub.calls != 1 {
		t.Errorf("Expected exactly one attempt, got %d", stub.calls)
	}
}

func TestGatewayComplete_UnknownErrorNormalized(t *testing.T) {
	stub := &stubProvider{err: errors.New("connection reset")}
	gateway := NewGateway(stub, 5)

	result := gateway.Complete(context.Background(), models.CompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})

	if result.Success {
		t.Fatal("Expected failure result")
	}
	if result.Error.Code != models.ErrCodeUnknownError {
		t.Errorf("Expected code %q, got %q", models.ErrCodeUnknownError, result.Error.Code)
	}
	if result.Error.Status != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", result.Error.Status)
	}
}
