package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"echomind-backend/internal/models"
	"echomind-backend/internal/provider"
)

// systemPrompt is the fixed persona prepended to every provider call. It is
// never returned to callers and never persisted.
var systemPrompt = models.ChatMessage{
	Role: models.RoleSystem,
	Content: `你是輔仁大學資訊管理學系的 AI 助手，名叫 EchoMind。
  - 使用繁體中文回答
  - 回答要簡潔但專業
  - 對學生要友善有耐心
  - 不確定的事情要誠實說不知道
  - 需要時可以使用 Markdown 格式美化回答
  - 專注於資管相關的學術、課程、就業諮詢
  - 避免討論政治、宗教等敏感話題`,
}

// ModelConfig describes one selectable model alias.
type ModelConfig struct {
	Name        string
	DisplayName string
	Temperature float64
	MaxTokens   int
}

var modelMapping = map[string]ModelConfig{
	"default": {
		Name:        "llama-3.1-8b-instant",
		DisplayName: "Llama 3.1 8B Instant",
		Temperature: 0.7,
		MaxTokens:   2048,
	},
	"advanced": {
		Name:        "deepseek-r1-distill-llama-70b",
		DisplayName: "Deepseek R1 Distill Llama 70B",
		Temperature: 0.5,
		MaxTokens:   4096,
	},
	"creative": {
		Name:        "qwen-2.5-32b",
		DisplayName: "Qwen 2.5 32B",
		Temperature: 0.9,
		MaxTokens:   3072,
	},
	"maverick": {
		Name:        "meta-llama/llama-4-maverick-17b-128e-instruct",
		DisplayName: "Llama 4 Maverick 17B",
		Temperature: 0.7,
		MaxTokens:   4096,
	},
}

// ResolveModel maps a caller-facing model ID to a concrete model config. A
// raw model name passes through unchanged; anything unrecognized falls back
// to the default model.
func ResolveModel(modelID string) ModelConfig {
	if cfg, ok := modelMapping[modelID]; ok {
		return cfg
	}
	if strings.Contains(modelID, "llama") || strings.Contains(modelID, "deepseek") || strings.Contains(modelID, "qwen") {
		cfg := modelMapping["default"]
		cfg.Name = modelID
		cfg.DisplayName = modelID
		return cfg
	}
	return modelMapping["default"]
}

// Gateway sends normalized message lists to the configured completion
// provider, degrading to the deterministic mock path when none is set.
// A single attempt per call; callers decide whether to retry.
type Gateway struct {
	provider provider.Provider // nil means mock-only
	rateChan chan struct{}     // token bucket capping concurrent provider calls
}

func NewGateway(p provider.Provider, concurrentReqs int) *Gateway {
	if concurrentReqs <= 0 {
		concurrentReqs = 5
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}
	return &Gateway{provider: p, rateChan: rateChan}
}

// HasProvider reports whether an external provider credential is configured.
func (g *Gateway) HasProvider() bool { return g.provider != nil }

// acquireRate blocks until a rate slot is available.
func (g *Gateway) acquireRate(ctx context.Context) error {
	select {
	case <-g.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for completion rate slot")
	}
}

func (g *Gateway) releaseRate() {
	g.rateChan <- struct{}{}
}

// Complete validates the request, injects the system prompt and issues one
// completion call. Validation errors and provider errors both come back as a
// failure result, never as a panic or a bare error.
func (g *Gateway) Complete(ctx context.Context, req models.CompletionRequest) models.CompletionResult {
	if len(req.Messages) == 0 {
		return models.CompletionResult{
			Success: false,
			Error: &models.ChatError{
				Message: "無效的訊息格式",
				Code:    models.ErrCodeInvalidFormat,
				Status:  http.StatusBadRequest,
			},
		}
	}

	cfg := ResolveModel(req.Model)
	temperature := req.Temperature
	if temperature == 0 {
		temperature = cfg.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens
	}

	if g.provider == nil {
		return models.CompletionResult{
			Success: true,
			Data:    MockResponse(req.Messages, cfg.Name),
		}
	}

	if err := g.acquireRate(ctx); err != nil {
		return failureFromError(err)
	}
	defer g.releaseRate()

	messages := make([]models.ChatMessage, 0, len(req.Messages)+1)
	messages = append(messages, systemPrompt)
	for _, m := range req.Messages {
		// Ids and timestamps stay inside the client boundary.
		messages = append(messages, models.ChatMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := g.provider.Complete(ctx, provider.Completion{
		Messages:    messages,
		Model:       cfg.Name,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		log.Printf("completion provider %s failed: %v", g.provider.Name(), err)
		return failureFromError(err)
	}

	return models.CompletionResult{Success: true, Data: resp}
}

func failureFromError(err error) models.CompletionResult {
	var provErr *provider.Error
	if errors.As(err, &provErr) {
		status := provErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := provErr.Code
		if code == "" {
			code = models.ErrCodeProviderError
		}
		return models.CompletionResult{
			Success: false,
			Error:   &models.ChatError{Message: provErr.Message, Code: code, Status: status},
		}
	}
	return models.CompletionResult{
		Success: false,
		Error: &models.ChatError{
			Message: err.Error(),
			Code:    models.ErrCodeUnknownError,
			Status:  http.StatusInternalServerError,
		},
	}
}
