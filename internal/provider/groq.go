package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"echomind-backend/internal/models"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider talks to the Groq chat-completions API. Groq speaks the
// OpenAI wire protocol, so the go-openai client is pointed at Groq's base URL.
type GroqProvider struct {
	client *openai.Client
}

func NewGroqProvider(apiKey string) *GroqProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	return &GroqProvider{client: openai.NewClientWithConfig(cfg)}
}

func (p *GroqProvider) Name() string { return "groq" }

func (p *GroqProvider) Complete(ctx context.Context, req Completion) (*models.ProviderResponse, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, normalizeGroqError(err)
	}

	out := &models.ProviderResponse{
		ID:      resp.ID,
		Object:  string(resp.Object),
		Created: resp.Created,
		Model:   resp.Model,
		Usage: models.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for i, c := range resp.Choices {
		out.Choices = append(out.Choices, models.Choice{
			Message: models.ChatMessage{
				Role:    models.ChatRole(c.Message.Role),
				Content: c.Message.Content,
			},
			FinishReason: string(c.FinishReason),
			Index:        i,
		})
	}
	if len(out.Choices) == 0 {
		return nil, &Error{
			Code:    models.ErrCodeProviderError,
			Status:  http.StatusBadGateway,
			Message: "provider returned no choices",
		}
	}
	return out, nil
}

func normalizeGroqError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := models.ErrCodeProviderError
		if s, ok := apiErr.Code.(string); ok && s != "" {
			code = s
		}
		status := apiErr.HTTPStatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return &Error{Code: code, Status: status, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		status := reqErr.HTTPStatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return &Error{
			Code:    models.ErrCodeProviderError,
			Status:  status,
			Message: fmt.Sprintf("groq request failed: %v", reqErr.Err),
		}
	}

	return err
}
