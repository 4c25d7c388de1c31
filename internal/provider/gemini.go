package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"echomind-backend/internal/models"
)

// GeminiProvider is the alternate completion backend. Model aliases resolve
// to Groq model names, so this provider always runs its configured Gemini
// model and only reports it back in the response.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Close() {
	p.client.Close()
}

func (p *GeminiProvider) Complete(ctx context.Context, req Completion) (*models.ProviderResponse, error) {
	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	// Gemini takes the system prompt out of band.
	history := make([]*genai.Content, 0, len(req.Messages))
	var last string
	for i, m := range req.Messages {
		switch m.Role {
		case models.RoleSystem:
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(m.Content)}}
		case models.RoleUser:
			if i == len(req.Messages)-1 {
				last = m.Content
				continue
			}
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		case models.RoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	if last == "" {
		return nil, &Error{
			Code:    models.ErrCodeInvalidFormat,
			Status:  http.StatusBadRequest,
			Message: "conversation must end with a user message",
		}
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return nil, &Error{
			Code:    models.ErrCodeProviderError,
			Status:  http.StatusInternalServerError,
			Message: fmt.Sprintf("gemini request failed: %v", err),
		}
	}
	if len(resp.Candidates) == 0 {
		return nil, &Error{
			Code:    models.ErrCodeProviderError,
			Status:  http.StatusBadGateway,
			Message: "provider returned no candidates",
		}
	}

	out := &models.ProviderResponse{
		Object: "chat.completion",
		Model:  p.model,
	}
	if resp.UsageMetadata != nil {
		out.Usage = models.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	for i, cand := range resp.Candidates {
		out.Choices = append(out.Choices, models.Choice{
			Message: models.ChatMessage{
				Role:    models.RoleAssistant,
				Content: candidateText(cand),
			},
			FinishReason: finishReason(cand.FinishReason),
			Index:        i,
		})
	}
	return out, nil
}

func candidateText(cand *genai.Candidate) string {
	if cand.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func finishReason(r genai.FinishReason) string {
	switch r {
	case genai.FinishReasonStop:
		return "stop"
	case genai.FinishReasonMaxTokens:
		return "length"
	default:
		return strings.ToLower(r.String())
	}
}
