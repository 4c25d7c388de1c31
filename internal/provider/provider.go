package provider

import (
	"context"

	"echomind-backend/internal/models"
)

// Completion carries the resolved per-call parameters handed to a provider.
// The gateway fills in defaults before the request crosses this boundary.
type Completion struct {
	Messages    []models.ChatMessage
	Model       string
	Temperature float64
	MaxTokens   int
}

// Provider issues a single chat completion call against an external LLM
// service and maps its response into the internal ProviderResponse shape.
// Implementations do not retry.
type Provider interface {
	Complete(ctx context.Context, req Completion) (*models.ProviderResponse, error)
	Name() string
}

// Error is a normalized provider failure. Status defaults to 500 when the
// upstream service did not supply one.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }
