package models

// ChatRole is the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

// ChatMessage represents a single message in a conversation. Once appended
// to a transcript it is never mutated; ordering is significant.
type ChatMessage struct {
	Role      ChatRole `json:"role"`
	Content   string   `json:"content"`
	ID        string   `json:"id,omitempty"`
	CreatedAt int64    `json:"createdAt,omitempty"` // unix milliseconds
}

// CompletionRequest is the payload accepted by the chat endpoint and by the
// model gateway. Zero values for Model/Temperature/MaxTokens mean "use the
// configured default".
type CompletionRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Model       string        `json:"model,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"maxTokens,omitempty"`
	// Stream is accepted for wire compatibility with OpenAI-style clients
	// and ignored: responses always arrive in one piece.
	Stream      bool          `json:"stream,omitempty"`
}

// Choice is one completion alternative returned by a provider.
type Choice struct {
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
	Index        int         `json:"index"`
}

// Usage mirrors the provider's token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderResponse is the provider-agnostic completion object. Callers that
// only read choices[0].message.content stay portable across providers.
type ProviderResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// ChatError carries a normalized provider or validation error. Status is the
// HTTP status to report and is not part of the wire format.
type ChatError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Status  int    `json:"-"`
}

// CompletionResult is the tagged success/failure envelope returned by the
// gateway and the chat endpoint.
type CompletionResult struct {
	Success bool              `json:"success"`
	Data    *ProviderResponse `json:"data,omitempty"`
	Error   *ChatError        `json:"error,omitempty"`
}

// Error codes shared across the chat pipeline.
const (
	ErrCodeInvalidFormat = "INVALID_FORMAT"
	ErrCodeProviderError = "PROVIDER_ERROR"
	ErrCodeUnknownError  = "UNKNOWN_ERROR"
	ErrCodeStorageError  = "STORAGE_ERROR"
)

// FirstChoiceContent returns the content of the first choice, or "" when the
// response has no choices.
func (r *ProviderResponse) FirstChoiceContent() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}
