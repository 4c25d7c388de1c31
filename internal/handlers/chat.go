package handlers

import (
	"encoding/json"
	"net/http"

	"echomind-backend/internal/models"
	"echomind-backend/internal/services"
)

type ChatHandler struct {
	gateway *services.Gateway
}

func NewChatHandler(gateway *services.Gateway) *ChatHandler {
	return &ChatHandler{gateway: gateway}
}

// Complete handles POST /chat. The response body is always a
// CompletionResult envelope; the status code mirrors the outcome: 400 for
// malformed input, the provider's status (default 500) for failures, 200
// otherwise.
func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req models.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.CompletionResult{
			Success: false,
			Error: &models.ChatError{
				Message: "無效的訊息格式",
				Code:    models.ErrCodeInvalidFormat,
			},
		})
		return
	}

	result := h.gateway.Complete(r.Context(), req)
	if !result.Success {
		status := result.Error.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, result)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Preflight handles OPTIONS /chat for cross-origin callers.
func (h *ChatHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.WriteHeader(http.StatusNoContent)
}
