package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"echomind-backend/internal/middleware"
	"echomind-backend/internal/models"
	"echomind-backend/internal/services"
)

type ConversationHandler struct {
	sessions *services.SessionManager
}

func NewConversationHandler(sessions *services.SessionManager) *ConversationHandler {
	return &ConversationHandler{sessions: sessions}
}

type conversationRequest struct {
	SessionID string `json:"session_id,omitempty"`
	ChatID    string `json:"chat_id,omitempty"`
	Input     string `json:"input"`
	Model     string `json:"model,omitempty"`
}

type conversationResponse struct {
	Success   bool                 `json:"success"`
	SessionID string               `json:"session_id"`
	ChatID    string               `json:"chat_id,omitempty"`
	Messages  []models.ChatMessage `json:"messages"`
	Error     *models.ChatError    `json:"error,omitempty"`
}

// Converse runs one turn of a server-held conversation. Authenticated turns
// get their transcript persisted in the background; anonymous transcripts
// live only until the session is evicted.
func (h *ConversationHandler) Converse(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Input is required", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	turn, err := h.sessions.Converse(r.Context(), userID, req.SessionID, req.ChatID, strings.TrimSpace(req.Input), req.Model)
	if err != nil {
		var notFound *services.SessionNotFoundError
		if errors.As(err, &notFound) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp(models.ErrCodeUnknownError, "Failed to process conversation turn", r))
		return
	}

	resp := conversationResponse{
		Success:   turn.Result.Success,
		SessionID: turn.SessionID,
		ChatID:    turn.ChatID,
		Messages:  turn.Messages,
		Error:     turn.Result.Error,
	}

	status := http.StatusOK
	if !turn.Result.Success {
		status = turn.Result.Error.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
	}
	writeJSON(w, status, resp)
}
