package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"echomind-backend/internal/middleware"
	"echomind-backend/internal/models"
	"echomind-backend/internal/services"
)

type HistoryHandler struct {
	stores services.HistoryStoreFactory
}

func NewHistoryHandler(stores services.HistoryStoreFactory) *HistoryHandler {
	return &HistoryHandler{stores: stores}
}

func (h *HistoryHandler) storeFor(r *http.Request) services.HistoryStore {
	return h.stores.ForUser(middleware.GetUserID(r.Context()))
}

// List returns the user's conversations, most recently updated first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	chats, err := h.storeFor(r).List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp(models.ErrCodeStorageError, "Failed to load chat histories", r))
		return
	}
	if chats == nil {
		chats = []*models.ChatHistory{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	chat, err := h.storeFor(r).Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp(models.ErrCodeStorageError, "Failed to load chat history", r))
		return
	}
	if chat == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Chat history not found", r))
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

type saveChatRequest struct {
	Title    string               `json:"title"`
	Messages []models.ChatMessage `json:"messages"`
	ModelID  string               `json:"modelId"`
}

// Create persists a transcript as a new conversation.
func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saveChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Messages are required", r))
		return
	}

	id, err := h.storeFor(r).Create(r.Context(), req.Messages, strings.TrimSpace(req.Title), req.ModelID)
	if err != nil || id == "" {
		writeJSON(w, http.StatusInternalServerError, errorResp(models.ErrCodeStorageError, "Failed to save chat history", r))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update replaces a conversation's messages and, when supplied, its title
// and model.
func (h *HistoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req saveChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Messages are required", r))
		return
	}

	ok, err := h.storeFor(r).Update(r.Context(), id, req.Messages, strings.TrimSpace(req.Title), req.ModelID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp(models.ErrCodeStorageError, "Failed to update chat history", r))
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Chat history not found", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := h.storeFor(r).Delete(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp(models.ErrCodeStorageError, "Failed to delete chat history", r))
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Chat history not found", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
