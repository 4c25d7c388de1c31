package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"echomind-backend/internal/models"
	"echomind-backend/internal/services"
)

type FaqHandler struct {
	faqService *services.FaqService
}

func NewFaqHandler(faqService *services.FaqService) *FaqHandler {
	return &FaqHandler{faqService: faqService}
}

// Search handles POST /faq: ranks the static corpus against the query.
func (h *FaqHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.FaqSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.FaqSearchResponse{
			Success: false,
			Error:   &models.ChatError{Message: "無效的請求格式"},
		})
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, models.FaqSearchResponse{
			Success: false,
			Error:   &models.ChatError{Message: "查詢內容不能為空"},
		})
		return
	}

	results := h.faqService.Search(r.Context(), req.Query, req.Limit)
	writeJSON(w, http.StatusOK, models.FaqSearchResponse{
		Success: true,
		Results: results,
	})
}
