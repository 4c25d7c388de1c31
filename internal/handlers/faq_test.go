package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"echomind-backend/internal/models"
	"echomind-backend/internal/services"
)

func TestFaqSearch_RanksResults(t *testing.T) {
	handler := NewFaqHandler(services.NewFaqService(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/faq", strings.NewReader(`{"query":"如何重置我的密碼"}`))
	rr := httptest.NewRecorder()
	handler.Search(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.FaqSearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("Expected success, got error: %+v", resp.Error)
	}
	if len(resp.Results) != services.DefaultFaqLimit {
		t.Fatalf("Expected %d results, got %d", services.DefaultFaqLimit, len(resp.Results))
	}
	if resp.Results[0].ID != "faq-1" {
		t.Errorf("Expected faq-1 first, got %s", resp.Results[0].ID)
	}
}

func TestFaqSearch_CustomLimit(t *testing.T) {
	handler := NewFaqHandler(services.NewFaqService(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/faq", strings.NewReader(`{"query":"帳戶","limit":2}`))
	rr := httptest.NewRecorder()
	handler.Search(rr, req)

	var resp models.FaqSearchResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(resp.Results))
	}
}

func TestFaqSearch_EmptyQuery(t *testing.T) {
	handler := NewFaqHandler(services.NewFaqService(nil))

	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{}`},
		{"blank query", `{"query":"   "}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/faq", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			handler.Search(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", rr.Code)
			}
			var resp models.FaqSearchResponse
			json.NewDecoder(rr.Body).Decode(&resp)
			if resp.Success {
				t.Error("Expected failure envelope")
			}
			if resp.Error == nil || resp.Error.Message != "查詢內容不能為空" {
				t.Errorf("Expected empty-query message, got %+v", resp.Error)
			}
		})
	}
}

func TestFaqSearch_MalformedJSON(t *testing.T) {
	handler := NewFaqHandler(services.NewFaqService(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/faq", strings.NewReader("{broken"))
	rr := httptest.NewRecorder()
	handler.Search(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
	var resp models.FaqSearchResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error == nil || resp.Error.Message != "無效的請求格式" {
		t.Errorf("Expected malformed-request message, got %+v", resp.Error)
	}
}
