package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"echomind-backend/internal/handlers"
	"echomind-backend/internal/middleware"
	"echomind-backend/internal/repository"
	"echomind-backend/internal/services"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	gateway := services.NewGateway(nil, 5)
	store := repository.NewMemoryHistory()
	sessions := services.NewSessionManager(gateway, store)
	t.Cleanup(sessions.Close)

	return New(
		middleware.NewJWTAuth("test-secret"),
		handlers.NewChatHandler(gateway),
		handlers.NewConversationHandler(sessions),
		handlers.NewFaqHandler(services.NewFaqService(nil)),
		handlers.NewHistoryHandler(store),
	)
}

func TestRouter_Health(t *testing.T) {
	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("Unexpected health body: %s", rr.Body.String())
	}
}

func TestRouter_ChatWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"messages":[{"role":"user","content":"你好"}]}`))
	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected anonymous chat to work, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRouter_ChatPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}
}

func TestRouter_FaqIsPublic(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/faq", strings.NewReader(`{"query":"密碼"}`))
	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRouter_ChatsRequireAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/", nil)
	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", rr.Code)
	}
}

func TestRouter_ChatsWithToken(t *testing.T) {
	auth := middleware.NewJWTAuth("test-secret")
	token, err := auth.GenerateAccessToken("user-1")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 with token, got %d: %s", rr.Code, rr.Body.String())
	}
}
