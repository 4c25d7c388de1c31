package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"echomind-backend/internal/handlers"
	"echomind-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	chatHandler *handlers.ChatHandler,
	conversationHandler *handlers.ConversationHandler,
	faqHandler *handlers.FaqHandler,
	historyHandler *handlers.HistoryHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)

	// Chat rate limiter (30 req/min per IP)
	chatLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Chat Routes (anonymous allowed) ────
		r.Group(func(r chi.Router) {
			r.Use(chatLimiter.Middleware)
			r.Use(jwtAuth.OptionalMiddleware)
			r.Post("/chat", chatHandler.Complete)
			r.Options("/chat", chatHandler.Preflight)
			r.Post("/conversation", conversationHandler.Converse)
		})

		// ──── FAQ Routes (public) ────
		r.Post("/faq", faqHandler.Search)

		// ──── Chat History Routes ────
		r.Route("/chats", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", historyHandler.List)
			r.Post("/", historyHandler.Create)
			r.Get("/{id}", historyHandler.Get)
			r.Put("/{id}", historyHandler.Update)
			r.Delete("/{id}", historyHandler.Delete)
		})
	})

	return r
}
