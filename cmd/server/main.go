package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"echomind-backend/internal/config"
	"echomind-backend/internal/database"
	"echomind-backend/internal/handlers"
	"echomind-backend/internal/middleware"
	"echomind-backend/internal/provider"
	"echomind-backend/internal/repository"
	"echomind-backend/internal/router"
	"echomind-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting EchoMind Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: History Store (PostgreSQL or in-memory) ────
	var historyStores services.HistoryStoreFactory
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		log.Println("✓ PostgreSQL connected")

		if err := database.RunMigrations(pool, "migrations"); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		log.Println("✓ Database migrations applied")

		historyStores = repository.NewHistoryRepo(pool)
	} else {
		historyStores = repository.NewMemoryHistory()
		log.Println("⚠ DATABASE_URL not set, chat histories are in-memory only")
	}

	// ──── Step 3: Redis FAQ Cache (optional) ────
	redisCache, err := database.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	if redisCache != nil {
		defer redisCache.Close()
		log.Println("✓ Redis connected")
	} else {
		log.Println("⚠ REDIS_URL not set, FAQ caching disabled")
	}

	// ──── Step 4: Completion Provider ────
	var completionProvider provider.Provider
	switch {
	case cfg.GroqAPIKey != "":
		completionProvider = provider.NewGroqProvider(cfg.GroqAPIKey)
		log.Println("✓ Groq completion provider configured")
	case cfg.GeminiAPIKey != "":
		gemini, err := provider.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer gemini.Close()
		completionProvider = gemini
		log.Println("✓ Gemini completion provider configured")
	default:
		log.Println("⚠ No provider credential set, serving deterministic mock replies")
	}

	// ──── Initialize Services ────
	gateway := services.NewGateway(completionProvider, cfg.ProviderConcurrentReqs)
	faqService := services.NewFaqService(redisCache)
	sessionManager := services.NewSessionManager(gateway, historyStores)
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(gateway)
	conversationHandler := handlers.NewConversationHandler(sessionManager)
	faqHandler := handlers.NewFaqHandler(faqService)
	historyHandler := handlers.NewHistoryHandler(historyStores)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(jwtAuth, chatHandler, conversationHandler, faqHandler, historyHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // completions can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		sessionManager.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ EchoMind Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
