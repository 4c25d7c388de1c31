package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"echomind-backend/internal/models"
)

const persistTimeout = 10 * time.Second

type persistJob struct {
	messages []models.ChatMessage
	title    string
	modelID  string
}

// Session orchestrates one conversation: it appends the user message, calls
// the gateway, appends the assistant reply and schedules fire-and-forget
// persistence. Persistence runs on a single per-conversation goroutine so
// writes land in turn order and a slow create can never be clobbered by a
// faster later update.
//
// Callers hold the single-flight contract: at most one Submit in flight per
// session at a time.
type Session struct {
	gateway *Gateway
	store   HistoryStore // nil for anonymous sessions

	mu     sync.Mutex
	chatID string
	closed bool

	jobs      chan persistJob
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession builds a session. store is nil for anonymous callers; chatID is
// non-empty when resuming a previously persisted conversation.
func NewSession(gateway *Gateway, store HistoryStore, chatID string) *Session {
	s := &Session{
		gateway: gateway,
		store:   store,
		chatID:  chatID,
		jobs:    make(chan persistJob, 16),
		done:    make(chan struct{}),
	}
	if store != nil {
		go s.persistWorker()
	} else {
		close(s.done)
	}
	return s
}

// ChatID returns the persisted conversation id, or "" until the first
// create has completed (or forever, for anonymous sessions).
func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatID
}

// Close stops accepting persistence work and waits for queued writes to
// drain. Safe to call more than once, and a Submit racing with Close only
// loses its snapshot, never panics.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.jobs)
	})
	<-s.done
}

// Submit appends a new user message to the transcript, runs one gateway
// call and appends the assistant reply. On failure the transcript keeps the
// user message so the UI can offer a retry. The returned transcript is
// always the authoritative in-memory state; persistence happens later and
// never affects it.
func (s *Session) Submit(ctx context.Context, transcript []models.ChatMessage, input, modelID string) ([]models.ChatMessage, models.CompletionResult) {
	now := time.Now().UnixMilli()
	userMessage := models.ChatMessage{
		Role:      models.RoleUser,
		Content:   input,
		ID:        uuid.NewString(),
		CreatedAt: now,
	}

	updated := make([]models.ChatMessage, 0, len(transcript)+2)
	updated = append(updated, transcript...)
	updated = append(updated, userMessage)

	// Ids and timestamps stay on this side of the client boundary.
	apiMessages := make([]models.ChatMessage, len(updated))
	for i, m := range updated {
		apiMessages[i] = models.ChatMessage{Role: m.Role, Content: m.Content}
	}

	result := s.gateway.Complete(ctx, models.CompletionRequest{
		Messages: apiMessages,
		Model:    modelID,
	})
	if !result.Success {
		return updated, result
	}

	assistantMessage := models.ChatMessage{
		Role:      models.RoleAssistant,
		Content:   result.Data.FirstChoiceContent(),
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UnixMilli(),
	}
	final := append(updated, assistantMessage)

	if s.store != nil {
		s.schedule(persistJob{
			messages: append([]models.ChatMessage(nil), final...),
			title:    deriveTitle(input),
			modelID:  modelID,
		})
	}

	return final, result
}

// schedule hands a snapshot of the transcript to the persistence worker
// without ever blocking the caller. The send happens under s.mu so it can
// never race with Close closing the channel.
func (s *Session) schedule(job persistJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		log.Printf("history persistence queue closed, dropping snapshot")
		return
	}
	select {
	case s.jobs <- job:
	default:
		// Queue full: the next snapshot supersedes this one anyway.
		log.Printf("history persistence queue full, dropping snapshot")
	}
}

func (s *Session) persistWorker() {
	defer close(s.done)
	for job := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)

		s.mu.Lock()
		chatID := s.chatID
		s.mu.Unlock()

		if chatID == "" {
			id, err := s.store.Create(ctx, job.messages, job.title, job.modelID)
			if err != nil {
				log.Printf("failed to create chat history: %v", err)
			} else if id != "" {
				s.mu.Lock()
				s.chatID = id
				s.mu.Unlock()
			}
		} else {
			if ok, err := s.store.Update(ctx, chatID, job.messages, "", job.modelID); err != nil {
				log.Printf("failed to update chat history %s: %v", chatID, err)
			} else if !ok {
				log.Printf("chat history %s no longer exists, skipping update", chatID)
			}
		}
		cancel()
	}
}

// deriveTitle builds a conversation title from the first user input,
// truncated to 30 runes.
func deriveTitle(input string) string {
	runes := []rune(input)
	if len(runes) > 30 {
		return string(runes[:30]) + "..."
	}
	return input
}
