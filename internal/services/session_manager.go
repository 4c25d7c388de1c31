package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"echomind-backend/internal/models"
)

const sessionIdleTimeout = 30 * time.Minute

// SessionNotFoundError is returned when a caller references a session id that
// has expired or never existed under their user.
type SessionNotFoundError struct{ SessionID string }

func (e *SessionNotFoundError) Error() string { return "session not found: " + e.SessionID }

type managedSession struct {
	mu         sync.Mutex // serializes turns on one conversation
	session    *Session
	transcript []models.ChatMessage
	userID     string
	lastUsed   time.Time
}

// SessionManager keeps server-side conversation state between HTTP turns.
// Anonymous sessions live only in memory and vanish on eviction; sessions of
// authenticated users persist through their Session's history queue.
type SessionManager struct {
	gateway *Gateway
	stores  HistoryStoreFactory // nil when no persistence backend is configured

	mu       sync.Mutex
	sessions map[string]*managedSession
	stop     chan struct{}
}

func NewSessionManager(gateway *Gateway, stores HistoryStoreFactory) *SessionManager {
	m := &SessionManager{
		gateway:  gateway,
		stores:   stores,
		sessions: make(map[string]*managedSession),
		stop:     make(chan struct{}),
	}
	go m.evictLoop()
	return m
}

// ConverseResult is one completed turn of a managed conversation.
type ConverseResult struct {
	SessionID string                  `json:"session_id"`
	ChatID    string                  `json:"chat_id,omitempty"`
	Messages  []models.ChatMessage    `json:"messages"`
	Result    models.CompletionResult `json:"-"`
}

// Converse runs one turn. An empty sessionID starts a new conversation;
// chatID optionally resumes a persisted one. userID is "" for anonymous
// callers, whose transcripts are never persisted.
func (m *SessionManager) Converse(ctx context.Context, userID, sessionID, chatID, input, modelID string) (*ConverseResult, error) {
	entry, sessionID, err := m.entryFor(ctx, userID, sessionID, chatID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	transcript, result := entry.session.Submit(ctx, entry.transcript, input, modelID)
	entry.transcript = transcript
	entry.lastUsed = time.Now()

	return &ConverseResult{
		SessionID: sessionID,
		ChatID:    entry.session.ChatID(),
		Messages:  transcript,
		Result:    result,
	}, nil
}

func (m *SessionManager) entryFor(ctx context.Context, userID, sessionID, chatID string) (*managedSession, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID != "" {
		entry, ok := m.sessions[sessionID]
		if !ok || entry.userID != userID {
			return nil, "", &SessionNotFoundError{SessionID: sessionID}
		}
		return entry, sessionID, nil
	}

	var store HistoryStore
	if userID != "" && m.stores != nil {
		store = m.stores.ForUser(userID)
	}

	entry := &managedSession{
		session:  NewSession(m.gateway, store, chatID),
		userID:   userID,
		lastUsed: time.Now(),
	}
	if chatID != "" && store != nil {
		// Resuming: seed the transcript from the persisted conversation.
		if history, err := store.Get(ctx, chatID); err == nil && history != nil {
			entry.transcript = history.Messages
		}
	}

	sessionID = uuid.NewString()
	m.sessions[sessionID] = entry
	return entry, sessionID, nil
}

// Close stops the eviction loop and drains every session's pending writes.
func (m *SessionManager) Close() {
	close(m.stop)
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*managedSession)
	m.mu.Unlock()
	for _, entry := range sessions {
		entry.session.Close()
	}
}

func (m *SessionManager) evictLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			for id, entry := range m.sessions {
				// A held entry lock means a turn is in flight, so the
				// session is not idle regardless of lastUsed.
				if !entry.mu.TryLock() {
					continue
				}
				idle := time.Since(entry.lastUsed) > sessionIdleTimeout
				entry.mu.Unlock()
				if idle {
					delete(m.sessions, id)
					go entry.session.Close()
				}
			}
			m.mu.Unlock()
		}
	}
}
