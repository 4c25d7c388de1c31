package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"echomind-backend/internal/models"
	"echomind-backend/internal/services"
)

// MemoryHistory is the in-process HistoryStore used when no DATABASE_URL is
// configured, mirroring how the gateway degrades to the mock responder. Data
// lives for the lifetime of the process only.
type MemoryHistory struct {
	mu     *sync.RWMutex
	chats  map[string]map[string]*models.ChatHistory // userID -> chatID -> chat
	userID string
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		mu:    &sync.RWMutex{},
		chats: make(map[string]map[string]*models.ChatHistory),
	}
}

func (m *MemoryHistory) ForUser(userID string) services.HistoryStore {
	return &MemoryHistory{mu: m.mu, chats: m.chats, userID: userID}
}

func (m *MemoryHistory) Create(ctx context.Context, messages []models.ChatMessage, title, modelID string) (string, error) {
	if m.userID == "" {
		return "", nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if title == "" {
		title = "新對話"
	}
	if modelID == "" {
		modelID = "default"
	}

	now := time.Now()
	h := &models.ChatHistory{
		ID:          uuid.NewString(),
		Title:       title,
		Messages:    append([]models.ChatMessage(nil), messages...),
		ModelID:     modelID,
		CreatedAt:   now,
		LastUpdated: now,
	}

	if m.chats[m.userID] == nil {
		m.chats[m.userID] = make(map[string]*models.ChatHistory)
	}
	m.chats[m.userID][h.ID] = h
	return h.ID, nil
}

func (m *MemoryHistory) Update(ctx context.Context, id string, messages []models.ChatMessage, title, modelID string) (bool, error) {
	if m.userID == "" || id == "" {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.chats[m.userID][id]
	if !ok {
		return false, nil
	}

	h.Messages = append([]models.ChatMessage(nil), messages...)
	if title != "" {
		h.Title = title
	}
	if modelID != "" {
		h.ModelID = modelID
	}
	h.LastUpdated = time.Now()
	return true, nil
}

func (m *MemoryHistory) Get(ctx context.Context, id string) (*models.ChatHistory, error) {
	if m.userID == "" || id == "" {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.chats[m.userID][id]
	if !ok {
		return nil, nil
	}
	copied := *h
	copied.Messages = append([]models.ChatMessage(nil), h.Messages...)
	return &copied, nil
}

func (m *MemoryHistory) List(ctx context.Context) ([]*models.ChatHistory, error) {
	if m.userID == "" {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var chats []*models.ChatHistory
	for _, h := range m.chats[m.userID] {
		copied := *h
		copied.Messages = append([]models.ChatMessage(nil), h.Messages...)
		chats = append(chats, &copied)
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].LastUpdated.After(chats[j].LastUpdated)
	})
	return chats, nil
}

func (m *MemoryHistory) Delete(ctx context.Context, id string) (bool, error) {
	if m.userID == "" || id == "" {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.chats[m.userID][id]; !ok {
		return false, nil
	}
	delete(m.chats[m.userID], id)
	return true, nil
}
