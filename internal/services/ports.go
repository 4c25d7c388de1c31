package services

import (
	"context"

	"echomind-backend/internal/models"
)

// HistoryStore is asynchronous CRUD over one user's conversations. Every
// method is scoped to the user the store was built for; a store with no user
// set returns empty/false results without erroring, so callers never have to
// special-case anonymous sessions.
type HistoryStore interface {
	Create(ctx context.Context, messages []models.ChatMessage, title, modelID string) (string, error)
	Update(ctx context.Context, id string, messages []models.ChatMessage, title, modelID string) (bool, error)
	Get(ctx context.Context, id string) (*models.ChatHistory, error)
	List(ctx context.Context) ([]*models.ChatHistory, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// HistoryStoreFactory hands out per-user scoped stores.
type HistoryStoreFactory interface {
	ForUser(userID string) HistoryStore
}
