package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"echomind-backend/internal/models"
	"echomind-backend/internal/services"
)

// HistoryRepo stores conversations in the chats table, one row per
// conversation, messages as JSONB. Every instance is scoped to one user via
// ForUser; the unscoped base degrades to no-ops rather than erroring, per
// the HistoryStore contract.
type HistoryRepo struct {
	pool   *pgxpool.Pool
	userID string
}

func NewHistoryRepo(pool *pgxpool.Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

func (r *HistoryRepo) ForUser(userID string) services.HistoryStore {
	return &HistoryRepo{pool: r.pool, userID: userID}
}

func (r *HistoryRepo) Create(ctx context.Context, messages []models.ChatMessage, title, modelID string) (string, error) {
	if r.userID == "" {
		return "", nil
	}

	id := uuid.NewString()
	messagesJSON, err := json.Marshal(messages)
	if err != nil {
		return "", fmt.Errorf("failed to encode messages: %w", err)
	}
	if title == "" {
		title = "新對話"
	}
	if modelID == "" {
		modelID = "default"
	}

	query := `INSERT INTO chats (id, user_id, title, messages, model_id, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	if _, err := r.pool.Exec(ctx, query, id, r.userID, title, messagesJSON, modelID); err != nil {
		return "", fmt.Errorf("failed to create chat: %w", err)
	}
	return id, nil
}

func (r *HistoryRepo) Update(ctx context.Context, id string, messages []models.ChatMessage, title, modelID string) (bool, error) {
	if r.userID == "" || id == "" {
		return false, nil
	}

	messagesJSON, err := json.Marshal(messages)
	if err != nil {
		return false, fmt.Errorf("failed to encode messages: %w", err)
	}

	// Messages are replaced wholesale; title and model only when supplied.
	query := `UPDATE chats SET
			messages = $1,
			title = COALESCE(NULLIF($2, ''), title),
			model_id = COALESCE(NULLIF($3, ''), model_id),
			last_updated = NOW()
		WHERE id = $4 AND user_id = $5`

	tag, err := r.pool.Exec(ctx, query, messagesJSON, title, modelID, id, r.userID)
	if err != nil {
		return false, fmt.Errorf("failed to update chat: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *HistoryRepo) Get(ctx context.Context, id string) (*models.ChatHistory, error) {
	if r.userID == "" || id == "" {
		return nil, nil
	}

	h := &models.ChatHistory{}
	var messagesJSON []byte
	query := `SELECT id, title, messages, model_id, created_at, last_updated
		FROM chats WHERE id = $1 AND user_id = $2`

	err := r.pool.QueryRow(ctx, query, id, r.userID).Scan(
		&h.ID, &h.Title, &messagesJSON, &h.ModelID, &h.CreatedAt, &h.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	if err := json.Unmarshal(messagesJSON, &h.Messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return h, nil
}

func (r *HistoryRepo) List(ctx context.Context) ([]*models.ChatHistory, error) {
	if r.userID == "" {
		return nil, nil
	}

	query := `SELECT id, title, messages, model_id, created_at, last_updated
		FROM chats WHERE user_id = $1 ORDER BY last_updated DESC`

	rows, err := r.pool.Query(ctx, query, r.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []*models.ChatHistory
	for rows.Next() {
		h := &models.ChatHistory{}
		var messagesJSON []byte
		if err := rows.Scan(&h.ID, &h.Title, &messagesJSON, &h.ModelID, &h.CreatedAt, &h.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		if err := json.Unmarshal(messagesJSON, &h.Messages); err != nil {
			return nil, fmt.Errorf("failed to decode messages: %w", err)
		}
		chats = append(chats, h)
	}
	return chats, rows.Err()
}

func (r *HistoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	if r.userID == "" || id == "" {
		return false, nil
	}

	tag, err := r.pool.Exec(ctx, "DELETE FROM chats WHERE id = $1 AND user_id = $2", id, r.userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete chat: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
