package models

import "time"

// ChatHistory is one persisted conversation. Owned by exactly one user and
// stored under a per-user namespace keyed by ID. LastUpdated is the sort key
// for listing and never precedes CreatedAt.
type ChatHistory struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Messages    []ChatMessage `json:"messages"`
	ModelID     string        `json:"modelId"`
	CreatedAt   time.Time     `json:"createdAt"`
	LastUpdated time.Time     `json:"lastUpdated"`
}
