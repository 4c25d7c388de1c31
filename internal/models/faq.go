package models

// FaqEntry is one entry of the static FAQ corpus. Score is a curated prior
// in [0,1]; the relevance ranker overwrites it with the combined score.
type FaqEntry struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Score    float64  `json:"score"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// FaqSearchRequest is the payload accepted by the FAQ endpoint.
type FaqSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// FaqSearchResponse is the FAQ endpoint envelope.
type FaqSearchResponse struct {
	Success bool       `json:"success"`
	Results []FaqEntry `json:"results,omitempty"`
	Error   *ChatError `json:"error,omitempty"`
}
