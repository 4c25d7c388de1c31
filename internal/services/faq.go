package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"

	"echomind-backend/internal/models"
)

// DefaultFaqLimit caps result lists when the caller does not pass a limit.
const DefaultFaqLimit = 5

const faqCacheTTL = 10 * time.Minute

// FaqCorpus is the static, read-only FAQ set searched by the ranker.
var FaqCorpus = []models.FaqEntry{
	{
		ID:       "faq-1",
		Question: "如何重置我的密碼？",
		Answer:   "點擊登入頁面的「忘記密碼」連結，然後按照指示進行操作。您將收到一封包含重置密碼連結的電子郵件。",
		Score:    0.95,
		Category: "帳戶",
		Tags:     []string{"密碼", "登入", "帳戶安全"},
	},
	{
		ID:       "faq-2",
		Question: "如何更新我的個人資料？",
		Answer:   "登入後，點擊右上角的頭像，選擇「個人資料」，然後點擊「編輯資料」按鈕進行修改。",
		Score:    0.92,
		Category: "帳戶",
		Tags:     []string{"個人資料", "設定"},
	},
	{
		ID:       "faq-3",
		Question: "應用程式支援哪些語言？",
		Answer:   "目前我們支援繁體中文和英文兩種語言。您可以在設定中切換語言。",
		Score:    0.88,
		Category: "功能",
		Tags:     []string{"語言", "設定", "本地化"},
	},
	{
		ID:       "faq-4",
		Question: "如何刪除我的帳戶？",
		Answer:   "登入後，前往「設定」>「帳戶」>「刪除帳戶」。請注意，帳戶刪除後所有資料將無法恢復。",
		Score:    0.85,
		Category: "帳戶",
		Tags:     []string{"刪除帳戶", "隱私"},
	},
	{
		ID:       "faq-5",
		Question: "客戶服務的聯繫方式？",
		Answer:   "您可以發送電子郵件至 support@example.com 或在工作時間（週一至週五 9:00-18:00）撥打 02-1234-5678。",
		Score:    0.82,
		Category: "支援",
		Tags:     []string{"客服", "聯繫"},
	},
	{
		ID:       "faq-6",
		Question: "如何變更訂閱計劃？",
		Answer:   "登入後，前往「設定」>「訂閱」，然後選擇「變更計劃」。根據您的當前訂閱狀態，可能會有不同的升級或降級選項。",
		Score:    0.79,
		Category: "訂閱",
		Tags:     []string{"付款", "計劃", "訂閱"},
	},
	{
		ID:       "faq-7",
		Question: "應用程式如何處理我的個人資料？",
		Answer:   "我們非常重視您的隱私。所有個人資料都按照我們的隱私政策進行處理，您可以在「設定」>「隱私」中查閱詳細內容。",
		Score:    0.76,
		Category: "隱私",
		Tags:     []string{"資料", "隱私", "GDPR"},
	},
}

// SearchFaq ranks entries against a free-text query and returns up to limit
// results with Score overwritten by the combined score. Pure function, no
// I/O; empty-query rejection is the caller's job.
//
// matchScore adds 0.2 per matching token without a cap or de-duplication, so
// long repetitive queries can push it past 1. Kept as-is; the combined score
// is a ranking key, not a probability.
func SearchFaq(query string, entries []models.FaqEntry, limit int) []models.FaqEntry {
	if limit <= 0 {
		limit = DefaultFaqLimit
	}

	normalizedQuery := strings.ToLower(query)
	queryWords := strings.Fields(normalizedQuery)

	scored := make([]models.FaqEntry, len(entries))
	for i, entry := range entries {
		normalizedQuestion := strings.ToLower(entry.Question)

		matchScore := 0.0
		if strings.Contains(normalizedQuestion, normalizedQuery) {
			matchScore += 0.5
		}
		for _, word := range queryWords {
			// Token length is counted in characters, not bytes, so short
			// CJK tokens stay below the threshold.
			if utf8.RuneCountInString(word) > 2 && strings.Contains(normalizedQuestion, word) {
				matchScore += 0.2
			}
		}

		entry.Score = entry.Score*0.7 + matchScore*0.3
		scored[i] = entry
	}

	// Stable: ties keep corpus order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// FaqService wraps the ranker with an optional Redis result cache. The cache
// is best effort: any cache failure falls through to a fresh ranking pass.
type FaqService struct {
	cache *redis.Client // nil disables caching
}

func NewFaqService(cache *redis.Client) *FaqService {
	return &FaqService{cache: cache}
}

func (s *FaqService) Search(ctx context.Context, query string, limit int) []models.FaqEntry {
	if limit <= 0 {
		limit = DefaultFaqLimit
	}

	key := fmt.Sprintf("faq:%d:%s", limit, strings.ToLower(query))
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Result(); err == nil {
			var cached []models.FaqEntry
			if err := json.Unmarshal([]byte(data), &cached); err == nil {
				return cached
			}
		}
	}

	results := SearchFaq(query, FaqCorpus, limit)

	if s.cache != nil {
		data, _ := json.Marshal(results)
		if err := s.cache.Set(ctx, key, data, faqCacheTTL).Err(); err != nil {
			log.Printf("faq cache write failed: %v", err)
		}
	}
	return results
}
