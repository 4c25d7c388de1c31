package services

import (
	"fmt"
	"strings"

	"echomind-backend/internal/models"
)

// mockRule maps keyword substrings of the latest user message to a canned
// topic answer. Rules are evaluated in order; the first match wins.
type mockRule struct {
	keywords []string
	answer   string
}

var mockRules = []mockRule{
	{
		keywords: []string{"你好", "嗨", "哈囉"},
		answer:   "您好！很高興為您服務。我是輔仁大學資管系的AI助手EchoMind。有什麼我能幫助您的嗎？",
	},
	{
		keywords: []string{"課程", "學習", "教學"},
		answer:   "輔仁大學資管系提供多樣化的課程，包括程式設計、資料庫管理、網路應用等。如果您有特定課程的問題，可以告訴我更多細節。",
	},
	{
		keywords: []string{"專題", "專案", "project"},
		answer:   "資管系的專題是培養實務能力的重要環節。學生通常會在大三或大四時，組隊完成一個與資訊管理相關的專案，從需求分析、設計到實作都需要參與。",
	},
	{
		keywords: []string{"就業", "工作", "職涯"},
		answer:   "資管系畢業生有多元的就業方向，包括：系統分析師、程式開發、資料分析師、專案管理、數位行銷等。根據近年調查，本系畢業生就業率相當高。",
	},
	{
		keywords: []string{"老師", "教授", "師資"},
		answer:   "輔仁大學資管系擁有優秀的師資陣容，包括多位專精於不同領域的教授，如資料科學、人工智慧、電子商務、資訊安全等方面的專家。",
	},
	{
		keywords: []string{"實習", "產業實習", "實務經驗"},
		answer:   "輔仁大學資管系重視學生的實務經驗，提供產業實習機會，讓學生能在實際工作環境中應用所學知識，培養專業技能和工作態度，增加就業競爭力。",
	},
	{
		keywords: []string{"社團", "學生活動", "課外活動"},
		answer:   "輔仁大學提供豐富的學生活動和社團選擇，資管系學生可以參加相關的技術社團，如程式設計社、資料科學社等，也可以參與系上舉辦的各種活動，拓展人際關係和培養團隊合作能力。",
	},
	{
		keywords: []string{"考研", "研究所", "深造"},
		answer:   "許多資管系學生畢業後選擇繼續深造，可報考資訊管理、資訊工程、企業管理等相關研究所。本系畢業生在研究所的表現普遍優秀，歷年考取國內外知名大學的比例較高。",
	},
	{
		keywords: []string{"證照", "考證", "認證"},
		answer:   "資管系學生可以考取多種專業證照，如資料庫管理（Oracle、SQL Server）、網路（CCNA）、程式設計（OCPJP）、專案管理（PMP）、雲端服務（AWS、Azure）等證照，有助於提升就業競爭力。",
	},
	{
		keywords: []string{"國際交流", "交換生", "留學"},
		answer:   "輔仁大學與全球多所大學有合作關係，資管系學生可以申請交換生計畫，前往國外大學學習一學期或一學年，拓展國際視野，提升語言能力和跨文化溝通能力。",
	},
	{
		keywords: []string{"設備", "實驗室", "資源"},
		answer:   "資管系擁有多個專業實驗室，如雲端運算實驗室、資料科學實驗室、人工智慧實驗室等，提供先進的硬體設備和軟體資源，支援教學和研究需求。學生也可以使用這些資源進行專題研究和專案開發。",
	},
}

const mockPlaceholder = "您好"

// MockResponse produces the deterministic local reply used when no provider
// credential is configured. Same input always yields the same output: no
// randomness, no timestamps, fixed usage counters.
func MockResponse(messages []models.ChatMessage, model string) *models.ProviderResponse {
	content := lastUserContent(messages)
	if content == "" {
		content = mockPlaceholder
	}

	answer := ""
	for _, rule := range mockRules {
		for _, kw := range rule.keywords {
			if strings.Contains(content, kw) {
				answer = rule.answer
				break
			}
		}
		if answer != "" {
			break
		}
	}
	if answer == "" {
		// Echo the input back so it is obvious this is the offline path.
		answer = fmt.Sprintf("您好！我是輔仁大學資管系的AI助手EchoMind。您的訊息是：「%s」。我可以為您提供關於輔仁大學資管系的課程、師資、就業方向、專題等資訊。請問您想了解哪方面的內容呢？", content)
	}

	return &models.ProviderResponse{
		ID:      "mock-completion",
		Object:  "chat.completion",
		Created: 0,
		Model:   model,
		Choices: []models.Choice{
			{
				Message: models.ChatMessage{
					Role:    models.RoleAssistant,
					Content: answer,
				},
				FinishReason: "stop",
				Index:        0,
			},
		},
		Usage: models.Usage{},
	}
}

func lastUserContent(messages []models.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
