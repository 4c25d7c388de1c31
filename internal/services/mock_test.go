package services

import (
	"strings"
	"testing"

	"echomind-backend/internal/models"
)

func TestMockResponse_GreetingBranch(t *testing.T) {
	messages := []models.ChatMessage{
		{Role: models.RoleUser, Content: "你好"},
	}

	resp := MockResponse(messages, "llama-3.1-8b-instant")

	if len(resp.Choices) != 1 {
		t.Fatalf("Expected 1 choice, got %d", len(resp.Choices))
	}
	content := resp.Choices[0].Message.Content
	if !strings.Contains(content, "很高興為您服務") {
		t.Errorf("Expected greeting reply, got %q", content)
	}
	if resp.Choices[0].FinishReason != "stop" {
		t.Errorf("Expected finish_reason 'stop', got %q", resp.Choices[0].FinishReason)
	}
}

func TestMockResponse_KeywordRules(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"courses", "請問有哪些課程？", "多樣化的課程"},
		{"capstone", "專題怎麼準備", "專題是培養實務能力的重要環節"},
		{"careers", "畢業後的就業方向", "多元的就業方向"},
		{"faculty", "系上的教授有哪些", "優秀的師資陣容"},
		{"certifications", "可以考什麼證照", "多種專業證照"},
		{"labs", "有哪些實驗室", "多個專業實驗室"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			messages := []models.ChatMessage{{Role: models.RoleUser, Content: tc.input}}
			content := MockResponse(messages, "default").FirstChoiceContent()
			if !strings.Contains(content, tc.expected) {
				t.Errorf("Expected reply containing %q, got %q", tc.expected, content)
			}
		})
	}
}

func TestMockResponse_FallbackEchoesInput(t *testing.T) {
	input := "量子電腦的原理是什麼"
	messages := []models.ChatMessage{{Role: models.RoleUser, Content: input}}

	content := MockResponse(messages, "default").FirstChoiceContent()

	if !strings.Contains(content, input) {
		t.Errorf("Expected fallback to echo %q, got %q", input, content)
	}
}

func TestMockResponse_Deterministic(t *testing.T) {
	messages := []models.ChatMessage{
		{Role: models.RoleUser, Content: "嗨"},
		{Role: models.RoleAssistant, Content: "您好！"},
		{Role: models.RoleUser, Content: "有推薦的社團嗎"},
	}

	first := MockResponse(messages, "default")
	second := MockResponse(messages, "default")

	if first.Choices[0].Message.Content != second.Choices[0].Message.Content {
		t.Error("Expected identical content on repeated calls")
	}
	if first.ID != second.ID || first.Created != second.Created {
		t.Error("Expected identical metadata on repeated calls")
	}
	if first.Usage != second.Usage {
		t.Error("Expected identical usage on repeated calls")
	}
}

func TestMockResponse_UsesLastUserMessage(t *testing.T) {
	messages := []models.ChatMessage{
		{Role: models.RoleUser, Content: "你好"},
		{Role: models.RoleAssistant, Content: "您好！很高興為您服務。"},
		{Role: models.RoleUser, Content: "研究所的資訊"},
	}

	content := MockResponse(messages, "default").FirstChoiceContent()

	if !strings.Contains(content, "繼續深造") {
		t.Errorf("Expected graduate-school reply for last user message, got %q", content)
	}
}

func TestMockResponse_NoUserMessage(t *testing.T) {
	resp := MockResponse(nil, "default")

	if resp.FirstChoiceContent() == "" {
		t.Error("Expected non-empty placeholder reply for empty input")
	}
}
