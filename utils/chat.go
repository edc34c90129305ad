package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/AshOynk/immate/models"
)

// Wellbeing check-in chat adapter. Shares the assessor's API credentials;
// without a key canned replies keep the check-in usable.

var moodGuidance = map[string]string{
	"sad":     "The resident selected they are feeling sad. Be warm, gentle and supportive. Invite them to share what's on their mind if they want to, but don't push.",
	"low":     "The resident selected they are feeling low. Offer gentle support. Ask if they'd like to talk about their day or what might help.",
	"neutral": "The resident selected they feel okay. Gently invite them to share how their day has been.",
	"good":    "The resident selected they are doing good. Ask what's been going well and help them notice positive moments.",
	"happy":   "The resident selected they are happy. Celebrate with them and ask what went well.",
}

const (
	fallbackFirstReply = "Thanks for checking in. I'm here if you'd like to share how your day has been—type or speak whenever you're ready."
	fallbackNextReply  = "I hear you. Thanks for sharing. Is there anything else you'd like to say?"
)

type chatAPIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatAPIRequest struct {
	Model     string           `json:"model"`
	MaxTokens int              `json:"max_tokens"`
	System    string           `json:"system,omitempty"`
	Messages  []chatAPIMessage `json:"messages"`
}

func callChatAPI(system string, messages []chatAPIMessage) (string, error) {
	apiKey := os.Getenv("ASSESSOR_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("ASSESSOR_API_KEY not set")
	}
	model := os.Getenv("ASSESSOR_MODEL")
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	reqBody := chatAPIRequest{Model: model, MaxTokens: 256, System: system, Messages: messages}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	url := os.Getenv("ASSESSOR_API_URL")
	if url == "" {
		url = "https://api.anthropic.com/v1/messages"
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned status %d", resp.StatusCode)
	}
	var parsed assessorResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	for _, c := range parsed.Content {
		if c.Type == "text" && c.Text != "" {
			return c.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in chat response")
}

func welfareSystemPrompt(mood, name string) string {
	guidance, ok := moodGuidance[mood]
	if !ok {
		guidance = moodGuidance["neutral"]
	}
	namePart := ""
	if name != "" {
		namePart = " Their name is " + name + "."
	}
	return "You are a warm, supportive welfare check-in assistant." + namePart +
		" Mood they selected: " + mood + ". " + guidance +
		" The resident may use voice-to-text, so interpret informal language and spelling kindly." +
		" Keep replies concise (2-4 sentences). Do not diagnose or give medical advice."
}

// FirstWelfareMessage generates the assistant's opening message after the
// resident selects a mood.
func FirstWelfareMessage(mood, name string) string {
	system := welfareSystemPrompt(mood, name)
	reply, err := callChatAPI(system, []chatAPIMessage{{
		Role:    "user",
		Content: "Generate your opening message to the resident after they selected their mood. They have not written anything yet.",
	}})
	if err != nil {
		log.Printf("[welfare] first message fallback: %v", err)
		return fallbackFirstReply
	}
	return reply
}

// NextWelfareMessage continues the check-in conversation with the resident's
// latest message appended.
func NextWelfareMessage(checkIn *models.WelfareCheckIn, userText string) string {
	system := welfareSystemPrompt(checkIn.Mood, checkIn.Name)
	messages := make([]chatAPIMessage, 0, len(checkIn.Conversation)+1)
	for _, t := range checkIn.Conversation {
		messages = append(messages, chatAPIMessage{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, chatAPIMessage{Role: "user", Content: userText})
	reply, err := callChatAPI(system, messages)
	if err != nil {
		log.Printf("[welfare] reply fallback: %v", err)
		return fallbackNextReply
	}
	return reply
}
