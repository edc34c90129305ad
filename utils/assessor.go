package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/AshOynk/immate/models"
)

// maxAssessorFrames caps how many key frames are sent for analysis.
const maxAssessorFrames = 5

type assessorImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type assessorContent struct {
	Type   string               `json:"type"`
	Text   string               `json:"text,omitempty"`
	Source *assessorImageSource `json:"source,omitempty"`
}

type assessorMessage struct {
	Role    string            `json:"role"`
	Content []assessorContent `json:"content"`
}

type assessorRequest struct {
	Model     string            `json:"model"`
	MaxTokens int               `json:"max_tokens"`
	Messages  []assessorMessage `json:"messages"`
}

type assessorResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

var reCodeFence = regexp.MustCompile("```(?:json)?\\s*|\\s*```")

// AnalyzeFrames sends up to five key frames plus the recording-start time to
// the vision model and returns its quality/liveness verdict.
//
// Fallback policy: with no API key configured the check is skipped and passes
// (fail open); a configured call that errors fails the assessment (fail
// closed). Errors are always absorbed into the returned assessment, never
// surfaced to the submitter.
func AnalyzeFrames(frames []string, recordedAt time.Time) models.AIAssessment {
	apiKey := os.Getenv("ASSESSOR_API_KEY")
	if apiKey == "" {
		return models.AIAssessment{
			Passed:         true,
			QualitySummary: "AI check skipped (no API key).",
			AppearsLive:    true,
		}
	}
	if len(frames) == 0 {
		return models.AIAssessment{
			Passed:         false,
			QualitySummary: "No frames provided for analysis.",
			AppearsLive:    false,
			Issues:         []string{"Missing frame data"},
		}
	}
	if len(frames) > maxAssessorFrames {
		frames = frames[:maxAssessorFrames]
	}

	prompt := fmt.Sprintf(`You are a proof-of-task video checker. These are %d key frames (in order) from a resident's proof video. The submission claims it was recorded live at: %s.

Tasks:
1. Quality: Assess clarity, lighting, and whether the content is usable for review. Note any issues (e.g. too dark, blurry, no visible subject).
2. Live recording: Decide if the frames appear to be from a single continuous live recording (consistent setting, same environment, no obvious cuts or different locations).
3. Issues: List any notable timestamps or issues.

Respond with a single JSON object only, no markdown or extra text, with these exact keys:
- "passed" (boolean): true only if quality is acceptable AND appearsLive is true
- "qualitySummary" (string): 1-2 sentence summary
- "appearsLive" (boolean): true if it looks like one continuous live recording
- "issues" (array of strings): list of notable timestamps or issues`,
		len(frames), recordedAt.UTC().Format(time.RFC3339))

	content := []assessorContent{{Type: "text", Text: prompt}}
	for _, f := range frames {
		content = append(content, assessorContent{
			Type: "image",
			Source: &assessorImageSource{
				Type:      "base64",
				MediaType: "image/jpeg",
				Data:      f,
			},
		})
	}

	model := os.Getenv("ASSESSOR_MODEL")
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	reqBody := assessorRequest{
		Model:     model,
		MaxTokens: 1024,
		Messages:  []assessorMessage{{Role: "user", Content: content}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return failedAssessment("request encode failed: " + err.Error())
	}

	url := os.Getenv("ASSESSOR_API_URL")
	if url == "" {
		url = "https://api.anthropic.com/v1/messages"
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return failedAssessment("request build failed: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return failedAssessment("request failed: " + err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return failedAssessment(fmt.Sprintf("API returned status %d", resp.StatusCode))
	}

	var parsed assessorResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return failedAssessment("response decode failed: " + err.Error())
	}
	var text string
	for _, c := range parsed.Content {
		if c.Type == "text" {
			text = c.Text
			break
		}
	}
	text = strings.TrimSpace(reCodeFence.ReplaceAllString(text, ""))

	var verdict struct {
		Passed         bool     `json:"passed"`
		QualitySummary string   `json:"qualitySummary"`
		AppearsLive    bool     `json:"appearsLive"`
		Issues         []string `json:"issues"`
	}
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		snippet := text
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return models.AIAssessment{
			Passed:         false,
			QualitySummary: "AI could not parse response.",
			AppearsLive:    false,
			Issues:         []string{snippet},
		}
	}
	return models.AIAssessment{
		Passed:         verdict.Passed,
		QualitySummary: verdict.QualitySummary,
		AppearsLive:    verdict.AppearsLive,
		Issues:         verdict.Issues,
	}
}

func failedAssessment(reason string) models.AIAssessment {
	return models.AIAssessment{
		Passed:         false,
		QualitySummary: "AI check failed: " + reason,
		AppearsLive:    false,
	}
}
