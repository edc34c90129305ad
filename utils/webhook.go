package utils

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Fire-and-forget event webhook for the care-team dashboard. Configure
// NOTIFY_WEBHOOK_URL (plus optional NOTIFY_API_KEY) to enable; without it
// events are logged and dropped. Delivery is never guaranteed and failures
// never surface to callers.

func NotifyEvent(event string, payload map[string]interface{}) {
	url := os.Getenv("NOTIFY_WEBHOOK_URL")
	if url == "" {
		log.Printf("[notify] no webhook URL set; skipping %s", event)
		return
	}
	body := map[string]interface{}{
		"event":     event,
		"source":    "immate",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range payload {
		body[k] = v
	}
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("[notify] marshal %s failed: %v", event, err)
		return
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		log.Printf("[notify] build request for %s failed: %v", event, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if key := os.Getenv("NOTIFY_API_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("[notify] webhook error for %s: %v", event, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[notify] webhook responded %d for %s: %s", resp.StatusCode, event, string(b))
	}
}

// NotifySubmissionReceived tells the care team a resident submitted proof.
func NotifySubmissionReceived(taskID uint, taskName, residentID string, submissionID uint, recordedAt time.Time) {
	NotifyEvent("submission_received", map[string]interface{}{
		"task_id":       taskID,
		"task_name":     taskName,
		"resident_id":   residentID,
		"submission_id": submissionID,
		"recorded_at":   recordedAt.UTC().Format(time.RFC3339),
		"message":       "Resident submitted proof; ready for validation.",
	})
}

// NotifyCheckTriggered tells the care team a submission was reviewed.
func NotifyCheckTriggered(taskID uint, taskName, residentID string, submissionID uint, status string, starsAwarded int) {
	msg := "Task marked fail."
	if status == "pass" {
		msg = "Task validated; check complete. Stars awarded."
	}
	NotifyEvent("check_triggered", map[string]interface{}{
		"task_id":       taskID,
		"task_name":     taskName,
		"resident_id":   residentID,
		"submission_id": submissionID,
		"status":        status,
		"stars_awarded": starsAwarded,
		"message":       msg,
	})
}
