package residents

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/middleware"
	"github.com/AshOynk/immate/models"
	"github.com/AshOynk/immate/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recency window for live capture: generous backward (clock skew from the
// recording device is expected), tight forward (a future-dated recording is
// fabricated, not skewed).
const (
	maxRecordingAge    = 30 * time.Minute
	maxFutureRecording = time.Minute
)

type SubmitRequest struct {
	TaskID       uint       `json:"task_id"`
	ResidentID   string     `json:"resident_id" validate:"residentid"`
	Timestamp    *time.Time `json:"timestamp"`
	RecordedAt   *time.Time `json:"recorded_at"`
	VideoBase64  string     `json:"video_base64"`
	FramesBase64 []string   `json:"frames_base64"`
}

// validateRecency checks the claimed recording time against now. The age is
// measured from recordedAt when the client supplied it, otherwise from the
// claimed capture timestamp.
func validateRecency(now, claimed time.Time, recordedAt *time.Time) error {
	base := claimed
	if recordedAt != nil {
		base = *recordedAt
	}
	age := now.Sub(base)
	if age > maxRecordingAge || age < -maxFutureRecording {
		return errors.New("Recording timestamp is too old or in the future. Record live in the app and submit shortly after.")
	}
	return nil
}

// POST /v1/submissions
// Validates in order (task exists, task active, window open, recording
// recent), attaches the advisory AI assessment, persists the submission as
// pending and notifies the care team. No ledger mutation happens here.
func SubmitHandler(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	residentID, _ := utils.GetResidentID(r)
	if residentID == "" {
		residentID = strings.TrimSpace(req.ResidentID)
	}
	if req.TaskID == 0 || residentID == "" || req.Timestamp == nil || req.VideoBase64 == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Missing required fields: task_id, resident_id, timestamp, video_base64",
		})
		return
	}

	db := database.DB
	var task models.Task
	if err := db.First(&task, req.TaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Task not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to save submission"})
		return
	}
	if !task.Active {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Task is not active"})
		return
	}
	now := time.Now().UTC()
	if now.Before(task.WindowStart) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Task window has not started yet"})
		return
	}
	if now.After(task.WindowEnd) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Task window has ended"})
		return
	}
	if err := validateRecency(now, *req.Timestamp, req.RecordedAt); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	recordedAt := req.Timestamp
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt
	}

	// Advisory only; the review decision stays with the reviewer.
	assessed := false
	var assessment models.AIAssessment
	if len(req.FramesBase64) > 0 {
		assessment = utils.AnalyzeFrames(req.FramesBase64, *recordedAt)
		assessed = true
	}

	sub := models.Submission{
		TaskID:     task.ID,
		ResidentID: residentID,
		Timestamp:  req.Timestamp.UTC(),
		RecordedAt: recordedAt,
		Status:     models.StatusPending,
		Assessed:   assessed,
		AI:         assessment,
	}

	// Best-effort payload offload; inline storage is the fallback.
	if utils.PayloadStorageConfigured() {
		key := fmt.Sprintf("submissions/%s/%s.b64", residentID, uuid.NewString())
		if _, err := utils.UploadPayload(key, []byte(req.VideoBase64)); err != nil {
			log.Printf("[submit] payload offload failed, storing inline: %v", err)
			sub.VideoPayload = req.VideoBase64
		} else {
			sub.PayloadKey = key
		}
	} else {
		sub.VideoPayload = req.VideoBase64
	}

	if err := db.Create(&sub).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to save submission"})
		return
	}

	go utils.NotifySubmissionReceived(task.ID, task.Name, residentID, sub.ID, *recordedAt)

	resp := map[string]interface{}{
		"id":          sub.ID,
		"task_id":     sub.TaskID,
		"resident_id": sub.ResidentID,
		"timestamp":   sub.Timestamp,
		"status":      sub.Status,
		"ai_flagged":  assessed && !assessment.Passed,
	}
	if assessed {
		resp["ai_assessment"] = assessment
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Submission received", Data: resp})
}
