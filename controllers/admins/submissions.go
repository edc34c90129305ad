package admins

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/ledger"
	"github.com/AshOynk/immate/middleware"
	"github.com/AshOynk/immate/models"
	"github.com/AshOynk/immate/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// GET /v1/submissions?residentId=&status=
// The raw video payload is never listed; it is only reachable one
// submission at a time.
func ListSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	q := database.DB.Model(&models.Submission{}).
		Omit("video_payload").
		Preload("Task").
		Order("timestamp DESC")
	if rid := r.URL.Query().Get("residentId"); rid != "" {
		q = q.Where("resident_id = ?", rid)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.SubmissionStatus(status).Valid() {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid status filter"})
			return
		}
		q = q.Where("status = ?", status)
	}
	var subs []models.Submission
	if err := q.Find(&subs).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to list submissions"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: subs})
}

// GET /v1/submissions/{id}
func GetSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	var sub models.Submission
	if err := database.DB.Preload("Task").First(&sub, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get submission"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: sub})
}

type ReviewRequest struct {
	Decision string `json:"decision" validate:"required"`
	Note     string `json:"note"`
}

// ReviewHandler settles a pending submission as pass or fail.
// PATCH /v1/submissions/{id}
//
// The transition is one conditional UPDATE keyed on the pending status, so
// two racing reviewers cannot both settle the same submission. Stars are
// credited through the ledger journal keyed on the submission id, which
// makes a retried pass review a no-op rather than a double credit.
func ReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	var req ReviewRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	decision := models.SubmissionStatus(req.Decision)
	if !decision.Terminal() {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "decision must be \"pass\" or \"fail\""})
		return
	}

	var sub models.Submission
	if err := database.DB.Preload("Task").First(&sub, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get submission"})
		return
	}

	now := time.Now().UTC()
	res := database.DB.Model(&models.Submission{}).
		Where("id = ? AND status = ?", sub.ID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":      decision,
			"reviewed_at": now,
		})
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update submission"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Submission already validated"})
		return
	}

	starsAwarded := 0
	if decision == models.StatusPass && sub.Task != nil {
		store := ledger.NewStore(database.DB)
		ref := fmt.Sprintf("SUB-%d", sub.ID)
		note := fmt.Sprintf("Validated task %q", sub.Task.Name)
		applied, err := store.CreditOnce(sub.ResidentID, sub.Task.StarsAwarded, true, ref, models.LedgerKindTaskReward, note)
		if err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to credit stars"})
			return
		}
		if applied {
			starsAwarded = sub.Task.StarsAwarded
		}
	}

	reviewerID, _ := utils.GetUserID(r)
	log.Printf("[review] submission %d marked %s by user %d", sub.ID, decision, reviewerID)

	sub.Status = decision
	sub.ReviewedAt = &now
	taskName := ""
	if sub.Task != nil {
		taskName = sub.Task.Name
	}
	go utils.NotifyCheckTriggered(sub.TaskID, taskName, sub.ResidentID, sub.ID, string(decision), starsAwarded)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Submission reviewed", Data: map[string]interface{}{
		"submission":    sub,
		"stars_awarded": starsAwarded,
	}})
}
