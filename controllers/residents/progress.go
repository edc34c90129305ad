package residents

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/middleware"
	"github.com/AshOynk/immate/models"
	"github.com/AshOynk/immate/utils"

	"gorm.io/gorm"
)

// Badge thresholds by completed-lesson count.
var badgeThresholds = []struct {
	Count int
	Badge string
}{
	{1, "first_step"},
	{3, "on_fire"},
	{5, "graduation"},
}

// GET /v1/progress
// Lesson progress is a persisted per-resident row, never process state.
func GetProgressHandler(w http.ResponseWriter, r *http.Request) {
	residentID := callerResidentID(r)
	if residentID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "residentId required"})
		return
	}
	var row models.LessonProgress
	err := database.DB.Where("resident_id = ?", residentID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.LessonProgress{
			ResidentID:       residentID,
			CompletedLessons: []string{},
			Badges:           []string{},
		}
	} else if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get progress"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: row})
}

type CompleteLessonRequest struct {
	ResidentID string `json:"resident_id" validate:"residentid"`
	LessonID   string `json:"lesson_id" validate:"required"`
}

// POST /v1/progress/complete
func CompleteLessonHandler(w http.ResponseWriter, r *http.Request) {
	var req CompleteLessonRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	residentID, _ := utils.GetResidentID(r)
	if residentID == "" {
		residentID = strings.TrimSpace(req.ResidentID)
	}
	if residentID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "residentId required"})
		return
	}

	var row models.LessonProgress
	var newBadges []string
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("resident_id = ?", residentID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.LessonProgress{ResidentID: residentID}
		} else if err != nil {
			return err
		}

		found := false
		for _, l := range row.CompletedLessons {
			if l == req.LessonID {
				found = true
				break
			}
		}
		if !found {
			row.CompletedLessons = append(row.CompletedLessons, req.LessonID)
		}
		has := map[string]bool{}
		for _, b := range row.Badges {
			has[b] = true
		}
		for _, t := range badgeThresholds {
			if len(row.CompletedLessons) >= t.Count && !has[t.Badge] {
				row.Badges = append(row.Badges, t.Badge)
				newBadges = append(newBadges, t.Badge)
			}
		}
		now := time.Now().UTC()
		row.LastActivity = &now
		return tx.Save(&row).Error
	})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update progress"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Lesson completed",
		Data: map[string]interface{}{
			"progress":   row,
			"new_badges": newBadges,
		},
	})
}
