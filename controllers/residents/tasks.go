package residents

import (
	"net/http"
	"time"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/models"
	"github.com/AshOynk/immate/utils"
)

// GET /v1/tasks?active=true&inWindow=true
func TaskListHandler(w http.ResponseWriter, r *http.Request) {
	db := database.DB
	now := time.Now().UTC()

	q := db.Model(&models.Task{})
	if r.URL.Query().Get("active") == "true" {
		q = q.Where("active = ?", true)
	}
	if r.URL.Query().Get("inWindow") == "true" {
		q = q.Where("window_start <= ? AND window_end >= ?", now, now)
	}

	var tasks []models.Task
	if err := q.Order("window_start ASC").Find(&tasks).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to list tasks"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: tasks})
}
