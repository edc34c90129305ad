package admins

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/middleware"
	"github.com/AshOynk/immate/models"
	"github.com/AshOynk/immate/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Name         string     `json:"name" validate:"required"`
	Description  string     `json:"description"`
	WindowStart  *time.Time `json:"window_start"`
	WindowEnd    *time.Time `json:"window_end"`
	StarsAwarded int        `json:"stars_awarded"`
}

// POST /v1/tasks
func CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.WindowStart == nil || req.WindowEnd == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Missing required fields: name, window_start, window_end"})
		return
	}
	if !req.WindowStart.Before(*req.WindowEnd) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "window_start must be before window_end"})
		return
	}
	stars := req.StarsAwarded
	if stars <= 0 {
		stars = 1
	}
	task := models.Task{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		WindowStart:  req.WindowStart.UTC(),
		WindowEnd:    req.WindowEnd.UTC(),
		StarsAwarded: stars,
		Active:       true,
	}
	if err := database.DB.Create(&task).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create task"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: task})
}

// GET /v1/tasks/{id}
func GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	var task models.Task
	if err := database.DB.First(&task, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get task"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: task})
}

type ToggleTaskRequest struct {
	Active *bool `json:"active"`
}

// PATCH /v1/tasks/{id}/active
// Tasks are never hard-deleted; the active flag is the only mutation.
func ToggleTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	var req ToggleTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.Active == nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "active is required"})
		return
	}
	res := database.DB.Model(&models.Task{}).Where("id = ?", uint(id)).Update("active", *req.Active)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update task"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	var task models.Task
	if err := database.DB.First(&task, uint(id)).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get task"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task updated", Data: task})
}
