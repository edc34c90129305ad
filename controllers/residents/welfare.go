package residents

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/middleware"
	"github.com/AshOynk/immate/models"
	"github.com/AshOynk/immate/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type StartCheckInRequest struct {
	ResidentID string `json:"resident_id" validate:"residentid"`
	Name       string `json:"name" validate:"nameok"`
	Mood       string `json:"mood" validate:"required"`
}

// POST /v1/welfare/checkin
func StartCheckInHandler(w http.ResponseWriter, r *http.Request) {
	var req StartCheckInRequest
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
	if !models.ValidMood(req.Mood) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "mood must be one of: " + strings.Join(models.MoodValues, ", "),
		})
		return
	}

	name := strings.TrimSpace(req.Name)
	first := utils.FirstWelfareMessage(req.Mood, name)
	checkIn := models.WelfareCheckIn{
		ResidentID:   residentID,
		Name:         name,
		Mood:         req.Mood,
		Conversation: []models.ChatTurn{{Role: "assistant", Content: first}},
		Status:       models.CheckInInProgress,
	}
	if err := database.DB.Create(&checkIn).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to start check-in"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Check-in started", Data: checkIn})
}

type CheckInMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// POST /v1/welfare/checkin/{id}/message
func CheckInMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Check-in not found"})
		return
	}
	var req CheckInMessageRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var checkIn models.WelfareCheckIn
	if err := database.DB.First(&checkIn, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Check-in not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get reply"})
		return
	}
	if checkIn.Status == models.CheckInCompleted {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "This check-in is already completed"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if len(text) > 2000 {
		text = text[:2000]
	}
	reply := utils.NextWelfareMessage(&checkIn, text)
	checkIn.Conversation = append(checkIn.Conversation,
		models.ChatTurn{Role: "user", Content: text},
		models.ChatTurn{Role: "assistant", Content: reply})

	if err := database.DB.Model(&checkIn).Update("conversation", checkIn.Conversation).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get reply"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"message":      reply,
			"conversation": checkIn.Conversation,
		},
	})
}

// GET /v1/welfare/checkin/{id}
func GetCheckInHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	var checkIn models.WelfareCheckIn
	if err := database.DB.First(&checkIn, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get check-in"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: checkIn})
}
