package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/middleware"
	"github.com/AshOynk/immate/models"
	"github.com/AshOynk/immate/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required,pwdmin"`
	Role       string `json:"role"`
	ResidentID string `json:"resident_id" validate:"residentid"`
	Name       string `json:"name" validate:"nameok"`
}

// POST /v1/auth/register
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))
	role := models.RoleResident
	if req.Role == models.RoleAdmin {
		role = models.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Registration failed"})
		return
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		ResidentID:   strings.TrimSpace(req.ResidentID),
		Name:         strings.TrimSpace(req.Name),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Username already taken"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Registration failed"})
		return
	}

	token, err := utils.GenerateAccessToken(user.ID, user.Role, user.ResidentID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Registration failed"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Registered",
		Data: map[string]interface{}{
			"token": token,
			"user":  user,
		},
	})
}
