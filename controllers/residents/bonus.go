package residents

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/ledger"
	"github.com/AshOynk/immate/middleware"
	"github.com/AshOynk/immate/utils"
)

type ClaimBonusRequest struct {
	ResidentID string `json:"resident_id" validate:"residentid"`
}

// POST /v1/resident/claim-bonus
// The bonus doubles the week's earned stars. Target check, claimed-week
// marker and credit commit in one transaction inside the ledger, so a
// concurrent duplicate claim gets AlreadyClaimed, never a second credit.
func ClaimBonusHandler(w http.ResponseWriter, r *http.Request) {
	var req ClaimBonusRequest
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

	now := time.Now().UTC()
	target := WeeklyTarget()
	store := ledger.NewStore(database.DB)

	bonusStars, totalStars, err := store.ClaimBonus(residentID, now, target)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrTargetNotReached):
			stars, _ := store.StarsThisWeek(residentID, now)
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: "Weekly target not reached",
				Data: map[string]interface{}{
					"stars_this_week": stars,
					"weekly_target":   target,
				},
			})
		case errors.Is(err, ledger.ErrAlreadyClaimed):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Bonus already claimed this week"})
		default:
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to claim bonus"})
		}
		return
	}

	code := utils.GenerateBonusCode(residentID, ledger.WeekKey(now))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Double stars applied! Bonus voucher unlocked.",
		Data: map[string]interface{}{
			"bonus_stars":        bonusStars,
			"bonus_voucher_code": code,
			"total_stars":        totalStars,
		},
	})
}
