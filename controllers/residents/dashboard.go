package residents

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/ledger"
	"github.com/AshOynk/immate/models"
	"github.com/AshOynk/immate/utils"
)

// WeeklyTarget returns the stars needed for the weekly bonus (default 10).
func WeeklyTarget() int {
	if s := os.Getenv("WEEKLY_STAR_TARGET"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return 10
}

// callerResidentID prefers the token's resident id, falling back to the
// residentId query parameter for admin lookups.
func callerResidentID(r *http.Request) string {
	if rid, ok := utils.GetResidentID(r); ok {
		return rid
	}
	return strings.TrimSpace(r.URL.Query().Get("residentId"))
}

// GET /v1/resident/dashboard
// Pure composition: no mutation happens here.
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	residentID := callerResidentID(r)
	if residentID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "residentId required"})
		return
	}

	db := database.DB
	now := time.Now().UTC()
	weekKey := ledger.WeekKey(now)
	target := WeeklyTarget()
	store := ledger.NewStore(db)

	var tasks []models.Task
	if err := db.Where("active = ? AND window_start <= ? AND window_end >= ?", true, now, now).
		Order("window_end ASC").Find(&tasks).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load dashboard"})
		return
	}
	starsThisWeek, err := store.StarsThisWeek(residentID, now)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load dashboard"})
		return
	}
	reward, err := store.Get(residentID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load dashboard"})
		return
	}
	claimed, err := store.WeekClaimed(residentID, weekKey)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load dashboard"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"resident_id":             residentID,
			"tasks":                   tasks,
			"stars_this_week":         starsThisWeek,
			"weekly_target":           target,
			"total_stars":             reward.Stars,
			"total_validated":         reward.TotalValidated,
			"bonus_unlocked":          starsThisWeek >= target,
			"bonus_claimed_this_week": claimed,
			"week_ends":               ledger.WeekEnd(now),
		},
	})
}
