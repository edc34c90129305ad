package residents

import (
	"net/http"
	"strings"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/ledger"
	"github.com/AshOynk/immate/utils"

	"github.com/gorilla/mux"
)

// GET /v1/rewards/{residentId}
// Unknown residents read as a zero-balance snapshot.
func RewardsHandler(w http.ResponseWriter, r *http.Request) {
	residentID := strings.TrimSpace(mux.Vars(r)["residentId"])
	if residentID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "residentId required"})
		return
	}
	store := ledger.NewStore(database.DB)
	row, err := store.Get(residentID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get rewards"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: row})
}
