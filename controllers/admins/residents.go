package admins

import (
	"net/http"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/ledger"
	"github.com/AshOynk/immate/utils"
)

// GET /v1/residents
// Every resident id seen in submissions or the ledger, with balances.
func ListResidentsHandler(w http.ResponseWriter, r *http.Request) {
	store := ledger.NewStore(database.DB)
	ids, err := store.Residents()
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to list residents"})
		return
	}
	out := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		reward, err := store.Get(id)
		if err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to list residents"})
			return
		}
		out = append(out, map[string]interface{}{
			"resident_id":     id,
			"stars":           reward.Stars,
			"total_validated": reward.TotalValidated,
		})
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: out})
}
