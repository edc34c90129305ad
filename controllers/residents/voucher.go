package residents

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/AshOynk/immate/database"
	"github.com/AshOynk/immate/ledger"
	"github.com/AshOynk/immate/middleware"
	"github.com/AshOynk/immate/models"
	"github.com/AshOynk/immate/utils"
)

type VoucherTier struct {
	Stars int    `json:"stars"`
	Value int    `json:"value"`
	Label string `json:"label"`
}

var defaultTiers = []VoucherTier{
	{Stars: 5, Value: 5, Label: "£5 voucher"},
	{Stars: 12, Value: 10, Label: "£10 voucher"},
	{Stars: 25, Value: 25, Label: "£25 voucher"},
	{Stars: 50, Value: 50, Label: "£50 voucher"},
}

// voucherTiers returns the configured tier table (VOUCHER_TIERS as JSON) or
// the defaults.
func voucherTiers() []VoucherTier {
	env := os.Getenv("VOUCHER_TIERS")
	if env == "" {
		return defaultTiers
	}
	var tiers []VoucherTier
	if err := json.Unmarshal([]byte(env), &tiers); err != nil || len(tiers) == 0 {
		log.Printf("[voucher] invalid VOUCHER_TIERS JSON, using defaults")
		return defaultTiers
	}
	return tiers
}

// GET /v1/vouchers
func VoucherTiersHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]interface{}{"tiers": voucherTiers()},
	})
}

type RedeemRequest struct {
	ResidentID string `json:"resident_id" validate:"residentid"`
	TierIndex  *int   `json:"tier_index"`
}

// POST /v1/vouchers/redeem
// The balance check and debit are one guarded UPDATE inside the ledger; two
// racing redemptions against the same balance cannot both succeed.
func RedeemHandler(w http.ResponseWriter, r *http.Request) {
	var req RedeemRequest
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

	tiers := voucherTiers()
	index := 0
	if req.TierIndex != nil {
		index = *req.TierIndex
	}
	if index < 0 || index >= len(tiers) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid tier index or tier not found"})
		return
	}
	tier := tiers[index]

	store := ledger.NewStore(database.DB)
	code := utils.GenerateVoucherCode(residentID)
	remaining, err := store.Debit(residentID, tier.Stars, code, models.LedgerKindVoucherRedeem, "Redeemed "+tier.Label)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientStars) {
			current, _ := store.Get(residentID)
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: "Not enough stars",
				Data: map[string]interface{}{
					"required": tier.Stars,
					"current":  current.Stars,
				},
			})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to redeem voucher"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Voucher redeemed",
		Data: map[string]interface{}{
			"voucher": map[string]interface{}{
				"code":            code,
				"value":           tier.Value,
				"label":           tier.Label,
				"stars_spent":     tier.Stars,
				"remaining_stars": remaining,
			},
		},
	})
}
