package routes

import (
	"net/http"
	"time"

	"github.com/AshOynk/immate/controllers/residents"
	"github.com/AshOynk/immate/middleware"

	"github.com/gorilla/mux"
)

// ResidentRoutes wires the endpoints a logged-in resident uses day to day.
func ResidentRoutes(api *mux.Router) {
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(h)
	}

	// Video uploads are heavy; keep residents from hammering the endpoint.
	submitLimiter := middleware.NewIPRateLimiter(30, time.Hour)

	api.Handle("/tasks", authed(residents.TaskListHandler)).Methods(http.MethodGet)
	api.Handle("/submissions", submitLimiter.Middleware(authed(residents.SubmitHandler))).Methods(http.MethodPost)
	api.Handle("/rewards/{residentId}", authed(residents.RewardsHandler)).Methods(http.MethodGet)

	api.Handle("/resident/dashboard", authed(residents.DashboardHandler)).Methods(http.MethodGet)
	api.Handle("/resident/claim-bonus", authed(residents.ClaimBonusHandler)).Methods(http.MethodPost)

	api.Handle("/vouchers", authed(residents.VoucherTiersHandler)).Methods(http.MethodGet)
	api.Handle("/vouchers/redeem", authed(residents.RedeemHandler)).Methods(http.MethodPost)

	api.Handle("/welfare/checkin", authed(residents.StartCheckInHandler)).Methods(http.MethodPost)
	api.Handle("/welfare/checkin/{id}/message", authed(residents.CheckInMessageHandler)).Methods(http.MethodPost)
	api.Handle("/welfare/checkin/{id}", authed(residents.GetCheckInHandler)).Methods(http.MethodGet)

	api.Handle("/progress", authed(residents.GetProgressHandler)).Methods(http.MethodGet)
	api.Handle("/progress/complete", authed(residents.CompleteLessonHandler)).Methods(http.MethodPost)
}
