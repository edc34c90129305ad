package routes

import (
	"net/http"

	"github.com/AshOynk/immate/controllers/admins"
	"github.com/AshOynk/immate/middleware"

	"github.com/gorilla/mux"
)

// AdminRoutes wires the staff validation console endpoints.
func AdminRoutes(api *mux.Router) {
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.AdminAuthMiddleware(h)
	}

	api.Handle("/tasks", authed(admins.CreateTaskHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id}", authed(admins.GetTaskHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/{id}/active", authed(admins.ToggleTaskHandler)).Methods(http.MethodPatch)

	api.Handle("/submissions", authed(admins.ListSubmissionsHandler)).Methods(http.MethodGet)
	api.Handle("/submissions/{id}", authed(admins.GetSubmissionHandler)).Methods(http.MethodGet)
	api.Handle("/submissions/{id}", authed(admins.ReviewHandler)).Methods(http.MethodPatch)

	api.Handle("/residents", authed(admins.ListResidentsHandler)).Methods(http.MethodGet)
}
