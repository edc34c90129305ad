package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AshOynk/immate/models"
	"github.com/AshOynk/immate/utils"
)

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")), true
}

// AuthMiddleware authenticates resident endpoints. Admin tokens are rejected
// here; admin routes go through AdminAuthMiddleware.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearerToken(r)
		if !ok {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
			return
		}
		_, claims, err := utils.ValidateAccessToken(tokenStr)
		if err != nil {
			if strings.Contains(err.Error(), "expired") {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Session expired, please log in again"})
				return
			}
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid token"})
			return
		}

		var userID uint
		if rawID, ok := claims["id"].(float64); ok {
			userID = uint(rawID)
		}
		role, _ := claims["role"].(string)
		residentID, _ := claims["resident_id"].(string)

		if role == models.RoleAdmin {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Access denied"})
			return
		}

		ctx := context.WithValue(r.Context(), utils.UserIDKey, userID)
		ctx = context.WithValue(ctx, utils.UserRoleKey, role)
		ctx = context.WithValue(ctx, utils.ResidentIDKey, residentID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminAuthMiddleware verifies that the request is from an authenticated admin.
func AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearerToken(r)
		if !ok {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized: No token provided"})
			return
		}
		_, claims, err := utils.ValidateAccessToken(tokenStr)
		if err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized: Invalid token"})
			return
		}
		role, ok := claims["role"].(string)
		if !ok || role != models.RoleAdmin {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Forbidden: Admin access required"})
			return
		}
		var userID uint
		if rawID, ok := claims["id"].(float64); ok {
			userID = uint(rawID)
		}
		ctx := context.WithValue(r.Context(), utils.UserIDKey, userID)
		ctx = context.WithValue(ctx, utils.UserRoleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
