package middleware

import (
	"net/http"
	"slices"

	"go.uber.org/zap"
)

// Catalog roles carried in the access token
const (
	RoleAdmin    = "admin"
	RoleMerchant = "merchant"
)

// RequireAdmin middleware ensures the user has admin role
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]string{RoleAdmin}, logger)
}

// RequireRole middleware ensures the user has one of the specified roles
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !slices.Contains(allowedRoles, role) {
				logger.Warn("User role not authorized",
					zap.String("role", role),
					zap.Strings("allowed_roles", allowedRoles),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
