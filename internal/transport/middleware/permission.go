package middleware

import (
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/frahmantamala/hr-backoffice/internal/transport"
)

// RequireRole lets the request through only when the acting user holds one of roles.
func RequireRole(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := apperrors.ActorFromContext(r.Context())
			if !ok {
				base.HandleServiceError(w, apperrors.NewUnauthorizedError("missing acting user", apperrors.ErrCodeInvalidToken))
				return
			}

			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			base.Logger.Warn("access denied: insufficient role",
				"user_id", actor.UserID,
				"role", actor.Role,
				"required_roles", roles)
			base.HandleServiceError(w, apperrors.ErrInsufficientRole)
		})
	}
}

// RequireStaff admits HR and admin users.
func RequireStaff(logger *slog.Logger) func(http.Handler) http.Handler {
	return RequireRole(logger, apperrors.RoleAdmin, apperrors.RoleHR)
}
