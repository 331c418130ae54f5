package middleware

import (
	"log/slog"
	"net/http"

	sharedutils "github.com/vinothroacs/kalyanmalai-backend/shared/utils"
	authutils "github.com/vinothroacs/kalyanmalai-backend/v1/utils"
)

// AuthorizationMiddleware enforces the role permission table.
// Endpoints without an explicit permission mapping are denied.
type AuthorizationMiddleware struct{}

func NewAuthorizationMiddleware() *AuthorizationMiddleware {
	return &AuthorizationMiddleware{}
}

// AuthorizeRequest must run after AuthenticateJWT
func (a *AuthorizationMiddleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bypassesAuth(r) {
			next.ServeHTTP(w, r)
			return
		}

		user, err := GetUserFromRequest(r)
		if err != nil {
			slog.Warn("Authorization without identity", append(requestAttrs(r), "error", err)...)
			sharedutils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		attrs := append(requestAttrs(r), "member_id", user.MemberID, "role", user.Role)
		required, ok := authutils.FindEndpointPermission(r.Method, r.URL.Path)
		switch {
		case !ok:
			slog.Warn("Denied unmapped endpoint", attrs...)
			sharedutils.RespondWithError(w, http.StatusForbidden, "Endpoint access not explicitly permitted")
		case !user.HasPermission(required.Permission):
			slog.Warn("Denied for missing permission", append(attrs, "required_permission", required.Permission)...)
			sharedutils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
		default:
			next.ServeHTTP(w, r)
		}
	})
}
