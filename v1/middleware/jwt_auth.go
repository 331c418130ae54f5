package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	sharedutils "github.com/vinothroacs/kalyanmalai-backend/shared/utils"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
	authutils "github.com/vinothroacs/kalyanmalai-backend/v1/utils"
)

// TokenVerifier validates a session token and returns the user it was issued to
type TokenVerifier interface {
	Verify(tokenString string) (*models.AuthenticatedUser, error)
}

// Paths reachable without a session. Entries ending in "/" cover the whole subtree.
var publicPaths = []string{
	"/health",
	"/metrics",
	"/api/v1/auth/",
}

// JWTAuthMiddleware attaches the caller identity from a Bearer session token
type JWTAuthMiddleware struct {
	verifier TokenVerifier
}

func NewJWTAuthMiddleware(verifier TokenVerifier) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{verifier: verifier}
}

// AuthenticateJWT rejects requests without a valid token with 401 and otherwise
// stores the verified user on the request context.
func (j *JWTAuthMiddleware) AuthenticateJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bypassesAuth(r) {
			next.ServeHTTP(w, r)
			return
		}

		user, reason, err := j.authenticate(r)
		if err != nil {
			slog.Warn("Rejected unauthenticated request", append(requestAttrs(r), "error", err)...)
			sharedutils.RespondWithError(w, http.StatusUnauthorized, reason)
			return
		}

		slog.Debug("Request authenticated", append(requestAttrs(r), "member_id", user.MemberID, "role", user.Role)...)
		next.ServeHTTP(w, r.WithContext(authutils.SetAuthenticatedUser(r.Context(), user)))
	})
}

func (j *JWTAuthMiddleware) authenticate(r *http.Request) (*models.AuthenticatedUser, string, error) {
	token, err := authutils.ExtractBearerToken(r)
	if err != nil {
		return nil, "Invalid or missing authorization header", err
	}
	user, err := j.verifier.Verify(token)
	if err != nil {
		return nil, "Invalid access token", err
	}
	return user, "", nil
}

// bypassesAuth is true for CORS preflights and public paths
func bypassesAuth(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	for _, p := range publicPaths {
		if r.URL.Path == strings.TrimSuffix(p, "/") || strings.HasPrefix(r.URL.Path, p) {
			return true
		}
	}
	return false
}

func requestAttrs(r *http.Request) []any {
	return []any{"method", r.Method, "path", r.URL.Path, "client_ip", authutils.ClientIP(r)}
}

// GetUserFromRequest returns the user stored by AuthenticateJWT
func GetUserFromRequest(r *http.Request) (*models.AuthenticatedUser, error) {
	return authutils.GetAuthenticatedUser(r.Context())
}
