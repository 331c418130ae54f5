package utils

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
)

type contextKey struct{ name string }

var userContextKey = &contextKey{"authenticated-user"}

var (
	ErrMissingAuthorization = errors.New("authorization header is missing")
	ErrNotBearer            = errors.New("authorization header must use the Bearer scheme")
	ErrEmptyBearer          = errors.New("bearer token is empty")
	ErrNoUserInContext      = errors.New("no authenticated user found in context")
)

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingAuthorization
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", ErrNotBearer
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", ErrEmptyBearer
	}
	return token, nil
}

// SetAuthenticatedUser stores the verified caller on the context
func SetAuthenticatedUser(ctx context.Context, user *models.AuthenticatedUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetAuthenticatedUser retrieves the caller stored by SetAuthenticatedUser
func GetAuthenticatedUser(ctx context.Context) (*models.AuthenticatedUser, error) {
	if user, ok := ctx.Value(userContextKey).(*models.AuthenticatedUser); ok && user != nil {
		return user, nil
	}
	return nil, ErrNoUserInContext
}

// ClientIP picks the originating address, preferring the first X-Forwarded-For hop
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// permissionIndex splits the endpoint table into exact routes and "/*" prefixes
type permissionIndex struct {
	exact    map[string]*models.EndpointPermission
	prefixes map[string][]*models.EndpointPermission
}

var (
	endpointIndex     *permissionIndex
	endpointIndexOnce sync.Once
)

func loadEndpointIndex() *permissionIndex {
	endpointIndexOnce.Do(func() {
		idx := &permissionIndex{
			exact:    make(map[string]*models.EndpointPermission),
			prefixes: make(map[string][]*models.EndpointPermission),
		}
		for i := range models.EndpointPermissions {
			ep := &models.EndpointPermissions[i]
			if prefix, ok := strings.CutSuffix(ep.Path, "/*"); ok {
				idx.prefixes[ep.Method] = append(idx.prefixes[ep.Method], &models.EndpointPermission{
					Method: ep.Method, Path: prefix + "/", Permission: ep.Permission,
				})
				continue
			}
			idx.exact[ep.Method+" "+ep.Path] = ep
		}
		endpointIndex = idx
	})
	return endpointIndex
}

// FindEndpointPermission finds the required permission for a method and path.
// Exact entries win over wildcard entries; a trailing slash is ignored.
func FindEndpointPermission(method, path string) (*models.EndpointPermission, bool) {
	idx := loadEndpointIndex()
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	if ep, ok := idx.exact[method+" "+path]; ok {
		return ep, true
	}
	for _, ep := range idx.prefixes[method] {
		if len(path) > len(ep.Path) && strings.HasPrefix(path, ep.Path) {
			return ep, true
		}
	}
	return nil, false
}
