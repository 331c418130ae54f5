package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
	"github.com/vinothroacs/kalyanmalai-backend/v1/models"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"Valid", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"Missing", "", "", true},
		{"Wrong scheme", "Basic dXNlcjpwYXNz", "", true},
		{"Lowercase scheme", "bearer abc", "", true},
		{"Empty token", "Bearer   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			token, err := ExtractBearerToken(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestAuthenticatedUserContext(t *testing.T) {
	_, err := GetAuthenticatedUser(context.Background())
	assert.Error(t, err)

	user := &models.AuthenticatedUser{MemberID: "mem_1", Role: models.RoleMember}
	ctx := SetAuthenticatedUser(context.Background(), user)

	got, err := GetAuthenticatedUser(ctx)
	require.NoError(t, err)
	assert.Same(t, user, got)
}

func TestFindEndpointPermission(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   models.Permission
		found  bool
	}{
		{"Exact member path", "GET", "/api/v1/user/profile", models.PermissionReadOwnProfile, true},
		{"Trailing slash", "GET", "/api/v1/user/profile/", models.PermissionReadOwnProfile, true},
		{"Exact wins over wildcard", "GET", "/api/v1/admin/members/export", models.PermissionExportMembers, true},
		{"Wildcard", "PUT", "/api/v1/admin/connections/con_1/approve", models.PermissionModerateConnections, true},
		{"Gated profile fetch", "GET", "/api/v1/user/connections/mem_2/profile", models.PermissionReadConnectedProfile, true},
		{"Wildcard needs a segment", "GET", "/api/v1/admin/profiles", "", false},
		{"Unknown method", "PATCH", "/api/v1/user/profile", "", false},
		{"Unknown path", "GET", "/api/v1/unknown", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, found := FindEndpointPermission(tt.method, tt.path)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, ep.Permission)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}

func TestRespondWithAPIError(t *testing.T) {
	t.Run("APIError keeps status and code", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondWithAPIError(w, httptest.NewRequest(http.MethodGet, "/", nil), apperrors.DuplicateRequest("connection already exists"))

		assert.Equal(t, http.StatusConflict, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "DUPLICATE_REQUEST", body["code"])
		assert.Equal(t, "connection already exists", body["error"])
	})

	t.Run("Plain error becomes server fault without leaking cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondWithAPIError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password authentication failed"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
	})
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2024-01-02T03:04:05Z", FormatTime(ts))
	assert.Nil(t, FormatTimePtr(nil))
	assert.Equal(t, "2024-01-02T03:04:05Z", *FormatTimePtr(&ts))
}
