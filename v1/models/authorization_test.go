package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_HasPermission(t *testing.T) {
	tests := []struct {
		name       string
		role       Role
		permission Permission
		want       bool
	}{
		{
			name:       "Admin can moderate connections",
			role:       RoleAdmin,
			permission: PermissionModerateConnections,
			want:       true,
		},
		{
			name:       "Member can request connections",
			role:       RoleMember,
			permission: PermissionRequestConnection,
			want:       true,
		},
		{
			name:       "Member cannot moderate profiles",
			role:       RoleMember,
			permission: PermissionModerateProfiles,
			want:       false,
		},
		{
			name:       "Admin cannot read connected profiles",
			role:       RoleAdmin,
			permission: PermissionReadConnectedProfile,
			want:       false,
		},
		{
			name:       "Invalid role has no permissions",
			role:       Role("user"),
			permission: PermissionReadOwnProfile,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.HasPermission(tt.permission))
		})
	}
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleMember.IsValid())
	assert.False(t, Role("").IsValid())
	assert.False(t, Role("1").IsValid())
}

func TestEndpointPermissions_ReferenceKnownPermissions(t *testing.T) {
	known := make(map[Permission]bool)
	for _, perms := range RolePermissions {
		for _, p := range perms {
			known[p] = true
		}
	}

	for _, ep := range EndpointPermissions {
		assert.True(t, known[ep.Permission], "endpoint %s %s uses unassigned permission %s", ep.Method, ep.Path, ep.Permission)
	}
}

func TestAuthenticatedUser_HasPermission(t *testing.T) {
	t.Run("Nil user", func(t *testing.T) {
		var user *AuthenticatedUser
		assert.False(t, user.HasPermission(PermissionReadOwnProfile))
		assert.False(t, user.IsAdmin())
	})

	t.Run("Unknown role", func(t *testing.T) {
		user := &AuthenticatedUser{MemberID: "mem_1", Role: Role("superuser")}
		assert.False(t, user.HasPermission(PermissionModerateProfiles))
	})

	t.Run("Admin", func(t *testing.T) {
		user := &AuthenticatedUser{MemberID: "mem_1", Role: RoleAdmin}
		assert.True(t, user.IsAdmin())
		assert.False(t, user.IsMember())
		assert.True(t, user.HasPermission(PermissionReadDashboard))
	})
}
