package models

// Role represents user roles in the system
type Role string

const (
	RoleAdmin  Role = "admin"  // Moderates profiles, members and connections
	RoleMember Role = "member" // Manages own profile and connections
)

// Permission represents specific permissions
type Permission string

const (
	// Profile permissions
	PermissionReadOwnProfile   Permission = "profile:read:own"
	PermissionWriteOwnProfile  Permission = "profile:write:own"
	PermissionUploadDocument   Permission = "profile:upload"
	PermissionReadMatches      Permission = "profile:matches"
	PermissionModerateProfiles Permission = "profile:moderate"

	// Connection permissions
	PermissionRequestConnection    Permission = "connection:request"
	PermissionReadOwnConnections   Permission = "connection:read:own"
	PermissionReadConnectedProfile Permission = "connection:profile"
	PermissionModerateConnections  Permission = "connection:moderate"

	// Notification permissions
	PermissionReadNotifications Permission = "notification:read"

	// Member administration permissions
	PermissionReadAllMembers Permission = "member:read:all"
	PermissionUpdateMembers  Permission = "member:update"
	PermissionReadDashboard  Permission = "dashboard:read"
	PermissionExportMembers  Permission = "member:export"
)

// RolePermissions defines what permissions each role has
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionModerateProfiles, PermissionModerateConnections,
		PermissionReadAllMembers, PermissionUpdateMembers, PermissionReadDashboard, PermissionExportMembers,
	},
	RoleMember: {
		PermissionReadOwnProfile, PermissionWriteOwnProfile, PermissionUploadDocument, PermissionReadMatches,
		PermissionRequestConnection, PermissionReadOwnConnections, PermissionReadConnectedProfile,
		PermissionReadNotifications,
	},
}

// EndpointPermission defines the required permission for each endpoint
type EndpointPermission struct {
	Method     string
	Path       string
	Permission Permission
}

// EndpointPermissions maps HTTP endpoints to required permissions.
// A trailing "/*" matches any remaining path segments.
var EndpointPermissions = []EndpointPermission{
	// Member self-service endpoints
	{"GET", "/api/v1/user/profile", PermissionReadOwnProfile},
	{"POST", "/api/v1/user/profile", PermissionWriteOwnProfile},
	{"PUT", "/api/v1/user/profile", PermissionWriteOwnProfile},
	{"DELETE", "/api/v1/user/profile", PermissionWriteOwnProfile},
	{"GET", "/api/v1/user/profile/status", PermissionReadOwnProfile},
	{"POST", "/api/v1/user/uploads", PermissionUploadDocument},
	{"GET", "/api/v1/user/matches", PermissionReadMatches},
	{"POST", "/api/v1/user/connections", PermissionRequestConnection},
	{"GET", "/api/v1/user/connections", PermissionReadOwnConnections},
	{"GET", "/api/v1/user/connections/*", PermissionReadConnectedProfile},
	{"GET", "/api/v1/user/notifications", PermissionReadNotifications},
	{"PUT", "/api/v1/user/notifications/*", PermissionReadNotifications},

	// Admin endpoints
	{"GET", "/api/v1/admin/profiles/*", PermissionModerateProfiles},
	{"PUT", "/api/v1/admin/profiles/*", PermissionModerateProfiles},
	{"GET", "/api/v1/admin/connections/*", PermissionModerateConnections},
	{"PUT", "/api/v1/admin/connections/*", PermissionModerateConnections},
	{"GET", "/api/v1/admin/members/export", PermissionExportMembers},
	{"GET", "/api/v1/admin/members", PermissionReadAllMembers},
	{"GET", "/api/v1/admin/members/*", PermissionReadAllMembers},
	{"PUT", "/api/v1/admin/members/*", PermissionUpdateMembers},
	{"GET", "/api/v1/admin/dashboard", PermissionReadDashboard},
}

// HasPermission checks if a role has a specific permission
func (r Role) HasPermission(permission Permission) bool {
	permissions, exists := RolePermissions[r]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	_, exists := RolePermissions[r]
	return exists
}
