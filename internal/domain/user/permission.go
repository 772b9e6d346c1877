package user

type Permission string

const (
	// WFH requests
	PermissionWfhCreate   Permission = "wfh.create"
	PermissionWfhViewOwn  Permission = "wfh.view_own"
	PermissionWfhViewTeam Permission = "wfh.view_team"
	PermissionWfhViewOrg  Permission = "wfh.view_org"
	PermissionWfhViewAll  Permission = "wfh.view_all"
	PermissionWfhApprove  Permission = "wfh.approve"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleEmployee: {
		PermissionWfhCreate,
		PermissionWfhViewOwn,
	},
	RoleTeamManager: {
		PermissionWfhViewOwn,
		PermissionWfhViewTeam,
		PermissionWfhApprove,
		PermissionReportsView,
	},
	RoleSDM: {
		PermissionWfhViewOwn,
		PermissionWfhViewOrg,
		PermissionWfhApprove,
		PermissionReportsView,
	},
	RoleHR: {
		PermissionWfhViewOwn,
		PermissionWfhViewAll,
		PermissionWfhApprove,
		PermissionReportsView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
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
