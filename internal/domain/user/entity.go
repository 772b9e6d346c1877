package user

type Role string

const (
	RoleEmployee    Role = "employee"     // Submits own WFH requests
	RoleTeamManager Role = "team_manager" // First approver, owns a team
	RoleSDM         Role = "sdm"          // Senior delivery manager, second approver
	RoleHR          Role = "hr"           // Final approver, sees every request
)

// Actor is the authenticated caller, taken from token claims.
type Actor struct {
	UserID     string
	EmployeeID string
	Role       Role
}

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleTeamManager, RoleSDM, RoleHR:
		return true
	}
	return false
}
