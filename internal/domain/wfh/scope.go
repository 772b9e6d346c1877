package wfh

import "github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"

type ScopeKind string

const (
	ScopeEmployee ScopeKind = "employee"
	ScopeTeam     ScopeKind = "team"
	ScopeSDM      ScopeKind = "sdm"
	ScopeAll      ScopeKind = "all"
)

// Scope is a visibility boundary: one employee, one team, one SDM's org, or everything.
type Scope struct {
	Kind ScopeKind
	ID   string
}

// ScopeForActor returns the widest scope the actor's role may see, taken from
// the role's view permissions.
func ScopeForActor(actor user.Actor) Scope {
	switch {
	case user.HasPermission(actor.Role, user.PermissionWfhViewAll):
		return Scope{Kind: ScopeAll}
	case user.HasPermission(actor.Role, user.PermissionWfhViewOrg):
		return Scope{Kind: ScopeSDM, ID: actor.EmployeeID}
	case user.HasPermission(actor.Role, user.PermissionWfhViewTeam):
		return Scope{Kind: ScopeTeam, ID: actor.EmployeeID}
	}
	return Scope{Kind: ScopeEmployee, ID: actor.EmployeeID}
}

// Includes reports whether r is visible within s.
func (s Scope) Includes(r Request) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeSDM:
		return r.SeniorManagerID == s.ID
	case ScopeTeam:
		return r.TeamOwnerID == s.ID
	case ScopeEmployee:
		return r.EmployeeID == s.ID
	}
	return false
}
