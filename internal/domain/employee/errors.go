package employee

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrTeamOwnerNotFound = errors.New("employee has no team owner assigned")
	ErrSDMNotFound       = errors.New("employee has no senior delivery manager assigned")
)
