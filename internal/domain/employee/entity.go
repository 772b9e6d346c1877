package employee

import "github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"

// Employee is a directory entry. Team and SDM links are resolved when a
// request is submitted so each request carries its own approver chain.
type Employee struct {
	ID            string
	FullName      string
	Email         string
	Role          user.Role
	TeamOwnerID   *string
	SDMID         *string
	Location      string
	TeamOwnerName *string
	SDMName       *string
}
