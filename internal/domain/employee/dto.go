package employee

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

// ImportEntry is one row of a directory import file.
type ImportEntry struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	TeamOwnerID *string `json:"team_owner_id,omitempty"`
	SDMID       *string `json:"sdm_id,omitempty"`
	Location    string  `json:"location,omitempty"`
}

// Validate checks a single entry; index prefixes field names so errors in a
// batch point at the offending row.
func (e *ImportEntry) Validate(index int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	field := func(name string) string { return fmt.Sprintf("employees[%d].%s", index, name) }

	if validator.IsEmpty(e.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   field("id"),
			Message: "id is required",
		})
	}
	if validator.IsEmpty(e.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   field("full_name"),
			Message: "full_name is required",
		})
	}
	if !user.Role(strings.ToLower(e.Role)).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   field("role"),
			Message: "role must be one of: employee, team_manager, sdm, hr",
		})
	}
	if e.TeamOwnerID != nil && *e.TeamOwnerID == e.ID {
		errs = append(errs, validator.ValidationError{
			Field:   field("team_owner_id"),
			Message: "an employee cannot own their own team",
		})
	}
	return errs
}

func (e ImportEntry) Employee() Employee {
	return Employee{
		ID:          strings.TrimSpace(e.ID),
		FullName:    strings.TrimSpace(e.FullName),
		Email:       strings.TrimSpace(e.Email),
		Role:        user.Role(strings.ToLower(e.Role)),
		TeamOwnerID: blankToNil(e.TeamOwnerID),
		SDMID:       blankToNil(e.SDMID),
		Location:    strings.TrimSpace(e.Location),
	}
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

type EmployeeResponse struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email,omitempty"`
	Role          user.Role `json:"role"`
	TeamOwnerID   *string   `json:"team_owner_id,omitempty"`
	TeamOwnerName *string   `json:"team_owner_name,omitempty"`
	SDMID         *string   `json:"sdm_id,omitempty"`
	SDMName       *string   `json:"sdm_name,omitempty"`
	Location      string    `json:"location,omitempty"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:            e.ID,
		FullName:      e.FullName,
		Email:         e.Email,
		Role:          e.Role,
		TeamOwnerID:   e.TeamOwnerID,
		TeamOwnerName: e.TeamOwnerName,
		SDMID:         e.SDMID,
		SDMName:       e.SDMName,
		Location:      e.Location,
	}
}
