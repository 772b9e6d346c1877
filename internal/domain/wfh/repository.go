package wfh

import (
	"context"
	"time"
)

// RequestFilter selects requests. Scope is always applied; the optional fields
// narrow further inside it.
type RequestFilter struct {
	Scope       Scope
	EmployeeID  *string
	TeamOwnerID *string
	SDMID       *string
	// From and To keep requests whose [start, end] overlaps the window.
	From *time.Time
	To   *time.Time
}

// Matches applies the filter to r in memory.
func (f RequestFilter) Matches(r Request) bool {
	if !f.Scope.Includes(r) {
		return false
	}
	if f.EmployeeID != nil && r.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.TeamOwnerID != nil && r.TeamOwnerID != *f.TeamOwnerID {
		return false
	}
	if f.SDMID != nil && r.SeniorManagerID != *f.SDMID {
		return false
	}
	if f.From != nil && DateOnly(r.EndDate).Before(DateOnly(*f.From)) {
		return false
	}
	if f.To != nil && DateOnly(r.StartDate).After(DateOnly(*f.To)) {
		return false
	}
	return true
}

// RequestRepository - interface for wfh_requests and wfh_approvals tables
type RequestRepository interface {
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	// List returns matching requests ordered by submission time, oldest first.
	List(ctx context.Context, filter RequestFilter) ([]Request, error)
	// Update rewrites the editable fields. Fails with ErrAlreadyInProgress once
	// the first stage has been decided.
	Update(ctx context.Context, request Request) error
	// UpdateStage stores the decision for record.Stage only if that stage is
	// still PENDING, otherwise ErrAlreadyDecided.
	UpdateStage(ctx context.Context, requestID string, record ApprovalRecord, updatedAt time.Time) error
	// Delete removes the request only while the first stage is PENDING,
	// otherwise ErrAlreadyInProgress.
	Delete(ctx context.Context, id string) error
}
