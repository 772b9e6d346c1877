package wfh

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
)

// OverallStatus is the single status shown to the employee.
// Stage names the rejecting stage for REJECTED and the current stage for PENDING.
type OverallStatus struct {
	Status ApprovalStatus
	Stage  Stage
}

// Label renders the status with its stage, e.g. PENDING_SDM or REJECTED_HR.
func (o OverallStatus) Label() string {
	if o.Stage == "" {
		return string(o.Status)
	}
	return string(o.Status) + "_" + string(o.Stage)
}

// NewApprovalChain returns the three stage records, all PENDING.
func NewApprovalChain() []ApprovalRecord {
	chain := make([]ApprovalRecord, len(Stages))
	for i, stage := range Stages {
		chain[i] = ApprovalRecord{Stage: stage, Status: StatusPending}
	}
	return chain
}

// CheckChain reports ErrMalformedChain unless the request carries exactly
// one record per stage in approval order.
func (r Request) CheckChain() error {
	if len(r.Approvals) != len(Stages) {
		return fmt.Errorf("%w: %d records", ErrMalformedChain, len(r.Approvals))
	}
	for i, rec := range r.Approvals {
		if rec.Stage != Stages[i] {
			return fmt.Errorf("%w: position %d holds %q", ErrMalformedChain, i, rec.Stage)
		}
		switch rec.Status {
		case StatusPending, StatusApproved, StatusRejected:
		default:
			return fmt.Errorf("%w: unknown status %q", ErrMalformedChain, rec.Status)
		}
	}
	return nil
}

func (r Request) Overall() OverallStatus {
	for _, rec := range r.Approvals {
		if rec.Status == StatusRejected {
			return OverallStatus{Status: StatusRejected, Stage: rec.Stage}
		}
	}
	for _, rec := range r.Approvals {
		if rec.Status == StatusPending {
			return OverallStatus{Status: StatusPending, Stage: rec.Stage}
		}
	}
	return OverallStatus{Status: StatusApproved}
}

// CurrentStage returns the stage awaiting a decision, if any.
func (r Request) CurrentStage() (Stage, bool) {
	overall := r.Overall()
	if overall.Status != StatusPending {
		return "", false
	}
	return overall.Stage, true
}

// CanAct reports whether role may decide stage right now.
func (r Request) CanAct(stage Stage, role user.Role) bool {
	if stage.OwnerRole() != role || role == "" {
		return false
	}
	return r.gate(stage) == nil
}

// AssignedTo reports whether employeeID is the approver of stage for r.
// The HR stage belongs to every HR employee.
func (r Request) AssignedTo(stage Stage, employeeID string) bool {
	switch stage {
	case StageTeamManager:
		return r.TeamOwnerID == employeeID
	case StageSDM:
		return r.SeniorManagerID == employeeID
	case StageHR:
		return employeeID != ""
	}
	return false
}

// ActionableBy reports whether actor may decide r right now.
func (r Request) ActionableBy(actor user.Actor) bool {
	stage, ok := r.CurrentStage()
	if !ok {
		return false
	}
	return r.CanAct(stage, actor.Role) && r.AssignedTo(stage, actor.EmployeeID)
}

// StageView is the per-stage status for display. Pending stages that are not
// actionable, because a predecessor is undecided or rejected, read NOT_REVIEWED.
func (r Request) StageView(stage Stage) DisplayStatus {
	rec, ok := r.Record(stage)
	if !ok {
		return DisplayNotReviewed
	}
	switch rec.Status {
	case StatusApproved:
		return DisplayApproved
	case StatusRejected:
		return DisplayRejected
	}
	if r.predecessorsApproved(stage) {
		return DisplayPending
	}
	return DisplayNotReviewed
}

// FirstStagePending reports whether no manager has acted yet.
func (r Request) FirstStagePending() bool {
	rec, ok := r.Record(Stages[0])
	return ok && rec.Status == StatusPending
}

func (r Request) predecessorsApproved(stage Stage) bool {
	for _, prior := range Stages[:stage.Index()] {
		rec, ok := r.Record(prior)
		if !ok || rec.Status != StatusApproved {
			return false
		}
	}
	return true
}

// gate checks ordering first, then that stage itself is undecided.
func (r Request) gate(stage Stage) error {
	if !stage.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}
	if err := r.CheckChain(); err != nil {
		return err
	}
	if !r.predecessorsApproved(stage) {
		return ErrOutOfOrder
	}
	if rec, _ := r.Record(stage); rec.Status != StatusPending {
		return ErrAlreadyDecided
	}
	return nil
}

// Approve returns a copy of req with stage APPROVED by actorID. req is untouched.
func Approve(req Request, stage Stage, actorID string, now time.Time) (Request, error) {
	return Decide(req, stage, StatusApproved, actorID, now)
}

// Reject returns a copy of req with stage REJECTED by actorID. Later stages
// can never be decided afterwards.
func Reject(req Request, stage Stage, actorID string, now time.Time) (Request, error) {
	return Decide(req, stage, StatusRejected, actorID, now)
}

// Decide moves stage out of PENDING to decision.
func Decide(req Request, stage Stage, decision ApprovalStatus, actorID string, now time.Time) (Request, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return req, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}
	if err := req.gate(stage); err != nil {
		return req, err
	}

	out := req.Clone()
	idx := stage.Index()
	actor := actorID
	at := now
	out.Approvals[idx].Status = decision
	out.Approvals[idx].ActedBy = &actor
	out.Approvals[idx].ActionDate = &at
	out.UpdatedAt = now
	return out, nil
}

// Cancel checks that actorID may withdraw req.
func Cancel(req Request, actorID string) error {
	if req.EmployeeID != actorID {
		return ErrForbidden
	}
	if !req.FirstStagePending() {
		return ErrAlreadyInProgress
	}
	return nil
}

// Edit applies revalidated fields to a request nobody has acted on yet.
func Edit(req Request, v ValidatedRequest, now time.Time) (Request, error) {
	if !req.FirstStagePending() {
		return req, ErrAlreadyInProgress
	}
	out := req.Clone()
	out.StartDate = v.StartDate
	out.EndDate = v.EndDate
	out.Reason = v.Reason
	out.Category = v.Category
	out.Priority = v.Priority
	out.TermDurationDays = v.TermDurationDays
	out.UpdatedAt = now
	return out, nil
}
