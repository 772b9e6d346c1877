package wfh

import (
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
)

type Stage string

const (
	StageTeamManager Stage = "TEAM_MANAGER"
	StageSDM         Stage = "SDM"
	StageHR          Stage = "HR"
)

// Stages is the fixed approval order.
var Stages = []Stage{StageTeamManager, StageSDM, StageHR}

// Index returns the position of s in the approval order, or -1.
func (s Stage) Index() int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

func (s Stage) IsValid() bool {
	return s.Index() >= 0
}

// OwnerRole returns the role allowed to decide s.
func (s Stage) OwnerRole() user.Role {
	switch s {
	case StageTeamManager:
		return user.RoleTeamManager
	case StageSDM:
		return user.RoleSDM
	case StageHR:
		return user.RoleHR
	}
	return ""
}

// StageForRole returns the stage owned by role.
func StageForRole(role user.Role) (Stage, bool) {
	for _, stage := range Stages {
		if stage.OwnerRole() == role {
			return stage, true
		}
	}
	return "", false
}

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// DisplayStatus is what a dashboard shows for a single stage.
type DisplayStatus string

const (
	DisplayPending     DisplayStatus = "PENDING"
	DisplayApproved    DisplayStatus = "APPROVED"
	DisplayRejected    DisplayStatus = "REJECTED"
	DisplayNotReviewed DisplayStatus = "NOT_REVIEWED"
)

type Category string

const (
	CategoryMedical       Category = "Medical"
	CategoryFamilyMedical Category = "Family Medical"
	CategoryMaternity     Category = "Maternity"
	CategoryPermanent     Category = "Permanent"
	CategoryPersonal      Category = "Personal"
	CategoryProjectDemand Category = "Project Demand"
)

// Categories in their domain priority order, used when sorting by category.
var Categories = []Category{
	CategoryMedical,
	CategoryFamilyMedical,
	CategoryMaternity,
	CategoryPermanent,
	CategoryPersonal,
	CategoryProjectDemand,
}

func (c Category) IsValid() bool {
	for _, category := range Categories {
		if category == c {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityHigh     Priority = "HIGH"
	PriorityModerate Priority = "MODERATE"
	PriorityLow      Priority = "LOW"
)

// Priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityModerate, PriorityLow}

func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityModerate || p == PriorityLow
}

// ApprovalRecord is the decision of one stage.
type ApprovalRecord struct {
	Stage      Stage
	Status     ApprovalStatus
	ActedBy    *string
	ActionDate *time.Time
}

// Request is a WFH request with its embedded approval chain.
type Request struct {
	ID               string
	EmployeeID       string
	StartDate        time.Time
	EndDate          time.Time
	Reason           string
	Category         Category
	Priority         Priority
	TermDurationDays int
	AttachmentPath   *string
	TeamOwnerID      string
	SeniorManagerID  string
	Location         string

	Approvals []ApprovalRecord

	SubmittedAt time.Time
	UpdatedAt   time.Time

	// Relationships (for responses)
	EmployeeName  *string
	TeamOwnerName *string
	SDMName       *string
}

// Record returns the approval record for stage.
func (r Request) Record(stage Stage) (ApprovalRecord, bool) {
	for _, rec := range r.Approvals {
		if rec.Stage == stage {
			return rec, true
		}
	}
	return ApprovalRecord{}, false
}

// Spans reports whether date falls inside [StartDate, EndDate].
func (r Request) Spans(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(r.StartDate)) && !d.After(DateOnly(r.EndDate))
}

// Clone returns a copy that shares no mutable state with r.
func (r Request) Clone() Request {
	out := r
	out.Approvals = make([]ApprovalRecord, len(r.Approvals))
	copy(out.Approvals, r.Approvals)
	return out
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
