package wfh

import (
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/query"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

const (
	MaxAttachmentSize = 5 << 20
	MaxLocationLength = 255
)

var AllowedAttachmentExts = []string{".pdf", ".jpg", ".jpeg", ".png"}

type SubmitRequest struct {
	EmployeeID string `json:"-"`
	StartDate  string `json:"requested_start_date"` // YYYY-MM-DD
	EndDate    string `json:"requested_end_date"`   // YYYY-MM-DD
	Reason     string `json:"reason"`
	Category   string `json:"category"`
	Priority   string `json:"priority,omitempty"` // defaults to MODERATE
	Location   string `json:"location,omitempty"`

	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *SubmitRequest) Candidate() Candidate {
	return Candidate{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Reason:    r.Reason,
		Category:  r.Category,
		Priority:  r.Priority,
	}
}

// Validate checks the request shape. Date and eligibility rules are applied by
// the package-level Validate, which needs the current time.
func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	// Employee ID
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	// Location
	if len(r.Location) > MaxLocationLength {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location must not exceed 255 characters",
		})
	}

	errs = append(errs, validateAttachment(r.FileHeader)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EditRequest struct {
	ID         string `json:"-"`
	EmployeeID string `json:"-"`
	StartDate  string `json:"requested_start_date"`
	EndDate    string `json:"requested_end_date"`
	Reason     string `json:"reason"`
	Category   string `json:"category"`
	Priority   string `json:"priority,omitempty"`
	Location   string `json:"location,omitempty"`

	// RemoveAttachment drops the stored attachment when no new file is sent.
	RemoveAttachment bool `json:"remove_attachment,omitempty"`

	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *EditRequest) Candidate() Candidate {
	return Candidate{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Reason:    r.Reason,
		Category:  r.Category,
		Priority:  r.Priority,
	}
}

func (r *EditRequest) Validate() error {
	var errs validator.ValidationErrors

	// ID
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if len(r.Location) > MaxLocationLength {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location must not exceed 255 characters",
		})
	}

	errs = append(errs, validateAttachment(r.FileHeader)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateAttachment(header *multipart.FileHeader) validator.ValidationErrors {
	if header == nil {
		return nil
	}
	var errs validator.ValidationErrors
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !validator.IsInSlice(ext, AllowedAttachmentExts) {
		errs = append(errs, validator.ValidationError{
			Field:   "attachment",
			Message: "attachment must be a pdf, jpg, jpeg or png file",
		})
	}
	if header.Size > MaxAttachmentSize {
		errs = append(errs, validator.ValidationError{
			Field:   "attachment",
			Message: "attachment must not exceed 5MB",
		})
	}
	return errs
}

type DecideRequest struct {
	RequestID string         `json:"-"`
	Decision  ApprovalStatus `json:"-"`
}

func (r *DecideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}
	if r.Decision != StatusApproved && r.Decision != StatusRejected {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be one of: APPROVED, REJECTED",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Sort keys accepted by ListFilter, as dotted paths into a request row.
const (
	SortStartDate    = "request.requested_start_date"
	SortEndDate      = "request.requested_end_date"
	SortPriority     = "request.priority"
	SortCategory     = "request.category"
	SortStatus       = "request.status"
	SortDuration     = "request.term_duration_days"
	SortSubmittedAt  = "request.submitted_at"
	SortEmployeeName = "employee.name"
)

var SortKeys = []string{
	SortStartDate, SortEndDate, SortPriority, SortCategory,
	SortStatus, SortDuration, SortSubmittedAt, SortEmployeeName,
}

// Group keys accepted by ListFilter.
const (
	GroupByTeam = "team"
	GroupBySDM  = "sdm"
)

type ListFilter struct {
	// Search & Filter
	Search      string  `json:"search,omitempty"`
	Status      *string `json:"status,omitempty"` // PENDING, APPROVED, REJECTED
	TeamOwnerID *string `json:"team_owner_id,omitempty"`
	SDMID       *string `json:"sdm_id,omitempty"`

	// Sorting
	SortBy    string `json:"sort_by"`    // one of SortKeys
	SortOrder string `json:"sort_order"` // asc, desc

	// Grouping
	GroupBy string `json:"group_by"` // none, team, sdm
}

func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors

	// Status validation
	if f.Status != nil && *f.Status != "" {
		status := strings.ToUpper(*f.Status)
		validStatuses := []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}
		if !validator.IsInSlice(status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: PENDING, APPROVED, REJECTED",
			})
		}
		f.Status = &status
	}

	// Sort validation
	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, SortKeys) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: " + strings.Join(SortKeys, ", "),
			})
		}
	} else {
		f.SortBy = SortSubmittedAt
	}

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{string(query.Asc), string(query.Desc)}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = string(query.Desc) // newest first
	}

	// Group validation
	if f.GroupBy == "" {
		f.GroupBy = query.GroupNone
	}
	if !validator.IsInSlice(f.GroupBy, []string{query.GroupNone, GroupByTeam, GroupBySDM}) {
		errs = append(errs, validator.ValidationError{
			Field:   "group_by",
			Message: "group_by must be one of: none, team, sdm",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ApprovalResponse struct {
	Stage         Stage          `json:"stage"`
	Status        ApprovalStatus `json:"status"`
	DisplayStatus DisplayStatus  `json:"display_status"`
	ActedBy       *string        `json:"acted_by"`
	ActionDate    *string        `json:"action_date"`
}

type RequestResponse struct {
	ID               string             `json:"id"`
	EmployeeID       string             `json:"employee_id"`
	EmployeeName     *string            `json:"employee_name,omitempty"`
	StartDate        string             `json:"requested_start_date"`
	EndDate          string             `json:"requested_end_date"`
	Reason           string             `json:"reason"`
	Category         Category           `json:"category"`
	Priority         Priority           `json:"priority"`
	TermDurationDays int                `json:"term_duration_days"`
	AttachmentURL    *string            `json:"attachment_url,omitempty"`
	TeamOwnerID      string             `json:"team_owner_id"`
	TeamOwnerName    *string            `json:"team_owner_name,omitempty"`
	SeniorManagerID  string             `json:"sdm_id"`
	SDMName          *string            `json:"sdm_name,omitempty"`
	Location         string             `json:"location,omitempty"`
	Status           ApprovalStatus     `json:"status"`
	StatusStage      Stage              `json:"status_stage,omitempty"`
	StatusLabel      string             `json:"status_label"`
	Approvals        []ApprovalResponse `json:"approvals"`
	CanAct           bool               `json:"can_act"`
	SubmittedAt      string             `json:"submitted_at"`
	UpdatedAt        string             `json:"updated_at"`
}

// NewRequestResponse renders r as seen by viewer. attachmentURL replaces the
// stored path when set.
func NewRequestResponse(r Request, viewer user.Actor, attachmentURL *string) RequestResponse {
	overall := r.Overall()
	approvals := make([]ApprovalResponse, len(r.Approvals))
	for i, rec := range r.Approvals {
		var actionDate *string
		if rec.ActionDate != nil {
			s := rec.ActionDate.UTC().Format(time.RFC3339)
			actionDate = &s
		}
		approvals[i] = ApprovalResponse{
			Stage:         rec.Stage,
			Status:        rec.Status,
			DisplayStatus: r.StageView(rec.Stage),
			ActedBy:       rec.ActedBy,
			ActionDate:    actionDate,
		}
	}

	if attachmentURL == nil {
		attachmentURL = r.AttachmentPath
	}

	return RequestResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		StartDate:        r.StartDate.Format(validator.DateLayout),
		EndDate:          r.EndDate.Format(validator.DateLayout),
		Reason:           r.Reason,
		Category:         r.Category,
		Priority:         r.Priority,
		TermDurationDays: r.TermDurationDays,
		AttachmentURL:    attachmentURL,
		TeamOwnerID:      r.TeamOwnerID,
		TeamOwnerName:    r.TeamOwnerName,
		SeniorManagerID:  r.SeniorManagerID,
		SDMName:          r.SDMName,
		Location:         r.Location,
		Status:           overall.Status,
		StatusStage:      overall.Stage,
		StatusLabel:      overall.Label(),
		Approvals:        approvals,
		CanAct:           r.ActionableBy(viewer),
		SubmittedAt:      r.SubmittedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Record exposes the response as a nested row for search, sort and grouping.
func (r RequestResponse) Record() query.Record {
	stages := query.Record{}
	for _, a := range r.Approvals {
		stages[strings.ToLower(string(a.Stage))] = string(a.DisplayStatus)
	}
	return query.Record{
		"id": r.ID,
		"request": query.Record{
			"requested_start_date": r.StartDate,
			"requested_end_date":   r.EndDate,
			"reason":               r.Reason,
			"category":             string(r.Category),
			"priority":             string(r.Priority),
			"status":               r.StatusLabel,
			"term_duration_days":   r.TermDurationDays,
			"submitted_at":         r.SubmittedAt,
			"location":             r.Location,
		},
		"approvals":  stages,
		"employee":   query.Record{"id": r.EmployeeID, "name": r.EmployeeName},
		"team_owner": query.Record{"id": r.TeamOwnerID, "name": r.TeamOwnerName},
		"sdm":        query.Record{"id": r.SeniorManagerID, "name": r.SDMName},
	}
}

// SearchFields are the row paths matched by a free-text search.
var SearchFields = []string{
	"id",
	"request.category",
	"request.reason",
	"request.status",
	"request.priority",
	"employee.name",
}

type RequestGroupResponse struct {
	Key      string            `json:"key"`
	Name     string            `json:"name"`
	Requests []RequestResponse `json:"requests"`
}

type ListRequestResponse struct {
	TotalCount int                    `json:"total_count"`
	SortBy     string                 `json:"sort_by"`
	SortOrder  string                 `json:"sort_order"`
	GroupBy    string                 `json:"group_by"`
	Groups     []RequestGroupResponse `json:"groups"`
}
