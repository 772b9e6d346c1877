package report

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Date range presets, all matched against the requested start date.
const (
	RangeAll     = "all"
	RangeWeek    = "week"    // last 7 days including today
	RangeMonth   = "month"   // last calendar month up to today
	RangeQuarter = "quarter" // last 3 months up to today
	RangeCustom  = "custom"
)

var Ranges = []string{RangeAll, RangeWeek, RangeMonth, RangeQuarter, RangeCustom}

// Breakdown dimensions.
const (
	ByMonth  = "month"
	ByTeam   = "team"
	ByReason = "reason" // request category
)

// OtherReason labels requests without a category.
const OtherReason = "Other"

// ========================================
// FILTER
// ========================================

type ReportFilter struct {
	Range     string  `json:"range"`
	StartDate string  `json:"start_date,omitempty"` // custom range only
	EndDate   string  `json:"end_date,omitempty"`   // custom range only
	SDMID     *string `json:"sdm_id,omitempty"`
	Team      *string `json:"team,omitempty"`   // team owner name or id
	Status    *string `json:"status,omitempty"` // PENDING, APPROVED, REJECTED
	Search    string  `json:"search,omitempty"`
}

func (f *ReportFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Range == "" {
		f.Range = RangeAll
	}
	f.Range = strings.ToLower(f.Range)
	if !validator.IsInSlice(f.Range, Ranges) {
		errs = append(errs, validator.ValidationError{
			Field:   "range",
			Message: "range must be one of: " + strings.Join(Ranges, ", "),
		})
	}

	if f.Range == RangeCustom {
		start, startOK := validator.IsValidDate(f.StartDate)
		end, endOK := validator.IsValidDate(f.EndDate)
		if !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date is required in YYYY-MM-DD format for a custom range",
			})
		}
		if !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date is required in YYYY-MM-DD format for a custom range",
			})
		}
		if startOK && endOK && end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		}
	}

	if f.Status != nil && *f.Status != "" {
		status := strings.ToUpper(*f.Status)
		validStatuses := []string{string(wfh.StatusPending), string(wfh.StatusApproved), string(wfh.StatusRejected)}
		if !validator.IsInSlice(status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: PENDING, APPROVED, REJECTED",
			})
		}
		f.Status = &status
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Period returns the inclusive start-date window of the filter. Both bounds
// are nil for RangeAll. Call after Validate.
func (f ReportFilter) Period(now time.Time) (*time.Time, *time.Time) {
	today := wfh.DateOnly(now)
	var from time.Time
	switch f.Range {
	case RangeWeek:
		from = today.AddDate(0, 0, -7)
	case RangeMonth:
		from = today.AddDate(0, -1, 0)
	case RangeQuarter:
		from = today.AddDate(0, -3, 0)
	case RangeCustom:
		start, _ := validator.IsValidDate(f.StartDate)
		end, _ := validator.IsValidDate(f.EndDate)
		return &start, &end
	default:
		return nil, nil
	}
	return &from, &today
}

type BreakdownRequest struct {
	ReportFilter
	By string `json:"by"`
}

func (r *BreakdownRequest) Validate() error {
	var errs validator.ValidationErrors

	if err := r.ReportFilter.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}

	if r.By == "" {
		r.By = ByMonth
	}
	if !validator.IsInSlice(r.By, []string{ByMonth, ByTeam, ByReason}) {
		errs = append(errs, validator.ValidationError{
			Field:   "by",
			Message: "by must be one of: month, team, reason",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// SUMMARY
// ========================================

type SummaryResponse struct {
	Range          string            `json:"range"`
	StartDate      *string           `json:"start_date"`
	EndDate        *string           `json:"end_date"`
	Total          int               `json:"total"`
	Pending        int               `json:"pending"`
	Approved       int               `json:"approved"`
	Rejected       int               `json:"rejected"`
	PendingByStage map[wfh.Stage]int `json:"pending_by_stage"`
	ApprovedDays   int               `json:"approved_days"` // working days across approved requests
	ApprovalRate   decimal.Decimal   `json:"approval_rate"` // approved / decided, 2 places
	GeneratedAt    string            `json:"generated_at"`
}

// ========================================
// BREAKDOWN
// ========================================

type BreakdownRow struct {
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	Approved     int             `json:"approved"`
	Rejected     int             `json:"rejected"`
	Pending      int             `json:"pending"`
	Total        int             `json:"total"`
	ApprovalRate decimal.Decimal `json:"approval_rate"`
}

type BreakdownResponse struct {
	By          string         `json:"by"`
	Range       string         `json:"range"`
	Rows        []BreakdownRow `json:"rows"`
	GeneratedAt string         `json:"generated_at"`
}

// ========================================
// TEAM HIERARCHY
// ========================================

// SDMTeams is one senior delivery manager and the team owners under them.
type SDMTeams struct {
	SDMID   string   `json:"sdm_id"`
	SDMName string   `json:"sdm_name"`
	Teams   []string `json:"teams"` // distinct team owner names, sorted
}

type TeamHierarchyResponse struct {
	SDMs []SDMTeams `json:"sdms"`
}

// ApprovalRate is approved / (approved + rejected) rounded to 2 places,
// zero when nothing is decided yet.
func ApprovalRate(approved, rejected int) decimal.Decimal {
	decided := approved + rejected
	if decided == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(approved)).
		DivRound(decimal.NewFromInt(int64(decided)), 2)
}
