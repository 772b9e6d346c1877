package calendar

import (
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

type CalendarRequest struct {
	Month       string  `json:"month"` // YYYY-MM, defaults to the current month
	EmployeeID  *string `json:"employee_id,omitempty"`
	TeamOwnerID *string `json:"team_owner_id,omitempty"`
	SDMID       *string `json:"sdm_id,omitempty"`
}

func (r *CalendarRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month != "" {
		if _, valid := validator.IsValidMonth(r.Month); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be in YYYY-MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DateDetailsRequest struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	TeamOwnerID *string `json:"team_owner_id,omitempty"`
	SDMID       *string `json:"sdm_id,omitempty"`
}

func (r *DateDetailsRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DayResponse struct {
	Date       string                    `json:"date"`
	Total      int                       `json:"total"`
	Badge      Badge                     `json:"badge"`
	Counts     map[Bucket]int            `json:"counts"`
	Teams      map[string]map[Bucket]int `json:"teams"`
	RequestIDs []string                  `json:"request_ids"`
}

func NewDayResponse(d DayAggregate) DayResponse {
	ids := d.RequestIDs
	if ids == nil {
		ids = []string{}
	}
	return DayResponse{
		Date:       d.Date.Format(validator.DateLayout),
		Total:      d.Total(),
		Badge:      d.Badge,
		Counts:     d.Counts,
		Teams:      d.Teams,
		RequestIDs: ids,
	}
}

type CalendarResponse struct {
	Month     string        `json:"month"`
	Scope     wfh.ScopeKind `json:"scope"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Days      []DayResponse `json:"days"`
}

type TeamDetail struct {
	TeamOwnerID   string                `json:"team_owner_id"`
	TeamOwnerName *string               `json:"team_owner_name,omitempty"`
	Counts        map[Bucket]int        `json:"counts"`
	Requests      []wfh.RequestResponse `json:"requests"`
}

type DateDetailsResponse struct {
	Date  string       `json:"date"`
	Day   DayResponse  `json:"summary"`
	Teams []TeamDetail `json:"teams"`
}
