package wfh

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

const (
	FieldStartDate = "requested_start_date"
	FieldEndDate   = "requested_end_date"
	FieldReason    = "reason"
	FieldCategory  = "category"
	FieldPriority  = "priority"

	// MaxSpanMonths bounds the end date relative to the start date.
	MaxSpanMonths = 6
)

// Candidate is an unvalidated submission, dates as YYYY-MM-DD.
type Candidate struct {
	StartDate string
	EndDate   string
	Reason    string
	Category  string
	Priority  string
}

// ValidatedRequest is a candidate that passed every eligibility rule.
type ValidatedRequest struct {
	StartDate        time.Time
	EndDate          time.Time
	Reason           string
	Category         Category
	Priority         Priority
	TermDurationDays int
}

// Validate checks c against now and returns every violated rule at once.
// On failure the zero ValidatedRequest is returned.
func Validate(c Candidate, now time.Time) (ValidatedRequest, error) {
	var errs validator.ValidationErrors
	today := DateOnly(now)

	start, startOK := parseDate(c.StartDate, FieldStartDate, &errs)
	end, endOK := parseDate(c.EndDate, FieldEndDate, &errs)

	if startOK {
		if validator.IsWeekend(start) {
			errs = append(errs, validator.ValidationError{
				Field:   FieldStartDate,
				Message: "requested_start_date must be a weekday",
			})
		}
		if !start.After(today) {
			errs = append(errs, validator.ValidationError{
				Field:   FieldStartDate,
				Message: "requested_start_date must be in the future",
			})
		}
		if start.After(QuarterEnd(now)) {
			errs = append(errs, validator.ValidationError{
				Field:   FieldStartDate,
				Message: "requested_start_date must not be after the end of the current quarter",
			})
		}
	}

	if endOK {
		if validator.IsWeekend(end) {
			errs = append(errs, validator.ValidationError{
				Field:   FieldEndDate,
				Message: "requested_end_date must be a weekday",
			})
		}
	}

	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   FieldEndDate,
				Message: "requested_end_date must not be before requested_start_date",
			})
		}
		if end.After(start.AddDate(0, MaxSpanMonths, 0)) {
			errs = append(errs, validator.ValidationError{
				Field:   FieldEndDate,
				Message: "requested_end_date must be within 6 months of requested_start_date",
			})
		}
	}

	// Reason
	reason := strings.TrimSpace(c.Reason)
	if reason == "" {
		errs = append(errs, validator.ValidationError{
			Field:   FieldReason,
			Message: "reason is required",
		})
	}

	// Category
	category := Category(strings.TrimSpace(c.Category))
	if category == "" {
		errs = append(errs, validator.ValidationError{
			Field:   FieldCategory,
			Message: "category is required",
		})
	} else if !category.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   FieldCategory,
			Message: "category must be one of: Medical, Family Medical, Maternity, Permanent, Personal, Project Demand",
		})
	}

	// Priority
	priority := Priority(strings.ToUpper(strings.TrimSpace(c.Priority)))
	if priority == "" {
		priority = PriorityModerate
	} else if !priority.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   FieldPriority,
			Message: "priority must be one of: HIGH, MODERATE, LOW",
		})
	}

	if len(errs) > 0 {
		return ValidatedRequest{}, errs
	}

	return ValidatedRequest{
		StartDate:        start,
		EndDate:          end,
		Reason:           reason,
		Category:         category,
		Priority:         priority,
		TermDurationDays: WorkingDays(start, end),
	}, nil
}

func parseDate(value, field string, errs *validator.ValidationErrors) (time.Time, bool) {
	if validator.IsEmpty(value) {
		*errs = append(*errs, validator.ValidationError{
			Field:   field,
			Message: field + " is required",
		})
		return time.Time{}, false
	}
	date, ok := validator.IsValidDate(strings.TrimSpace(value))
	if !ok {
		*errs = append(*errs, validator.ValidationError{
			Field:   field,
			Message: field + " must be in YYYY-MM-DD format",
		})
		return time.Time{}, false
	}
	return date, true
}

// QuarterEnd returns the last day of the calendar quarter containing now.
func QuarterEnd(now time.Time) time.Time {
	y, m, _ := now.Date()
	lastMonth := ((int(m)-1)/3 + 1) * 3
	// Day 0 of the following month is the last day of lastMonth.
	return time.Date(y, time.Month(lastMonth+1), 0, 0, 0, 0, 0, time.UTC)
}

// WorkingDays counts Monday to Friday dates in [start, end] by scanning forward.
func WorkingDays(start, end time.Time) int {
	from, to := DateOnly(start), DateOnly(end)
	days := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !validator.IsWeekend(d) {
			days++
		}
	}
	return days
}
