package http

import (
	"net/http"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/response"
)

type CalendarHandler interface {
	GetCalendar(w http.ResponseWriter, r *http.Request)
	GetDateDetails(w http.ResponseWriter, r *http.Request)
}

type calendarHandlerImpl struct {
	calendarService calendar.CalendarService
}

func NewCalendarHandler(calendarService calendar.CalendarService) CalendarHandler {
	return &calendarHandlerImpl{
		calendarService: calendarService,
	}
}

// GetCalendar handles GET /calendar
func (h *calendarHandlerImpl) GetCalendar(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := calendar.CalendarRequest{Month: q.Get("month")}
	if employeeID := q.Get("employee_id"); employeeID != "" {
		req.EmployeeID = &employeeID
	}
	if teamOwnerID := q.Get("team_owner_id"); teamOwnerID != "" {
		req.TeamOwnerID = &teamOwnerID
	}
	if sdmID := q.Get("sdm_id"); sdmID != "" {
		req.SDMID = &sdmID
	}

	result, err := h.calendarService.GetCalendar(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetDateDetails handles GET /calendar/details
func (h *calendarHandlerImpl) GetDateDetails(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := calendar.DateDetailsRequest{Date: q.Get("date")}
	if teamOwnerID := q.Get("team_owner_id"); teamOwnerID != "" {
		req.TeamOwnerID = &teamOwnerID
	}
	if sdmID := q.Get("sdm_id"); sdmID != "" {
		req.SDMID = &sdmID
	}

	result, err := h.calendarService.GetDateDetails(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
