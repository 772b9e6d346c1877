package calendar

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

type CalendarServiceImpl struct {
	requestRepo wfh.RequestRepository
	now         func() time.Time
}

func NewCalendarService(requestRepo wfh.RequestRepository, now func() time.Time) calendar.CalendarService {
	if now == nil {
		now = time.Now
	}
	return &CalendarServiceImpl{
		requestRepo: requestRepo,
		now:         now,
	}
}

// GetCalendar implements calendar.CalendarService.
func (s *CalendarServiceImpl) GetCalendar(ctx context.Context, actor user.Actor, req calendar.CalendarRequest) (calendar.CalendarResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.CalendarResponse{}, err
	}

	month := s.now()
	if req.Month != "" {
		month, _ = validator.IsValidMonth(req.Month)
	}
	from, to := MonthRange(month)

	scope := wfh.ScopeForActor(actor)
	requests, err := s.requestRepo.List(ctx, wfh.RequestFilter{
		Scope:       scope,
		EmployeeID:  req.EmployeeID,
		TeamOwnerID: req.TeamOwnerID,
		SDMID:       req.SDMID,
		From:        &from,
		To:          &to,
	})
	if err != nil {
		return calendar.CalendarResponse{}, fmt.Errorf("failed to list wfh requests: %w", err)
	}

	days := Sorted(Aggregate(requests, scope, from, to))
	resp := calendar.CalendarResponse{
		Month:     from.Format("2006-01"),
		Scope:     scope.Kind,
		StartDate: from.Format(validator.DateLayout),
		EndDate:   to.Format(validator.DateLayout),
		Days:      make([]calendar.DayResponse, len(days)),
	}
	for i, day := range days {
		resp.Days[i] = calendar.NewDayResponse(day)
	}
	return resp, nil
}

// GetDateDetails implements calendar.CalendarService.
func (s *CalendarServiceImpl) GetDateDetails(ctx context.Context, actor user.Actor, req calendar.DateDetailsRequest) (calendar.DateDetailsResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.DateDetailsResponse{}, err
	}
	date, _ := validator.IsValidDate(req.Date)

	scope := wfh.ScopeForActor(actor)
	requests, err := s.requestRepo.List(ctx, wfh.RequestFilter{
		Scope:       scope,
		TeamOwnerID: req.TeamOwnerID,
		SDMID:       req.SDMID,
		From:        &date,
		To:          &date,
	})
	if err != nil {
		return calendar.DateDetailsResponse{}, fmt.Errorf("failed to list wfh requests: %w", err)
	}

	day := Aggregate(requests, scope, date, date)[req.Date]

	teams := map[string]*calendar.TeamDetail{}
	var order []string
	for _, r := range requests {
		if !scope.Includes(r) || !r.Spans(date) {
			continue
		}
		team, ok := teams[r.TeamOwnerID]
		if !ok {
			team = &calendar.TeamDetail{
				TeamOwnerID:   r.TeamOwnerID,
				TeamOwnerName: r.TeamOwnerName,
				Counts:        day.Teams[r.TeamOwnerID],
			}
			teams[r.TeamOwnerID] = team
			order = append(order, r.TeamOwnerID)
		}
		team.Requests = append(team.Requests, wfh.NewRequestResponse(r, actor, nil))
	}
	sort.Strings(order)

	resp := calendar.DateDetailsResponse{
		Date:  req.Date,
		Day:   calendar.NewDayResponse(day),
		Teams: make([]calendar.TeamDetail, 0, len(order)),
	}
	for _, id := range order {
		resp.Teams = append(resp.Teams, *teams[id])
	}
	return resp, nil
}
