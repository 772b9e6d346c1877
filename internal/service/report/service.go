package report

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/query"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

// searchFields mirror the audit table search: employee name, employee id and category.
var searchFields = []string{"employee.name", "employee.id", "request.category"}

type ReportServiceImpl struct {
	requestRepo wfh.RequestRepository
	engine      *query.Engine[wfh.RequestResponse]
	now         func() time.Time
}

func NewReportService(requestRepo wfh.RequestRepository, now func() time.Time) report.ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportServiceImpl{
		requestRepo: requestRepo,
		engine:      query.NewEngine(wfh.RequestResponse.Record, nil),
		now:         now,
	}
}

// GetSummary implements report.ReportService.
func (s *ReportServiceImpl) GetSummary(ctx context.Context, actor user.Actor, filter report.ReportFilter) (report.SummaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return report.SummaryResponse{}, err
	}

	now := s.now()
	requests, err := s.filtered(ctx, actor, filter, now)
	if err != nil {
		return report.SummaryResponse{}, err
	}

	from, to := filter.Period(now)
	resp := report.SummaryResponse{
		Range:          filter.Range,
		StartDate:      formatDate(from),
		EndDate:        formatDate(to),
		Total:          len(requests),
		PendingByStage: make(map[wfh.Stage]int, len(wfh.Stages)),
		GeneratedAt:    now.UTC().Format(time.RFC3339),
	}
	for _, stage := range wfh.Stages {
		resp.PendingByStage[stage] = 0
	}

	for _, r := range requests {
		overall := r.Overall()
		switch overall.Status {
		case wfh.StatusApproved:
			resp.Approved++
			resp.ApprovedDays += r.TermDurationDays
		case wfh.StatusRejected:
			resp.Rejected++
		default:
			resp.Pending++
			resp.PendingByStage[overall.Stage]++
		}
	}
	resp.ApprovalRate = report.ApprovalRate(resp.Approved, resp.Rejected)

	return resp, nil
}

// GetBreakdown implements report.ReportService.
func (s *ReportServiceImpl) GetBreakdown(ctx context.Context, actor user.Actor, req report.BreakdownRequest) (report.BreakdownResponse, error) {
	if err := req.Validate(); err != nil {
		return report.BreakdownResponse{}, err
	}

	now := s.now()
	requests, err := s.filtered(ctx, actor, req.ReportFilter, now)
	if err != nil {
		return report.BreakdownResponse{}, err
	}

	rows := map[string]*report.BreakdownRow{}
	for _, r := range requests {
		key, name, ok := breakdownKey(req.By, r)
		if !ok {
			continue
		}
		row, exists := rows[key]
		if !exists {
			row = &report.BreakdownRow{Key: key, Name: name}
			rows[key] = row
		}
		switch r.Overall().Status {
		case wfh.StatusApproved:
			row.Approved++
		case wfh.StatusRejected:
			row.Rejected++
		default:
			row.Pending++
		}
		row.Total++
	}

	resp := report.BreakdownResponse{
		By:          req.By,
		Range:       req.Range,
		Rows:        make([]report.BreakdownRow, 0, len(rows)),
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
	for _, row := range rows {
		row.ApprovalRate = report.ApprovalRate(row.Approved, row.Rejected)
		resp.Rows = append(resp.Rows, *row)
	}
	sortRows(req.By, resp.Rows)

	return resp, nil
}

func breakdownKey(by string, r wfh.Request) (string, string, bool) {
	switch by {
	case report.ByTeam:
		if r.TeamOwnerName == nil || *r.TeamOwnerName == "" {
			return "", "", false
		}
		return r.TeamOwnerID, *r.TeamOwnerName, true
	case report.ByReason:
		if r.Category == "" {
			return report.OtherReason, report.OtherReason, true
		}
		return string(r.Category), string(r.Category), true
	}
	return r.StartDate.Format("2006-01"), r.StartDate.Format("Jan 2006"), true
}

func sortRows(by string, rows []report.BreakdownRow) {
	switch by {
	case report.ByReason:
		rank := func(key string) int {
			i := slices.Index(wfh.Categories, wfh.Category(key))
			if i < 0 {
				return len(wfh.Categories)
			}
			return i
		}
		sort.Slice(rows, func(i, j int) bool { return rank(rows[i].Key) < rank(rows[j].Key) })
	case report.ByTeam:
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Name != rows[j].Name {
				return rows[i].Name < rows[j].Name
			}
			return rows[i].Key < rows[j].Key
		})
	default:
		// YYYY-MM keys sort chronologically
		sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	}
}

// GetTeamHierarchy implements report.ReportService.
func (s *ReportServiceImpl) GetTeamHierarchy(ctx context.Context, actor user.Actor) (report.TeamHierarchyResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionReportsView) {
		return report.TeamHierarchyResponse{}, wfh.ErrForbidden
	}

	requests, err := s.requestRepo.List(ctx, wfh.RequestFilter{Scope: wfh.ScopeForActor(actor)})
	if err != nil {
		return report.TeamHierarchyResponse{}, fmt.Errorf("failed to list wfh requests: %w", err)
	}

	return report.TeamHierarchyResponse{SDMs: BuildHierarchy(requests)}, nil
}

// BuildHierarchy groups the team owners found in requests under their SDM.
// SDMs are ordered by id; team names are distinct and sorted.
func BuildHierarchy(requests []wfh.Request) []report.SDMTeams {
	type entry struct {
		name  string
		teams map[string]struct{}
	}
	bySDM := map[string]*entry{}
	for _, r := range requests {
		if r.SeniorManagerID == "" || r.TeamOwnerName == nil || *r.TeamOwnerName == "" {
			continue
		}
		e, ok := bySDM[r.SeniorManagerID]
		if !ok {
			name := "SDM " + r.SeniorManagerID
			if r.SDMName != nil && *r.SDMName != "" {
				name = *r.SDMName
			}
			e = &entry{name: name, teams: map[string]struct{}{}}
			bySDM[r.SeniorManagerID] = e
		}
		e.teams[*r.TeamOwnerName] = struct{}{}
	}

	out := make([]report.SDMTeams, 0, len(bySDM))
	for id, e := range bySDM {
		teams := make([]string, 0, len(e.teams))
		for name := range e.teams {
			teams = append(teams, name)
		}
		sort.Strings(teams)
		out = append(out, report.SDMTeams{SDMID: id, SDMName: e.name, Teams: teams})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SDMID < out[j].SDMID })
	return out
}

// filtered loads the actor's visible requests and applies the report filter.
func (s *ReportServiceImpl) filtered(ctx context.Context, actor user.Actor, filter report.ReportFilter, now time.Time) ([]wfh.Request, error) {
	if !user.HasPermission(actor.Role, user.PermissionReportsView) {
		return nil, wfh.ErrForbidden
	}

	requests, err := s.requestRepo.List(ctx, wfh.RequestFilter{
		Scope: wfh.ScopeForActor(actor),
		SDMID: filter.SDMID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list wfh requests: %w", err)
	}

	from, to := filter.Period(now)
	byID := make(map[string]wfh.Request, len(requests))
	rows := make([]wfh.RequestResponse, 0, len(requests))
	for _, r := range requests {
		start := wfh.DateOnly(r.StartDate)
		if from != nil && start.Before(*from) {
			continue
		}
		if to != nil && start.After(*to) {
			continue
		}
		if filter.Team != nil && *filter.Team != "" && !onTeam(r, *filter.Team) {
			continue
		}
		if filter.Status != nil && *filter.Status != "" && string(r.Overall().Status) != *filter.Status {
			continue
		}
		byID[r.ID] = r
		rows = append(rows, wfh.NewRequestResponse(r, actor, nil))
	}

	result := s.engine.Project(rows, query.Options{SearchTerm: filter.Search, SearchFields: searchFields})
	out := make([]wfh.Request, 0, result.Total)
	for _, g := range result.Groups {
		for _, row := range g.Items {
			out = append(out, byID[row.ID])
		}
	}
	return out, nil
}

func onTeam(r wfh.Request, team string) bool {
	if r.TeamOwnerID == team {
		return true
	}
	return r.TeamOwnerName != nil && strings.EqualFold(*r.TeamOwnerName, team)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(validator.DateLayout)
	return &s
}
