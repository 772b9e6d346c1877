package report

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/wfh-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sunday 18 October 2026.
var fixedNow = time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC)

var (
	hr  = user.Actor{EmployeeID: "hr-1", Role: user.RoleHR}
	sdm = user.Actor{EmployeeID: "sdm-1", Role: user.RoleSDM}
	tm  = user.Actor{EmployeeID: "tm-1", Role: user.RoleTeamManager}
	emp = user.Actor{EmployeeID: "emp-1", Role: user.RoleEmployee}
)

func date(s string) time.Time {
	d, err := time.Parse(validator.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

type seed struct {
	id, employeeID, teamOwnerID, sdmID, start, end string
	category                                       wfh.Category
	days                                           int
	decisions                                      []wfh.ApprovalStatus
}

func newTestService(t *testing.T) report.ReportService {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	employees := memory.NewEmployeeRepository(store)
	for id, name := range map[string]string{
		"sdm-1": "Sara Dewi",
		"sdm-2": "Samuel Diaz",
		"tm-1":  "Tomas Moreau",
		"tm-2":  "Tara Mills",
		"tm-3":  "Theo Marsh",
		"emp-1": "Eka Putri",
		"emp-2": "Evan Ortiz",
		"emp-3": "Elena Costa",
	} {
		require.NoError(t, employees.Upsert(ctx, employee.Employee{ID: id, FullName: name}))
	}

	requests := memory.NewWfhRequestRepository(store)
	for _, s := range []seed{
		{"r1", "emp-1", "tm-1", "sdm-1", "2026-10-14", "2026-10-15", wfh.CategoryMedical, 2,
			[]wfh.ApprovalStatus{wfh.StatusApproved, wfh.StatusApproved, wfh.StatusApproved}},
		{"r2", "emp-2", "tm-2", "sdm-1", "2026-09-21", "2026-09-22", wfh.CategoryPersonal, 2,
			[]wfh.ApprovalStatus{wfh.StatusApproved, wfh.StatusRejected}},
		{"r3", "emp-3", "tm-3", "sdm-2", "2026-07-01", "2026-07-01", wfh.CategoryMedical, 1, nil},
		{"r4", "emp-1", "tm-1", "sdm-1", "2026-10-20", "2026-10-21", wfh.CategoryFamilyMedical, 2,
			[]wfh.ApprovalStatus{wfh.StatusApproved}},
	} {
		r := wfh.Request{
			ID:               s.id,
			EmployeeID:       s.employeeID,
			TeamOwnerID:      s.teamOwnerID,
			SeniorManagerID:  s.sdmID,
			StartDate:        date(s.start),
			EndDate:          date(s.end),
			Reason:           "Working from home",
			Category:         s.category,
			Priority:         wfh.PriorityModerate,
			TermDurationDays: s.days,
			Approvals:        wfh.NewApprovalChain(),
			SubmittedAt:      fixedNow,
			UpdatedAt:        fixedNow,
		}
		for i, d := range s.decisions {
			var err error
			r, err = wfh.Decide(r, wfh.Stages[i], d, "actor", fixedNow)
			require.NoError(t, err)
		}
		_, err := requests.Create(ctx, r)
		require.NoError(t, err)
	}

	return NewReportService(requests, func() time.Time { return fixedNow })
}

func strPtr(s string) *string { return &s }

func TestGetSummary_AllRequests(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.GetSummary(context.Background(), hr, report.ReportFilter{})
	require.NoError(t, err)

	assert.Equal(t, report.RangeAll, resp.Range)
	assert.Nil(t, resp.StartDate)
	assert.Nil(t, resp.EndDate)
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 1, resp.Approved)
	assert.Equal(t, 1, resp.Rejected)
	assert.Equal(t, 2, resp.Pending)
	assert.Equal(t, map[wfh.Stage]int{wfh.StageTeamManager: 1, wfh.StageSDM: 1, wfh.StageHR: 0}, resp.PendingByStage)
	assert.Equal(t, 2, resp.ApprovedDays)
	assert.Equal(t, "0.50", resp.ApprovalRate.StringFixed(2))
}

func TestGetSummary_Filters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		actor  user.Actor
		filter report.ReportFilter
		total  int
		rate   string
	}{
		{"last week", hr, report.ReportFilter{Range: report.RangeWeek}, 1, "1.00"},
		{"last month", hr, report.ReportFilter{Range: report.RangeMonth}, 2, "0.50"},
		{"last quarter", hr, report.ReportFilter{Range: report.RangeQuarter}, 2, "0.50"},
		{"custom july", hr, report.ReportFilter{Range: report.RangeCustom, StartDate: "2026-07-01", EndDate: "2026-07-31"}, 1, "0.00"},
		{"sdm filter", hr, report.ReportFilter{SDMID: strPtr("sdm-2")}, 1, "0.00"},
		{"team by name", hr, report.ReportFilter{Team: strPtr("tara mills")}, 1, "0.00"},
		{"status", hr, report.ReportFilter{Status: strPtr("approved")}, 1, "1.00"},
		{"search by employee", hr, report.ReportFilter{Search: "elena"}, 1, "0.00"},
		{"search by category", hr, report.ReportFilter{Search: "family"}, 1, "0.00"},
		{"sdm scope", sdm, report.ReportFilter{}, 3, "0.50"},
		{"team manager scope", tm, report.ReportFilter{}, 2, "1.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetSummary(ctx, tt.actor, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.total, resp.Total)
			assert.Equal(t, tt.rate, resp.ApprovalRate.StringFixed(2))
		})
	}
}

func TestGetSummary_Period(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.GetSummary(context.Background(), hr, report.ReportFilter{Range: "WEEK"})
	require.NoError(t, err)

	require.NotNil(t, resp.StartDate)
	require.NotNil(t, resp.EndDate)
	assert.Equal(t, "2026-10-11", *resp.StartDate)
	assert.Equal(t, "2026-10-18", *resp.EndDate)
}

func TestGetSummary_Rejections(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetSummary(ctx, emp, report.ReportFilter{})
	assert.ErrorIs(t, err, wfh.ErrForbidden)

	_, err = svc.GetSummary(ctx, hr, report.ReportFilter{Range: report.RangeCustom, StartDate: "2026-08-01", EndDate: "2026-07-01"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.HasField("end_date"))

	_, err = svc.GetSummary(ctx, hr, report.ReportFilter{Range: "year"})
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.HasField("range"))
}

func breakdownKeys(rows []report.BreakdownRow) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}

func TestGetBreakdown(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	byMonth, err := svc.GetBreakdown(ctx, hr, report.BreakdownRequest{})
	require.NoError(t, err)
	assert.Equal(t, report.ByMonth, byMonth.By)
	assert.Equal(t, []string{"2026-07", "2026-09", "2026-10"}, breakdownKeys(byMonth.Rows))
	october := byMonth.Rows[2]
	assert.Equal(t, "Oct 2026", october.Name)
	assert.Equal(t, 2, october.Total)
	assert.Equal(t, 1, october.Approved)
	assert.Equal(t, 1, october.Pending)
	assert.Equal(t, "1.00", october.ApprovalRate.StringFixed(2))

	byTeam, err := svc.GetBreakdown(ctx, hr, report.BreakdownRequest{By: report.ByTeam})
	require.NoError(t, err)
	assert.Equal(t, []string{"tm-2", "tm-3", "tm-1"}, breakdownKeys(byTeam.Rows))
	assert.Equal(t, "Tara Mills", byTeam.Rows[0].Name)
	assert.Equal(t, 1, byTeam.Rows[0].Rejected)

	byReason, err := svc.GetBreakdown(ctx, hr, report.BreakdownRequest{By: report.ByReason})
	require.NoError(t, err)
	assert.Equal(t, []string{"Medical", "Family Medical", "Personal"}, breakdownKeys(byReason.Rows))
	assert.Equal(t, 2, byReason.Rows[0].Total)

	filtered, err := svc.GetBreakdown(ctx, hr, report.BreakdownRequest{
		ReportFilter: report.ReportFilter{Range: report.RangeMonth},
		By:           report.ByReason,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Medical", "Personal"}, breakdownKeys(filtered.Rows))

	_, err = svc.GetBreakdown(ctx, hr, report.BreakdownRequest{By: "weekday"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.HasField("by"))
}

func TestGetTeamHierarchy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	resp, err := svc.GetTeamHierarchy(ctx, hr)
	require.NoError(t, err)
	assert.Equal(t, []report.SDMTeams{
		{SDMID: "sdm-1", SDMName: "Sara Dewi", Teams: []string{"Tara Mills", "Tomas Moreau"}},
		{SDMID: "sdm-2", SDMName: "Samuel Diaz", Teams: []string{"Theo Marsh"}},
	}, resp.SDMs)

	resp, err = svc.GetTeamHierarchy(ctx, tm)
	require.NoError(t, err)
	assert.Equal(t, []report.SDMTeams{
		{SDMID: "sdm-1", SDMName: "Sara Dewi", Teams: []string{"Tomas Moreau"}},
	}, resp.SDMs)

	_, err = svc.GetTeamHierarchy(ctx, emp)
	assert.ErrorIs(t, err, wfh.ErrForbidden)
}

func TestBuildHierarchy_FallsBackToSDMID(t *testing.T) {
	owner := "Tomas Moreau"
	got := BuildHierarchy([]wfh.Request{
		{SeniorManagerID: "sdm-9", TeamOwnerID: "tm-1", TeamOwnerName: &owner},
		{SeniorManagerID: "sdm-9", TeamOwnerID: "tm-1", TeamOwnerName: &owner},
		{SeniorManagerID: "sdm-9", TeamOwnerID: "tm-x"},
	})

	assert.Equal(t, []report.SDMTeams{{SDMID: "sdm-9", SDMName: "SDM sdm-9", Teams: []string{"Tomas Moreau"}}}, got)
}

func TestApprovalRate(t *testing.T) {
	assert.Equal(t, "0.00", report.ApprovalRate(0, 0).StringFixed(2))
	assert.Equal(t, "0.67", report.ApprovalRate(2, 1).StringFixed(2))
	assert.Equal(t, "0.33", report.ApprovalRate(1, 2).StringFixed(2))
}
