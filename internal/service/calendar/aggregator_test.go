package calendar

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decidedAt = time.Date(2026, time.October, 20, 9, 0, 0, 0, time.UTC)

func date(s string) time.Time {
	d, err := time.Parse(validator.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func request(id, employeeID, teamOwnerID, sdmID, start, end string) wfh.Request {
	return wfh.Request{
		ID:              id,
		EmployeeID:      employeeID,
		TeamOwnerID:     teamOwnerID,
		SeniorManagerID: sdmID,
		StartDate:       date(start),
		EndDate:         date(end),
		Category:        wfh.CategoryPersonal,
		Priority:        wfh.PriorityModerate,
		Approvals:       wfh.NewApprovalChain(),
	}
}

func decide(t *testing.T, r wfh.Request, decisions ...wfh.ApprovalStatus) wfh.Request {
	t.Helper()
	for i, d := range decisions {
		var err error
		r, err = wfh.Decide(r, wfh.Stages[i], d, "actor", decidedAt)
		require.NoError(t, err)
	}
	return r
}

func TestAggregate_ThreeWeekdayRequest(t *testing.T) {
	r := request("req-1", "emp-1", "tm-1", "sdm-1", "2026-11-03", "2026-11-05")
	from, to := MonthRange(date("2026-11-01"))

	days := Aggregate([]wfh.Request{r}, wfh.Scope{Kind: wfh.ScopeAll}, from, to)

	require.Len(t, days, 30)
	for key, day := range days {
		switch key {
		case "2026-11-03", "2026-11-04", "2026-11-05":
			assert.Equal(t, 1, day.Counts["PENDING_TEAM_MANAGER"], key)
			assert.Equal(t, []string{"req-1"}, day.RequestIDs, key)
			assert.Equal(t, calendar.BadgePending, day.Badge, key)
			assert.Equal(t, 1, day.Teams["tm-1"]["PENDING_TEAM_MANAGER"], key)
		default:
			assert.Empty(t, day.Counts, key)
			assert.Zero(t, day.Total(), key)
			assert.Equal(t, calendar.BadgeNone, day.Badge, key)
		}
	}
}

func TestAggregate_UsesCurrentOverallStatus(t *testing.T) {
	from, to := date("2026-11-02"), date("2026-11-06")
	requests := []wfh.Request{
		decide(t, request("a", "e1", "tm-1", "sdm-1", "2026-11-02", "2026-11-02"), wfh.StatusApproved),
		decide(t, request("b", "e2", "tm-1", "sdm-1", "2026-11-02", "2026-11-02"), wfh.StatusApproved, wfh.StatusApproved),
		decide(t, request("c", "e3", "tm-1", "sdm-1", "2026-11-02", "2026-11-02"), wfh.StatusApproved, wfh.StatusApproved, wfh.StatusApproved),
		decide(t, request("d", "e4", "tm-1", "sdm-1", "2026-11-02", "2026-11-02"), wfh.StatusApproved, wfh.StatusRejected),
	}

	day := Aggregate(requests, wfh.Scope{Kind: wfh.ScopeAll}, from, to)["2026-11-02"]

	assert.Equal(t, map[calendar.Bucket]int{
		"PENDING_SDM":  1,
		"PENDING_HR":   1,
		"APPROVED":     1,
		"REJECTED_SDM": 1,
	}, day.Counts)
	assert.Equal(t, 4, day.Total())
	assert.Equal(t, calendar.BadgeRejected, day.Badge)
}

func TestAggregate_CountsEveryOverlappingDate(t *testing.T) {
	// Friday to Monday spans a weekend; every calendar date is counted.
	r := request("req-1", "emp-1", "tm-1", "sdm-1", "2026-10-30", "2026-11-02")
	from, to := MonthRange(date("2026-11-01"))

	days := Aggregate([]wfh.Request{r}, wfh.Scope{Kind: wfh.ScopeAll}, from, to)

	assert.Equal(t, 1, days["2026-11-01"].Total())
	assert.Equal(t, 1, days["2026-11-02"].Total())
	assert.Zero(t, days["2026-11-03"].Total())
	_, ok := days["2026-10-30"]
	assert.False(t, ok, "dates outside the range are clipped")
}

func TestAggregate_RespectsScope(t *testing.T) {
	requests := []wfh.Request{
		request("a", "emp-1", "tm-1", "sdm-1", "2026-11-03", "2026-11-03"),
		request("b", "emp-2", "tm-2", "sdm-1", "2026-11-03", "2026-11-03"),
		request("c", "emp-3", "tm-3", "sdm-2", "2026-11-03", "2026-11-03"),
	}
	from, to := date("2026-11-03"), date("2026-11-03")

	tests := []struct {
		scope wfh.Scope
		want  []string
	}{
		{wfh.Scope{Kind: wfh.ScopeAll}, []string{"a", "b", "c"}},
		{wfh.Scope{Kind: wfh.ScopeSDM, ID: "sdm-1"}, []string{"a", "b"}},
		{wfh.Scope{Kind: wfh.ScopeTeam, ID: "tm-2"}, []string{"b"}},
		{wfh.Scope{Kind: wfh.ScopeEmployee, ID: "emp-3"}, []string{"c"}},
	}
	for _, tt := range tests {
		day := Aggregate(requests, tt.scope, from, to)["2026-11-03"]
		assert.Equal(t, tt.want, day.RequestIDs, "scope %+v", tt.scope)
	}
}

func TestAggregate_IsFreshAndPure(t *testing.T) {
	r := request("req-1", "emp-1", "tm-1", "sdm-1", "2026-11-03", "2026-11-03")
	requests := []wfh.Request{r}
	from, to := date("2026-11-01"), date("2026-11-30")

	first := Aggregate(requests, wfh.Scope{Kind: wfh.ScopeAll}, from, to)
	second := Aggregate(requests, wfh.Scope{Kind: wfh.ScopeAll}, from, to)
	assert.Equal(t, first, second)

	requests[0] = decide(t, r, wfh.StatusApproved, wfh.StatusApproved, wfh.StatusApproved)
	third := Aggregate(requests, wfh.Scope{Kind: wfh.ScopeAll}, from, to)
	assert.Equal(t, 1, third["2026-11-03"].Counts[calendar.BucketApproved])
	assert.Equal(t, 1, first["2026-11-03"].Counts["PENDING_TEAM_MANAGER"], "earlier result not shared")
}

func TestAggregate_EmptyRange(t *testing.T) {
	days := Aggregate(nil, wfh.Scope{Kind: wfh.ScopeAll}, date("2026-11-05"), date("2026-11-01"))
	assert.Empty(t, days)
}

func TestBadgeFor(t *testing.T) {
	tests := []struct {
		name   string
		counts map[calendar.Bucket]int
		want   calendar.Badge
	}{
		{"none", map[calendar.Bucket]int{}, calendar.BadgeNone},
		{"approved only", map[calendar.Bucket]int{"APPROVED": 3}, calendar.BadgeApproved},
		{"hr beats approved", map[calendar.Bucket]int{"APPROVED": 3, "PENDING_HR": 1}, calendar.BadgePendingHR},
		{"manager beats hr", map[calendar.Bucket]int{"PENDING_HR": 2, "PENDING_SDM": 1}, calendar.BadgePending},
		{"team manager pending", map[calendar.Bucket]int{"PENDING_TEAM_MANAGER": 1}, calendar.BadgePending},
		{"rejected beats all", map[calendar.Bucket]int{"PENDING_TEAM_MANAGER": 4, "REJECTED_HR": 1, "APPROVED": 2}, calendar.BadgeRejected},
		{"zero counts ignored", map[calendar.Bucket]int{"REJECTED_SDM": 0, "APPROVED": 1}, calendar.BadgeApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calendar.BadgeFor(tt.counts))
		})
	}
}

func TestSorted(t *testing.T) {
	days := Sorted(Aggregate(nil, wfh.Scope{Kind: wfh.ScopeAll}, date("2026-11-01"), date("2026-11-05")))

	require.Len(t, days, 5)
	for i, day := range days {
		assert.Equal(t, date("2026-11-01").AddDate(0, 0, i), day.Date)
	}
}

func TestMonthRange(t *testing.T) {
	from, to := MonthRange(date("2028-02-14"))
	assert.Equal(t, date("2028-02-01"), from)
	assert.Equal(t, date("2028-02-29"), to)
}
