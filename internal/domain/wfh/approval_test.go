package wfh

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decidedAt = time.Date(2026, time.October, 20, 9, 30, 0, 0, time.UTC)

func newTestRequest() Request {
	return Request{
		ID:               "req-1",
		EmployeeID:       "emp-1",
		StartDate:        date("2026-10-19"),
		EndDate:          date("2026-10-23"),
		Reason:           "Recovering from surgery",
		Category:         CategoryMedical,
		Priority:         PriorityHigh,
		TermDurationDays: 5,
		TeamOwnerID:      "tm-1",
		SeniorManagerID:  "sdm-1",
		Approvals:        NewApprovalChain(),
		SubmittedAt:      testNow,
		UpdatedAt:        testNow,
	}
}

func statuses(r Request) []ApprovalStatus {
	out := make([]ApprovalStatus, len(r.Approvals))
	for i, rec := range r.Approvals {
		out[i] = rec.Status
	}
	return out
}

func mustApprove(t *testing.T, r Request, stage Stage) Request {
	t.Helper()
	out, err := Approve(r, stage, "actor-"+string(stage), decidedAt)
	require.NoError(t, err)
	return out
}

func TestNewApprovalChain(t *testing.T) {
	chain := NewApprovalChain()

	require.Len(t, chain, 3)
	for i, rec := range chain {
		assert.Equal(t, Stages[i], rec.Stage)
		assert.Equal(t, StatusPending, rec.Status)
		assert.Nil(t, rec.ActedBy)
		assert.Nil(t, rec.ActionDate)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name     string
		statuses [3]ApprovalStatus
		want     OverallStatus
		label    string
	}{
		{"fresh", [3]ApprovalStatus{StatusPending, StatusPending, StatusPending}, OverallStatus{StatusPending, StageTeamManager}, "PENDING_TEAM_MANAGER"},
		{"with sdm", [3]ApprovalStatus{StatusApproved, StatusPending, StatusPending}, OverallStatus{StatusPending, StageSDM}, "PENDING_SDM"},
		{"with hr", [3]ApprovalStatus{StatusApproved, StatusApproved, StatusPending}, OverallStatus{StatusPending, StageHR}, "PENDING_HR"},
		{"completed", [3]ApprovalStatus{StatusApproved, StatusApproved, StatusApproved}, OverallStatus{Status: StatusApproved}, "APPROVED"},
		{"rejected by tm", [3]ApprovalStatus{StatusRejected, StatusPending, StatusPending}, OverallStatus{StatusRejected, StageTeamManager}, "REJECTED_TEAM_MANAGER"},
		{"rejected by sdm", [3]ApprovalStatus{StatusApproved, StatusRejected, StatusPending}, OverallStatus{StatusRejected, StageSDM}, "REJECTED_SDM"},
		{"rejected by hr", [3]ApprovalStatus{StatusApproved, StatusApproved, StatusRejected}, OverallStatus{StatusRejected, StageHR}, "REJECTED_HR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRequest()
			for i, s := range tt.statuses {
				r.Approvals[i].Status = s
			}

			got := r.Overall()

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.label, got.Label())
			assert.Equal(t, got, r.Overall(), "pure function of the records")
		})
	}
}

func TestApprove_FullChain(t *testing.T) {
	r := newTestRequest()

	r = mustApprove(t, r, StageTeamManager)
	stage, ok := r.CurrentStage()
	require.True(t, ok)
	assert.Equal(t, StageSDM, stage)

	r = mustApprove(t, r, StageSDM)
	r = mustApprove(t, r, StageHR)

	assert.Equal(t, OverallStatus{Status: StatusApproved}, r.Overall())
	_, ok = r.CurrentStage()
	assert.False(t, ok)
	for _, rec := range r.Approvals {
		require.NotNil(t, rec.ActedBy)
		assert.Equal(t, "actor-"+string(rec.Stage), *rec.ActedBy)
		require.NotNil(t, rec.ActionDate)
		assert.Equal(t, decidedAt, *rec.ActionDate)
	}
	assert.Equal(t, decidedAt, r.UpdatedAt)
}

func TestApprove_DoesNotMutateInput(t *testing.T) {
	r := newTestRequest()

	out, err := Approve(r, StageTeamManager, "tm-1", decidedAt)

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, out.Approvals[0].Status)
	assert.Equal(t, StatusPending, r.Approvals[0].Status)
	assert.Nil(t, r.Approvals[0].ActedBy)
}

func TestDecide_OutOfOrder(t *testing.T) {
	tests := []struct {
		name  string
		setup func(Request) Request
		stage Stage
	}{
		{"sdm before tm", func(r Request) Request { return r }, StageSDM},
		{"hr before tm", func(r Request) Request { return r }, StageHR},
		{"hr before sdm", func(r Request) Request { return mustApprove(t, r, StageTeamManager) }, StageHR},
	}
	for _, tt := range tests {
		for _, decision := range []ApprovalStatus{StatusApproved, StatusRejected} {
			t.Run(tt.name+"/"+string(decision), func(t *testing.T) {
				r := tt.setup(newTestRequest())
				before := statuses(r)

				out, err := Decide(r, tt.stage, decision, "someone", decidedAt)

				assert.ErrorIs(t, err, ErrOutOfOrder)
				assert.Equal(t, before, statuses(out), "state unchanged")
				assert.Equal(t, before, statuses(r))
			})
		}
	}
}

func TestDecide_AlreadyDecided(t *testing.T) {
	r := mustApprove(t, newTestRequest(), StageTeamManager)

	_, err := Approve(r, StageTeamManager, "tm-1", decidedAt)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	_, err = Reject(r, StageTeamManager, "tm-1", decidedAt)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestReject_IsTerminal(t *testing.T) {
	r, err := Reject(newTestRequest(), StageTeamManager, "tm-1", decidedAt)
	require.NoError(t, err)

	assert.Equal(t, OverallStatus{StatusRejected, StageTeamManager}, r.Overall())

	for _, stage := range []Stage{StageSDM, StageHR} {
		for _, decision := range []ApprovalStatus{StatusApproved, StatusRejected} {
			_, err := Decide(r, stage, decision, "someone", decidedAt)
			assert.ErrorIs(t, err, ErrOutOfOrder, "%s %s", stage, decision)
		}
		assert.Equal(t, DisplayNotReviewed, r.StageView(stage))
		assert.False(t, r.CanAct(stage, stage.OwnerRole()))
	}
	assert.Equal(t, DisplayRejected, r.StageView(StageTeamManager))
	_, ok := r.CurrentStage()
	assert.False(t, ok)
}

func TestReject_ByHRAfterApprovals(t *testing.T) {
	r := mustApprove(t, newTestRequest(), StageTeamManager)
	r = mustApprove(t, r, StageSDM)

	r, err := Reject(r, StageHR, "hr-1", decidedAt)
	require.NoError(t, err)

	assert.Equal(t, OverallStatus{StatusRejected, StageHR}, r.Overall())
	assert.Equal(t, []ApprovalStatus{StatusApproved, StatusApproved, StatusRejected}, statuses(r))

	for _, stage := range []Stage{StageTeamManager, StageSDM} {
		_, err := Reject(r, stage, "someone", decidedAt)
		assert.ErrorIs(t, err, ErrAlreadyDecided, "approved stages are immutable")
	}
}

func TestDecide_InvalidInput(t *testing.T) {
	r := newTestRequest()

	_, err := Decide(r, StageTeamManager, StatusPending, "tm-1", decidedAt)
	assert.ErrorIs(t, err, ErrInvalidDecision)

	_, err = Approve(r, Stage("CEO"), "ceo", decidedAt)
	assert.ErrorIs(t, err, ErrInvalidStage)

	r.Approvals = r.Approvals[:2]
	_, err = Approve(r, StageTeamManager, "tm-1", decidedAt)
	assert.ErrorIs(t, err, ErrMalformedChain)
}

func TestCanAct(t *testing.T) {
	fresh := newTestRequest()
	afterTM := mustApprove(t, fresh, StageTeamManager)

	tests := []struct {
		name  string
		req   Request
		stage Stage
		role  user.Role
		want  bool
	}{
		{"tm on fresh", fresh, StageTeamManager, user.RoleTeamManager, true},
		{"wrong role", fresh, StageTeamManager, user.RoleHR, false},
		{"employee", fresh, StageTeamManager, user.RoleEmployee, false},
		{"sdm too early", fresh, StageSDM, user.RoleSDM, false},
		{"sdm after tm", afterTM, StageSDM, user.RoleSDM, true},
		{"tm already decided", afterTM, StageTeamManager, user.RoleTeamManager, false},
		{"hr too early", afterTM, StageHR, user.RoleHR, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.CanAct(tt.stage, tt.role))
		})
	}
}

func TestActionableBy(t *testing.T) {
	fresh := newTestRequest()
	afterTM := mustApprove(t, fresh, StageTeamManager)
	afterSDM := mustApprove(t, afterTM, StageSDM)
	rejected, err := Reject(fresh, StageTeamManager, "tm-1", decidedAt)
	require.NoError(t, err)

	tm1 := user.Actor{EmployeeID: "tm-1", Role: user.RoleTeamManager}
	tm2 := user.Actor{EmployeeID: "tm-2", Role: user.RoleTeamManager}
	sdm1 := user.Actor{EmployeeID: "sdm-1", Role: user.RoleSDM}
	sdm2 := user.Actor{EmployeeID: "sdm-2", Role: user.RoleSDM}
	hr := user.Actor{EmployeeID: "hr-1", Role: user.RoleHR}
	emp := user.Actor{EmployeeID: "emp-1", Role: user.RoleEmployee}

	tests := []struct {
		name  string
		req   Request
		actor user.Actor
		want  bool
	}{
		{"assigned tm on fresh", fresh, tm1, true},
		{"other tm on fresh", fresh, tm2, false},
		{"requester", fresh, emp, false},
		{"sdm before tm", fresh, sdm1, false},
		{"assigned sdm after tm", afterTM, sdm1, true},
		{"other sdm after tm", afterTM, sdm2, false},
		{"tm after own approval", afterTM, tm1, false},
		{"hr after sdm", afterSDM, hr, true},
		{"hr on rejected", rejected, hr, false},
		{"tm on rejected", rejected, tm1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.ActionableBy(tt.actor))
		})
	}
}

func TestAssignedTo(t *testing.T) {
	r := newTestRequest()

	assert.True(t, r.AssignedTo(StageTeamManager, "tm-1"))
	assert.False(t, r.AssignedTo(StageTeamManager, "sdm-1"))
	assert.True(t, r.AssignedTo(StageSDM, "sdm-1"))
	assert.False(t, r.AssignedTo(StageSDM, "tm-1"))
	assert.True(t, r.AssignedTo(StageHR, "hr-7"))
	assert.False(t, r.AssignedTo(StageHR, ""))
	assert.False(t, r.AssignedTo(Stage("CEO"), "tm-1"))
}

func TestStageView(t *testing.T) {
	r := newTestRequest()
	assert.Equal(t, DisplayPending, r.StageView(StageTeamManager))
	assert.Equal(t, DisplayNotReviewed, r.StageView(StageSDM))
	assert.Equal(t, DisplayNotReviewed, r.StageView(StageHR))

	r = mustApprove(t, r, StageTeamManager)
	assert.Equal(t, DisplayApproved, r.StageView(StageTeamManager))
	assert.Equal(t, DisplayPending, r.StageView(StageSDM))
	assert.Equal(t, DisplayNotReviewed, r.StageView(StageHR))

	r, err := Reject(r, StageSDM, "sdm-1", decidedAt)
	require.NoError(t, err)
	assert.Equal(t, DisplayRejected, r.StageView(StageSDM))
	assert.Equal(t, DisplayNotReviewed, r.StageView(StageHR))
}

func TestCancel(t *testing.T) {
	r := newTestRequest()

	assert.NoError(t, Cancel(r, "emp-1"))
	assert.ErrorIs(t, Cancel(r, "emp-2"), ErrForbidden)

	decided := mustApprove(t, r, StageTeamManager)
	assert.ErrorIs(t, Cancel(decided, "emp-1"), ErrAlreadyInProgress)

	rejected, err := Reject(r, StageTeamManager, "tm-1", decidedAt)
	require.NoError(t, err)
	assert.ErrorIs(t, Cancel(rejected, "emp-1"), ErrAlreadyInProgress)
}

func TestEdit(t *testing.T) {
	r := newTestRequest()
	v := ValidatedRequest{
		StartDate:        date("2026-10-26"),
		EndDate:          date("2026-10-27"),
		Reason:           "Child is sick",
		Category:         CategoryFamilyMedical,
		Priority:         PriorityLow,
		TermDurationDays: 2,
	}

	out, err := Edit(r, v, decidedAt)

	require.NoError(t, err)
	assert.Equal(t, v.StartDate, out.StartDate)
	assert.Equal(t, v.EndDate, out.EndDate)
	assert.Equal(t, "Child is sick", out.Reason)
	assert.Equal(t, CategoryFamilyMedical, out.Category)
	assert.Equal(t, PriorityLow, out.Priority)
	assert.Equal(t, 2, out.TermDurationDays)
	assert.Equal(t, decidedAt, out.UpdatedAt)
	assert.Equal(t, date("2026-10-19"), r.StartDate, "input untouched")

	decided := mustApprove(t, r, StageTeamManager)
	unchanged, err := Edit(decided, v, decidedAt)
	assert.ErrorIs(t, err, ErrAlreadyInProgress)
	assert.Equal(t, date("2026-10-19"), unchanged.StartDate, "dates are frozen once a stage is decided")
}

func TestStageOwnership(t *testing.T) {
	assert.Equal(t, user.RoleTeamManager, StageTeamManager.OwnerRole())
	assert.Equal(t, user.RoleSDM, StageSDM.OwnerRole())
	assert.Equal(t, user.RoleHR, StageHR.OwnerRole())

	stage, ok := StageForRole(user.RoleSDM)
	assert.True(t, ok)
	assert.Equal(t, StageSDM, stage)

	_, ok = StageForRole(user.RoleEmployee)
	assert.False(t, ok)
}

func TestScope_Includes(t *testing.T) {
	r := newTestRequest()

	assert.True(t, Scope{Kind: ScopeAll}.Includes(r))
	assert.True(t, Scope{Kind: ScopeEmployee, ID: "emp-1"}.Includes(r))
	assert.False(t, Scope{Kind: ScopeEmployee, ID: "emp-2"}.Includes(r))
	assert.True(t, Scope{Kind: ScopeTeam, ID: "tm-1"}.Includes(r))
	assert.False(t, Scope{Kind: ScopeTeam, ID: "tm-2"}.Includes(r))
	assert.True(t, Scope{Kind: ScopeSDM, ID: "sdm-1"}.Includes(r))
	assert.False(t, Scope{Kind: "unknown"}.Includes(r))

	assert.Equal(t, Scope{Kind: ScopeAll}, ScopeForActor(user.Actor{EmployeeID: "hr-1", Role: user.RoleHR}))
	assert.Equal(t, Scope{Kind: ScopeSDM, ID: "sdm-1"}, ScopeForActor(user.Actor{EmployeeID: "sdm-1", Role: user.RoleSDM}))
	assert.Equal(t, Scope{Kind: ScopeTeam, ID: "tm-1"}, ScopeForActor(user.Actor{EmployeeID: "tm-1", Role: user.RoleTeamManager}))
	assert.Equal(t, Scope{Kind: ScopeEmployee, ID: "emp-1"}, ScopeForActor(user.Actor{EmployeeID: "emp-1", Role: user.RoleEmployee}))
	assert.Equal(t, Scope{Kind: ScopeEmployee, ID: "x-1"}, ScopeForActor(user.Actor{EmployeeID: "x-1", Role: user.Role("intern")}))
}

func TestRequestFilter_Matches(t *testing.T) {
	r := newTestRequest()
	from, to := date("2026-10-23"), date("2026-10-30")
	late := date("2026-10-24")

	assert.True(t, RequestFilter{Scope: Scope{Kind: ScopeAll}, From: &from, To: &to}.Matches(r))
	assert.False(t, RequestFilter{Scope: Scope{Kind: ScopeAll}, From: &late}.Matches(r))

	tm := "tm-2"
	assert.False(t, RequestFilter{Scope: Scope{Kind: ScopeAll}, TeamOwnerID: &tm}.Matches(r))
	assert.False(t, RequestFilter{Scope: Scope{Kind: ScopeSDM, ID: "sdm-2"}}.Matches(r))
}
