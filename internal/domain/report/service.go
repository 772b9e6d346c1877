package report

import (
	"context"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
)

// ReportService builds audit views over the WFH requests the actor can see.
type ReportService interface {
	GetSummary(ctx context.Context, actor user.Actor, filter ReportFilter) (SummaryResponse, error)
	GetBreakdown(ctx context.Context, actor user.Actor, req BreakdownRequest) (BreakdownResponse, error)
	GetTeamHierarchy(ctx context.Context, actor user.Actor) (TeamHierarchyResponse, error)
}
