package http

import (
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Summary cards
	GetSummary(w http.ResponseWriter, r *http.Request)

	// Audit breakdown by month, team or reason
	GetBreakdown(w http.ResponseWriter, r *http.Request)

	// SDM to team hierarchy
	GetTeamHierarchy(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetSummary handles GET /reports/summary
func (h *reportHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GetSummary(r.Context(), actor, reportFilter(r.URL.Query()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetBreakdown handles GET /reports/breakdown
func (h *reportHandlerImpl) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := report.BreakdownRequest{
		ReportFilter: reportFilter(q),
		By:           q.Get("by"),
	}

	result, err := h.reportService.GetBreakdown(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetTeamHierarchy handles GET /reports/hierarchy
func (h *reportHandlerImpl) GetTeamHierarchy(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GetTeamHierarchy(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func reportFilter(q url.Values) report.ReportFilter {
	filter := report.ReportFilter{
		Range:     q.Get("range"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Search:    q.Get("search"),
	}
	if sdmID := q.Get("sdm_id"); sdmID != "" {
		filter.SDMID = &sdmID
	}
	if team := q.Get("team"); team != "" {
		filter.Team = &team
	}
	if status := q.Get("status"); status != "" {
		filter.Status = &status
	}
	return filter
}
