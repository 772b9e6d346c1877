package wfh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/query"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/wfh-backend-go/internal/service/file"
	"github.com/google/uuid"
)

type WfhServiceImpl struct {
	requestRepo  wfh.RequestRepository
	employeeRepo employee.EmployeeRepository
	fileService  file.FileService
	engine       *query.Engine[wfh.RequestResponse]
	now          func() time.Time
}

func NewWfhService(
	requestRepo wfh.RequestRepository,
	employeeRepo employee.EmployeeRepository,
	fileService file.FileService,
	now func() time.Time,
) wfh.WfhService {
	if now == nil {
		now = time.Now
	}
	return &WfhServiceImpl{
		requestRepo:  requestRepo,
		employeeRepo: employeeRepo,
		fileService:  fileService,
		engine:       NewRequestEngine(),
		now:          now,
	}
}

// NewRequestEngine returns the query engine shared by every request table.
func NewRequestEngine() *query.Engine[wfh.RequestResponse] {
	priorities := make([]string, len(wfh.Priorities))
	for i, p := range wfh.Priorities {
		priorities[i] = string(p)
	}
	categories := make([]string, len(wfh.Categories))
	for i, c := range wfh.Categories {
		categories[i] = string(c)
	}
	return query.NewEngine(wfh.RequestResponse.Record, map[string]query.Comparator{
		wfh.SortPriority:    query.OrderComparator(priorities...),
		wfh.SortCategory:    query.OrderComparator(categories...),
		wfh.SortStartDate:   query.DateComparator,
		wfh.SortEndDate:     query.DateComparator,
		wfh.SortSubmittedAt: query.DateComparator,
	})
}

// SubmitRequest implements wfh.WfhService.
func (s *WfhServiceImpl) SubmitRequest(ctx context.Context, actor user.Actor, req wfh.SubmitRequest) (wfh.RequestResponse, error) {
	if !user.HasPermission(actor.Role, user.PermissionWfhCreate) {
		return wfh.RequestResponse{}, wfh.ErrForbidden
	}

	req.EmployeeID = actor.EmployeeID
	if err := req.Validate(); err != nil {
		return wfh.RequestResponse{}, err
	}

	now := s.now()
	validated, err := wfh.Validate(req.Candidate(), now)
	if err != nil {
		return wfh.RequestResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return wfh.RequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if emp.TeamOwnerID == nil || *emp.TeamOwnerID == "" {
		return wfh.RequestResponse{}, employee.ErrTeamOwnerNotFound
	}
	if emp.SDMID == nil || *emp.SDMID == "" {
		return wfh.RequestResponse{}, employee.ErrSDMNotFound
	}

	id, err := uuid.NewV7()
	if err != nil {
		return wfh.RequestResponse{}, fmt.Errorf("failed to generate request id: %w", err)
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = emp.Location
	}

	request := wfh.Request{
		ID:               id.String(),
		EmployeeID:       emp.ID,
		StartDate:        validated.StartDate,
		EndDate:          validated.EndDate,
		Reason:           validated.Reason,
		Category:         validated.Category,
		Priority:         validated.Priority,
		TermDurationDays: validated.TermDurationDays,
		TeamOwnerID:      *emp.TeamOwnerID,
		SeniorManagerID:  *emp.SDMID,
		Location:         location,
		Approvals:        wfh.NewApprovalChain(),
		SubmittedAt:      now,
		UpdatedAt:        now,
	}

	if req.File != nil && req.FileHeader != nil {
		key, err := s.fileService.UploadWfhAttachment(ctx, emp.ID, req.File, req.FileHeader.Filename)
		if err != nil {
			return wfh.RequestResponse{}, wfh.Collaborator("upload attachment", err)
		}
		request.AttachmentPath = &key
	}

	created, err := s.requestRepo.Create(ctx, request)
	if err != nil {
		s.discardFile(ctx, request.AttachmentPath)
		return wfh.RequestResponse{}, fmt.Errorf("failed to create wfh request: %w", err)
	}

	slog.Info("wfh request submitted",
		"request_id", created.ID,
		"employee_id", created.EmployeeID,
		"start_date", validated.StartDate.Format("2006-01-02"),
		"end_date", validated.EndDate.Format("2006-01-02"),
		"term_duration_days", created.TermDurationDays,
	)

	return s.toResponse(ctx, actor, created), nil
}

// EditRequest implements wfh.WfhService.
func (s *WfhServiceImpl) EditRequest(ctx context.Context, actor user.Actor, req wfh.EditRequest) (wfh.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return wfh.RequestResponse{}, err
	}

	current, err := s.requestRepo.GetByID(ctx, req.ID)
	if err != nil {
		return wfh.RequestResponse{}, fmt.Errorf("failed to get wfh request: %w", err)
	}
	if current.EmployeeID != actor.EmployeeID {
		return wfh.RequestResponse{}, wfh.ErrForbidden
	}
	if !current.FirstStagePending() {
		return wfh.RequestResponse{}, wfh.ErrAlreadyInProgress
	}

	now := s.now()
	validated, err := wfh.Validate(req.Candidate(), now)
	if err != nil {
		return wfh.RequestResponse{}, err
	}

	updated, err := wfh.Edit(current, validated, now)
	if err != nil {
		return wfh.RequestResponse{}, err
	}
	if location := strings.TrimSpace(req.Location); location != "" {
		updated.Location = location
	}

	var replaced *string
	if req.File != nil && req.FileHeader != nil {
		key, err := s.fileService.UploadWfhAttachment(ctx, current.EmployeeID, req.File, req.FileHeader.Filename)
		if err != nil {
			return wfh.RequestResponse{}, wfh.Collaborator("upload attachment", err)
		}
		replaced = current.AttachmentPath
		updated.AttachmentPath = &key
	} else if req.RemoveAttachment {
		replaced = current.AttachmentPath
		updated.AttachmentPath = nil
	}

	if err := s.requestRepo.Update(ctx, updated); err != nil {
		if updated.AttachmentPath != current.AttachmentPath {
			s.discardFile(ctx, updated.AttachmentPath)
		}
		return wfh.RequestResponse{}, fmt.Errorf("failed to update wfh request: %w", err)
	}
	s.discardFile(ctx, replaced)

	slog.Info("wfh request edited", "request_id", updated.ID, "employee_id", actor.EmployeeID)

	return s.toResponse(ctx, actor, updated), nil
}

// CancelRequest implements wfh.WfhService.
func (s *WfhServiceImpl) CancelRequest(ctx context.Context, actor user.Actor, requestID string) error {
	current, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to get wfh request: %w", err)
	}

	if err := wfh.Cancel(current, actor.EmployeeID); err != nil {
		return err
	}

	if err := s.requestRepo.Delete(ctx, requestID); err != nil {
		return fmt.Errorf("failed to cancel wfh request: %w", err)
	}
	s.discardFile(ctx, current.AttachmentPath)

	slog.Info("wfh request cancelled", "request_id", requestID, "employee_id", actor.EmployeeID)
	return nil
}

// Decide implements wfh.WfhService.
func (s *WfhServiceImpl) Decide(ctx context.Context, actor user.Actor, req wfh.DecideRequest) (wfh.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return wfh.RequestResponse{}, err
	}

	stage, ok := wfh.StageForRole(actor.Role)
	if !ok {
		return wfh.RequestResponse{}, wfh.ErrForbidden
	}

	current, err := s.requestRepo.GetByID(ctx, req.RequestID)
	if err != nil {
		return wfh.RequestResponse{}, fmt.Errorf("failed to get wfh request: %w", err)
	}
	if !current.AssignedTo(stage, actor.EmployeeID) {
		return wfh.RequestResponse{}, wfh.ErrForbidden
	}

	now := s.now()
	decided, err := wfh.Decide(current, stage, req.Decision, actor.EmployeeID, now)
	if err != nil {
		return wfh.RequestResponse{}, err
	}

	record, _ := decided.Record(stage)
	if err := s.requestRepo.UpdateStage(ctx, decided.ID, record, now); err != nil {
		return wfh.RequestResponse{}, fmt.Errorf("failed to record decision: %w", err)
	}

	overall := decided.Overall()
	slog.Info("wfh request decided",
		"request_id", decided.ID,
		"stage", stage,
		"decision", req.Decision,
		"acted_by", actor.EmployeeID,
		"overall_status", overall.Label(),
	)

	return s.toResponse(ctx, actor, decided), nil
}

// GetRequest implements wfh.WfhService.
func (s *WfhServiceImpl) GetRequest(ctx context.Context, actor user.Actor, requestID string) (wfh.RequestResponse, error) {
	current, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return wfh.RequestResponse{}, fmt.Errorf("failed to get wfh request: %w", err)
	}
	if current.EmployeeID != actor.EmployeeID && !wfh.ScopeForActor(actor).Includes(current) {
		return wfh.RequestResponse{}, wfh.ErrForbidden
	}
	return s.toResponse(ctx, actor, current), nil
}

// OpenAttachment implements wfh.WfhService.
func (s *WfhServiceImpl) OpenAttachment(ctx context.Context, actor user.Actor, requestID string) (io.ReadCloser, string, error) {
	current, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get wfh request: %w", err)
	}
	if current.EmployeeID != actor.EmployeeID && !wfh.ScopeForActor(actor).Includes(current) {
		return nil, "", wfh.ErrForbidden
	}
	if current.AttachmentPath == nil {
		return nil, "", wfh.ErrAttachmentNotFound
	}

	rc, err := s.fileService.OpenFile(ctx, *current.AttachmentPath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, "", wfh.ErrAttachmentNotFound
		}
		return nil, "", wfh.Collaborator("open attachment", err)
	}
	return rc, path.Base(*current.AttachmentPath), nil
}

// ListForRole implements wfh.WfhService.
func (s *WfhServiceImpl) ListForRole(ctx context.Context, actor user.Actor, filter wfh.ListFilter) (wfh.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return wfh.ListRequestResponse{}, err
	}

	requests, err := s.requestRepo.List(ctx, wfh.RequestFilter{
		Scope:       wfh.ScopeForActor(actor),
		TeamOwnerID: filter.TeamOwnerID,
		SDMID:       filter.SDMID,
	})
	if err != nil {
		return wfh.ListRequestResponse{}, fmt.Errorf("failed to list wfh requests: %w", err)
	}

	rows := make([]wfh.RequestResponse, 0, len(requests))
	for _, r := range requests {
		if filter.Status != nil && *filter.Status != "" && string(r.Overall().Status) != *filter.Status {
			continue
		}
		rows = append(rows, s.toResponse(ctx, actor, r))
	}

	result := s.engine.Project(rows, query.Options{
		SearchTerm:   filter.Search,
		SearchFields: wfh.SearchFields,
		Sort:         query.SortState{Key: filter.SortBy, Direction: query.Direction(filter.SortOrder)},
		GroupKey:     groupPath(filter.GroupBy),
	})

	resp := wfh.ListRequestResponse{
		TotalCount: result.Total,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
		GroupBy:    filter.GroupBy,
		Groups:     make([]wfh.RequestGroupResponse, len(result.Groups)),
	}
	for i, g := range result.Groups {
		resp.Groups[i] = wfh.RequestGroupResponse{
			Key:      g.Key,
			Name:     groupName(filter.GroupBy, g),
			Requests: g.Items,
		}
	}
	return resp, nil
}

func groupPath(groupBy string) string {
	switch groupBy {
	case wfh.GroupByTeam:
		return "team_owner.id"
	case wfh.GroupBySDM:
		return "sdm.id"
	}
	return query.GroupNone
}

func groupName(groupBy string, g query.Group[wfh.RequestResponse]) string {
	var name *string
	switch groupBy {
	case wfh.GroupByTeam:
		if len(g.Items) > 0 {
			name = g.Items[0].TeamOwnerName
		}
		return labelled("Team", name, g.Key)
	case wfh.GroupBySDM:
		if len(g.Items) > 0 {
			name = g.Items[0].SDMName
		}
		return labelled("SDM", name, g.Key)
	}
	return "All Requests"
}

func labelled(prefix string, name *string, id string) string {
	if name == nil || *name == "" {
		return fmt.Sprintf("%s: %s", prefix, id)
	}
	return fmt.Sprintf("%s: %s (ID: %s)", prefix, *name, id)
}

func (s *WfhServiceImpl) toResponse(ctx context.Context, actor user.Actor, r wfh.Request) wfh.RequestResponse {
	var url *string
	if r.AttachmentPath != nil {
		u, err := s.fileService.GetFileURL(ctx, *r.AttachmentPath, 0)
		if err != nil {
			slog.Warn("failed to resolve attachment url", "request_id", r.ID, "error", err)
		} else {
			url = &u
		}
	}
	return wfh.NewRequestResponse(r, actor, url)
}

// discardFile removes an attachment that is no longer referenced.
func (s *WfhServiceImpl) discardFile(ctx context.Context, key *string) {
	if key == nil {
		return
	}
	if err := s.fileService.DeleteFile(ctx, *key); err != nil {
		slog.Warn("failed to delete attachment", "path", *key, "error", err)
	}
}
