package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/wfh-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// maxFormMemory bounds the multipart form kept in memory; larger parts spill to disk.
const maxFormMemory = 10 << 20

type WfhHandler interface {
	SubmitRequest(w http.ResponseWriter, r *http.Request)
	EditRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	GetAttachment(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
}

type WfhHandlerImpl struct {
	wfhService wfh.WfhService
}

func NewWfhHandler(wfhService wfh.WfhService) WfhHandler {
	return &WfhHandlerImpl{
		wfhService: wfhService,
	}
}

// SubmitRequest handles POST /requests
func (h *WfhHandlerImpl) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req wfh.SubmitRequest
	file, header, err := decodeRequestForm(r, &req)
	if err != nil {
		slog.Error("SubmitRequest decode error", "error", err)
		response.BadRequest(w, err.Error(), nil)
		return
	}
	if file != nil {
		defer file.Close()
	}
	req.File = file
	req.FileHeader = header

	created, err := h.wfhService.SubmitRequest(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "WFH request submitted successfully", created)
}

// EditRequest handles PUT /requests/{id}
func (h *WfhHandlerImpl) EditRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req wfh.EditRequest
	file, header, err := decodeRequestForm(r, &req)
	if err != nil {
		slog.Error("EditRequest decode error", "error", err)
		response.BadRequest(w, err.Error(), nil)
		return
	}
	if file != nil {
		defer file.Close()
	}
	req.ID = chi.URLParam(r, "id")
	req.EmployeeID = actor.EmployeeID
	req.File = file
	req.FileHeader = header

	updated, err := h.wfhService.EditRequest(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "WFH request updated successfully", updated)
}

// CancelRequest handles DELETE /requests/{id}
func (h *WfhHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Request ID is required", nil)
		return
	}

	if err := h.wfhService.CancelRequest(r.Context(), actor, id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "WFH request cancelled successfully", nil)
}

// ListRequests handles GET /requests
func (h *WfhHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := wfh.ListFilter{
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		GroupBy:   q.Get("group_by"),
	}
	if status := q.Get("status"); status != "" {
		filter.Status = &status
	}
	if teamOwnerID := q.Get("team_owner_id"); teamOwnerID != "" {
		filter.TeamOwnerID = &teamOwnerID
	}
	if sdmID := q.Get("sdm_id"); sdmID != "" {
		filter.SDMID = &sdmID
	}

	result, err := h.wfhService.ListForRole(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetRequest handles GET /requests/{id}
func (h *WfhHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	request, err := h.wfhService.GetRequest(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, request)
}

// GetAttachment handles GET /requests/{id}/attachment
func (h *WfhHandlerImpl) GetAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	rc, name, err := h.wfhService.OpenAttachment(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("attachment stream interrupted", "request_id", chi.URLParam(r, "id"), "error", err)
	}
}

// ApproveRequest handles POST /requests/{id}/approve
func (h *WfhHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, wfh.StatusApproved, "WFH request approved successfully")
}

// RejectRequest handles POST /requests/{id}/reject
func (h *WfhHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, wfh.StatusRejected, "WFH request rejected successfully")
}

func (h *WfhHandlerImpl) decide(w http.ResponseWriter, r *http.Request, decision wfh.ApprovalStatus, message string) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	req := wfh.DecideRequest{
		RequestID: chi.URLParam(r, "id"),
		Decision:  decision,
	}

	decided, err := h.wfhService.Decide(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, decided)
}

// actorFrom reads the caller placed in the context by middleware.AuthRequired.
func actorFrom(w http.ResponseWriter, r *http.Request) (user.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return user.Actor{}, false
	}
	return actor, true
}

// decodeRequestForm fills dst from either a JSON body or a multipart form with
// a JSON "data" field and an optional "attachment" file.
func decodeRequestForm(r *http.Request, dst any) (multipart.File, *multipart.FileHeader, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return nil, nil, errors.New("Invalid request format")
		}
		return nil, nil, nil
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, nil, errors.New("Failed to parse form data")
	}

	dataJSON := r.FormValue("data")
	if dataJSON == "" {
		return nil, nil, errors.New("Field 'data' is required")
	}
	if err := json.Unmarshal([]byte(dataJSON), dst); err != nil {
		return nil, nil, errors.New("Invalid request format")
	}

	file, header, err := r.FormFile("attachment")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, errors.New("Invalid file upload")
	}
	return file, header, nil
}
