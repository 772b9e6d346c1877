package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Storage and file store failures
	var collaboratorErr *wfh.CollaboratorError
	if errors.As(err, &collaboratorErr) {
		slog.Error("collaborator failure", "op", collaboratorErr.Op, "error", collaboratorErr.Err)
		ServiceUnavailable(w, "Storage is temporarily unavailable")
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrTeamOwnerNotFound):
		ValidationError(w, map[string]string{"team_owner_id": err.Error()})
	case errors.Is(err, employee.ErrSDMNotFound):
		ValidationError(w, map[string]string{"sdm_id": err.Error()})

	// WFH domain errors
	case errors.Is(err, wfh.ErrRequestNotFound):
		NotFound(w, "WFH request not found")
	case errors.Is(err, wfh.ErrAttachmentNotFound):
		NotFound(w, "WFH request has no attachment")
	case errors.Is(err, wfh.ErrForbidden):
		Forbidden(w, "Not allowed to act on this WFH request")
	case errors.Is(err, wfh.ErrOutOfOrder):
		Conflict(w, "An earlier approval stage has not approved this request")
	case errors.Is(err, wfh.ErrAlreadyDecided):
		Conflict(w, "Approval stage already decided")
	case errors.Is(err, wfh.ErrAlreadyInProgress):
		Conflict(w, "WFH request is already being reviewed")
	case errors.Is(err, wfh.ErrInvalidStage),
		errors.Is(err, wfh.ErrInvalidDecision),
		errors.Is(err, wfh.ErrMalformedChain):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
