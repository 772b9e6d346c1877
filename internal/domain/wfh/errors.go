package wfh

import (
	"errors"
	"fmt"
)

var (
	ErrRequestNotFound    = errors.New("wfh request not found")
	ErrForbidden          = errors.New("not allowed to act on this wfh request")
	ErrAttachmentNotFound = errors.New("wfh request has no attachment")

	// Illegal state transitions
	ErrOutOfOrder        = errors.New("an earlier approval stage has not approved this request")
	ErrAlreadyDecided    = errors.New("approval stage already decided")
	ErrAlreadyInProgress = errors.New("wfh request is already being reviewed")
	ErrInvalidStage      = errors.New("invalid approval stage")
	ErrInvalidDecision   = errors.New("decision must be APPROVED or REJECTED")
	ErrMalformedChain    = errors.New("wfh request does not carry a complete approval chain")
)

// CollaboratorError reports a failure at the storage or file boundary.
// Callers surface it as transient and must not retry automatically.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Collaborator wraps err as a CollaboratorError unless it is a known domain error.
func Collaborator(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrRequestNotFound, ErrAlreadyDecided, ErrAlreadyInProgress, ErrInvalidStage} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &CollaboratorError{Op: op, Err: err}
}
