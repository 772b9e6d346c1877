package wfh

import (
	"context"
	"io"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
)

type WfhService interface {
	SubmitRequest(ctx context.Context, actor user.Actor, req SubmitRequest) (RequestResponse, error)
	EditRequest(ctx context.Context, actor user.Actor, req EditRequest) (RequestResponse, error)
	CancelRequest(ctx context.Context, actor user.Actor, requestID string) error
	Decide(ctx context.Context, actor user.Actor, req DecideRequest) (RequestResponse, error)
	GetRequest(ctx context.Context, actor user.Actor, requestID string) (RequestResponse, error)
	// OpenAttachment streams the attachment; the caller closes the reader
	OpenAttachment(ctx context.Context, actor user.Actor, requestID string) (io.ReadCloser, string, error)
	ListForRole(ctx context.Context, actor user.Actor, filter ListFilter) (ListRequestResponse, error)
}
