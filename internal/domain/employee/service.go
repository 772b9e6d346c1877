package employee

import (
	"context"
	"io"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
)

type EmployeeService interface {
	// Import upserts every entry of a JSON array of ImportEntry and returns how
	// many were written. Nothing is written when any entry is invalid.
	Import(ctx context.Context, r io.Reader) (int, error)
	GetMe(ctx context.Context, actor user.Actor) (EmployeeResponse, error)
}
