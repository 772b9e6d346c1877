package calendar

import (
	"context"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
)

type CalendarService interface {
	GetCalendar(ctx context.Context, actor user.Actor, req CalendarRequest) (CalendarResponse, error)
	GetDateDetails(ctx context.Context, actor user.Actor, req DateDetailsRequest) (DateDetailsResponse, error)
}
