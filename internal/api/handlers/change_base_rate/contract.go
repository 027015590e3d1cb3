package change_base_rate

import (
	"context"

	changeBaseRate "github.com/m04kA/SMC-CourtBookingService/internal/usecase/change_base_rate"
)

type ChangeBaseRateUseCase interface {
	Execute(ctx context.Context, req *changeBaseRate.Request) (*changeBaseRate.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
