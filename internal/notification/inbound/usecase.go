package inbound

import (
	"context"

	"github.com/shandysiswandi/storefront/internal/notification/usecase"
)

type uc interface {
	SendOTPSMS(ctx context.Context, in usecase.SendOTPSMSInput) error
}
