package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
)

type FeeProfileRepository interface {
	// FindByClientID возвращает профиль по умолчанию, если записи ещё нет.
	FindByClientID(ctx context.Context, clientID uuid.UUID) (*entity.ClientFeeProfile, error)
	SaveProviderCustomer(ctx context.Context, clientID uuid.UUID, customerID string) error
	MarkPaymentVerified(ctx context.Context, clientID uuid.UUID, customerID string, at time.Time) error
}

type EarningRepository interface {
	Create(ctx context.Context, earning *entity.Earning) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Earning, EarningTotals, error)
}

type EarningTotals struct {
	Count int
	Sum   decimal.Decimal
}
