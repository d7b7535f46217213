package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
)

// ClientFeeProfile хранит ставку комиссии клиента и данные его плательщика у провайдера.
type ClientFeeProfile struct {
	ClientID           uuid.UUID
	PlatformFeeRate    decimal.Decimal
	ReducedFeeUntil    *time.Time
	ProviderCustomerID *string
	PaymentVerifiedAt  *time.Time
	UpdatedAt          time.Time
}

// NewDefaultFeeProfile - профиль клиента, для которого ещё нет записи.
func NewDefaultFeeProfile(clientID uuid.UUID) *ClientFeeProfile {
	return &ClientFeeProfile{
		ClientID:        clientID,
		PlatformFeeRate: valueobject.StandardFeeRate,
	}
}

func (p *ClientFeeProfile) EffectiveFeeRate(now time.Time) decimal.Decimal {
	return valueobject.ResolveFeeRate(p.PlatformFeeRate, p.ReducedFeeUntil, now)
}

func (p *ClientFeeProfile) HasVerifiedPaymentMethod() bool {
	return p.ProviderCustomerID != nil && *p.ProviderCustomerID != "" && p.PaymentVerifiedAt != nil
}
