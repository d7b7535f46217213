package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

type CouponAudience string

const (
	CouponForFreelancer CouponAudience = "freelancer"
	CouponForClient     CouponAudience = "client"
)

type CouponBenefit string

const (
	CouponBenefitDrops        CouponBenefit = "drops"
	CouponBenefitFeeReduction CouponBenefit = "fee_reduction"
)

type Coupon struct {
	ID             uuid.UUID
	Code           string
	AppliesTo      CouponAudience
	BenefitType    CouponBenefit
	DropsAmount    int
	ReducedFeeRate decimal.Decimal
	ReducedFeeDays int
	MaxUses        *int
	UsedCount      int
	ExpiresAt      *time.Time
	IsActive       bool
	CreatedAt      time.Time
}

// CheckRedeemable проверяет всё, что можно проверить без обращения к базе.
// Однократность использования пользователем проверяется уникальным индексом.
func (c *Coupon) CheckRedeemable(role string, now time.Time) error {
	if !c.IsActive {
		return apperror.ErrCouponInactive
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return apperror.ErrCouponExpired
	}
	if string(c.AppliesTo) != role {
		return apperror.ErrCouponNotApplicable
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return apperror.ErrCouponExhausted
	}
	return nil
}

func (c *Coupon) ReducedFeeUntil(now time.Time) time.Time {
	return now.AddDate(0, 0, c.ReducedFeeDays)
}
