package coupon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/repository"
	"github.com/ignatzorin/honeyjobs-backend/internal/logger"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

// ApplyCouponOutput - что получил пользователь за купон.
type ApplyCouponOutput struct {
	Code            string
	BenefitType     entity.CouponBenefit
	DropsCredited   int
	ReducedFeeRate  string
	ReducedFeeUntil *time.Time
}

type ApplyCouponUseCase struct {
	couponRepo repository.CouponRepository
	now        func() time.Time
}

func NewApplyCouponUseCase(couponRepo repository.CouponRepository) *ApplyCouponUseCase {
	return &ApplyCouponUseCase{couponRepo: couponRepo, now: time.Now}
}

// Execute применяет купон от имени пользователя с ролью role.
func (uc *ApplyCouponUseCase) Execute(ctx context.Context, userID uuid.UUID, role, code string) (*ApplyCouponOutput, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан код купона")
	}

	coupon, err := uc.couponRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	if err := coupon.CheckRedeemable(role, now); err != nil {
		return nil, err
	}

	redemption := repository.CouponRedemption{Coupon: coupon, UserID: userID}
	out := &ApplyCouponOutput{Code: coupon.Code, BenefitType: coupon.BenefitType}

	switch coupon.BenefitType {
	case entity.CouponBenefitDrops:
		if coupon.DropsAmount <= 0 {
			return nil, apperror.New(apperror.ErrCodeInternal, "купон настроен без количества drops")
		}
		redemption.HoneyCredit = entity.NewHoneyTransaction(userID, entity.HoneyTransactionCoupon,
			coupon.DropsAmount, fmt.Sprintf("Купон %s", coupon.Code))
		out.DropsCredited = coupon.DropsAmount
	case entity.CouponBenefitFeeReduction:
		until := coupon.ReducedFeeUntil(now)
		redemption.FeeProfile = &entity.ClientFeeProfile{
			ClientID:        userID,
			PlatformFeeRate: coupon.ReducedFeeRate,
			ReducedFeeUntil: &until,
			UpdatedAt:       now,
		}
		out.ReducedFeeRate = coupon.ReducedFeeRate.String()
		out.ReducedFeeUntil = &until
	default:
		return nil, apperror.New(apperror.ErrCodeInternal, "неизвестный тип бонуса купона")
	}

	if err := uc.couponRepo.Redeem(ctx, redemption); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"coupon":  coupon.Code,
		"benefit": coupon.BenefitType,
	}).Info("coupon: купон применён")

	return out, nil
}
