package coupon_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/repository"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/coupon"
)

type mockCouponRepo struct {
	mock.Mock
}

func (m *mockCouponRepo) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Coupon), args.Error(1)
}

func (m *mockCouponRepo) Redeem(ctx context.Context, red repository.CouponRedemption) error {
	args := m.Called(ctx, red)
	return args.Error(0)
}

func dropsCoupon() *entity.Coupon {
	return &entity.Coupon{
		ID:          uuid.New(),
		Code:        "WELCOME10",
		AppliesTo:   entity.CouponForFreelancer,
		BenefitType: entity.CouponBenefitDrops,
		DropsAmount: 10,
		IsActive:    true,
	}
}

func TestApplyCoupon_Drops(t *testing.T) {
	repo := new(mockCouponRepo)
	uc := coupon.NewApplyCouponUseCase(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("FindByCode", ctx, "WELCOME10").Return(dropsCoupon(), nil)
	repo.On("Redeem", ctx, mock.MatchedBy(func(r repository.CouponRedemption) bool {
		return r.UserID == userID && r.FeeProfile == nil &&
			r.HoneyCredit != nil && r.HoneyCredit.Amount == 10 &&
			r.HoneyCredit.Type == entity.HoneyTransactionCoupon
	})).Return(nil)

	out, err := uc.Execute(ctx, userID, "freelancer", "  welcome10 ")
	require.NoError(t, err)
	assert.Equal(t, 10, out.DropsCredited)
	repo.AssertExpectations(t)
}

func TestApplyCoupon_FeeReduction(t *testing.T) {
	repo := new(mockCouponRepo)
	uc := coupon.NewApplyCouponUseCase(repo)
	ctx := context.Background()
	clientID := uuid.New()

	c := &entity.Coupon{
		ID:             uuid.New(),
		Code:           "LOWFEE",
		AppliesTo:      entity.CouponForClient,
		BenefitType:    entity.CouponBenefitFeeReduction,
		ReducedFeeRate: decimal.RequireFromString("0.08"),
		ReducedFeeDays: 30,
		IsActive:       true,
	}
	repo.On("FindByCode", ctx, "LOWFEE").Return(c, nil)
	repo.On("Redeem", ctx, mock.MatchedBy(func(r repository.CouponRedemption) bool {
		return r.HoneyCredit == nil && r.FeeProfile != nil &&
			r.FeeProfile.ClientID == clientID &&
			r.FeeProfile.PlatformFeeRate.Equal(decimal.RequireFromString("0.08")) &&
			r.FeeProfile.ReducedFeeUntil.After(time.Now().AddDate(0, 0, 29))
	})).Return(nil)

	out, err := uc.Execute(ctx, clientID, "client", "lowfee")
	require.NoError(t, err)
	assert.Equal(t, "0.08", out.ReducedFeeRate)
	require.NotNil(t, out.ReducedFeeUntil)
	repo.AssertExpectations(t)
}

func TestApplyCoupon_Rejections(t *testing.T) {
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	one := 1

	tests := []struct {
		name   string
		mutate func(c *entity.Coupon)
		role   string
		want   error
	}{
		{"inactive", func(c *entity.Coupon) { c.IsActive = false }, "freelancer", apperror.ErrCouponInactive},
		{"expired", func(c *entity.Coupon) { c.ExpiresAt = &past }, "freelancer", apperror.ErrCouponExpired},
		{"wrong audience", func(c *entity.Coupon) {}, "client", apperror.ErrCouponNotApplicable},
		{"cap reached", func(c *entity.Coupon) { c.MaxUses = &one; c.UsedCount = 1 }, "freelancer", apperror.ErrCouponExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockCouponRepo)
			c := dropsCoupon()
			tt.mutate(c)
			repo.On("FindByCode", ctx, "WELCOME10").Return(c, nil)

			_, err := coupon.NewApplyCouponUseCase(repo).Execute(ctx, uuid.New(), tt.role, "WELCOME10")
			assert.ErrorIs(t, err, tt.want)
			repo.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything)
		})
	}
}

func TestApplyCoupon_AlreadyUsedAndNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponRepo)
	repo.On("FindByCode", ctx, "WELCOME10").Return(dropsCoupon(), nil)
	repo.On("FindByCode", ctx, "NOPE").Return(nil, apperror.ErrCouponNotFound)
	repo.On("Redeem", ctx, mock.Anything).Return(apperror.ErrCouponAlreadyUsed)
	uc := coupon.NewApplyCouponUseCase(repo)

	_, err := uc.Execute(ctx, uuid.New(), "freelancer", "WELCOME10")
	assert.ErrorIs(t, err, apperror.ErrCouponAlreadyUsed)

	_, err = uc.Execute(ctx, uuid.New(), "freelancer", "nope")
	assert.True(t, apperror.IsNotFound(err))

	_, err = uc.Execute(ctx, uuid.New(), "freelancer", " ")
	assert.True(t, apperror.IsValidation(err))
}
