package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/repository"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
	"github.com/ignatzorin/honeyjobs-backend/internal/repository/common"
)

type couponRow struct {
	ID             uuid.UUID           `db:"id"`
	Code           string              `db:"code"`
	AppliesTo      string              `db:"applies_to"`
	BenefitType    string              `db:"benefit_type"`
	DropsAmount    int                 `db:"drops_amount"`
	ReducedFeeRate decimal.NullDecimal `db:"reduced_fee_rate"`
	ReducedFeeDays int                 `db:"reduced_fee_days"`
	MaxUses        *int                `db:"max_uses"`
	UsedCount      int                 `db:"used_count"`
	ExpiresAt      *time.Time          `db:"expires_at"`
	IsActive       bool                `db:"is_active"`
	CreatedAt      time.Time           `db:"created_at"`
}

type CouponRepository struct {
	db *sqlx.DB
}

func NewCouponRepository(db *sqlx.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	row, err := common.GetByField[couponRow](ctx, r.db, "coupons", "code", code, apperror.ErrCouponNotFound)
	if err != nil {
		if errors.Is(err, apperror.ErrCouponNotFound) {
			return nil, err
		}
		return nil, apperror.Database(err, "не удалось получить купон")
	}

	return &entity.Coupon{
		ID:             row.ID,
		Code:           row.Code,
		AppliesTo:      entity.CouponAudience(row.AppliesTo),
		BenefitType:    entity.CouponBenefit(row.BenefitType),
		DropsAmount:    row.DropsAmount,
		ReducedFeeRate: row.ReducedFeeRate.Decimal,
		ReducedFeeDays: row.ReducedFeeDays,
		MaxUses:        row.MaxUses,
		UsedCount:      row.UsedCount,
		ExpiresAt:      row.ExpiresAt,
		IsActive:       row.IsActive,
		CreatedAt:      row.CreatedAt,
	}, nil
}

func (r *CouponRepository) Redeem(ctx context.Context, red repository.CouponRedemption) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now()

		_, err := tx.ExecContext(ctx, `
			INSERT INTO coupon_usages (id, coupon_id, user_id, created_at)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), red.Coupon.ID, red.UserID, now)
		if err != nil {
			if common.IsUniqueViolation(err) {
				return apperror.ErrCouponAlreadyUsed
			}
			return apperror.Database(err, "не удалось записать использование купона")
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE coupons SET used_count = used_count + 1
			WHERE id = $1 AND is_active AND (max_uses IS NULL OR used_count < max_uses)
		`, red.Coupon.ID)
		if err != nil {
			return apperror.Database(err, "не удалось обновить купон")
		}
		if err := common.RequireAffected(result, apperror.ErrCouponExhausted); err != nil {
			return err
		}

		if red.HoneyCredit != nil {
			if _, err := insertHoneyTransaction(ctx, tx, red.HoneyCredit, false); err != nil {
				return err
			}
			if err := addToBalance(ctx, tx, red.HoneyCredit.UserID, red.HoneyCredit.Amount, now); err != nil {
				return err
			}
		}
		if red.FeeProfile != nil {
			if err := upsertFeeReduction(ctx, tx, red.FeeProfile); err != nil {
				return err
			}
		}
		return nil
	})
}
