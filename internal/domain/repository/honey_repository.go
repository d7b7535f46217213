package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
)

type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error)
}

type HoneyRepository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.HoneyTransaction, int, error)

	// SpendForBid списывает drops и регистрирует отклик в одной транзакции.
	SpendForBid(ctx context.Context, debit *entity.HoneyTransaction, application *entity.JobApplication) error

	// Credit начисляет drops. Повторное начисление с тем же PaymentReference
	// игнорируется, в этом случае возвращается false.
	Credit(ctx context.Context, credit *entity.HoneyTransaction) (bool, error)

	// RejectApplicants отмечает выбранного исполнителя, отклоняет остальные
	// ожидающие отклики и возвращает каждому refundDrops. Возвращает id отклонённых.
	RejectApplicants(ctx context.Context, jobID, selectedFreelancerID uuid.UUID, refundDrops int) ([]uuid.UUID, error)
}

type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (*entity.Coupon, error)
	Redeem(ctx context.Context, redemption CouponRedemption) error
}

// CouponRedemption описывает применение купона: заполнено ровно одно из
// HoneyCredit и FeeProfile, в зависимости от типа бонуса.
type CouponRedemption struct {
	Coupon      *entity.Coupon
	UserID      uuid.UUID
	HoneyCredit *entity.HoneyTransaction
	FeeProfile  *entity.ClientFeeProfile
}
