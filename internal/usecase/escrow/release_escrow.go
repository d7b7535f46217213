package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/repository"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
	"github.com/ignatzorin/honeyjobs-backend/internal/logger"
	"github.com/ignatzorin/honeyjobs-backend/internal/metrics"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

type ReleaseEscrowOutput struct {
	AmountReleased valueobject.Money
	PlatformFee    valueobject.Money
	ReleasedAt     time.Time
}

// ReleaseEscrowUseCase фиксирует выплату фрилансеру. Деньги в банк не переводятся:
// создаётся только запись в журнале начислений.
type ReleaseEscrowUseCase struct {
	contracts   repository.ContractRepository
	feeProfiles repository.FeeProfileRepository
	earnings    repository.EarningRepository
	payments    repository.PaymentGateway
	notifier    repository.Notifier
	metrics     *metrics.Payments
}

func NewReleaseEscrowUseCase(
	contracts repository.ContractRepository,
	feeProfiles repository.FeeProfileRepository,
	earnings repository.EarningRepository,
	payments repository.PaymentGateway,
	notifier repository.Notifier,
	m *metrics.Payments,
) *ReleaseEscrowUseCase {
	return &ReleaseEscrowUseCase{
		contracts:   contracts,
		feeProfiles: feeProfiles,
		earnings:    earnings,
		payments:    payments,
		notifier:    notifier,
		metrics:     m,
	}
}

func (uc *ReleaseEscrowUseCase) Execute(ctx context.Context, contractID, callerID uuid.UUID) (*ReleaseEscrowOutput, error) {
	contract, err := uc.contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	if !contract.IsClient(callerID) {
		return nil, apperror.ErrForbidden
	}
	if !contract.HasEscrowPayment() {
		return nil, apperror.ErrNoEscrowFound
	}
	if contract.Escrow.Status == valueobject.EscrowStatusReleased {
		return nil, apperror.ErrAlreadyReleased
	}

	log := logger.Log.WithFields(logrus.Fields{
		"contract_id": contract.ID,
		"payment_id":  *contract.Escrow.PaymentID,
	})

	payment, err := uc.payments.GetPayment(ctx, *contract.Escrow.PaymentID)
	if err != nil {
		return nil, err
	}
	if !payment.Status.IsPaid() {
		return nil, apperror.ErrEscrowNotPaid
	}

	now := time.Now()

	// Вебхук об оплате мог ещё не дойти: провайдер уже подтвердил оплату.
	if contract.Escrow.Status == valueobject.EscrowStatusPending {
		if contract, err = uc.catchUpPaid(ctx, contract, now); err != nil {
			return nil, err
		}
	}

	if err := contract.ReleaseEscrow(callerID, now); err != nil {
		return nil, err
	}

	earning := entity.NewFreelancerEarning(contract, now)
	if err := uc.contracts.CompleteRelease(ctx, contract, earning); err != nil {
		return nil, err
	}

	fee := uc.recordPlatformFee(ctx, contract, now, log)

	uc.metrics.EscrowReleased()
	notifyParties(uc.notifier, contract, EventEscrowReleased)
	log.WithFields(logrus.Fields{
		"amount":       contract.TotalAmount.String(),
		"platform_fee": fee.String(),
	}).Info("escrow: средства выплачены")

	return &ReleaseEscrowOutput{
		AmountReleased: contract.TotalAmount,
		PlatformFee:    fee,
		ReleasedAt:     now,
	}, nil
}

func (uc *ReleaseEscrowUseCase) catchUpPaid(ctx context.Context, contract *entity.Contract, now time.Time) (*entity.Contract, error) {
	if _, err := contract.MarkEscrowPaid(now); err != nil {
		return nil, err
	}
	applied, err := uc.contracts.UpdateEscrowStatus(ctx, contract, valueobject.EscrowStatusPending)
	if err != nil {
		return nil, err
	}
	if applied {
		return contract, nil
	}

	// Статус успел поменяться параллельно, работаем с актуальной версией.
	fresh, err := uc.contracts.FindByID(ctx, contract.ID)
	if err != nil {
		return nil, err
	}
	if fresh.Escrow.Status == valueobject.EscrowStatusReleased {
		return nil, apperror.ErrAlreadyReleased
	}
	return fresh, nil
}

// recordPlatformFee записывает доход платформы. Ошибки только логируются:
// начисление фрилансеру уже зафиксировано и не откатывается.
func (uc *ReleaseEscrowUseCase) recordPlatformFee(ctx context.Context, contract *entity.Contract, now time.Time, log *logrus.Entry) valueobject.Money {
	feeRate := contract.Escrow.FeeRate
	profile, err := uc.feeProfiles.FindByClientID(ctx, contract.ClientID)
	if err != nil {
		log.WithError(err).Warn("escrow: профиль комиссии недоступен, используем ставку эскроу")
	} else {
		feeRate = profile.EffectiveFeeRate(now)
	}

	fee := valueobject.PlatformFee(contract.TotalAmount.Amount, feeRate)
	earning := entity.NewPlatformEarning(contract, fee, now)
	if err := uc.earnings.Create(ctx, earning); err != nil {
		log.WithError(err).Error("escrow: не удалось записать доход платформы")
	}
	return earning.Amount
}
