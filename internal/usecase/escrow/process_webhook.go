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

// События, которые получают стороны контракта по WebSocket.
const (
	EventEscrowPaid     = "escrow_paid"
	EventEscrowFailed   = "escrow_failed"
	EventEscrowReleased = "escrow_released"
)

type WebhookResult struct {
	ContractID uuid.UUID
	Outcome    valueobject.WebhookOutcome
}

// ProcessEscrowWebhookUseCase синхронизирует эскроу с состоянием платежа у провайдера.
// Тело вебхука не используется: статус всегда перечитывается у провайдера.
type ProcessEscrowWebhookUseCase struct {
	contracts repository.ContractRepository
	payments  repository.PaymentGateway
	notifier  repository.Notifier
	metrics   *metrics.Payments
}

func NewProcessEscrowWebhookUseCase(
	contracts repository.ContractRepository,
	payments repository.PaymentGateway,
	notifier repository.Notifier,
	m *metrics.Payments,
) *ProcessEscrowWebhookUseCase {
	return &ProcessEscrowWebhookUseCase{
		contracts: contracts,
		payments:  payments,
		notifier:  notifier,
		metrics:   m,
	}
}

func (uc *ProcessEscrowWebhookUseCase) Execute(ctx context.Context, paymentID string) (*WebhookResult, error) {
	if paymentID == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "не передан id платежа")
	}

	payment, err := uc.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	result, err := uc.apply(ctx, payment)
	if err != nil {
		uc.metrics.Webhook(string(payment.Purpose()), "error")
		return nil, err
	}
	uc.metrics.Webhook(string(payment.Purpose()), string(result.Outcome))
	return result, nil
}

func (uc *ProcessEscrowWebhookUseCase) apply(ctx context.Context, payment *entity.ProviderPayment) (*WebhookResult, error) {
	if payment.Purpose() != valueobject.PurposeContractEscrow {
		return &WebhookResult{Outcome: valueobject.WebhookIgnored}, nil
	}

	log := logger.Log.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})

	contractID, err := payment.MetadataUUID(entity.MetaContractID)
	if err != nil {
		log.WithError(err).Error("escrow: платёж без контракта в metadata")
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "платёж не связан с контрактом")
	}
	log = log.WithField("contract_id", contractID)

	contract, err := uc.contracts.FindByID(ctx, contractID)
	if err != nil {
		if apperror.IsNotFound(err) {
			log.Error("escrow: контракт из платежа не найден")
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "контракт из платежа не найден")
		}
		return nil, err
	}

	result := &WebhookResult{ContractID: contract.ID}

	if !contract.IsCurrentEscrowPayment(payment.ID) {
		log.Warn("escrow: вебхук по заменённому платежу")
		result.Outcome = valueobject.WebhookStale
		return result, nil
	}

	from := contract.Escrow.Status
	now := time.Now()

	var changed bool
	var event string
	switch {
	case payment.Status.IsPaid():
		changed, err = contract.MarkEscrowPaid(now)
		event = EventEscrowPaid
	case payment.Status.IsFailure():
		changed, err = contract.MarkEscrowFailed(payment.FailureDescription(), now)
		event = EventEscrowFailed
	default:
		result.Outcome = valueobject.WebhookNoop
		return result, nil
	}

	if err != nil {
		// Провайдер сообщает статус, несовместимый с локальным: сигнал о нарушении целостности.
		log.WithField("escrow_status", from).Error("escrow: недопустимый переход статуса")
		result.Outcome = valueobject.WebhookRejected
		return result, nil
	}
	if !changed {
		result.Outcome = valueobject.WebhookDuplicate
		return result, nil
	}

	applied, err := uc.contracts.UpdateEscrowStatus(ctx, contract, from)
	if err != nil {
		return nil, err
	}
	if !applied {
		result.Outcome = valueobject.WebhookDuplicate
		return result, nil
	}

	log.WithField("escrow_status", contract.Escrow.Status).Info("escrow: статус обновлён")
	notifyParties(uc.notifier, contract, event)

	result.Outcome = valueobject.WebhookApplied
	return result, nil
}

func notifyParties(n repository.Notifier, c *entity.Contract, event string) {
	if n == nil {
		return
	}
	payload := map[string]interface{}{
		"contract_id":   c.ID,
		"escrow_status": c.Escrow.Status,
	}
	n.Notify(c.ClientID, event, payload)
	n.Notify(c.FreelancerID, event, payload)
}
