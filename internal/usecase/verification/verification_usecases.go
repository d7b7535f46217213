package verification

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

// SequenceFirst - первый платёж мандата, после него карта клиента сохраняется у провайдера.
const SequenceFirst = "first"

type URLBuilder interface {
	WebhookURL(path string) string
	RedirectURL(path string) string
}

type StartVerificationOutput struct {
	PaymentID   string
	CheckoutURL string
	Amount      valueobject.Money
}

type StartPaymentVerificationUseCase struct {
	feeProfiles repository.FeeProfileRepository
	payments    repository.PaymentGateway
	urls        URLBuilder
	amount      valueobject.Money
}

func NewStartPaymentVerificationUseCase(
	feeProfiles repository.FeeProfileRepository,
	payments repository.PaymentGateway,
	urls URLBuilder,
	amount valueobject.Money,
) *StartPaymentVerificationUseCase {
	return &StartPaymentVerificationUseCase{feeProfiles: feeProfiles, payments: payments, urls: urls, amount: amount}
}

// Execute создаёт клиента у провайдера (если его ещё нет) и проверочный платёж.
func (uc *StartPaymentVerificationUseCase) Execute(ctx context.Context, clientID uuid.UUID, email, name string) (*StartVerificationOutput, error) {
	profile, err := uc.feeProfiles.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var customerID string
	if profile.ProviderCustomerID != nil && *profile.ProviderCustomerID != "" {
		customerID = *profile.ProviderCustomerID
	} else {
		customer, err := uc.payments.CreateCustomer(ctx, name, email, map[string]string{
			entity.MetaClientID: clientID.String(),
		})
		if err != nil {
			return nil, err
		}
		if err := uc.feeProfiles.SaveProviderCustomer(ctx, clientID, customer.ID); err != nil {
			return nil, err
		}
		customerID = customer.ID
	}

	payment, err := uc.payments.CreatePayment(ctx, entity.CreatePaymentRequest{
		Amount:       uc.amount,
		Description:  "Honey Jobs: проверка способа оплаты",
		RedirectURL:  uc.urls.RedirectURL("billing?verification=done"),
		WebhookURL:   uc.urls.WebhookURL("payment-verification"),
		CustomerID:   &customerID,
		SequenceType: SequenceFirst,
		Metadata: map[string]string{
			entity.MetaPurpose:  string(valueobject.PurposePaymentVerification),
			entity.MetaClientID: clientID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":     clientID,
		"payment_id":  payment.ID,
		"customer_id": customerID,
	}).Info("verification: создан проверочный платёж")

	return &StartVerificationOutput{PaymentID: payment.ID, CheckoutURL: payment.CheckoutURL, Amount: uc.amount}, nil
}

type ProcessVerificationWebhookUseCase struct {
	feeProfiles repository.FeeProfileRepository
	payments    repository.PaymentGateway
	notifier    repository.Notifier
	metrics     *metrics.Payments
}

func NewProcessVerificationWebhookUseCase(
	feeProfiles repository.FeeProfileRepository,
	payments repository.PaymentGateway,
	notifier repository.Notifier,
	m *metrics.Payments,
) *ProcessVerificationWebhookUseCase {
	return &ProcessVerificationWebhookUseCase{feeProfiles: feeProfiles, payments: payments, notifier: notifier, metrics: m}
}

func (uc *ProcessVerificationWebhookUseCase) Execute(ctx context.Context, paymentID string) (valueobject.WebhookOutcome, error) {
	outcome, err := uc.process(ctx, paymentID)
	if err != nil {
		uc.metrics.Webhook(string(valueobject.PurposePaymentVerification), "error")
		return "", err
	}
	uc.metrics.Webhook(string(valueobject.PurposePaymentVerification), string(outcome))
	return outcome, nil
}

func (uc *ProcessVerificationWebhookUseCase) process(ctx context.Context, paymentID string) (valueobject.WebhookOutcome, error) {
	if paymentID == "" {
		return "", apperror.New(apperror.ErrCodeValidation, "не передан id платежа")
	}

	payment, err := uc.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if payment.Purpose() != valueobject.PurposePaymentVerification {
		return valueobject.WebhookIgnored, nil
	}
	if !payment.Status.IsPaid() {
		return valueobject.WebhookNoop, nil
	}

	log := logger.Log.WithFields(logrus.Fields{"payment_id": payment.ID})

	clientID, err := payment.MetadataUUID(entity.MetaClientID)
	if err != nil {
		log.WithError(err).Error("verification: платёж без клиента в metadata")
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "платёж не связан с клиентом")
	}

	profile, err := uc.feeProfiles.FindByClientID(ctx, clientID)
	if err != nil {
		return "", err
	}

	customerID := ""
	if payment.CustomerID != nil {
		customerID = *payment.CustomerID
	} else if profile.ProviderCustomerID != nil {
		customerID = *profile.ProviderCustomerID
	}
	if customerID == "" {
		log.Error("verification: оплаченный платёж без клиента провайдера")
		return "", apperror.New(apperror.ErrCodeInternal, "платёж не связан с клиентом провайдера")
	}

	if profile.HasVerifiedPaymentMethod() && *profile.ProviderCustomerID == customerID {
		return valueobject.WebhookDuplicate, nil
	}

	if err := uc.feeProfiles.MarkPaymentVerified(ctx, clientID, customerID, time.Now()); err != nil {
		return "", err
	}
	log.WithField("user_id", clientID).Info("verification: способ оплаты подтверждён")

	if _, err := uc.payments.CreateRefund(ctx, payment.ID, payment.Amount, "Honey Jobs: возврат проверочного платежа"); err != nil {
		log.WithError(err).Warn("verification: не удалось вернуть проверочный платёж")
	}

	if uc.notifier != nil {
		uc.notifier.Notify(clientID, "payment_method_verified", map[string]interface{}{"customer_id": customerID})
	}
	return valueobject.WebhookApplied, nil
}
