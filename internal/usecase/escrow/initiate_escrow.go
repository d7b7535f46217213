package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/repository"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
	"github.com/ignatzorin/honeyjobs-backend/internal/logger"
	"github.com/ignatzorin/honeyjobs-backend/internal/metrics"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

// URLBuilder собирает адреса вебхуков и возврата пользователя.
type URLBuilder interface {
	WebhookURL(path string) string
	RedirectURL(path string) string
}

type InitiateEscrowOutput struct {
	PaymentID   string
	CheckoutURL string
	Amount      valueobject.Money
	FeeRate     decimal.Decimal
}

type InitiateEscrowUseCase struct {
	contracts   repository.ContractRepository
	feeProfiles repository.FeeProfileRepository
	payments    repository.PaymentGateway
	urls        URLBuilder
	metrics     *metrics.Payments
}

func NewInitiateEscrowUseCase(
	contracts repository.ContractRepository,
	feeProfiles repository.FeeProfileRepository,
	payments repository.PaymentGateway,
	urls URLBuilder,
	m *metrics.Payments,
) *InitiateEscrowUseCase {
	return &InitiateEscrowUseCase{
		contracts:   contracts,
		feeProfiles: feeProfiles,
		payments:    payments,
		urls:        urls,
		metrics:     m,
	}
}

func (uc *InitiateEscrowUseCase) Execute(ctx context.Context, contractID, callerID uuid.UUID) (*InitiateEscrowOutput, error) {
	contract, err := uc.contracts.FindByID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	if !contract.IsClient(callerID) {
		return nil, apperror.ErrForbidden
	}
	if !contract.IsFullySigned() {
		return nil, apperror.ErrContractNotFullySigned
	}
	if contract.Escrow.Status.IsLive() {
		return nil, apperror.ErrEscrowAlreadyExists
	}

	profile, err := uc.feeProfiles.FindByClientID(ctx, contract.ClientID)
	if err != nil {
		return nil, err
	}
	if !profile.HasVerifiedPaymentMethod() {
		return nil, apperror.ErrPaymentMethodNotVerified
	}

	now := time.Now()
	feeRate := profile.EffectiveFeeRate(now)
	amount := valueobject.Money{
		Amount:   valueobject.EscrowAmount(contract.TotalAmount.Amount, feeRate),
		Currency: contract.TotalAmount.Currency,
	}

	payment, err := uc.payments.CreatePayment(ctx, entity.CreatePaymentRequest{
		Amount:      amount,
		Description: fmt.Sprintf("Honey Jobs escrow %s", contract.ContractNumber),
		RedirectURL: uc.urls.RedirectURL("contracts/" + contract.ID.String()),
		WebhookURL:  uc.urls.WebhookURL("escrow"),
		CustomerID:  profile.ProviderCustomerID,
		Metadata: map[string]string{
			entity.MetaPurpose:    string(valueobject.PurposeContractEscrow),
			entity.MetaContractID: contract.ID.String(),
			entity.MetaClientID:   contract.ClientID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	log := logger.Log.WithFields(logrus.Fields{
		"contract_id": contract.ID,
		"payment_id":  payment.ID,
	})

	if err := contract.AttachEscrowPayment(payment.ID, amount.Amount, feeRate, now); err != nil {
		uc.cancelOrphan(ctx, payment.ID, log)
		return nil, err
	}
	if err := uc.contracts.AttachEscrowPayment(ctx, contract); err != nil {
		// Параллельный запрос успел создать эскроу первым.
		uc.cancelOrphan(ctx, payment.ID, log)
		return nil, err
	}

	uc.metrics.EscrowInitiated()
	log.WithField("amount", amount.String()).Info("escrow: платёж создан")

	return &InitiateEscrowOutput{
		PaymentID:   payment.ID,
		CheckoutURL: payment.CheckoutURL,
		Amount:      amount,
		FeeRate:     feeRate,
	}, nil
}

func (uc *InitiateEscrowUseCase) cancelOrphan(ctx context.Context, paymentID string, log *logrus.Entry) {
	if err := uc.payments.CancelPayment(ctx, paymentID); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			log = log.WithField("code", appErr.Code)
		}
		log.WithError(err).Error("escrow: не удалось отменить лишний платёж")
		return
	}
	log.Warn("escrow: лишний платёж отменён")
}
