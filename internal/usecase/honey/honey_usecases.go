package honey

import (
	"context"
	"fmt"
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

type URLBuilder interface {
	WebhookURL(path string) string
	RedirectURL(path string) string
}

type GetBalanceUseCase struct {
	honeyRepo repository.HoneyRepository
}

func NewGetBalanceUseCase(honeyRepo repository.HoneyRepository) *GetBalanceUseCase {
	return &GetBalanceUseCase{honeyRepo: honeyRepo}
}

func (uc *GetBalanceUseCase) Execute(ctx context.Context, userID uuid.UUID) (int, error) {
	return uc.honeyRepo.GetBalance(ctx, userID)
}

type ListTransactionsUseCase struct {
	honeyRepo repository.HoneyRepository
}

func NewListTransactionsUseCase(honeyRepo repository.HoneyRepository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{honeyRepo: honeyRepo}
}

func (uc *ListTransactionsUseCase) Execute(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.HoneyTransaction, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.honeyRepo.ListTransactions(ctx, userID, limit, offset)
}

type SpendOnBidUseCase struct {
	honeyRepo repository.HoneyRepository
	jobRepo   repository.JobRepository
}

func NewSpendOnBidUseCase(honeyRepo repository.HoneyRepository, jobRepo repository.JobRepository) *SpendOnBidUseCase {
	return &SpendOnBidUseCase{honeyRepo: honeyRepo, jobRepo: jobRepo}
}

// Execute списывает стоимость отклика и регистрирует отклик фрилансера на задание.
func (uc *SpendOnBidUseCase) Execute(ctx context.Context, freelancerID, jobID uuid.UUID) (*entity.JobApplication, error) {
	job, err := uc.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.IsOwnedBy(freelancerID) {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя откликнуться на своё задание")
	}
	if !job.AcceptsApplications() {
		return nil, apperror.ErrJobClosed
	}

	now := time.Now()
	application := &entity.JobApplication{
		ID:           uuid.New(),
		JobID:        job.ID,
		FreelancerID: freelancerID,
		Status:       valueobject.ApplicationStatusPending,
		CreatedAt:    now,
	}
	debit := entity.NewHoneyTransaction(freelancerID, entity.HoneyTransactionBid, -entity.BidCost,
		fmt.Sprintf("Отклик на задание «%s»", job.Title))
	debit.JobID = &job.ID

	if err := uc.honeyRepo.SpendForBid(ctx, debit, application); err != nil {
		return nil, err
	}
	return application, nil
}

type RejectApplicantsUseCase struct {
	honeyRepo repository.HoneyRepository
	jobRepo   repository.JobRepository
	notifier  repository.Notifier
}

func NewRejectApplicantsUseCase(honeyRepo repository.HoneyRepository, jobRepo repository.JobRepository, notifier repository.Notifier) *RejectApplicantsUseCase {
	return &RejectApplicantsUseCase{honeyRepo: honeyRepo, jobRepo: jobRepo, notifier: notifier}
}

// Execute выбирает исполнителя и возвращает drops всем остальным откликнувшимся.
// Повторный вызов ничего не возвращает: отклонённые отклики пропускаются.
func (uc *RejectApplicantsUseCase) Execute(ctx context.Context, clientID, jobID, selectedFreelancerID uuid.UUID) ([]uuid.UUID, error) {
	job, err := uc.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsOwnedBy(clientID) {
		return nil, apperror.ErrForbidden
	}

	rejected, err := uc.honeyRepo.RejectApplicants(ctx, jobID, selectedFreelancerID, entity.BidCost)
	if err != nil {
		return nil, err
	}

	if uc.notifier != nil {
		for _, freelancerID := range rejected {
			uc.notifier.Notify(freelancerID, "application_rejected", map[string]interface{}{
				"job_id":         jobID,
				"refunded_drops": entity.BidCost,
			})
		}
	}
	return rejected, nil
}

type PurchaseOutput struct {
	PaymentID   string
	CheckoutURL string
	Package     entity.DropPackage
}

type InitiatePurchaseUseCase struct {
	payments repository.PaymentGateway
	urls     URLBuilder
}

func NewInitiatePurchaseUseCase(payments repository.PaymentGateway, urls URLBuilder) *InitiatePurchaseUseCase {
	return &InitiatePurchaseUseCase{payments: payments, urls: urls}
}

func (uc *InitiatePurchaseUseCase) Execute(ctx context.Context, userID uuid.UUID, packageCode string) (*PurchaseOutput, error) {
	pkg, ok := entity.FindDropPackage(packageCode)
	if !ok {
		return nil, apperror.ErrUnknownDropPackage
	}

	payment, err := uc.payments.CreatePayment(ctx, entity.CreatePaymentRequest{
		Amount:      pkg.Price,
		Description: fmt.Sprintf("Honey Jobs: %d honey drops", pkg.Drops),
		RedirectURL: uc.urls.RedirectURL("honey?purchase=" + pkg.Code),
		WebhookURL:  uc.urls.WebhookURL("honey-drops"),
		Metadata: map[string]string{
			entity.MetaPurpose: string(valueobject.PurposeHoneyDropPurchase),
			entity.MetaUserID:  userID.String(),
			entity.MetaPackage: pkg.Code,
			entity.MetaDrops:   fmt.Sprintf("%d", pkg.Drops),
		},
	})
	if err != nil {
		return nil, err
	}

	return &PurchaseOutput{PaymentID: payment.ID, CheckoutURL: payment.CheckoutURL, Package: pkg}, nil
}

type ProcessPurchaseWebhookUseCase struct {
	honeyRepo repository.HoneyRepository
	payments  repository.PaymentGateway
	notifier  repository.Notifier
	metrics   *metrics.Payments
}

func NewProcessPurchaseWebhookUseCase(
	honeyRepo repository.HoneyRepository,
	payments repository.PaymentGateway,
	notifier repository.Notifier,
	m *metrics.Payments,
) *ProcessPurchaseWebhookUseCase {
	return &ProcessPurchaseWebhookUseCase{honeyRepo: honeyRepo, payments: payments, notifier: notifier, metrics: m}
}

// Execute зачисляет drops за оплаченный пакет. Количество drops берётся из
// пакета, а не из metadata, повторное зачисление отсекается по id платежа.
func (uc *ProcessPurchaseWebhookUseCase) Execute(ctx context.Context, paymentID string) (valueobject.WebhookOutcome, error) {
	outcome, err := uc.process(ctx, paymentID)
	if err != nil {
		uc.metrics.Webhook(string(valueobject.PurposeHoneyDropPurchase), "error")
		return "", err
	}
	uc.metrics.Webhook(string(valueobject.PurposeHoneyDropPurchase), string(outcome))
	return outcome, nil
}

func (uc *ProcessPurchaseWebhookUseCase) process(ctx context.Context, paymentID string) (valueobject.WebhookOutcome, error) {
	if paymentID == "" {
		return "", apperror.New(apperror.ErrCodeValidation, "не передан id платежа")
	}

	payment, err := uc.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if payment.Purpose() != valueobject.PurposeHoneyDropPurchase {
		return valueobject.WebhookIgnored, nil
	}
	if !payment.Status.IsPaid() {
		return valueobject.WebhookNoop, nil
	}

	log := logger.Log.WithFields(logrus.Fields{"payment_id": payment.ID})

	userID, err := payment.MetadataUUID(entity.MetaUserID)
	if err != nil {
		log.WithError(err).Error("honey: платёж без пользователя в metadata")
		return "", apperror.Wrap(err, apperror.ErrCodeInternal, "платёж не связан с пользователем")
	}
	pkg, ok := entity.FindDropPackage(payment.Metadata[entity.MetaPackage])
	if !ok {
		log.Error("honey: неизвестный пакет в оплаченном платеже")
		return "", apperror.Wrap(apperror.ErrUnknownDropPackage, apperror.ErrCodeInternal, "неизвестный пакет в платеже")
	}
	if !payment.Amount.Amount.Equal(pkg.Price.Amount) || payment.Amount.Currency != pkg.Price.Currency {
		log.WithField("amount", payment.Amount.String()).Error("honey: сумма платежа не совпадает с ценой пакета")
		return valueobject.WebhookRejected, nil
	}

	credit := entity.NewHoneyTransaction(userID, entity.HoneyTransactionPurchase, pkg.Drops,
		fmt.Sprintf("Покупка пакета %s (%d drops)", pkg.Code, pkg.Drops))
	credit.PaymentReference = &payment.ID

	credited, err := uc.honeyRepo.Credit(ctx, credit)
	if err != nil {
		return "", err
	}
	if !credited {
		return valueobject.WebhookDuplicate, nil
	}

	log.WithFields(logrus.Fields{"user_id": userID, "drops": pkg.Drops}).Info("honey: drops зачислены")
	if uc.notifier != nil {
		uc.notifier.Notify(userID, "honey_drops_credited", map[string]interface{}{"drops": pkg.Drops})
	}
	return valueobject.WebhookApplied, nil
}
