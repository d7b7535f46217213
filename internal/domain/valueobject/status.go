package valueobject

import "github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"

type ContractStatus string

const (
	ContractStatusDraft     ContractStatus = "draft"
	ContractStatusSent      ContractStatus = "sent"
	ContractStatusSigned    ContractStatus = "signed"
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusSent, ContractStatusSigned,
		ContractStatusActive, ContractStatusCompleted, ContractStatusCancelled:
		return true
	}
	return false
}

// EscrowStatus - состояние эскроу-платежа по контракту.
type EscrowStatus string

const (
	EscrowStatusNone     EscrowStatus = "none"
	EscrowStatusPending  EscrowStatus = "pending"
	EscrowStatusPaid     EscrowStatus = "paid"
	EscrowStatusFailed   EscrowStatus = "failed"
	EscrowStatusReleased EscrowStatus = "released"
)

var escrowTransitions = map[EscrowStatus][]EscrowStatus{
	EscrowStatusNone:     {EscrowStatusPending},
	EscrowStatusPending:  {EscrowStatusPaid, EscrowStatusFailed},
	EscrowStatusPaid:     {EscrowStatusReleased},
	EscrowStatusFailed:   {EscrowStatusPending},
	EscrowStatusReleased: {},
}

// Normalize приводит пустой статус (нулевое значение Escrow) к none.
func (s EscrowStatus) Normalize() EscrowStatus {
	if s == "" {
		return EscrowStatusNone
	}
	return s
}

func (s EscrowStatus) IsValid() bool {
	_, ok := escrowTransitions[s.Normalize()]
	return ok
}

func (s EscrowStatus) CanTransitionTo(next EscrowStatus) bool {
	for _, allowed := range escrowTransitions[s.Normalize()] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsLive - есть незавершённый или оплаченный платёж, новый создавать нельзя.
func (s EscrowStatus) IsLive() bool {
	return s == EscrowStatusPending || s == EscrowStatusPaid || s == EscrowStatusReleased
}

func NewEscrowStatus(status string) (EscrowStatus, error) {
	if status == "" {
		return EscrowStatusNone, nil
	}
	s := EscrowStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус эскроу")
	}
	return s, nil
}

// PaymentStatus - статус платежа на стороне провайдера.
type PaymentStatus string

const (
	PaymentStatusOpen       PaymentStatus = "open"
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCanceled   PaymentStatus = "canceled"
	PaymentStatusExpired    PaymentStatus = "expired"
)

func (s PaymentStatus) IsPaid() bool {
	return s == PaymentStatusPaid
}

// IsFailure - платёж окончательно не состоится.
func (s PaymentStatus) IsFailure() bool {
	return s == PaymentStatusFailed || s == PaymentStatusCanceled || s == PaymentStatusExpired
}

// PaymentPurpose - назначение платежа, передаётся провайдеру в metadata.
type PaymentPurpose string

const (
	PurposeContractEscrow      PaymentPurpose = "contract_escrow"
	PurposeHoneyDropPurchase   PaymentPurpose = "honey_drop_purchase"
	PurposePaymentVerification PaymentPurpose = "payment_verification"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusSelected ApplicationStatus = "selected"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// WebhookOutcome - чем закончилась обработка платёжного вебхука.
type WebhookOutcome string

const (
	WebhookIgnored   WebhookOutcome = "ignored"
	WebhookStale     WebhookOutcome = "stale"
	WebhookNoop      WebhookOutcome = "noop"
	WebhookDuplicate WebhookOutcome = "duplicate"
	WebhookApplied   WebhookOutcome = "applied"
	WebhookRejected  WebhookOutcome = "rejected"
)
