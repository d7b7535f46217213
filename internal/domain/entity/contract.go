package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

type Contract struct {
	ID                 uuid.UUID
	JobID              uuid.UUID
	ClientID           uuid.UUID
	FreelancerID       uuid.UUID
	ContractNumber     string
	TotalAmount        valueobject.Money
	Status             valueobject.ContractStatus
	ClientSignedAt     *time.Time
	FreelancerSignedAt *time.Time
	Escrow             Escrow
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Escrow - состояние эскроу-платежа внутри контракта.
type Escrow struct {
	Status        valueobject.EscrowStatus
	PaymentID     *string
	Amount        decimal.Decimal
	FeeRate       decimal.Decimal
	CreatedAt     *time.Time
	PaidAt        *time.Time
	FailedAt      *time.Time
	FailureReason *string
	ReleasedAt    *time.Time
	ReleasedBy    *uuid.UUID
}

func (c *Contract) IsClient(userID uuid.UUID) bool {
	return c.ClientID == userID
}

func (c *Contract) IsParty(userID uuid.UUID) bool {
	return c.ClientID == userID || c.FreelancerID == userID
}

func (c *Contract) IsFullySigned() bool {
	return c.ClientSignedAt != nil && c.FreelancerSignedAt != nil
}

func (c *Contract) HasEscrowPayment() bool {
	return c.Escrow.PaymentID != nil && *c.Escrow.PaymentID != ""
}

// IsCurrentEscrowPayment проверяет, что платёж относится к действующему эскроу,
// а не к заменённой ранее попытке оплаты.
func (c *Contract) IsCurrentEscrowPayment(paymentID string) bool {
	return c.HasEscrowPayment() && *c.Escrow.PaymentID == paymentID
}

// AttachEscrowPayment переводит эскроу в pending с новым платежом.
// Допустимо из none и из failed (повторная попытка оплаты).
func (c *Contract) AttachEscrowPayment(paymentID string, amount, feeRate decimal.Decimal, now time.Time) error {
	if !c.Escrow.Status.CanTransitionTo(valueobject.EscrowStatusPending) {
		return apperror.ErrEscrowAlreadyExists
	}
	c.Escrow = Escrow{
		Status:    valueobject.EscrowStatusPending,
		PaymentID: &paymentID,
		Amount:    amount,
		FeeRate:   feeRate,
		CreatedAt: &now,
	}
	c.UpdatedAt = now
	return nil
}

// MarkEscrowPaid возвращает false, если эскроу уже оплачен или выплачен.
func (c *Contract) MarkEscrowPaid(now time.Time) (bool, error) {
	switch c.Escrow.Status {
	case valueobject.EscrowStatusPaid, valueobject.EscrowStatusReleased:
		return false, nil
	}
	if !c.Escrow.Status.CanTransitionTo(valueobject.EscrowStatusPaid) {
		return false, apperror.ErrInvalidEscrowTransition
	}
	c.Escrow.Status = valueobject.EscrowStatusPaid
	c.Escrow.PaidAt = &now
	c.UpdatedAt = now
	return true, nil
}

// MarkEscrowFailed возвращает false, если эскроу уже помечен как неуспешный.
func (c *Contract) MarkEscrowFailed(reason string, now time.Time) (bool, error) {
	if c.Escrow.Status == valueobject.EscrowStatusFailed {
		return false, nil
	}
	if !c.Escrow.Status.CanTransitionTo(valueobject.EscrowStatusFailed) {
		return false, apperror.ErrInvalidEscrowTransition
	}
	c.Escrow.Status = valueobject.EscrowStatusFailed
	c.Escrow.FailedAt = &now
	c.Escrow.FailureReason = &reason
	c.UpdatedAt = now
	return true, nil
}

// ReleaseEscrow фиксирует выплату и завершает контракт.
func (c *Contract) ReleaseEscrow(actorID uuid.UUID, now time.Time) error {
	if c.Escrow.Status == valueobject.EscrowStatusReleased {
		return apperror.ErrAlreadyReleased
	}
	if !c.Escrow.Status.CanTransitionTo(valueobject.EscrowStatusReleased) {
		return apperror.ErrEscrowNotPaid
	}
	c.Escrow.Status = valueobject.EscrowStatusReleased
	c.Escrow.ReleasedAt = &now
	c.Escrow.ReleasedBy = &actorID
	c.Status = valueobject.ContractStatusCompleted
	c.UpdatedAt = now
	return nil
}
