package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
)

const EarningStatusCompleted = "completed"

// Earning - запись в журнале начислений. UserID == nil означает доход платформы.
type Earning struct {
	ID               uuid.UUID
	UserID           *uuid.UUID
	ContractID       *uuid.UUID
	Amount           valueobject.Money
	Status           string
	Description      string
	PaymentReference *string
	CreatedAt        time.Time
}

func (e *Earning) IsPlatformRevenue() bool {
	return e.UserID == nil
}

// NewFreelancerEarning начисляет фрилансеру полную стоимость контракта.
func NewFreelancerEarning(c *Contract, now time.Time) *Earning {
	freelancerID := c.FreelancerID
	contractID := c.ID
	return &Earning{
		ID:               uuid.New(),
		UserID:           &freelancerID,
		ContractID:       &contractID,
		Amount:           c.TotalAmount,
		Status:           EarningStatusCompleted,
		Description:      fmt.Sprintf("Выплата по контракту %s", c.ContractNumber),
		PaymentReference: c.Escrow.PaymentID,
		CreatedAt:        now,
	}
}

// NewPlatformEarning фиксирует комиссию платформы по контракту.
func NewPlatformEarning(c *Contract, fee decimal.Decimal, now time.Time) *Earning {
	contractID := c.ID
	return &Earning{
		ID:               uuid.New(),
		ContractID:       &contractID,
		Amount:           valueobject.Money{Amount: fee.Round(2), Currency: c.TotalAmount.Currency},
		Status:           EarningStatusCompleted,
		Description:      fmt.Sprintf("Комиссия платформы по контракту %s", c.ContractNumber),
		PaymentReference: c.Escrow.PaymentID,
		CreatedAt:        now,
	}
}
