package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
)

// BidCost - сколько honey drops стоит один отклик на задание.
const BidCost = 3

type HoneyTransactionType string

const (
	HoneyTransactionPurchase HoneyTransactionType = "purchase"
	HoneyTransactionBid      HoneyTransactionType = "bid"
	HoneyTransactionRefund   HoneyTransactionType = "refund"
	HoneyTransactionCoupon   HoneyTransactionType = "coupon"
)

type HoneyBalance struct {
	UserID    uuid.UUID
	Balance   int
	UpdatedAt time.Time
}

// HoneyTransaction - запись журнала honey drops. Amount со знаком: списания отрицательные.
type HoneyTransaction struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Type             HoneyTransactionType
	Amount           int
	JobID            *uuid.UUID
	PaymentReference *string
	Description      string
	CreatedAt        time.Time
}

func NewHoneyTransaction(userID uuid.UUID, txType HoneyTransactionType, amount int, description string) *HoneyTransaction {
	return &HoneyTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

type DropPackage struct {
	Code  string
	Drops int
	Price valueobject.Money
}

var dropPackages = map[string]DropPackage{
	"small":  {Code: "small", Drops: 10, Price: valueobject.MustMoney("49.00", "DKK")},
	"medium": {Code: "medium", Drops: 25, Price: valueobject.MustMoney("99.00", "DKK")},
	"large":  {Code: "large", Drops: 60, Price: valueobject.MustMoney("199.00", "DKK")},
}

func FindDropPackage(code string) (DropPackage, bool) {
	p, ok := dropPackages[code]
	return p, ok
}
