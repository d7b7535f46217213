package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

const DefaultCurrency = "DKK"

type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, apperror.New(apperror.ErrCodeValidation, "сумма не может быть отрицательной")
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount.Round(2), Currency: currency}, nil
}

// MustMoney для констант и тестов, где сумма заведомо корректна.
func MustMoney(amount, currency string) Money {
	m, err := NewMoney(decimal.RequireFromString(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Value возвращает сумму в формате провайдера: всегда два знака после точки.
func (m Money) Value() string {
	return m.Amount.StringFixed(2)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Value(), m.Currency)
}
