package valueobject

import (
	"time"

	"github.com/shopspring/decimal"
)

// StandardFeeRate - стандартная комиссия платформы (15%).
var StandardFeeRate = decimal.RequireFromString("0.15")

// ResolveFeeRate возвращает действующую ставку комиссии клиента.
// Сниженная ставка действует только пока now строго меньше reducedUntil,
// в остальных случаях применяется стандартная ставка независимо от сохранённой.
func ResolveFeeRate(rate decimal.Decimal, reducedUntil *time.Time, now time.Time) decimal.Decimal {
	if reducedUntil != nil && reducedUntil.After(now) {
		return rate
	}
	return StandardFeeRate
}

// EscrowAmount - сумма, которую платит клиент: стоимость контракта плюс комиссия.
func EscrowAmount(total decimal.Decimal, feeRate decimal.Decimal) decimal.Decimal {
	return total.Mul(decimal.NewFromInt(1).Add(feeRate)).Round(2)
}

// PlatformFee - доход платформы с контракта.
func PlatformFee(total decimal.Decimal, feeRate decimal.Decimal) decimal.Decimal {
	return total.Mul(feeRate).Round(2)
}
