package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/coupon"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/earning"
)

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type ApplyCouponResponse struct {
	Code            string     `json:"code"`
	BenefitType     string     `json:"benefit_type"`
	DropsCredited   int        `json:"drops_credited,omitempty"`
	ReducedFeeRate  string     `json:"reduced_fee_rate,omitempty"`
	ReducedFeeUntil *time.Time `json:"reduced_fee_until,omitempty"`
}

func ToApplyCouponResponse(out *coupon.ApplyCouponOutput) ApplyCouponResponse {
	return ApplyCouponResponse{
		Code:            out.Code,
		BenefitType:     string(out.BenefitType),
		DropsCredited:   out.DropsCredited,
		ReducedFeeRate:  out.ReducedFeeRate,
		ReducedFeeUntil: out.ReducedFeeUntil,
	}
}

type StartVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

type StartVerificationResponse struct {
	PaymentID   string   `json:"payment_id"`
	CheckoutURL string   `json:"checkout_url"`
	Amount      MoneyDTO `json:"amount"`
}

type EarningResponse struct {
	ID          uuid.UUID  `json:"id"`
	ContractID  *uuid.UUID `json:"contract_id"`
	Amount      MoneyDTO   `json:"amount"`
	Status      string     `json:"status"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

type EarningsResponse struct {
	Items      []EarningResponse `json:"items"`
	TotalCount int               `json:"total_count"`
	TotalSum   string            `json:"total_sum"`
}

func ToEarningsResponse(out *earning.ListMyEarningsOutput) EarningsResponse {
	items := make([]EarningResponse, 0, len(out.Items))
	for _, e := range out.Items {
		items = append(items, toEarningResponse(e))
	}
	return EarningsResponse{
		Items:      items,
		TotalCount: out.Totals.Count,
		TotalSum:   out.Totals.Sum.StringFixed(2),
	}
}

func toEarningResponse(e *entity.Earning) EarningResponse {
	return EarningResponse{
		ID:          e.ID,
		ContractID:  e.ContractID,
		Amount:      MoneyDTO{Value: e.Amount.Value(), Currency: e.Amount.Currency},
		Status:      e.Status,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}
