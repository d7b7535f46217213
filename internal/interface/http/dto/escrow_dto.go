package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/escrow"
)

type MoneyDTO struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type InitiateEscrowResponse struct {
	PaymentID   string   `json:"payment_id"`
	CheckoutURL string   `json:"checkout_url"`
	Amount      MoneyDTO `json:"amount"`
	FeeRate     string   `json:"fee_rate"`
}

func ToInitiateEscrowResponse(out *escrow.InitiateEscrowOutput) InitiateEscrowResponse {
	return InitiateEscrowResponse{
		PaymentID:   out.PaymentID,
		CheckoutURL: out.CheckoutURL,
		Amount:      MoneyDTO{Value: out.Amount.Value(), Currency: out.Amount.Currency},
		FeeRate:     out.FeeRate.String(),
	}
}

type ReleaseEscrowResponse struct {
	AmountReleased MoneyDTO  `json:"amount_released"`
	PlatformFee    MoneyDTO  `json:"platform_fee"`
	ReleasedAt     time.Time `json:"released_at"`
}

func ToReleaseEscrowResponse(out *escrow.ReleaseEscrowOutput) ReleaseEscrowResponse {
	return ReleaseEscrowResponse{
		AmountReleased: MoneyDTO{Value: out.AmountReleased.Value(), Currency: out.AmountReleased.Currency},
		PlatformFee:    MoneyDTO{Value: out.PlatformFee.Value(), Currency: out.PlatformFee.Currency},
		ReleasedAt:     out.ReleasedAt,
	}
}

type EscrowResponse struct {
	ContractID     uuid.UUID  `json:"contract_id"`
	ContractStatus string     `json:"contract_status"`
	Status         string     `json:"escrow_status"`
	PaymentID      *string    `json:"payment_id"`
	Amount         *MoneyDTO  `json:"amount"`
	FeeRate        *string    `json:"fee_rate"`
	CreatedAt      *time.Time `json:"created_at"`
	PaidAt         *time.Time `json:"paid_at"`
	FailedAt       *time.Time `json:"failed_at"`
	FailureReason  *string    `json:"failure_reason"`
	ReleasedAt     *time.Time `json:"released_at"`
}

func ToEscrowResponse(c *entity.Contract) EscrowResponse {
	resp := EscrowResponse{
		ContractID:     c.ID,
		ContractStatus: string(c.Status),
		Status:         string(c.Escrow.Status),
		PaymentID:      c.Escrow.PaymentID,
		CreatedAt:      c.Escrow.CreatedAt,
		PaidAt:         c.Escrow.PaidAt,
		FailedAt:       c.Escrow.FailedAt,
		FailureReason:  c.Escrow.FailureReason,
		ReleasedAt:     c.Escrow.ReleasedAt,
	}
	if c.HasEscrowPayment() {
		resp.Amount = &MoneyDTO{Value: c.Escrow.Amount.StringFixed(2), Currency: c.TotalAmount.Currency}
		rate := c.Escrow.FeeRate.String()
		resp.FeeRate = &rate
	}
	return resp
}

// WebhookRequest - тело вебхука в JSON. Mollie шлёт form-urlencoded,
// поэтому хэндлер сначала смотрит поле формы id.
type WebhookRequest struct {
	ID string `json:"id"`
}

type WebhookResponse struct {
	Outcome string `json:"outcome"`
}
