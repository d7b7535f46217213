package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/honey"
)

type BalanceResponse struct {
	Balance int `json:"balance"`
}

type HoneyTransactionResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Amount      int        `json:"amount"`
	JobID       *uuid.UUID `json:"job_id"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

func ToHoneyTransactionResponses(items []*entity.HoneyTransaction) []HoneyTransactionResponse {
	out := make([]HoneyTransactionResponse, 0, len(items))
	for _, t := range items {
		out = append(out, HoneyTransactionResponse{
			ID:          t.ID,
			Type:        string(t.Type),
			Amount:      t.Amount,
			JobID:       t.JobID,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}

type PurchaseRequest struct {
	Package string `json:"package" binding:"required"`
}

type PurchaseResponse struct {
	PaymentID   string   `json:"payment_id"`
	CheckoutURL string   `json:"checkout_url"`
	Package     string   `json:"package"`
	Drops       int      `json:"drops"`
	Price       MoneyDTO `json:"price"`
}

func ToPurchaseResponse(out *honey.PurchaseOutput) PurchaseResponse {
	return PurchaseResponse{
		PaymentID:   out.PaymentID,
		CheckoutURL: out.CheckoutURL,
		Package:     out.Package.Code,
		Drops:       out.Package.Drops,
		Price:       MoneyDTO{Value: out.Package.Price.Value(), Currency: out.Package.Price.Currency},
	}
}

type ApplicationResponse struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	Status    string    `json:"status"`
	DropsCost int       `json:"drops_cost"`
	CreatedAt time.Time `json:"created_at"`
}

func ToApplicationResponse(app *entity.JobApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:        app.ID,
		JobID:     app.JobID,
		Status:    string(app.Status),
		DropsCost: entity.BidCost,
		CreatedAt: app.CreatedAt,
	}
}

type RejectApplicantsRequest struct {
	SelectedFreelancerID string `json:"selected_freelancer_id" binding:"required,uuid"`
}

type RejectApplicantsResponse struct {
	Rejected      []uuid.UUID `json:"rejected"`
	RefundedDrops int         `json:"refunded_drops_each"`
}
