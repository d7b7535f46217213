package mollie

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
)

// amount - денежная сумма в формате Mollie: value всегда с двумя знаками.
type amount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

func toAmount(m valueobject.Money) amount {
	return amount{Currency: m.Currency, Value: m.Value()}
}

func (a amount) toMoney() valueobject.Money {
	value, err := decimal.NewFromString(a.Value)
	if err != nil {
		value = decimal.Zero
	}
	return valueobject.Money{Amount: value.Round(2), Currency: a.Currency}
}

type link struct {
	Href string `json:"href"`
	Type string `json:"type"`
}

type createPaymentRequest struct {
	Amount       amount            `json:"amount"`
	Description  string            `json:"description"`
	RedirectURL  string            `json:"redirectUrl,omitempty"`
	WebhookURL   string            `json:"webhookUrl,omitempty"`
	CustomerID   string            `json:"customerId,omitempty"`
	SequenceType string            `json:"sequenceType,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type payment struct {
	Resource    string            `json:"resource"`
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	Amount      amount            `json:"amount"`
	Description string            `json:"description"`
	CustomerID  string            `json:"customerId,omitempty"`
	Metadata    json.RawMessage   `json:"metadata"`
	CreatedAt   time.Time         `json:"createdAt"`
	Details     struct {
		FailureReason string `json:"failureReason"`
	} `json:"details"`
	Links struct {
		Checkout *link `json:"checkout"`
	} `json:"_links"`
}

func (p *payment) toEntity() *entity.ProviderPayment {
	out := &entity.ProviderPayment{
		ID:            p.ID,
		Status:        valueobject.PaymentStatus(p.Status),
		Amount:        p.Amount.toMoney(),
		Description:   p.Description,
		Metadata:      stringMetadata(p.Metadata),
		FailureReason: p.Details.FailureReason,
		CreatedAt:     p.CreatedAt,
	}
	if p.CustomerID != "" {
		customerID := p.CustomerID
		out.CustomerID = &customerID
	}
	if p.Links.Checkout != nil {
		out.CheckoutURL = p.Links.Checkout.Href
	}
	return out
}

type createRefundRequest struct {
	Amount      amount `json:"amount"`
	Description string `json:"description,omitempty"`
}

type refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
	Amount    amount `json:"amount"`
}

type createCustomerRequest struct {
	Name     string            `json:"name,omitempty"`
	Email    string            `json:"email,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// stringMetadata оставляет только строковые значения metadata. Mollie хранит
// произвольный JSON (число, null, вложенный объект), а нам нужны только наши
// строковые ключи - остальное отбрасывается, а не ломает декодирование платежа.
func stringMetadata(raw json.RawMessage) map[string]string {
	out := map[string]string{}
	var fields map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil {
		return out
	}
	for k, v := range fields {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
