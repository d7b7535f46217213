package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
)

// Ключи metadata, по которым вебхуки сопоставляют платёж с сущностями.
const (
	MetaPurpose    = "purpose"
	MetaContractID = "contract_id"
	MetaClientID   = "client_id"
	MetaUserID     = "user_id"
	MetaDrops      = "drops"
	MetaPackage    = "package"
)

// ProviderPayment - платёж в том виде, в каком его вернул провайдер.
type ProviderPayment struct {
	ID            string
	Status        valueobject.PaymentStatus
	Amount        valueobject.Money
	Description   string
	CheckoutURL   string
	CustomerID    *string
	Metadata      map[string]string
	FailureReason string
	CreatedAt     time.Time
}

func (p *ProviderPayment) Purpose() valueobject.PaymentPurpose {
	return valueobject.PaymentPurpose(p.Metadata[MetaPurpose])
}

func (p *ProviderPayment) MetadataUUID(key string) (uuid.UUID, error) {
	raw, ok := p.Metadata[key]
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("payment %s: в metadata нет %s", p.ID, key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("payment %s: некорректный %s: %w", p.ID, key, err)
	}
	return id, nil
}

// FailureDescription - причина неуспеха для сохранения в эскроу.
func (p *ProviderPayment) FailureDescription() string {
	if p.FailureReason != "" {
		return fmt.Sprintf("%s: %s", p.Status, p.FailureReason)
	}
	return string(p.Status)
}

type CreatePaymentRequest struct {
	Amount       valueobject.Money
	Description  string
	RedirectURL  string
	WebhookURL   string
	CustomerID   *string
	SequenceType string
	Metadata     map[string]string
}

type ProviderRefund struct {
	ID        string
	PaymentID string
	Status    string
	Amount    valueobject.Money
}

type ProviderCustomer struct {
	ID    string
	Name  string
	Email string
}
