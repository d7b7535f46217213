package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
)

// PaymentGateway - порт платёжного провайдера.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req entity.CreatePaymentRequest) (*entity.ProviderPayment, error)
	GetPayment(ctx context.Context, paymentID string) (*entity.ProviderPayment, error)
	CancelPayment(ctx context.Context, paymentID string) error
	CreateRefund(ctx context.Context, paymentID string, amount valueobject.Money, description string) (*entity.ProviderRefund, error)
	CreateCustomer(ctx context.Context, name, email string, metadata map[string]string) (*entity.ProviderCustomer, error)
}

// Notifier доставляет пользователю событие в реальном времени.
type Notifier interface {
	Notify(userID uuid.UUID, event string, payload interface{})
}
