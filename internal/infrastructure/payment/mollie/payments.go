package mollie

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
)

func (c *Client) CreatePayment(ctx context.Context, req entity.CreatePaymentRequest) (*entity.ProviderPayment, error) {
	body := createPaymentRequest{
		Amount:       toAmount(req.Amount),
		Description:  req.Description,
		RedirectURL:  req.RedirectURL,
		WebhookURL:   req.WebhookURL,
		SequenceType: req.SequenceType,
		Metadata:     req.Metadata,
	}
	if req.CustomerID != nil {
		body.CustomerID = *req.CustomerID
	}

	var out payment
	if err := c.do(ctx, "create_payment", http.MethodPost, "/payments", body, &out); err != nil {
		return nil, err
	}
	return out.toEntity(), nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (*entity.ProviderPayment, error) {
	var out payment
	if err := c.do(ctx, "get_payment", http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, &out); err != nil {
		return nil, err
	}
	return out.toEntity(), nil
}

func (c *Client) CancelPayment(ctx context.Context, paymentID string) error {
	return c.do(ctx, "cancel_payment", http.MethodDelete, "/payments/"+url.PathEscape(paymentID), nil, nil)
}

func (c *Client) CreateRefund(ctx context.Context, paymentID string, money valueobject.Money, description string) (*entity.ProviderRefund, error) {
	body := createRefundRequest{Amount: toAmount(money), Description: description}

	var out refund
	path := "/payments/" + url.PathEscape(paymentID) + "/refunds"
	if err := c.do(ctx, "create_refund", http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &entity.ProviderRefund{
		ID:        out.ID,
		PaymentID: out.PaymentID,
		Status:    out.Status,
		Amount:    out.Amount.toMoney(),
	}, nil
}

func (c *Client) CreateCustomer(ctx context.Context, name, email string, metadata map[string]string) (*entity.ProviderCustomer, error) {
	body := createCustomerRequest{Name: name, Email: email, Metadata: metadata}

	var out customer
	if err := c.do(ctx, "create_customer", http.MethodPost, "/customers", body, &out); err != nil {
		return nil, err
	}
	return &entity.ProviderCustomer{ID: out.ID, Name: out.Name, Email: out.Email}, nil
}
