package verification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/verification"
)

type mockFeeProfiles struct {
	mock.Mock
}

func (m *mockFeeProfiles) FindByClientID(ctx context.Context, clientID uuid.UUID) (*entity.ClientFeeProfile, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ClientFeeProfile), args.Error(1)
}

func (m *mockFeeProfiles) SaveProviderCustomer(ctx context.Context, clientID uuid.UUID, customerID string) error {
	return m.Called(ctx, clientID, customerID).Error(0)
}

func (m *mockFeeProfiles) MarkPaymentVerified(ctx context.Context, clientID uuid.UUID, customerID string, at time.Time) error {
	return m.Called(ctx, clientID, customerID, at).Error(0)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreatePayment(ctx context.Context, req entity.CreatePaymentRequest) (*entity.ProviderPayment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProviderPayment), args.Error(1)
}

func (m *mockGateway) GetPayment(ctx context.Context, id string) (*entity.ProviderPayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProviderPayment), args.Error(1)
}

func (m *mockGateway) CancelPayment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockGateway) CreateRefund(ctx context.Context, paymentID string, amount valueobject.Money, description string) (*entity.ProviderRefund, error) {
	args := m.Called(ctx, paymentID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProviderRefund), args.Error(1)
}

func (m *mockGateway) CreateCustomer(ctx context.Context, name, email string, metadata map[string]string) (*entity.ProviderCustomer, error) {
	args := m.Called(ctx, name, email, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProviderCustomer), args.Error(1)
}

type fakeURLs struct{}

func (fakeURLs) WebhookURL(path string) string  { return "https://api.test/api/webhooks/" + path }
func (fakeURLs) RedirectURL(path string) string { return "https://app.test/" + path }

func strPtr(s string) *string { return &s }

var oneKrone = valueobject.MustMoney("1.00", "DKK")

func TestStartVerification_CreatesCustomer(t *testing.T) {
	profiles := new(mockFeeProfiles)
	gateway := new(mockGateway)
	ctx := context.Background()
	clientID := uuid.New()

	profiles.On("FindByClientID", ctx, clientID).Return(entity.NewDefaultFeeProfile(clientID), nil)
	gateway.On("CreateCustomer", ctx, "Anna", "anna@example.dk", mock.Anything).
		Return(&entity.ProviderCustomer{ID: "cst_1"}, nil)
	profiles.On("SaveProviderCustomer", ctx, clientID, "cst_1").Return(nil)
	gateway.On("CreatePayment", ctx, mock.MatchedBy(func(req entity.CreatePaymentRequest) bool {
		return req.CustomerID != nil && *req.CustomerID == "cst_1" &&
			req.SequenceType == "first" &&
			req.Amount.Value() == "1.00" &&
			req.Metadata[entity.MetaPurpose] == "payment_verification" &&
			req.WebhookURL == "https://api.test/api/webhooks/payment-verification"
	})).Return(&entity.ProviderPayment{ID: "tr_v1", CheckoutURL: "https://checkout.test/v1"}, nil)

	uc := verification.NewStartPaymentVerificationUseCase(profiles, gateway, fakeURLs{}, oneKrone)
	out, err := uc.Execute(ctx, clientID, "anna@example.dk", "Anna")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.test/v1", out.CheckoutURL)
	profiles.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestStartVerification_ReusesCustomer(t *testing.T) {
	profiles := new(mockFeeProfiles)
	gateway := new(mockGateway)
	ctx := context.Background()
	clientID := uuid.New()

	profile := entity.NewDefaultFeeProfile(clientID)
	profile.ProviderCustomerID = strPtr("cst_old")
	profiles.On("FindByClientID", ctx, clientID).Return(profile, nil)
	gateway.On("CreatePayment", ctx, mock.MatchedBy(func(req entity.CreatePaymentRequest) bool {
		return *req.CustomerID == "cst_old"
	})).Return(&entity.ProviderPayment{ID: "tr_v2"}, nil)

	uc := verification.NewStartPaymentVerificationUseCase(profiles, gateway, fakeURLs{}, oneKrone)
	_, err := uc.Execute(ctx, clientID, "anna@example.dk", "Anna")
	require.NoError(t, err)
	gateway.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func paidVerification(clientID uuid.UUID) *entity.ProviderPayment {
	return &entity.ProviderPayment{
		ID:         "tr_v1",
		Status:     valueobject.PaymentStatusPaid,
		Amount:     oneKrone,
		CustomerID: strPtr("cst_1"),
		Metadata: map[string]string{
			entity.MetaPurpose:  "payment_verification",
			entity.MetaClientID: clientID.String(),
		},
	}
}

func TestVerificationWebhook_VerifiesAndRefunds(t *testing.T) {
	profiles := new(mockFeeProfiles)
	gateway := new(mockGateway)
	ctx := context.Background()
	clientID := uuid.New()

	gateway.On("GetPayment", ctx, "tr_v1").Return(paidVerification(clientID), nil)
	profiles.On("FindByClientID", ctx, clientID).Return(entity.NewDefaultFeeProfile(clientID), nil)
	profiles.On("MarkPaymentVerified", ctx, clientID, "cst_1", mock.AnythingOfType("time.Time")).Return(nil)
	gateway.On("CreateRefund", ctx, "tr_v1", oneKrone, mock.Anything).Return(nil, errors.New("provider down"))

	uc := verification.NewProcessVerificationWebhookUseCase(profiles, gateway, nil, nil)
	outcome, err := uc.Execute(ctx, "tr_v1")
	require.NoError(t, err)
	assert.Equal(t, valueobject.WebhookApplied, outcome)
	profiles.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestVerificationWebhook_AlreadyVerified(t *testing.T) {
	profiles := new(mockFeeProfiles)
	gateway := new(mockGateway)
	ctx := context.Background()
	clientID := uuid.New()

	verifiedAt := time.Now().Add(-time.Minute)
	profile := entity.NewDefaultFeeProfile(clientID)
	profile.ProviderCustomerID = strPtr("cst_1")
	profile.PaymentVerifiedAt = &verifiedAt

	gateway.On("GetPayment", ctx, "tr_v1").Return(paidVerification(clientID), nil)
	profiles.On("FindByClientID", ctx, clientID).Return(profile, nil)

	uc := verification.NewProcessVerificationWebhookUseCase(profiles, gateway, nil, nil)
	outcome, err := uc.Execute(ctx, "tr_v1")
	require.NoError(t, err)
	assert.Equal(t, valueobject.WebhookDuplicate, outcome)
	profiles.AssertNotCalled(t, "MarkPaymentVerified", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	gateway.AssertNotCalled(t, "CreateRefund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerificationWebhook_IgnoresOtherPurposesAndUnpaid(t *testing.T) {
	profiles := new(mockFeeProfiles)
	gateway := new(mockGateway)
	ctx := context.Background()

	gateway.On("GetPayment", ctx, "tr_escrow").Return(&entity.ProviderPayment{
		ID: "tr_escrow", Status: valueobject.PaymentStatusPaid,
		Metadata: map[string]string{entity.MetaPurpose: "contract_escrow"},
	}, nil)
	gateway.On("GetPayment", ctx, "tr_open").Return(&entity.ProviderPayment{
		ID: "tr_open", Status: valueobject.PaymentStatusOpen,
		Metadata: map[string]string{entity.MetaPurpose: "payment_verification"},
	}, nil)

	uc := verification.NewProcessVerificationWebhookUseCase(profiles, gateway, nil, nil)

	outcome, err := uc.Execute(ctx, "tr_escrow")
	require.NoError(t, err)
	assert.Equal(t, valueobject.WebhookIgnored, outcome)

	outcome, err = uc.Execute(ctx, "tr_open")
	require.NoError(t, err)
	assert.Equal(t, valueobject.WebhookNoop, outcome)

	profiles.AssertNotCalled(t, "FindByClientID", mock.Anything, mock.Anything)
}
