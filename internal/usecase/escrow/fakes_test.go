package escrow_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/repository"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

type fakeContracts struct {
	mu            sync.Mutex
	contracts     map[uuid.UUID]entity.Contract
	earnings      *fakeEarnings
	completedJobs map[uuid.UUID]time.Time
	attachErr     error
	listCalls     int
}

func newFakeContracts(earnings *fakeEarnings) *fakeContracts {
	return &fakeContracts{
		contracts:     make(map[uuid.UUID]entity.Contract),
		earnings:      earnings,
		completedJobs: make(map[uuid.UUID]time.Time),
	}
}

func (f *fakeContracts) put(c *entity.Contract) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contracts[c.ID] = *c
}

func (f *fakeContracts) get(id uuid.UUID) entity.Contract {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contracts[id]
}

func (f *fakeContracts) FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contracts[id]
	if !ok {
		return nil, apperror.ErrContractNotFound
	}
	return &c, nil
}

func (f *fakeContracts) AttachEscrowPayment(ctx context.Context, c *entity.Contract) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attachErr != nil {
		return f.attachErr
	}
	stored := f.contracts[c.ID]
	if stored.Escrow.Status != valueobject.EscrowStatusNone && stored.Escrow.Status != valueobject.EscrowStatusFailed {
		return apperror.ErrEscrowAlreadyExists
	}
	f.contracts[c.ID] = *c
	return nil
}

func (f *fakeContracts) UpdateEscrowStatus(ctx context.Context, c *entity.Contract, from valueobject.EscrowStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.contracts[c.ID]
	if stored.Escrow.Status != from || !stored.IsCurrentEscrowPayment(*c.Escrow.PaymentID) {
		return false, nil
	}
	f.contracts[c.ID] = *c
	return true, nil
}

func (f *fakeContracts) CompleteRelease(ctx context.Context, c *entity.Contract, earning *entity.Earning) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.contracts[c.ID]
	if stored.Escrow.Status != valueobject.EscrowStatusPaid {
		return apperror.ErrAlreadyReleased
	}
	f.contracts[c.ID] = *c
	f.completedJobs[c.JobID] = *c.Escrow.ReleasedAt
	return f.earnings.Create(ctx, earning)
}

func (f *fakeContracts) ListPendingEscrows(ctx context.Context, createdBefore time.Time, after *repository.PendingEscrowCursor, limit int) ([]*entity.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	var out []*entity.Contract
	for _, c := range f.contracts {
		c := c
		if c.Escrow.Status != valueobject.EscrowStatusPending || !c.Escrow.CreatedAt.Before(createdBefore) {
			continue
		}
		if after != nil && !pendingAfter(&c, after) {
			continue
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Escrow.CreatedAt.Equal(*b.Escrow.CreatedAt) {
			return a.Escrow.CreatedAt.Before(*b.Escrow.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func pendingAfter(c *entity.Contract, cursor *repository.PendingEscrowCursor) bool {
	if !c.Escrow.CreatedAt.Equal(cursor.CreatedAt) {
		return c.Escrow.CreatedAt.After(cursor.CreatedAt)
	}
	return c.ID.String() > cursor.ID.String()
}

type fakeFeeProfiles struct {
	profiles map[uuid.UUID]*entity.ClientFeeProfile
	err      error
}

func newFakeFeeProfiles() *fakeFeeProfiles {
	return &fakeFeeProfiles{profiles: make(map[uuid.UUID]*entity.ClientFeeProfile)}
}

func (f *fakeFeeProfiles) verified(clientID uuid.UUID) *entity.ClientFeeProfile {
	customer := "cst_" + clientID.String()[:8]
	now := time.Now()
	p := entity.NewDefaultFeeProfile(clientID)
	p.ProviderCustomerID = &customer
	p.PaymentVerifiedAt = &now
	f.profiles[clientID] = p
	return p
}

func (f *fakeFeeProfiles) FindByClientID(ctx context.Context, clientID uuid.UUID) (*entity.ClientFeeProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[clientID]; ok {
		return p, nil
	}
	return entity.NewDefaultFeeProfile(clientID), nil
}

func (f *fakeFeeProfiles) SaveProviderCustomer(ctx context.Context, clientID uuid.UUID, customerID string) error {
	return nil
}

func (f *fakeFeeProfiles) MarkPaymentVerified(ctx context.Context, clientID uuid.UUID, customerID string, at time.Time) error {
	return nil
}

type fakeEarnings struct {
	mu        sync.Mutex
	items     []*entity.Earning
	failOnNil bool
}

func (f *fakeEarnings) Create(ctx context.Context, e *entity.Earning) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOnNil && e.UserID == nil {
		return errors.New("earnings table locked")
	}
	f.items = append(f.items, e)
	return nil
}

func (f *fakeEarnings) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Earning, repository.EarningTotals, error) {
	return nil, repository.EarningTotals{}, nil
}

func (f *fakeEarnings) all() []*entity.Earning {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*entity.Earning(nil), f.items...)
}

type fakeGateway struct {
	mu        sync.Mutex
	seq       int
	payments  map[string]*entity.ProviderPayment
	requests  []entity.CreatePaymentRequest
	cancelled []string
	createErr error
	getErr    map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{payments: make(map[string]*entity.ProviderPayment), getErr: make(map[string]error)}
}

func (f *fakeGateway) CreatePayment(ctx context.Context, req entity.CreatePaymentRequest) (*entity.ProviderPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	id := fmt.Sprintf("tr_%d", f.seq)
	p := &entity.ProviderPayment{
		ID:          id,
		Status:      valueobject.PaymentStatusOpen,
		Amount:      req.Amount,
		CheckoutURL: "https://checkout.test/" + id,
		Metadata:    req.Metadata,
		CustomerID:  req.CustomerID,
	}
	f.payments[id] = p
	f.requests = append(f.requests, req)
	return p, nil
}

func (f *fakeGateway) setStatus(id string, status valueobject.PaymentStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[id].Status = status
}

func (f *fakeGateway) addPayment(p *entity.ProviderPayment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[p.ID] = p
}

func (f *fakeGateway) GetPayment(ctx context.Context, id string) (*entity.ProviderPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	p, ok := f.payments[id]
	if !ok {
		return nil, apperror.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeGateway) CancelPayment(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeGateway) CreateRefund(ctx context.Context, paymentID string, amount valueobject.Money, description string) (*entity.ProviderRefund, error) {
	return &entity.ProviderRefund{ID: "re_1", PaymentID: paymentID, Amount: amount}, nil
}

func (f *fakeGateway) CreateCustomer(ctx context.Context, name, email string, metadata map[string]string) (*entity.ProviderCustomer, error) {
	return &entity.ProviderCustomer{ID: "cst_new", Name: name, Email: email}, nil
}

type notification struct {
	userID uuid.UUID
	event  string
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (f *fakeNotifier) Notify(userID uuid.UUID, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notification{userID: userID, event: event})
}

type fakeURLs struct{}

func (fakeURLs) WebhookURL(path string) string  { return "https://api.test/api/webhooks/" + path }
func (fakeURLs) RedirectURL(path string) string { return "https://app.test/" + path }

func newSignedContract(total string) *entity.Contract {
	now := time.Now()
	return &entity.Contract{
		ID:                 uuid.New(),
		JobID:              uuid.New(),
		ClientID:           uuid.New(),
		FreelancerID:       uuid.New(),
		ContractNumber:     "HJ-" + uuid.NewString()[:4],
		TotalAmount:        valueobject.MustMoney(total, "DKK"),
		Status:             valueobject.ContractStatusSigned,
		ClientSignedAt:     &now,
		FreelancerSignedAt: &now,
		Escrow:             entity.Escrow{Status: valueobject.EscrowStatusNone},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
