package honey_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
	"github.com/ignatzorin/honeyjobs-backend/internal/usecase/honey"
)

type fakeHoney struct {
	mu           sync.Mutex
	balances     map[uuid.UUID]int
	transactions []*entity.HoneyTransaction
	applications map[uuid.UUID]*entity.JobApplication
	refs         map[string]bool
}

func newFakeHoney() *fakeHoney {
	return &fakeHoney{
		balances:     make(map[uuid.UUID]int),
		applications: make(map[uuid.UUID]*entity.JobApplication),
		refs:         make(map[string]bool),
	}
}

func (f *fakeHoney) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID], nil
}

func (f *fakeHoney) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.HoneyTransaction, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.HoneyTransaction
	for _, t := range f.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, len(out), nil
}

func (f *fakeHoney) SpendForBid(ctx context.Context, debit *entity.HoneyTransaction, app *entity.JobApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[debit.UserID] < -debit.Amount {
		return apperror.ErrInsufficientDrops
	}
	for _, a := range f.applications {
		if a.JobID == app.JobID && a.FreelancerID == app.FreelancerID {
			return apperror.ErrAlreadyApplied
		}
	}
	f.balances[debit.UserID] += debit.Amount
	f.applications[app.ID] = app
	f.transactions = append(f.transactions, debit)
	return nil
}

func (f *fakeHoney) Credit(ctx context.Context, credit *entity.HoneyTransaction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if credit.PaymentReference != nil {
		if f.refs[*credit.PaymentReference] {
			return false, nil
		}
		f.refs[*credit.PaymentReference] = true
	}
	f.balances[credit.UserID] += credit.Amount
	f.transactions = append(f.transactions, credit)
	return true, nil
}

func (f *fakeHoney) RejectApplicants(ctx context.Context, jobID, selected uuid.UUID, refund int) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rejected []uuid.UUID
	for _, a := range f.applications {
		if a.JobID != jobID || a.Status != valueobject.ApplicationStatusPending {
			continue
		}
		if a.FreelancerID == selected {
			a.Status = valueobject.ApplicationStatusSelected
			continue
		}
		a.Status = valueobject.ApplicationStatusRejected
		f.balances[a.FreelancerID] += refund
		rejected = append(rejected, a.FreelancerID)
	}
	return rejected, nil
}

type fakeJobs struct {
	jobs map[uuid.UUID]*entity.Job
}

func (f *fakeJobs) FindByID(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, apperror.ErrJobNotFound
}

type fakeGateway struct {
	seq      int
	payments map[string]*entity.ProviderPayment
}

func (f *fakeGateway) CreatePayment(ctx context.Context, req entity.CreatePaymentRequest) (*entity.ProviderPayment, error) {
	f.seq++
	p := &entity.ProviderPayment{
		ID:          fmt.Sprintf("tr_h%d", f.seq),
		Status:      valueobject.PaymentStatusOpen,
		Amount:      req.Amount,
		CheckoutURL: "https://checkout.test",
		Metadata:    req.Metadata,
	}
	f.payments[p.ID] = p
	return p, nil
}

func (f *fakeGateway) GetPayment(ctx context.Context, id string) (*entity.ProviderPayment, error) {
	if p, ok := f.payments[id]; ok {
		return p, nil
	}
	return nil, apperror.ErrPaymentNotFound
}

func (f *fakeGateway) CancelPayment(ctx context.Context, id string) error { return nil }

func (f *fakeGateway) CreateRefund(ctx context.Context, paymentID string, amount valueobject.Money, description string) (*entity.ProviderRefund, error) {
	return nil, nil
}

func (f *fakeGateway) CreateCustomer(ctx context.Context, name, email string, metadata map[string]string) (*entity.ProviderCustomer, error) {
	return nil, nil
}

type fakeURLs struct{}

func (fakeURLs) WebhookURL(path string) string  { return "https://api.test/api/webhooks/" + path }
func (fakeURLs) RedirectURL(path string) string { return "https://app.test/" + path }

type countingNotifier struct {
	events map[string]int
}

func (n *countingNotifier) Notify(userID uuid.UUID, event string, payload interface{}) {
	n.events[event]++
}

func newOpenJob(clientID uuid.UUID) *entity.Job {
	return &entity.Job{ID: uuid.New(), ClientID: clientID, Title: "Logo", Status: valueobject.JobStatusOpen, CreatedAt: time.Now()}
}

func TestSpendOnBid(t *testing.T) {
	repo := newFakeHoney()
	job := newOpenJob(uuid.New())
	jobs := &fakeJobs{jobs: map[uuid.UUID]*entity.Job{job.ID: job}}
	uc := honey.NewSpendOnBidUseCase(repo, jobs)
	ctx := context.Background()

	freelancer := uuid.New()
	repo.balances[freelancer] = 5

	app, err := uc.Execute(ctx, freelancer, job.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ApplicationStatusPending, app.Status)
	assert.Equal(t, 2, repo.balances[freelancer])
	assert.Equal(t, -3, repo.transactions[0].Amount)
	assert.Equal(t, entity.HoneyTransactionBid, repo.transactions[0].Type)

	_, err = uc.Execute(ctx, freelancer, job.ID)
	assert.ErrorIs(t, err, apperror.ErrInsufficientDrops)
	assert.Equal(t, 2, repo.balances[freelancer])

	repo.balances[freelancer] = 10
	_, err = uc.Execute(ctx, freelancer, job.ID)
	assert.ErrorIs(t, err, apperror.ErrAlreadyApplied)
}

func TestSpendOnBid_ClosedOrOwnJob(t *testing.T) {
	repo := newFakeHoney()
	clientID := uuid.New()
	job := newOpenJob(clientID)
	jobs := &fakeJobs{jobs: map[uuid.UUID]*entity.Job{job.ID: job}}
	uc := honey.NewSpendOnBidUseCase(repo, jobs)

	_, err := uc.Execute(context.Background(), clientID, job.ID)
	assert.True(t, apperror.IsValidation(err))

	job.Status = valueobject.JobStatusInProgress
	_, err = uc.Execute(context.Background(), uuid.New(), job.ID)
	assert.ErrorIs(t, err, apperror.ErrJobClosed)

	_, err = uc.Execute(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrJobNotFound)
}

func TestRejectApplicants(t *testing.T) {
	repo := newFakeHoney()
	clientID := uuid.New()
	job := newOpenJob(clientID)
	jobs := &fakeJobs{jobs: map[uuid.UUID]*entity.Job{job.ID: job}}
	notifier := &countingNotifier{events: map[string]int{}}
	bid := honey.NewSpendOnBidUseCase(repo, jobs)
	uc := honey.NewRejectApplicantsUseCase(repo, jobs, notifier)
	ctx := context.Background()

	freelancers := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, f := range freelancers {
		repo.balances[f] = 3
		_, err := bid.Execute(ctx, f, job.ID)
		require.NoError(t, err)
	}

	_, err := uc.Execute(ctx, freelancers[0], job.ID, freelancers[0])
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	rejected, err := uc.Execute(ctx, clientID, job.ID, freelancers[0])
	require.NoError(t, err)
	assert.ElementsMatch(t, freelancers[1:], rejected)
	assert.Equal(t, 0, repo.balances[freelancers[0]])
	assert.Equal(t, 3, repo.balances[freelancers[1]])
	assert.Equal(t, 3, repo.balances[freelancers[2]])
	assert.Equal(t, 2, notifier.events["application_rejected"])

	rejected, err = uc.Execute(ctx, clientID, job.ID, freelancers[0])
	require.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Equal(t, 3, repo.balances[freelancers[1]])
}

func TestPurchase_Flow(t *testing.T) {
	repo := newFakeHoney()
	gateway := &fakeGateway{payments: map[string]*entity.ProviderPayment{}}
	initiate := honey.NewInitiatePurchaseUseCase(gateway, fakeURLs{})
	webhook := honey.NewProcessPurchaseWebhookUseCase(repo, gateway, nil, nil)
	ctx := context.Background()
	userID := uuid.New()

	_, err := initiate.Execute(ctx, userID, "gigantic")
	assert.ErrorIs(t, err, apperror.ErrUnknownDropPackage)

	out, err := initiate.Execute(ctx, userID, "medium")
	require.NoError(t, err)
	assert.Equal(t, 25, out.Package.Drops)
	assert.Equal(t, "honey_drop_purchase", gateway.payments[out.PaymentID].Metadata[entity.MetaPurpose])

	outcome, err := webhook.Execute(ctx, out.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.WebhookNoop, outcome)
	assert.Equal(t, 0, repo.balances[userID])

	gateway.payments[out.PaymentID].Status = valueobject.PaymentStatusPaid

	outcome, err = webhook.Execute(ctx, out.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.WebhookApplied, outcome)
	assert.Equal(t, 25, repo.balances[userID])

	outcome, err = webhook.Execute(ctx, out.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.WebhookDuplicate, outcome)
	assert.Equal(t, 25, repo.balances[userID])
}

func TestPurchaseWebhook_IgnoresAndRejects(t *testing.T) {
	repo := newFakeHoney()
	userID := uuid.New()
	gateway := &fakeGateway{payments: map[string]*entity.ProviderPayment{
		"tr_escrow": {ID: "tr_escrow", Status: valueobject.PaymentStatusPaid, Metadata: map[string]string{entity.MetaPurpose: "contract_escrow"}},
		"tr_cheap": {
			ID:     "tr_cheap",
			Status: valueobject.PaymentStatusPaid,
			Amount: valueobject.MustMoney("1.00", "DKK"),
			Metadata: map[string]string{
				entity.MetaPurpose: "honey_drop_purchase",
				entity.MetaUserID:  userID.String(),
				entity.MetaPackage: "large",
			},
		},
	}}
	webhook := honey.NewProcessPurchaseWebhookUseCase(repo, gateway, nil, nil)

	outcome, err := webhook.Execute(context.Background(), "tr_escrow")
	require.NoError(t, err)
	assert.Equal(t, valueobject.WebhookIgnored, outcome)

	outcome, err = webhook.Execute(context.Background(), "tr_cheap")
	require.NoError(t, err)
	assert.Equal(t, valueobject.WebhookRejected, outcome)
	assert.Equal(t, 0, repo.balances[userID])
}

func TestListTransactions_ClampsPaging(t *testing.T) {
	repo := newFakeHoney()
	userID := uuid.New()
	_, _ = repo.Credit(context.Background(), entity.NewHoneyTransaction(userID, entity.HoneyTransactionCoupon, 5, "Купон"))

	items, total, err := honey.NewListTransactionsUseCase(repo).Execute(context.Background(), userID, 1000, -5)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)

	balance, err := honey.NewGetBalanceUseCase(repo).Execute(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}
