package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

func signedContract() *Contract {
	now := time.Now()
	return &Contract{
		ID:                 uuid.New(),
		JobID:              uuid.New(),
		ClientID:           uuid.New(),
		FreelancerID:       uuid.New(),
		ContractNumber:     "HJ-0001",
		TotalAmount:        valueobject.MustMoney("1000.00", "DKK"),
		Status:             valueobject.ContractStatusSigned,
		ClientSignedAt:     &now,
		FreelancerSignedAt: &now,
		Escrow:             Escrow{Status: valueobject.EscrowStatusNone},
	}
}

func TestContract_Parties(t *testing.T) {
	c := signedContract()

	assert.True(t, c.IsClient(c.ClientID))
	assert.False(t, c.IsClient(c.FreelancerID))
	assert.True(t, c.IsParty(c.FreelancerID))
	assert.False(t, c.IsParty(uuid.New()))
	assert.True(t, c.IsFullySigned())

	c.FreelancerSignedAt = nil
	assert.False(t, c.IsFullySigned())
}

func TestContract_EscrowLifecycle(t *testing.T) {
	c := signedContract()
	now := time.Now()

	require.NoError(t, c.AttachEscrowPayment("tr_1", decimal.RequireFromString("1150.00"), decimal.RequireFromString("0.15"), now))
	assert.Equal(t, valueobject.EscrowStatusPending, c.Escrow.Status)
	assert.True(t, c.IsCurrentEscrowPayment("tr_1"))
	assert.False(t, c.IsCurrentEscrowPayment("tr_2"))

	err := c.AttachEscrowPayment("tr_2", decimal.RequireFromString("1150.00"), decimal.RequireFromString("0.15"), now)
	assert.ErrorIs(t, err, apperror.ErrEscrowAlreadyExists)

	changed, err := c.MarkEscrowPaid(now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotNil(t, c.Escrow.PaidAt)

	changed, err = c.MarkEscrowPaid(now)
	require.NoError(t, err)
	assert.False(t, changed)

	actor := c.ClientID
	require.NoError(t, c.ReleaseEscrow(actor, now))
	assert.Equal(t, valueobject.EscrowStatusReleased, c.Escrow.Status)
	assert.Equal(t, valueobject.ContractStatusCompleted, c.Status)
	assert.Equal(t, actor, *c.Escrow.ReleasedBy)

	assert.ErrorIs(t, c.ReleaseEscrow(actor, now), apperror.ErrAlreadyReleased)
}

func TestContract_FailedEscrowCanBeRetried(t *testing.T) {
	c := signedContract()
	now := time.Now()

	require.NoError(t, c.AttachEscrowPayment("tr_1", decimal.RequireFromString("1150.00"), decimal.RequireFromString("0.15"), now))

	changed, err := c.MarkEscrowFailed("expired", now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "expired", *c.Escrow.FailureReason)

	changed, err = c.MarkEscrowFailed("expired", now)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = c.MarkEscrowPaid(now)
	assert.ErrorIs(t, err, apperror.ErrInvalidEscrowTransition)

	require.NoError(t, c.AttachEscrowPayment("tr_2", decimal.RequireFromString("1150.00"), decimal.RequireFromString("0.15"), now))
	assert.Equal(t, "tr_2", *c.Escrow.PaymentID)
	assert.Nil(t, c.Escrow.FailureReason)
}

func TestContract_ReleaseRequiresPaidEscrow(t *testing.T) {
	c := signedContract()
	assert.ErrorIs(t, c.ReleaseEscrow(c.ClientID, time.Now()), apperror.ErrEscrowNotPaid)

	require.NoError(t, c.AttachEscrowPayment("tr_1", decimal.RequireFromString("1150.00"), decimal.RequireFromString("0.15"), time.Now()))
	assert.ErrorIs(t, c.ReleaseEscrow(c.ClientID, time.Now()), apperror.ErrEscrowNotPaid)
}

func TestEarnings_FromContract(t *testing.T) {
	c := signedContract()
	c.TotalAmount = valueobject.MustMoney("2000.00", "DKK")
	require.NoError(t, c.AttachEscrowPayment("tr_9", decimal.RequireFromString("2300.00"), decimal.RequireFromString("0.15"), time.Now()))

	freelancer := NewFreelancerEarning(c, time.Now())
	assert.Equal(t, c.FreelancerID, *freelancer.UserID)
	assert.Equal(t, "2000.00", freelancer.Amount.Value())
	assert.Equal(t, "tr_9", *freelancer.PaymentReference)
	assert.False(t, freelancer.IsPlatformRevenue())

	platform := NewPlatformEarning(c, valueobject.PlatformFee(c.TotalAmount.Amount, decimal.RequireFromString("0.15")), time.Now())
	assert.True(t, platform.IsPlatformRevenue())
	assert.Equal(t, "300.00", platform.Amount.Value())
	assert.Equal(t, c.ID, *platform.ContractID)
}
