package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/honeyjobs-backend/internal/domain/entity"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/repository"
	"github.com/ignatzorin/honeyjobs-backend/internal/domain/valueobject"
	"github.com/ignatzorin/honeyjobs-backend/internal/pkg/apperror"
)

type feeProfileRow struct {
	ClientID           uuid.UUID       `db:"client_id"`
	PlatformFeeRate    decimal.Decimal `db:"platform_fee_rate"`
	ReducedFeeUntil    *time.Time      `db:"reduced_fee_until"`
	ProviderCustomerID *string         `db:"provider_customer_id"`
	PaymentVerifiedAt  *time.Time      `db:"payment_verified_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

type FeeProfileRepository struct {
	db *sqlx.DB
}

func NewFeeProfileRepository(db *sqlx.DB) *FeeProfileRepository {
	return &FeeProfileRepository{db: db}
}

func (r *FeeProfileRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) (*entity.ClientFeeProfile, error) {
	var row feeProfileRow
	query := `
		SELECT client_id, platform_fee_rate, reduced_fee_until, provider_customer_id, payment_verified_at, updated_at
		FROM client_fee_profiles
		WHERE client_id = $1
	`

	if err := r.db.GetContext(ctx, &row, query, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.NewDefaultFeeProfile(clientID), nil
		}
		return nil, apperror.Database(err, "не удалось получить профиль комиссии")
	}

	return &entity.ClientFeeProfile{
		ClientID:           row.ClientID,
		PlatformFeeRate:    row.PlatformFeeRate,
		ReducedFeeUntil:    row.ReducedFeeUntil,
		ProviderCustomerID: row.ProviderCustomerID,
		PaymentVerifiedAt:  row.PaymentVerifiedAt,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}

func (r *FeeProfileRepository) SaveProviderCustomer(ctx context.Context, clientID uuid.UUID, customerID string) error {
	query := `
		INSERT INTO client_fee_profiles (client_id, provider_customer_id, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id) DO UPDATE
		SET provider_customer_id = EXCLUDED.provider_customer_id, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, clientID, customerID, time.Now()); err != nil {
		return apperror.Database(err, "не удалось сохранить плательщика")
	}
	return nil
}

func (r *FeeProfileRepository) MarkPaymentVerified(ctx context.Context, clientID uuid.UUID, customerID string, at time.Time) error {
	query := `
		INSERT INTO client_fee_profiles (client_id, provider_customer_id, payment_verified_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (client_id) DO UPDATE
		SET provider_customer_id = EXCLUDED.provider_customer_id,
		    payment_verified_at = EXCLUDED.payment_verified_at,
		    updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, clientID, customerID, at); err != nil {
		return apperror.Database(err, "не удалось подтвердить способ оплаты")
	}
	return nil
}

func upsertFeeReduction(ctx context.Context, db sqlx.ExecerContext, p *entity.ClientFeeProfile) error {
	query := `
		INSERT INTO client_fee_profiles (client_id, platform_fee_rate, reduced_fee_until, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (client_id) DO UPDATE
		SET platform_fee_rate = EXCLUDED.platform_fee_rate,
		    reduced_fee_until = EXCLUDED.reduced_fee_until,
		    updated_at = EXCLUDED.updated_at
	`
	if _, err := db.ExecContext(ctx, query, p.ClientID, p.PlatformFeeRate, p.ReducedFeeUntil, p.UpdatedAt); err != nil {
		return apperror.Database(err, "не удалось применить сниженную комиссию")
	}
	return nil
}

type earningRow struct {
	ID               uuid.UUID       `db:"id"`
	UserID           *uuid.UUID      `db:"user_id"`
	ContractID       *uuid.UUID      `db:"contract_id"`
	Amount           decimal.Decimal `db:"amount"`
	Currency         string          `db:"currency"`
	Status           string          `db:"status"`
	Description      string          `db:"description"`
	PaymentReference *string         `db:"payment_reference"`
	CreatedAt        time.Time       `db:"created_at"`
}

type EarningRepository struct {
	db *sqlx.DB
}

func NewEarningRepository(db *sqlx.DB) *EarningRepository {
	return &EarningRepository{db: db}
}

func (r *EarningRepository) Create(ctx context.Context, e *entity.Earning) error {
	return insertEarning(ctx, r.db, e)
}

func insertEarning(ctx context.Context, db sqlx.ExecerContext, e *entity.Earning) error {
	query := `
		INSERT INTO earnings (id, user_id, contract_id, amount, currency, status, description, payment_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.ContractID,
		e.Amount.Amount,
		e.Amount.Currency,
		e.Status,
		e.Description,
		e.PaymentReference,
		e.CreatedAt,
	)
	if err != nil {
		return apperror.Database(err, "не удалось записать начисление")
	}
	return nil
}

func (r *EarningRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Earning, repository.EarningTotals, error) {
	var totals repository.EarningTotals

	var rows []earningRow
	query := `
		SELECT id, user_id, contract_id, amount, currency, status, description, payment_reference, created_at
		FROM earnings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, totals, apperror.Database(err, "не удалось получить начисления")
	}

	err := r.db.QueryRowxContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM earnings WHERE user_id = $1`, userID,
	).Scan(&totals.Count, &totals.Sum)
	if err != nil {
		return nil, totals, apperror.Database(err, "не удалось посчитать начисления")
	}

	earnings := make([]*entity.Earning, 0, len(rows))
	for _, row := range rows {
		earnings = append(earnings, &entity.Earning{
			ID:               row.ID,
			UserID:           row.UserID,
			ContractID:       row.ContractID,
			Amount:           valueobject.Money{Amount: row.Amount, Currency: row.Currency},
			Status:           row.Status,
			Description:      row.Description,
			PaymentReference: row.PaymentReference,
			CreatedAt:        row.CreatedAt,
		})
	}
	return earnings, totals, nil
}
