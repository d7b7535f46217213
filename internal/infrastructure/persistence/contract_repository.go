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
	"github.com/ignatzorin/honeyjobs-backend/internal/repository/common"
)

const contractColumns = `id, job_id, client_id, freelancer_id, contract_number, total_amount, currency, status,
	client_signed_at, freelancer_signed_at,
	escrow_status, escrow_payment_id, escrow_amount, escrow_fee_rate, escrow_created_at,
	escrow_paid_at, escrow_failed_at, escrow_failure_reason, escrow_released_at, escrow_released_by,
	created_at, updated_at`

type contractRow struct {
	ID                  uuid.UUID           `db:"id"`
	JobID               uuid.UUID           `db:"job_id"`
	ClientID            uuid.UUID           `db:"client_id"`
	FreelancerID        uuid.UUID           `db:"freelancer_id"`
	ContractNumber      string              `db:"contract_number"`
	TotalAmount         decimal.Decimal     `db:"total_amount"`
	Currency            string              `db:"currency"`
	Status              string              `db:"status"`
	ClientSignedAt      *time.Time          `db:"client_signed_at"`
	FreelancerSignedAt  *time.Time          `db:"freelancer_signed_at"`
	EscrowStatus        string              `db:"escrow_status"`
	EscrowPaymentID     *string             `db:"escrow_payment_id"`
	EscrowAmount        decimal.NullDecimal `db:"escrow_amount"`
	EscrowFeeRate       decimal.NullDecimal `db:"escrow_fee_rate"`
	EscrowCreatedAt     *time.Time          `db:"escrow_created_at"`
	EscrowPaidAt        *time.Time          `db:"escrow_paid_at"`
	EscrowFailedAt      *time.Time          `db:"escrow_failed_at"`
	EscrowFailureReason *string             `db:"escrow_failure_reason"`
	EscrowReleasedAt    *time.Time          `db:"escrow_released_at"`
	EscrowReleasedBy    *uuid.UUID          `db:"escrow_released_by"`
	CreatedAt           time.Time           `db:"created_at"`
	UpdatedAt           time.Time           `db:"updated_at"`
}

func (r *contractRow) toEntity() (*entity.Contract, error) {
	escrowStatus, err := valueobject.NewEscrowStatus(r.EscrowStatus)
	if err != nil {
		return nil, err
	}

	return &entity.Contract{
		ID:                 r.ID,
		JobID:              r.JobID,
		ClientID:           r.ClientID,
		FreelancerID:       r.FreelancerID,
		ContractNumber:     r.ContractNumber,
		TotalAmount:        valueobject.Money{Amount: r.TotalAmount, Currency: r.Currency},
		Status:             valueobject.ContractStatus(r.Status),
		ClientSignedAt:     r.ClientSignedAt,
		FreelancerSignedAt: r.FreelancerSignedAt,
		Escrow: entity.Escrow{
			Status:        escrowStatus,
			PaymentID:     r.EscrowPaymentID,
			Amount:        r.EscrowAmount.Decimal,
			FeeRate:       r.EscrowFeeRate.Decimal,
			CreatedAt:     r.EscrowCreatedAt,
			PaidAt:        r.EscrowPaidAt,
			FailedAt:      r.EscrowFailedAt,
			FailureReason: r.EscrowFailureReason,
			ReleasedAt:    r.EscrowReleasedAt,
			ReleasedBy:    r.EscrowReleasedBy,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

type ContractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	var row contractRow
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`

	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrContractNotFound
		}
		return nil, apperror.Database(err, "не удалось получить контракт")
	}

	return row.toEntity()
}

func (r *ContractRepository) AttachEscrowPayment(ctx context.Context, c *entity.Contract) error {
	query := `
		UPDATE contracts
		SET escrow_status = $2, escrow_payment_id = $3, escrow_amount = $4, escrow_fee_rate = $5,
		    escrow_created_at = $6, escrow_paid_at = NULL, escrow_failed_at = NULL,
		    escrow_failure_reason = NULL, updated_at = $7
		WHERE id = $1 AND escrow_status IN ('none', 'failed')
	`

	result, err := r.db.ExecContext(ctx, query,
		c.ID,
		string(c.Escrow.Status),
		c.Escrow.PaymentID,
		c.Escrow.Amount,
		c.Escrow.FeeRate,
		c.Escrow.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return apperror.Database(err, "не удалось сохранить эскроу-платёж")
	}

	return common.RequireAffected(result, apperror.ErrEscrowAlreadyExists)
}

func (r *ContractRepository) UpdateEscrowStatus(ctx context.Context, c *entity.Contract, from valueobject.EscrowStatus) (bool, error) {
	query := `
		UPDATE contracts
		SET escrow_status = $2, escrow_paid_at = $3, escrow_failed_at = $4,
		    escrow_failure_reason = $5, updated_at = $6
		WHERE id = $1 AND escrow_status = $7 AND escrow_payment_id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		c.ID,
		string(c.Escrow.Status),
		c.Escrow.PaidAt,
		c.Escrow.FailedAt,
		c.Escrow.FailureReason,
		c.UpdatedAt,
		string(from),
		c.Escrow.PaymentID,
	)
	if err != nil {
		return false, apperror.Database(err, "не удалось обновить статус эскроу")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperror.Database(err, "не удалось проверить результат обновления")
	}
	return rows == 1, nil
}

func (r *ContractRepository) CompleteRelease(ctx context.Context, c *entity.Contract, earning *entity.Earning) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE contracts
			SET escrow_status = 'released', escrow_released_at = $2, escrow_released_by = $3,
			    status = 'completed', updated_at = $2
			WHERE id = $1 AND escrow_status = 'paid'
		`, c.ID, c.Escrow.ReleasedAt, c.Escrow.ReleasedBy)
		if err != nil {
			return apperror.Database(err, "не удалось завершить контракт")
		}
		if err := common.RequireAffected(result, apperror.ErrAlreadyReleased); err != nil {
			return err
		}

		if err := insertEarning(ctx, tx, earning); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE jobs SET status = 'completed', completed_at = $2, updated_at = $2
			WHERE id = $1
		`, c.JobID, c.Escrow.ReleasedAt)
		if err != nil {
			return apperror.Database(err, "не удалось завершить задание")
		}
		return nil
	})
}

func (r *ContractRepository) ListPendingEscrows(ctx context.Context, createdBefore time.Time, after *repository.PendingEscrowCursor, limit int) ([]*entity.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts
		WHERE escrow_status = 'pending' AND escrow_created_at < $1
		  AND (escrow_created_at, id) > ($2, $3)
		ORDER BY escrow_created_at, id
		LIMIT $4`

	// Нулевой курсор меньше любой строки: escrow_created_at у pending всегда заполнен.
	var cursor repository.PendingEscrowCursor
	if after != nil {
		cursor = *after
	}

	var rows []contractRow
	if err := r.db.SelectContext(ctx, &rows, query, createdBefore, cursor.CreatedAt, cursor.ID, limit); err != nil {
		return nil, apperror.Database(err, "не удалось получить ожидающие эскроу")
	}

	contracts := make([]*entity.Contract, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}
